//go:build linux || darwin

package interaction

import (
	"golang.org/x/sys/unix"
)

// enableRawMode switches fd to non-canonical, no-echo input and returns the
// previous state.
func enableRawMode(fd int) (*unix.Termios, error) {
	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}

	newState := *oldState
	newState.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN
	// Keep ISIG enabled so Ctrl+C still raises SIGINT
	newState.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	newState.Cflag |= unix.CS8
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return nil, err
	}
	return oldState, nil
}

// restoreMode puts back a state saved by enableRawMode.
func restoreMode(fd int, state *unix.Termios) error {
	return unix.IoctlSetTermios(fd, ioctlSetTermios, state)
}
