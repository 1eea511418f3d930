//go:build linux || darwin

package interaction

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/penwyp/go-datimer/internal/core/model"
	"github.com/penwyp/go-datimer/internal/util"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// KeyboardReader puts a terminal in raw mode and forwards single key presses
// through a one-slot channel. The listener blocks until the previous key is
// consumed, so at most one keystroke is ever pending.
type KeyboardReader struct {
	fd       int
	oldState *unix.Termios
	keys     chan rune
	stop     chan struct{}
	stopOnce sync.Once
}

// NewKeyboardReader enables raw mode on tty and starts listening on it.
func NewKeyboardReader(tty *os.File) (*KeyboardReader, error) {
	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%w: %s is not a terminal", model.ErrTerminalInit, tty.Name())
	}

	kr := newKeyboardReader()
	kr.fd = fd
	oldState, err := enableRawMode(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: enable raw mode: %v", model.ErrTerminalInit, err)
	}
	kr.oldState = oldState
	util.LogDebug("Raw mode enabled", util.F("tty", tty.Name()))

	go kr.listen(tty)
	return kr, nil
}

func newKeyboardReader() *KeyboardReader {
	return &KeyboardReader{
		keys: make(chan rune, 1),
		stop: make(chan struct{}),
	}
}

// listen forwards recognised keys until a quit key was forwarded, the reader
// is closed, or reading fails.
func (kr *KeyboardReader) listen(r io.Reader) {
	buf := make([]byte, 8)
	for {
		n, err := r.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				util.LogErrorf("Keyboard read failed, input disabled: %v", err)
			}
			return
		}

		for _, key := range parseInput(buf[:n]) {
			select {
			case kr.keys <- key:
			case <-kr.stop:
				return
			}
			if IsQuit(key) {
				return
			}
		}
	}
}

// parseInput splits one read into characters. A read can carry several keys
// when they arrive together or are pasted. An escape byte ends the useful
// part of the read, so arrow and function keys are dropped.
func parseInput(buf []byte) []rune {
	var keys []rune
	for len(buf) > 0 {
		if buf[0] == keyEscape {
			break
		}
		r, size := utf8.DecodeRune(buf)
		buf = buf[size:]
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		keys = append(keys, r)
	}
	return keys
}

// Keys returns the one-slot key channel. Poll it without blocking.
func (kr *KeyboardReader) Keys() <-chan rune {
	return kr.keys
}

// Close stops forwarding and restores the terminal mode. A listener blocked
// in Read is abandoned.
func (kr *KeyboardReader) Close() error {
	kr.stopOnce.Do(func() { close(kr.stop) })
	if kr.oldState == nil {
		return nil
	}
	if err := restoreMode(kr.fd, kr.oldState); err != nil {
		return fmt.Errorf("restore terminal mode: %w", err)
	}
	kr.oldState = nil
	util.LogDebug("Raw mode disabled")
	return nil
}
