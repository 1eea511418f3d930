package interaction

// Recognised keys.
const (
	KeyQuit   = 'q'
	KeyPause  = 'p'
	KeySpace  = ' '
	KeyCtrlC  = 3
	keyEscape = 27
)

// IsQuit reports whether key ends the session.
func IsQuit(key rune) bool {
	return key == KeyQuit || key == KeyCtrlC
}

// IsToggle reports whether key pauses or resumes the stopwatch.
func IsToggle(key rune) bool {
	return key == KeyPause || key == KeySpace
}
