package session

import (
	"time"

	"github.com/penwyp/go-datimer/internal/core/history"
)

// Screen is the terminal output the session draws on
type Screen interface {
	history.Renderer
	// Prepare hides the cursor and clears the screen
	Prepare() error
	// DrawHeader draws the title, help and start time rows
	DrawHeader(start time.Time) error
	// Restore resets styling and leaves the cursor visible on row
	Restore(row int) error
}

// KeySource yields key presses through a channel that is polled, never
// waited on
type KeySource interface {
	Keys() <-chan rune
}

// SinkMonitor reports that the history file went away
type SinkMonitor interface {
	Events() <-chan string
}

// Reopener is implemented by sinks that can recreate their file
type Reopener interface {
	Reopen() error
}
