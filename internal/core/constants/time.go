package constants

import "time"

const (
	// Loop cadence
	TickInterval = 128 * time.Millisecond

	// History persistence
	PersistInterval    = 20 * time.Second
	MinPersistInterval = time.Second

	// Layout
	TimeColumn     = 14 // column where every timestamp starts
	HeaderRows     = 2  // title + help line
	StartTimeRow   = 3
	ViewportOrigin = 4 // first history row
	FooterRows     = 2 // rows kept free below the viewport for the exit cursor

	// Fallbacks when the terminal size cannot be read
	DefaultTerminalHeight = 24
	MinCapacity           = 1
)

// Default file the history is mirrored to when no path is given.
const DefaultHistoryFile = ".datimer"
