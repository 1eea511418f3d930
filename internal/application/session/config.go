package session

import (
	"fmt"
	"time"

	"github.com/penwyp/go-datimer/internal/core/constants"
)

// Config contains configuration for a stopwatch session
type Config struct {
	// History file
	OutputPath  string
	WatchOutput bool // recreate the file if it disappears

	// Display settings. Origin is the first viewport row; it must lie below
	// the start time row, and 0 selects the default.
	Origin   int
	Capacity int // viewport rows, from the terminal height

	// Cadence
	TickInterval    time.Duration
	PersistInterval time.Duration
}

// Validate fills defaults and rejects invalid values
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		c.OutputPath = constants.DefaultHistoryFile
	}
	if c.Origin == 0 {
		c.Origin = constants.ViewportOrigin
	}
	if c.TickInterval == 0 {
		c.TickInterval = constants.TickInterval
	}
	if c.PersistInterval == 0 {
		c.PersistInterval = constants.PersistInterval
	}

	if c.Origin <= constants.StartTimeRow {
		return fmt.Errorf("viewport origin %d overlaps the header, must be at least %d", c.Origin, constants.StartTimeRow+1)
	}
	if c.Capacity < constants.MinCapacity {
		return fmt.Errorf("viewport capacity must be at least %d, got %d", constants.MinCapacity, c.Capacity)
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.PersistInterval < constants.MinPersistInterval {
		return fmt.Errorf("persist interval must be at least %s, got %s", constants.MinPersistInterval, c.PersistInterval)
	}
	return nil
}
