package model

import (
	"fmt"
	"strings"
	"time"
)

// History labels
const (
	LabelElapsed   = "Elapsed:"
	LabelPaused    = "Paused at:"
	LabelResumed   = "Resumed at:"
	LabelStartTime = "Start time:"
)

// Color is the foreground color of a rendered entry.
type Color int

const (
	ColorReset Color = iota
	ColorCyan
	ColorGreen
	ColorRed
)

func (c Color) String() string {
	switch c {
	case ColorCyan:
		return "cyan"
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	default:
		return "reset"
	}
}

// Style is purely cosmetic and carries no timer state.
type Style struct {
	Color  Color
	Bold   bool
	Italic bool
}

// Clock is an hours/minutes/seconds triple. Hours are not wrapped to 24
// when the clock holds a duration.
type Clock struct {
	Hours   int
	Minutes int
	Seconds int
}

// ClockFromDuration truncates d to whole seconds.
func ClockFromDuration(d time.Duration) Clock {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return Clock{
		Hours:   secs / 3600,
		Minutes: (secs % 3600) / 60,
		Seconds: secs % 60,
	}
}

// ClockFromTime returns the time of day of t in its own location.
func ClockFromTime(t time.Time) Clock {
	return Clock{Hours: t.Hour(), Minutes: t.Minute(), Seconds: t.Second()}
}

// String formats the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}

// ParseClock parses HH:MM:SS, accepting more than two hour digits.
func ParseClock(s string) (Clock, error) {
	var c Clock
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return c, fmt.Errorf("invalid clock %q: want HH:MM:SS", s)
	}
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &c.Hours, &c.Minutes, &c.Seconds); err != nil {
		return c, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if c.Hours < 0 || c.Minutes < 0 || c.Minutes > 59 || c.Seconds < 0 || c.Seconds > 59 {
		return c, fmt.Errorf("invalid clock %q: field out of range", s)
	}
	return c, nil
}

// Entry is one row of the history. It is immutable once built.
type Entry struct {
	label string
	clock Clock
	style Style
}

// NewEntry builds an entry.
func NewEntry(label string, clock Clock, style Style) Entry {
	return Entry{label: label, clock: clock, style: style}
}

func (e Entry) Label() string { return e.label }
func (e Entry) Clock() Clock  { return e.clock }
func (e Entry) Style() Style  { return e.style }

// Line is the persisted form: "<label> <HH:MM:SS>".
func (e Entry) Line() string {
	return e.label + " " + e.clock.String()
}

// ParseLine splits a persisted line back into label and clock. Styles are
// not persisted.
func ParseLine(line string) (string, Clock, error) {
	line = strings.TrimRight(line, "\r\n")
	idx := strings.LastIndexByte(line, ' ')
	if idx <= 0 {
		return "", Clock{}, fmt.Errorf("invalid history line %q", line)
	}
	clock, err := ParseClock(line[idx+1:])
	if err != nil {
		return "", Clock{}, err
	}
	return line[:idx], clock, nil
}
