// Package stopwatch tracks running and paused intervals of a single timer.
package stopwatch

import "time"

// State of the stopwatch.
type State int

const (
	Running State = iota
	Paused
)

func (s State) String() string {
	if s == Paused {
		return "paused"
	}
	return "running"
}

// Transition describes the outcome of a toggle.
type Transition struct {
	From  State
	To    State
	Total time.Duration // committed total after the toggle
	At    time.Time     // instant the toggle happened
}

// Stopwatch accumulates elapsed time across pause/resume cycles.
//
// total only grows, and only when leaving Running. anchor marks the start of
// the current Running interval and is meaningless while Paused.
type Stopwatch struct {
	now    func() time.Time
	total  time.Duration
	anchor time.Time
	state  State
}

// New starts a stopwatch in the Running state. now must return instants with
// a monotonic reading (time.Now does).
func New(now func() time.Time) *Stopwatch {
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{
		now:    now,
		anchor: now(),
		state:  Running,
	}
}

// State returns the current state.
func (s *Stopwatch) State() State { return s.state }

// Running reports whether the current interval is still open.
func (s *Stopwatch) Running() bool { return s.state == Running }

// Total returns the committed duration, excluding the open interval.
func (s *Stopwatch) Total() time.Duration { return s.total }

// Elapsed returns the displayed duration.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.state == Paused {
		return s.total
	}
	return s.total + s.sinceAnchor(s.now())
}

// Toggle switches between Running and Paused.
func (s *Stopwatch) Toggle() Transition {
	at := s.now()
	tr := Transition{From: s.state, At: at}

	switch s.state {
	case Running:
		s.total += s.sinceAnchor(at)
		s.state = Paused
	case Paused:
		s.anchor = at
		s.state = Running
	}

	tr.To = s.state
	tr.Total = s.total
	return tr
}

func (s *Stopwatch) sinceAnchor(at time.Time) time.Duration {
	d := at.Sub(s.anchor)
	if d < 0 {
		return 0
	}
	return d
}
