package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-datimer/internal/core/history"
	"github.com/penwyp/go-datimer/internal/core/model"
	"github.com/penwyp/go-datimer/internal/core/stopwatch"
	"github.com/penwyp/go-datimer/internal/presentation/interaction"
	"github.com/penwyp/go-datimer/internal/util"
)

// Deps are the collaborators of an Orchestrator
type Deps struct {
	Screen  Screen
	Keys    KeySource
	Sink    history.Sink
	Watcher SinkMonitor // optional

	// Now is the monotonic clock; time.Now when nil
	Now func() time.Time
	// Wall converts instants for display; the global provider when nil
	Wall *util.TimeProvider
}

// Orchestrator runs the tick loop. It owns the stopwatch, the history buffer
// and the screen; nothing else touches them.
type Orchestrator struct {
	config  *Config
	screen  Screen
	keys    KeySource
	sink    history.Sink
	watcher SinkMonitor
	now     func() time.Time
	wall    *util.TimeProvider

	watch   *stopwatch.Stopwatch
	history *history.Buffer

	started  bool
	restored bool
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *Config, deps Deps) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Screen == nil || deps.Keys == nil || deps.Sink == nil {
		return nil, errors.New("orchestrator needs a screen, a key source and a sink")
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	wall := deps.Wall
	if wall == nil {
		wall = util.GetTimeProvider()
	}

	buf, err := history.NewBuffer(deps.Screen, deps.Sink, history.Options{
		Capacity:        config.Capacity,
		Origin:          config.Origin,
		PersistInterval: config.PersistInterval,
		Now:             now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create history buffer: %w", err)
	}

	return &Orchestrator{
		config:  config,
		screen:  deps.Screen,
		keys:    deps.Keys,
		sink:    deps.Sink,
		watcher: deps.Watcher,
		now:     now,
		wall:    wall,
		history: buf,
	}, nil
}

// History exposes the buffer for inspection
func (o *Orchestrator) History() *history.Buffer { return o.history }

// Stopwatch exposes the timer state for inspection
func (o *Orchestrator) Stopwatch() *stopwatch.Stopwatch { return o.watch }

// Start clears the screen, draws the header and starts the stopwatch
func (o *Orchestrator) Start() error {
	if err := o.screen.Prepare(); err != nil {
		return fmt.Errorf("%w: prepare screen: %v", model.ErrRender, err)
	}

	o.watch = stopwatch.New(o.now)
	start := o.now()
	if err := o.screen.DrawHeader(o.wall.In(start)); err != nil {
		return fmt.Errorf("%w: header: %v", model.ErrRender, err)
	}
	o.started = true

	util.LogInfo("Stopwatch started",
		util.F("at", o.wall.Format(start, time.RFC3339)),
		util.F("output", o.config.OutputPath),
		util.F("capacity", o.config.Capacity),
		util.F("tick", o.config.TickInterval.String()))
	return nil
}

// Tick runs one loop iteration and reports whether the session should end
func (o *Orchestrator) Tick() (bool, error) {
	if !o.started {
		return false, errors.New("tick before start")
	}

	if o.watch.Running() {
		live := model.NewEntry(model.LabelElapsed, model.ClockFromDuration(o.watch.Elapsed()), model.Style{Bold: true})
		if err := o.history.Replace(live); err != nil {
			return false, err
		}
	}

	if err := o.checkSink(); err != nil {
		return false, err
	}

	var key rune
	select {
	case key = <-o.keys.Keys():
	default:
		return false, nil
	}

	switch {
	case interaction.IsQuit(key):
		util.LogInfo("Quit requested")
		return true, nil
	case interaction.IsToggle(key):
		return false, o.toggle()
	default:
		util.LogDebugf("Ignoring key %q", key)
		return false, nil
	}
}

// toggle flips the stopwatch and appends the event row plus an elapsed
// snapshot.
func (o *Orchestrator) toggle() error {
	tr := o.watch.Toggle()
	at := model.ClockFromTime(o.wall.In(tr.At))
	total := model.ClockFromDuration(tr.Total)

	var event, snapshot model.Entry
	if tr.To == stopwatch.Paused {
		event = model.NewEntry(model.LabelPaused, at, model.Style{Color: model.ColorRed})
		snapshot = model.NewEntry(model.LabelElapsed, total, model.Style{Italic: true})
	} else {
		event = model.NewEntry(model.LabelResumed, at, model.Style{Color: model.ColorGreen})
		snapshot = model.NewEntry(model.LabelElapsed, total, model.Style{Bold: true})
	}

	if err := o.history.Append(event); err != nil {
		return err
	}
	if err := o.history.Append(snapshot); err != nil {
		return err
	}

	util.LogInfo("Stopwatch toggled",
		util.F("state", tr.To.String()),
		util.F("at", at.String()),
		util.F("total", total.String()))
	return nil
}

// checkSink recreates the history file if the watcher saw it disappear.
func (o *Orchestrator) checkSink() error {
	if o.watcher == nil {
		return nil
	}
	select {
	case op := <-o.watcher.Events():
		reopener, ok := o.sink.(Reopener)
		if !ok {
			return nil
		}
		util.LogWarnf("History file %s (%s), recreating it", o.config.OutputPath, op)
		if err := reopener.Reopen(); err != nil {
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		return o.history.Persist()
	default:
		return nil
	}
}

// Run starts the session and ticks until quit, context cancellation or an
// error. The terminal is restored in every case.
func (o *Orchestrator) Run(ctx context.Context) (err error) {
	defer func() {
		if rerr := o.Restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := o.Start(); err != nil {
		return err
	}

	ticker := time.NewTicker(o.config.TickInterval)
	defer ticker.Stop()

	for {
		quit, err := o.Tick()
		if err != nil {
			util.LogErrorf("Session aborted: %v", err)
			return err
		}
		if quit {
			return o.history.Persist()
		}

		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down on signal")
			return o.history.Persist()
		case <-ticker.C:
		}
	}
}

// Restore resets colors, shows the cursor and parks it two rows below the
// last history row. Safe to call more than once.
func (o *Orchestrator) Restore() error {
	if o.restored {
		return nil
	}
	o.restored = true
	if err := o.screen.Restore(o.history.LastRow() + 2); err != nil {
		return fmt.Errorf("%w: restore terminal: %v", model.ErrRender, err)
	}
	return nil
}
