// Package history holds the bounded list of timestamped rows shown under the
// stopwatch and mirrors it to a file.
package history

import (
	"fmt"
	"time"

	"github.com/penwyp/go-datimer/internal/core/constants"
	"github.com/penwyp/go-datimer/internal/core/model"
	"github.com/penwyp/go-datimer/internal/util"
)

// Renderer draws entries at absolute viewport rows.
type Renderer interface {
	RenderEntry(entry model.Entry, row int) error
	ClearRows(from, to int) error
}

// Sink receives the full buffer content on every persistence.
type Sink interface {
	Rewrite(entries []model.Entry) error
}

// Options configures a Buffer.
type Options struct {
	Capacity        int
	Origin          int
	PersistInterval time.Duration
	Now             func() time.Time
}

// Buffer is an order-preserving, bounded list of entries, oldest first.
//
// Replace overwrites the last row and never changes the length. Append adds a
// row and evicts the oldest one when the buffer is full, which triggers a full
// redraw of the viewport.
type Buffer struct {
	entries  []model.Entry
	capacity int
	origin   int

	renderer Renderer
	sink     Sink

	persistInterval time.Duration
	now             func() time.Time
	lastPersist     time.Time

	redraws  int
	persists int
}

// NewBuffer creates an empty buffer bound to renderer and sink.
func NewBuffer(renderer Renderer, sink Sink, opts Options) (*Buffer, error) {
	if renderer == nil || sink == nil {
		return nil, fmt.Errorf("history buffer needs a renderer and a sink")
	}
	if opts.Capacity < constants.MinCapacity {
		return nil, fmt.Errorf("invalid history capacity %d", opts.Capacity)
	}
	if opts.Origin < 0 {
		return nil, fmt.Errorf("invalid viewport origin %d", opts.Origin)
	}
	if opts.PersistInterval <= 0 {
		opts.PersistInterval = constants.PersistInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Buffer{
		entries:         make([]model.Entry, 0, opts.Capacity),
		capacity:        opts.Capacity,
		origin:          opts.Origin,
		renderer:        renderer,
		sink:            sink,
		persistInterval: opts.PersistInterval,
		now:             opts.Now,
		lastPersist:     opts.Now(),
	}, nil
}

// Len returns the number of stored entries.
func (b *Buffer) Len() int { return len(b.entries) }

// Capacity returns the maximum number of stored entries.
func (b *Buffer) Capacity() int { return b.capacity }

// Origin returns the first viewport row.
func (b *Buffer) Origin() int { return b.origin }

// Redraws counts full viewport redraws caused by eviction.
func (b *Buffer) Redraws() int { return b.redraws }

// Persists counts successful rewrites of the sink.
func (b *Buffer) Persists() int { return b.persists }

// Entries returns a copy of the stored entries, oldest first.
func (b *Buffer) Entries() []model.Entry {
	out := make([]model.Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// LastRow is the row most recently drawn by Replace or Append.
func (b *Buffer) LastRow() int {
	if len(b.entries) == 0 {
		return b.origin
	}
	return b.origin + len(b.entries) - 1
}

// Replace overwrites the last row. On an empty buffer the entry is drawn at
// the first viewport row but not stored.
func (b *Buffer) Replace(entry model.Entry) error {
	if n := len(b.entries); n > 0 {
		b.entries[n-1] = entry
	}
	if err := b.render(entry, b.LastRow()); err != nil {
		return err
	}

	if b.now().Sub(b.lastPersist) >= b.persistInterval {
		return b.Persist()
	}
	return nil
}

// Append stores entry as the newest row and persists the buffer.
func (b *Buffer) Append(entry model.Entry) error {
	if len(b.entries) < b.capacity {
		b.entries = append(b.entries, entry)
		if err := b.render(entry, b.LastRow()); err != nil {
			return err
		}
		return b.Persist()
	}

	copy(b.entries, b.entries[1:])
	b.entries[len(b.entries)-1] = entry
	if err := b.redraw(); err != nil {
		return err
	}
	return b.Persist()
}

// Persist rewrites the sink with the current entries.
func (b *Buffer) Persist() error {
	if err := b.sink.Rewrite(b.entries); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	b.lastPersist = b.now()
	b.persists++
	util.LogDebugf("Persisted %d history entries", len(b.entries))
	return nil
}

// redraw clears the whole viewport and draws every entry top to bottom.
func (b *Buffer) redraw() error {
	if err := b.renderer.ClearRows(b.origin, b.origin+b.capacity-1); err != nil {
		return fmt.Errorf("%w: clear viewport: %v", model.ErrRender, err)
	}
	for i, entry := range b.entries {
		if err := b.render(entry, b.origin+i); err != nil {
			return err
		}
	}
	b.redraws++
	return nil
}

func (b *Buffer) render(entry model.Entry, row int) error {
	if err := b.renderer.RenderEntry(entry, row); err != nil {
		return fmt.Errorf("%w: row %d: %v", model.ErrRender, row, err)
	}
	return nil
}
