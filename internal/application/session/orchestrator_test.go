package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-datimer/internal/core/history"
	"github.com/penwyp/go-datimer/internal/core/model"
	"github.com/penwyp/go-datimer/internal/core/stopwatch"
	"github.com/penwyp/go-datimer/internal/presentation/display"
	"github.com/penwyp/go-datimer/internal/presentation/layout"
	"github.com/penwyp/go-datimer/internal/testing/vt"
	"github.com/penwyp/go-datimer/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type chanKeys chan rune

func (k chanKeys) Keys() <-chan rune { return k }

type chanMonitor chan string

func (m chanMonitor) Events() <-chan string { return m }

type harness struct {
	orch   *Orchestrator
	clock  *fakeClock
	keys   chanKeys
	screen *vt.Screen
	sink   *history.FileSink
	path   string
}

func newHarness(t *testing.T, capacity int) *harness {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".datimer")
	sink, err := history.CreateFileSink(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	rows := 4 + capacity + 2
	screen := vt.NewScreen(rows, 60)
	wall, err := util.NewTimeProvider("UTC")
	require.NoError(t, err)

	h := &harness{
		clock:  &fakeClock{t: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)},
		keys:   make(chanKeys, 1),
		screen: screen,
		sink:   sink,
		path:   path,
	}

	h.orch, err = NewOrchestrator(&Config{
		OutputPath: path,
		Capacity:   capacity,
	}, Deps{
		Screen: display.NewTerminal(screen, layout.NewSizer(60, rows), nil),
		Keys:   h.keys,
		Sink:   sink,
		Now:    h.clock.Now,
		Wall:   wall,
	})
	require.NoError(t, err)
	return h
}

// step advances the clock by one tick, optionally delivers a key, and ticks.
func (h *harness) step(t *testing.T, key rune) bool {
	t.Helper()
	h.clock.Advance(128 * time.Millisecond)
	if key != 0 {
		h.keys <- key
	}
	quit, err := h.orch.Tick()
	require.NoError(t, err)
	return quit
}

func (h *harness) fileLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(h.path)
	require.NoError(t, err)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		_, _, err := model.ParseLine(line)
		require.NoError(t, err)
	}
	return lines
}

func bufferLines(b *history.Buffer) []string {
	var out []string
	for _, e := range b.Entries() {
		out = append(out, e.Line())
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Capacity: 3}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".datimer", cfg.OutputPath)
	assert.Equal(t, 4, cfg.Origin)
	assert.Equal(t, 128*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 20*time.Second, cfg.PersistInterval)

	assert.Error(t, (&Config{}).Validate(), "capacity is required")
	assert.Error(t, (&Config{Capacity: 1, Origin: -1}).Validate())
	for _, origin := range []int{1, 2, 3} {
		assert.Error(t, (&Config{Capacity: 1, Origin: origin}).Validate(), "origin %d overlaps the header", origin)
	}
	custom := &Config{Capacity: 1, Origin: 6}
	require.NoError(t, custom.Validate())
	assert.Equal(t, 6, custom.Origin)
	assert.Error(t, (&Config{Capacity: 1, TickInterval: -time.Second}).Validate())
	assert.Error(t, (&Config{Capacity: 1, PersistInterval: time.Millisecond}).Validate())
}

func TestNewOrchestratorValidation(t *testing.T) {
	_, err := NewOrchestrator(&Config{}, Deps{})
	assert.Error(t, err)

	_, err = NewOrchestrator(&Config{Capacity: 2}, Deps{})
	assert.Error(t, err)

	_, err = NewOrchestrator(&Config{Capacity: 2, Origin: 2}, Deps{
		Screen: display.NewTerminal(vt.NewScreen(8, 40), nil, nil),
		Keys:   make(chanKeys, 1),
		Sink:   &failingSink{},
	})
	assert.Error(t, err)
}

func TestWallClockDefaultsToGlobalProvider(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("Asia/Shanghai"))
	defer func() { require.NoError(t, util.InitializeTimeProvider("Local")) }()

	screen := vt.NewScreen(8, 40)
	start := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	orch, err := NewOrchestrator(&Config{Capacity: 2}, Deps{
		Screen: display.NewTerminal(screen, nil, nil),
		Keys:   make(chanKeys, 1),
		Sink:   &failingSink{},
		Now:    func() time.Time { return start },
	})
	require.NoError(t, err)
	require.NoError(t, orch.Start())

	assert.Equal(t, "Start time:   10:00:00", screen.Line(3))
}

func TestTickBeforeStart(t *testing.T) {
	h := newHarness(t, 5)
	_, err := h.orch.Tick()
	assert.Error(t, err)
}

func TestStartDrawsHeader(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.orch.Start())

	assert.Equal(t, "DATIMER", h.screen.Line(0))
	assert.Equal(t, "Start time:   10:00:00", h.screen.Line(3))
	assert.False(t, h.screen.CursorVisible)
	assert.Equal(t, stopwatch.Running, h.orch.Stopwatch().State())
}

func TestTickingAloneKeepsHistoryEmpty(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.orch.Start())

	for i := 0; i < 5; i++ {
		assert.False(t, h.step(t, 0))
	}

	assert.Equal(t, 0, h.orch.History().Len())
	assert.Equal(t, "Elapsed:      00:00:00", h.screen.Line(4))
	assert.True(t, h.screen.CellAt(14, 4).Bold)

	for i := 0; i < 10; i++ {
		h.step(t, 0)
	}
	assert.Equal(t, "Elapsed:      00:00:01", h.screen.Line(4))
	assert.Equal(t, 0, h.orch.History().Len())
	assert.Equal(t, "", h.screen.Line(5))
	assert.Nil(t, h.fileLines(t))
}

func TestPauseAppendsTwoEntries(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.orch.Start())

	for i := 0; i < 39; i++ {
		h.step(t, 0)
	}
	// 40 * 128ms = 5.12s
	h.step(t, 'p')

	assert.Equal(t, stopwatch.Paused, h.orch.Stopwatch().State())
	assert.Equal(t, 5120*time.Millisecond, h.orch.Stopwatch().Total())
	require.Equal(t, 2, h.orch.History().Len())
	assert.Equal(t, []string{"Paused at: 10:00:05", "Elapsed: 00:00:05"}, bufferLines(h.orch.History()))

	assert.Equal(t, "Paused at:    10:00:05", h.screen.Line(4))
	assert.Equal(t, vt.ColorRed, h.screen.CellAt(0, 4).Color)
	assert.Equal(t, "Elapsed:      00:00:05", h.screen.Line(5))
	assert.True(t, h.screen.CellAt(14, 5).Italic)

	assert.Equal(t, bufferLines(h.orch.History()), h.fileLines(t))
}

func TestPausedStateDoesNotTick(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.orch.Start())
	h.step(t, 'p')

	for i := 0; i < 50; i++ {
		h.step(t, 0)
	}
	assert.Equal(t, 2, h.orch.History().Len())
	assert.Equal(t, h.orch.Stopwatch().Total(), h.orch.Stopwatch().Elapsed())
	assert.Equal(t, "Elapsed:      00:00:00", h.screen.Line(5))
	assert.Equal(t, "", h.screen.Line(6))
}

func TestPauseResumeTracksActiveTime(t *testing.T) {
	h := newHarness(t, 10)
	require.NoError(t, h.orch.Start())

	h.step(t, 'p') // paused after 128ms
	for i := 0; i < 20; i++ {
		h.step(t, 0)
	}
	h.step(t, ' ') // resumed, total unchanged

	sw := h.orch.Stopwatch()
	assert.Equal(t, stopwatch.Running, sw.State())
	assert.Equal(t, 128*time.Millisecond, sw.Total())
	assert.Equal(t, []string{
		"Paused at: 10:00:00",
		"Elapsed: 00:00:00",
		"Resumed at: 10:00:02",
		"Elapsed: 00:00:00",
	}, bufferLines(h.orch.History()))
	assert.Equal(t, vt.ColorGreen, h.screen.CellAt(0, 6).Color)
	assert.True(t, h.screen.CellAt(14, 7).Bold)

	// Ticking now replaces the bold snapshot, not the history above it.
	for i := 0; i < 15; i++ {
		h.step(t, 0)
	}
	assert.Equal(t, 4, h.orch.History().Len())
	assert.Equal(t, "Elapsed:      00:00:02", h.screen.Line(7))
	assert.Equal(t, "Elapsed: 00:00:02", h.orch.History().Entries()[3].Line())

	// Pause again: the committed total is the active time only.
	h.step(t, 'p')
	assert.Equal(t, 128*time.Millisecond+16*128*time.Millisecond, sw.Total())
	assert.Equal(t, 6, h.orch.History().Len())
}

func TestSecondToggleMeasuresWallTimeBetweenPresses(t *testing.T) {
	h := newHarness(t, 10)
	require.NoError(t, h.orch.Start())

	h.step(t, 'p')
	h.step(t, 'p')
	before := h.orch.Stopwatch().Total()

	for i := 0; i < 30; i++ {
		h.step(t, 0)
	}
	h.step(t, 'p')

	between := 31 * 128 * time.Millisecond
	assert.Equal(t, before+between, h.orch.Stopwatch().Total())
}

func TestUnrecognizedKeysAreIgnored(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.orch.Start())

	for _, key := range []rune{'x', 'P', 'Q', '\r', 'é'} {
		assert.False(t, h.step(t, key))
	}
	assert.Equal(t, 0, h.orch.History().Len())
	assert.Equal(t, stopwatch.Running, h.orch.Stopwatch().State())
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []rune{'q', 3} {
		t.Run(fmt.Sprintf("key_%d", key), func(t *testing.T) {
			h := newHarness(t, 5)
			require.NoError(t, h.orch.Start())
			assert.True(t, h.step(t, key))
		})
	}
}

func TestOverflowEvictsOldestAndRedraws(t *testing.T) {
	const capacity = 4
	h := newHarness(t, capacity)
	require.NoError(t, h.orch.Start())

	// Two toggles fill the viewport.
	h.step(t, 'p')
	h.step(t, 'p')
	require.Equal(t, capacity, h.orch.History().Len())
	require.Zero(t, h.orch.History().Redraws())
	first := bufferLines(h.orch.History())

	for i := 0; i < 8; i++ {
		h.step(t, 0)
	}
	h.step(t, 'p')

	assert.Equal(t, capacity, h.orch.History().Len())
	assert.Equal(t, 2, h.orch.History().Redraws(), "one redraw per appended row")
	got := bufferLines(h.orch.History())
	assert.Equal(t, first[2], got[0], "the two oldest rows were evicted")
	assert.Equal(t, "Paused at: 10:00:01", got[2])
	assert.Equal(t, "Elapsed: 00:00:01", got[3])

	// Screen shows exactly the window, file mirrors it.
	screenLines := h.screen.Lines(4, 4+capacity-1)
	for i, line := range got {
		label, clock, err := model.ParseLine(line)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(screenLines[i], label), "row %d: %q", i, screenLines[i])
		assert.True(t, strings.HasSuffix(screenLines[i], clock.String()), "row %d: %q", i, screenLines[i])
	}
	assert.Equal(t, got, h.fileLines(t))
}

func TestPeriodicPersistenceWhileRunning(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.orch.Start())
	h.step(t, 'p')
	h.step(t, 'p')
	persisted := h.orch.History().Persists()

	// Just under 20s of ticks: nothing new on disk.
	for i := 0; i < 155; i++ {
		h.step(t, 0)
	}
	assert.Equal(t, persisted, h.orch.History().Persists())

	for i := 0; i < 2; i++ {
		h.step(t, 0)
	}
	assert.Equal(t, persisted+1, h.orch.History().Persists())
	assert.Equal(t, bufferLines(h.orch.History()), h.fileLines(t))
	assert.Equal(t, "Elapsed: 00:00:20", h.fileLines(t)[3])
}

func TestSinkRecreatedAfterRemoval(t *testing.T) {
	h := newHarness(t, 5)
	monitor := make(chanMonitor, 1)
	h.orch.watcher = monitor
	require.NoError(t, h.orch.Start())
	h.step(t, 'p')

	require.NoError(t, os.Remove(h.path))
	monitor <- "REMOVE"
	h.step(t, 0)

	assert.Equal(t, bufferLines(h.orch.History()), h.fileLines(t))
}

type failingSink struct{ err error }

func (s *failingSink) Rewrite([]model.Entry) error { return s.err }

func TestRunQuitRestoresTerminal(t *testing.T) {
	h := newHarness(t, 5)
	h.orch.config.TickInterval = time.Millisecond
	h.keys <- 'q'

	require.NoError(t, h.orch.Run(context.Background()))

	assert.True(t, h.screen.CursorVisible)
	x, y := h.screen.Cursor()
	assert.Equal(t, 0, x)
	assert.Equal(t, 6, y, "two rows below the live elapsed row")
	assert.Equal(t, "Elapsed:      00:00:00", h.screen.Line(4))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h := newHarness(t, 5)
	h.orch.config.TickInterval = time.Millisecond
	h.keys <- 'p'

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.orch.Run(ctx))
	assert.True(t, h.screen.CursorVisible)
	assert.Equal(t, bufferLines(h.orch.History()), h.fileLines(t))
	_, y := h.screen.Cursor()
	assert.Equal(t, 4+1+2, y)
}

func TestRunAbortsOnPersistenceFailure(t *testing.T) {
	screen := vt.NewScreen(12, 40)
	keys := make(chanKeys, 1)
	keys <- 'p'

	orch, err := NewOrchestrator(&Config{Capacity: 5, TickInterval: time.Millisecond}, Deps{
		Screen: display.NewTerminal(screen, nil, nil),
		Keys:   keys,
		Sink:   &failingSink{err: errors.New("read-only file system")},
	})
	require.NoError(t, err)

	err = orch.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.True(t, screen.CursorVisible, "terminal restored on failure")
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("terminal gone") }

func TestRunAbortsOnRenderFailure(t *testing.T) {
	orch, err := NewOrchestrator(&Config{Capacity: 5}, Deps{
		Screen: display.NewTerminal(brokenWriter{}, nil, nil),
		Keys:   make(chanKeys, 1),
		Sink:   &failingSink{},
	})
	require.NoError(t, err)

	err = orch.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRender)
	assert.NoError(t, orch.Restore(), "restore runs once")
}
