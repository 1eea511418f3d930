package history

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/penwyp/go-datimer/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readHistoryFile parses a persisted history back into label/clock pairs.
func readHistoryFile(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		label, clock, err := model.ParseLine(scanner.Text())
		require.NoError(t, err)
		lines = append(lines, label+" "+clock.String())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestCreateFileSinkTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(path, []byte("stale content\n"), 0644))

	sink, err := CreateFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, path, sink.Path())
}

func TestCreateFileSinkFailsForMissingDir(t *testing.T) {
	_, err := CreateFileSink(filepath.Join(t.TempDir(), "missing", "history"))
	assert.Error(t, err)
}

func TestFileSinkRewriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	sink, err := CreateFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	long := []model.Entry{
		entry(model.LabelPaused, 5),
		entry(model.LabelElapsed, 5),
		entry(model.LabelResumed, 65),
	}
	require.NoError(t, sink.Rewrite(long))
	assert.Equal(t, []string{"Paused at: 00:00:05", "Elapsed: 00:00:05", "Resumed at: 00:01:05"}, readHistoryFile(t, path))

	short := []model.Entry{entry(model.LabelElapsed, 30*3600)}
	require.NoError(t, sink.Rewrite(short))
	assert.Equal(t, []string{"Elapsed: 30:00:00"}, readHistoryFile(t, path))

	require.NoError(t, sink.Rewrite(nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileSinkMirrorsBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	sink, err := CreateFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	clock := &fakeClock{t: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	buf, err := NewBuffer(newRecordingRenderer(), sink, Options{Capacity: 3, Origin: 4, Now: clock.Now})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		require.NoError(t, buf.Append(entry(model.LabelPaused, i)))
		assert.Equal(t, linesOf(buf.Entries()), readHistoryFile(t, path), "after append %d", i)
	}
}

func TestFileSinkReopenAfterRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	sink, err := CreateFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, os.Remove(path))
	require.NoError(t, sink.Reopen())
	require.NoError(t, sink.Rewrite([]model.Entry{entry(model.LabelPaused, 1)}))

	assert.Equal(t, []string{"Paused at: 00:00:01"}, readHistoryFile(t, path))
}

func TestFileSinkClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	sink, err := CreateFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	assert.Error(t, sink.Rewrite(nil))
}
