package history

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-datimer/internal/util"
)

// SinkWatcher reports when the history file is removed or renamed by someone
// else, so the sink can be recreated.
type SinkWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan string
	done    chan struct{}
}

// NewSinkWatcher watches the directory containing path.
func NewSinkWatcher(path string) (*SinkWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	sw := &SinkWatcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan string, 1),
		done:    make(chan struct{}),
	}
	go sw.processEvents()
	return sw, nil
}

func (sw *SinkWatcher) processEvents() {
	defer close(sw.done)
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			util.LogWarnf("History file %s: %s", sw.path, event.Op)
			// Coalesce: one pending notification is enough.
			select {
			case sw.events <- event.Op.String():
			default:
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("History file watch error: " + err.Error())
		}
	}
}

// Events yields the operation name each time the file disappears.
func (sw *SinkWatcher) Events() <-chan string {
	return sw.events
}

// Close stops watching.
func (sw *SinkWatcher) Close() error {
	err := sw.watcher.Close()
	<-sw.done
	return err
}
