package store

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/borgmon/dayplan/pkg/ics"
	xlog "github.com/borgmon/dayplan/pkg/log"
)

// Watcher notifies when event files inside a calendar directory change, so
// the view can reload edits made by other programs. Bursts of filesystem
// events are debounced into a single notification.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func()
	logger   zerolog.Logger
	done     chan struct{}
}

const watchDebounce = 250 * time.Millisecond

// WatchDir starts watching dir and invokes onChange (on the watcher
// goroutine) after event files are created, written or removed.
func WatchDir(dir string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		onChange: onChange,
		logger:   xlog.WithComponent("watcher"),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ics.Extension {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug().Str("file", filepath.Base(event.Name)).Str("op", event.Op.String()).Msg("calendar directory changed")
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
