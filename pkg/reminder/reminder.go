// Package reminder fires desktop notifications when events begin.
package reminder

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/rs/zerolog"

	"github.com/borgmon/dayplan/pkg/audio"
	xlog "github.com/borgmon/dayplan/pkg/log"
	"github.com/borgmon/dayplan/pkg/models"
)

// Source supplies the current authoritative event list.
type Source func() []models.Event

// Reminder checks once a minute for events starting now and raises a
// notification plus an audible chime for each. Every event fires at most
// once per app run.
type Reminder struct {
	app    fyne.App
	source Source
	logger zerolog.Logger
	ticker *time.Ticker

	mu    sync.Mutex
	fired map[string]bool
}

// New creates a reminder over the given event source.
func New(app fyne.App, source Source) *Reminder {
	return &Reminder{
		app:    app,
		source: source,
		logger: xlog.WithComponent("reminder"),
		fired:  make(map[string]bool),
	}
}

// Start begins the minute ticker.
func (r *Reminder) Start() {
	r.ticker = time.NewTicker(1 * time.Minute)
	go func() {
		for range r.ticker.C {
			r.check(time.Now())
		}
	}()
}

// Stop halts the ticker.
func (r *Reminder) Stop() {
	if r.ticker != nil {
		r.ticker.Stop()
	}
}

func (r *Reminder) check(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, event := range r.source() {
		if r.fired[event.ID] {
			continue
		}
		// Fire within the minute the event starts.
		if event.Start.After(now) || now.Sub(event.Start) >= time.Minute {
			continue
		}

		r.fired[event.ID] = true
		r.logger.Info().Str("id", event.ID).Str("title", event.Title).Msg("event starting")

		r.app.SendNotification(fyne.NewNotification(event.Title, "Starting now"))
		audio.PlayChime()
	}
}
