package main

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"

	xlog "github.com/borgmon/dayplan/pkg/log"
	"github.com/borgmon/dayplan/pkg/reminder"
	"github.com/borgmon/dayplan/pkg/schedule"
	"github.com/borgmon/dayplan/pkg/store"
	"github.com/borgmon/dayplan/pkg/ui/components"
)

type Dayplan struct {
	app    fyne.App
	window fyne.Window
	config *Config
	logger zerolog.Logger

	backend  *store.LocalDir
	grid     *schedule.Grid
	machine  *schedule.Machine
	view     *components.ScheduleView
	watcher  *store.Watcher
	reminder *reminder.Reminder
}

func main() {
	xlog.Configure(xlog.Config{})

	dp := &Dayplan{
		app:    app.NewWithID("com.borgmon.dayplan"),
		logger: xlog.WithComponent("app"),
	}

	if err := dp.initialize(); err != nil {
		dp.logger.Fatal().Err(err).Msg("failed to start")
	}

	dp.run()
}

func (dp *Dayplan) initialize() error {
	dp.config = loadConfig(dp.app)

	// Sync autostart state with config on startup
	if err := setupAutostart(dp.config.AutoStart); err != nil {
		dp.logger.Warn().Err(err).Msg("failed to setup autostart")
	}

	saveConfig(dp.app, dp.config)

	backend, err := store.NewLocalDir(dp.config.CalendarDir)
	if err != nil {
		return err
	}
	dp.backend = backend

	dp.grid = &schedule.Grid{
		FirstDay:     startOfWeek(time.Now()),
		Days:         7,
		DayStart:     dp.config.DayStartHour,
		DayEnd:       dp.config.DayEndHour,
		Snap:         dp.config.SnapInterval(),
		GutterWidth:  48,
		HeaderHeight: 24,
	}
	dp.machine = schedule.NewMachine(dp.grid, dp.config.MinEventDuration())
	dp.view = components.NewScheduleView(dp.grid, dp.machine, dp.backend)

	dp.loadEvents()

	// Pick up edits made by other programs while we are running.
	dp.watcher, err = store.WatchDir(dp.backend.Dir(), func() {
		fyne.Do(dp.loadEvents)
	})
	if err != nil {
		dp.logger.Warn().Err(err).Msg("calendar directory watcher unavailable")
	}

	if dp.config.Reminders {
		dp.reminder = reminder.New(dp.app, dp.view.Events)
		dp.reminder.Start()
	}

	dp.window = dp.app.NewWindow("Dayplan")
	dp.window.SetContent(dp.view)
	dp.window.Resize(fyne.NewSize(960, 720))
	dp.window.SetOnClosed(dp.shutdown)
	dp.window.SetMaster()

	return nil
}

func (dp *Dayplan) run() {
	dp.window.ShowAndRun()
}

func (dp *Dayplan) loadEvents() {
	from := dp.grid.FirstDay
	to := from.AddDate(0, 0, dp.grid.Days)

	events, err := dp.backend.GetEvents(from, to)
	if err != nil {
		dp.logger.Warn().Err(err).Msg("failed to load events")
		return
	}

	dp.logger.Info().Int("count", len(events)).Msg("loaded events")
	dp.view.SetEvents(events)
}

func (dp *Dayplan) shutdown() {
	if dp.watcher != nil {
		_ = dp.watcher.Close()
	}
	if dp.reminder != nil {
		dp.reminder.Stop()
	}
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}
