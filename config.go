package main

import (
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
)

type Config struct {
	CalendarDir        string `json:"calendar_dir"`
	DayStartHour       int    `json:"day_start_hour"`
	DayEndHour         int    `json:"day_end_hour"`
	SnapMinutes        int    `json:"snap_minutes"`
	MinDurationMinutes int    `json:"min_duration_minutes"`
	AutoStart          bool   `json:"auto_start"`
	Reminders          bool   `json:"reminders"`
}

func loadConfig(app fyne.App) *Config {
	prefs := app.Preferences()

	config := &Config{
		CalendarDir:        prefs.StringWithFallback("calendar_dir", defaultCalendarDir()),
		DayStartHour:       prefs.IntWithFallback("day_start_hour", 0),
		DayEndHour:         prefs.IntWithFallback("day_end_hour", 24),
		SnapMinutes:        prefs.IntWithFallback("snap_minutes", 15),
		MinDurationMinutes: prefs.IntWithFallback("min_duration_minutes", 30),
		AutoStart:          prefs.BoolWithFallback("auto_start", false),
		Reminders:          prefs.BoolWithFallback("reminders", true),
	}

	// An empty or inverted time axis cannot be rendered; fall back to the
	// full day.
	if config.DayStartHour < 0 || config.DayEndHour > 24 || config.DayEndHour <= config.DayStartHour {
		config.DayStartHour = 0
		config.DayEndHour = 24
	}

	return config
}

func saveConfig(app fyne.App, config *Config) {
	prefs := app.Preferences()

	prefs.SetString("calendar_dir", config.CalendarDir)
	prefs.SetInt("day_start_hour", config.DayStartHour)
	prefs.SetInt("day_end_hour", config.DayEndHour)
	prefs.SetInt("snap_minutes", config.SnapMinutes)
	prefs.SetInt("min_duration_minutes", config.MinDurationMinutes)
	prefs.SetBool("auto_start", config.AutoStart)
	prefs.SetBool("reminders", config.Reminders)
}

func (c *Config) MinEventDuration() time.Duration {
	return time.Duration(c.MinDurationMinutes) * time.Minute
}

func (c *Config) SnapInterval() time.Duration {
	return time.Duration(c.SnapMinutes) * time.Minute
}

func defaultCalendarDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "dayplan", "calendar")
}
