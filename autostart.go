package main

import (
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"

	xlog "github.com/borgmon/dayplan/pkg/log"
)

func setupAutostart(enable bool) error {
	logger := xlog.WithComponent("autostart")

	// Get the executable path
	execPath, err := os.Executable()
	if err != nil {
		return err
	}

	// Resolve symlinks if any
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	app := &autostart.App{
		Name:        "dayplan",
		DisplayName: "Dayplan",
		Exec:        []string{execPath},
	}

	if enable {
		if !app.IsEnabled() {
			if err := app.Enable(); err != nil {
				logger.Warn().Err(err).Msg("failed to enable autostart")
				return err
			}
			logger.Info().Msg("autostart enabled")
		}
	} else {
		if app.IsEnabled() {
			if err := app.Disable(); err != nil {
				logger.Warn().Err(err).Msg("failed to disable autostart")
				return err
			}
			logger.Info().Msg("autostart disabled")
		}
	}

	return nil
}
