package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/borgmon/dayplan/pkg/ics"
	xlog "github.com/borgmon/dayplan/pkg/log"
	"github.com/borgmon/dayplan/pkg/models"
)

// LocalDir stores one event per .ics file inside a directory. Files are
// named after the event identity, so direct lookups are single stats while
// range queries scan and decode every record.
type LocalDir struct {
	dir    string
	logger zerolog.Logger
}

var _ Backend = (*LocalDir)(nil)

// NewLocalDir opens (creating if necessary) a directory-backed store.
func NewLocalDir(dir string) (*LocalDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create calendar directory: %w", err)
	}
	return &LocalDir{
		dir:    dir,
		logger: xlog.WithComponent("store"),
	}, nil
}

// Dir returns the directory backing the store.
func (s *LocalDir) Dir() string {
	return s.dir
}

func (s *LocalDir) eventPath(id string) string {
	return filepath.Join(s.dir, id+ics.Extension)
}

func (s *LocalDir) GetEvent(id string) (models.Event, bool) {
	f, err := os.Open(s.eventPath(id))
	if err != nil {
		return models.Event{}, false
	}
	defer f.Close()

	event, err := ics.Decode(f)
	if err != nil {
		// The contract reports decode failures the same as not-found.
		s.logger.Warn().Err(err).Str("id", id).Msg("failed to decode event file")
		return models.Event{}, false
	}
	return event, true
}

func (s *LocalDir) GetEvents(from, to time.Time) ([]models.Event, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar directory: %w", err)
	}

	events := []models.Event{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) != ics.Extension {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		event, err := s.parseEventFile(path)
		if err != nil {
			// A corrupt record must not abort the scan.
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable event file")
			continue
		}

		if event.Overlaps(from, to) {
			events = append(events, event)
		}
	}

	return events, nil
}

func (s *LocalDir) parseEventFile(path string) (models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Event{}, err
	}
	defer f.Close()
	return ics.Decode(f)
}

func (s *LocalDir) CreateEvent(event models.Event) error {
	return s.writeEvent(event)
}

func (s *LocalDir) UpdateEvent(event models.Event) error {
	if _, err := os.Stat(s.eventPath(event.ID)); os.IsNotExist(err) {
		s.logger.Warn().Str("id", event.ID).Msg("updating event with no stored record, creating it")
	}
	return s.writeEvent(event)
}

func (s *LocalDir) DeleteEvent(id string) error {
	path := s.eventPath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Idempotent delete.
		s.logger.Debug().Str("id", id).Msg("delete of unknown event, nothing to do")
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

// writeEvent serializes the event and atomically replaces its file, so a
// crash mid-write never leaves a torn record behind.
func (s *LocalDir) writeEvent(event models.Event) error {
	var buf bytes.Buffer
	if err := ics.Encode(&buf, event); err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.ID, err)
	}

	pending, err := renameio.NewPendingFile(s.eventPath(event.ID))
	if err != nil {
		return fmt.Errorf("failed to create pending event file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending event file")
		}
	}()

	if _, err := pending.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write event %s: %w", event.ID, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace event file %s: %w", event.ID, err)
	}
	return nil
}
