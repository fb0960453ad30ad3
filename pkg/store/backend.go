// Package store provides persistence backends for calendar events.
package store

import (
	"time"

	"github.com/borgmon/dayplan/pkg/models"
)

// Backend is the capability set shared by all event stores.
type Backend interface {
	// GetEvent fetches a single event by identity. The second return is
	// false when no record exists or the record cannot be decoded.
	GetEvent(id string) (models.Event, bool)

	// GetEvents returns every persisted event whose time range overlaps
	// the closed interval [from, to]. Records that fail to decode are
	// skipped. An empty result is not an error; the error return is
	// reserved for enumeration-level I/O failures.
	GetEvents(from, to time.Time) ([]models.Event, error)

	// CreateEvent persists a brand-new event. The caller guarantees a
	// fresh identity; no uniqueness check is performed.
	CreateEvent(event models.Event) error

	// UpdateEvent persists an existing event keyed by its identity,
	// overwriting the prior stored form in full. A missing prior record
	// is upserted with a warning, not an error.
	UpdateEvent(event models.Event) error

	// DeleteEvent removes the persisted record for id. Deleting an
	// unknown id is a no-op success.
	DeleteEvent(id string) error
}
