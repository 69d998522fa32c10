package audit

import (
	"github.com/kdd-community/website-backend/internal/diff"
	"github.com/kdd-community/website-backend/internal/models"
)

// Payload is one admin action's log payload. Each log-event kind has its own
// payload shape; Data flattens it into the persisted record format.
type Payload interface {
	Kind() models.LogEvent
	Data() map[string]interface{}
}

// CreateEvent logs a newly created event with its non-empty fields
type CreateEvent struct {
	EventID string
	Fields  map[string]interface{}
}

func (p CreateEvent) Kind() models.LogEvent { return models.LogCreateEvent }

func (p CreateEvent) Data() map[string]interface{} {
	data := map[string]interface{}{"eventId": p.EventID}
	for k, v := range p.Fields {
		data[k] = v
	}
	return data
}

// UpdateEvent logs the field-level changes of an event update
type UpdateEvent struct {
	EventID string
	Changes diff.Diff
}

func (p UpdateEvent) Kind() models.LogEvent { return models.LogUpdateEvent }

func (p UpdateEvent) Data() map[string]interface{} {
	data := map[string]interface{}{"eventId": p.EventID}
	for field, change := range p.Changes {
		data[field] = map[string]interface{}{
			"from": change.From,
			"to":   change.To,
		}
	}
	return data
}

// DeleteEvent logs the full prior snapshot of a deleted event
type DeleteEvent struct {
	EventID  string
	Snapshot map[string]interface{}
}

func (p DeleteEvent) Kind() models.LogEvent { return models.LogDeleteEvent }

func (p DeleteEvent) Data() map[string]interface{} {
	data := map[string]interface{}{"eventId": p.EventID}
	for k, v := range p.Snapshot {
		if k == "_id" {
			continue
		}
		data[k] = v
	}
	return data
}

// AddPhoto logs a gallery upload
type AddPhoto struct {
	EventID string
	Photo   models.Photo
}

func (p AddPhoto) Kind() models.LogEvent { return models.LogAddEventPhoto }

func (p AddPhoto) Data() map[string]interface{} {
	return map[string]interface{}{
		"eventId":  p.EventID,
		"photoKey": p.Photo.Key,
		"photoSrc": p.Photo.Src,
	}
}

// MovePhoto logs a gallery reorder
type MovePhoto struct {
	EventID  string
	OldIndex int
	NewIndex int
}

func (p MovePhoto) Kind() models.LogEvent { return models.LogMoveEventPhoto }

func (p MovePhoto) Data() map[string]interface{} {
	return map[string]interface{}{
		"eventId":  p.EventID,
		"oldIndex": p.OldIndex,
		"newIndex": p.NewIndex,
	}
}

// DeletePhoto logs a gallery removal
type DeletePhoto struct {
	EventID  string
	PhotoKey string
	PhotoSrc string
}

func (p DeletePhoto) Kind() models.LogEvent { return models.LogDeleteEventPhoto }

func (p DeletePhoto) Data() map[string]interface{} {
	return map[string]interface{}{
		"eventId":  p.EventID,
		"photoKey": p.PhotoKey,
		"photoSrc": p.PhotoSrc,
	}
}

// AdminLogin logs a successful admin elevation
type AdminLogin struct{}

func (p AdminLogin) Kind() models.LogEvent { return models.LogAdminLogin }

func (p AdminLogin) Data() map[string]interface{} {
	return map[string]interface{}{}
}

// AdminLogout logs an admin stepping down
type AdminLogout struct{}

func (p AdminLogout) Kind() models.LogEvent { return models.LogAdminLogout }

func (p AdminLogout) Data() map[string]interface{} {
	return map[string]interface{}{}
}
