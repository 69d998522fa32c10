package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kdd-community/website-backend/internal/audit"
	"github.com/kdd-community/website-backend/internal/diff"
	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/repositories"
	"github.com/kdd-community/website-backend/internal/utils"
	"github.com/kdd-community/website-backend/pkg/cloudinary"
	"github.com/kdd-community/website-backend/pkg/errtrack"
	"github.com/kdd-community/website-backend/pkg/identity"
)

// EventService defines the event and photo mutation actions plus the public
// read queries. Every mutating action is admin-gated and returns a uniform
// Result; expected failures never surface as errors.
type EventService interface {
	GetUpcoming(ctx context.Context, limit int) ([]*models.Event, error)
	GetPast(ctx context.Context, limit int) ([]*models.Event, error)
	GetPublic(ctx context.Context, id string) (*models.Event, error)

	List(ctx context.Context, token string) ([]*models.Event, models.Result)
	Get(ctx context.Context, token, id string) (*models.Event, models.Result)
	Set(ctx context.Context, token, id string, input models.EventInput) models.Result
	Delete(ctx context.Context, token, id string) models.Result

	AddPhoto(ctx context.Context, token, id string, data io.Reader, fileName string) (*models.Photo, models.Result)
	MovePhoto(ctx context.Context, token, id string, oldIndex, newIndex int) models.Result
	DeletePhoto(ctx context.Context, token, id string, photo models.Photo) models.Result
}

type eventService struct {
	events    repositories.EventRepository
	media     cloudinary.Host
	identity  identity.Provider
	audit     *audit.Logger
	track     errtrack.Sink
	cloudName string
	now       func() time.Time
}

// NewEventService creates a new EventService implementation
func NewEventService(
	events repositories.EventRepository,
	media cloudinary.Host,
	provider identity.Provider,
	auditLogger *audit.Logger,
	track errtrack.Sink,
	cloudName string,
) EventService {
	return &eventService{
		events:    events,
		media:     media,
		identity:  provider,
		audit:     auditLogger,
		track:     track,
		cloudName: cloudName,
		now:       time.Now,
	}
}

func (s *eventService) GetUpcoming(ctx context.Context, limit int) ([]*models.Event, error) {
	events, err := s.events.FindUpcoming(ctx, s.now(), limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(events), nil
}

func (s *eventService) GetPast(ctx context.Context, limit int) ([]*models.Event, error) {
	events, err := s.events.FindPast(ctx, s.now(), limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(events), nil
}

func (s *eventService) GetPublic(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate([]*models.Event{event})
	return event, nil
}

func (s *eventService) List(ctx context.Context, token string) ([]*models.Event, models.Result) {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return nil, models.Failure(check.Message)
	}
	events, err := s.events.FindAll(ctx)
	if err != nil {
		return nil, models.Failure(utils.ErrorMessage(err, "Failed to load events"))
	}
	return s.decorate(events), models.Ok("Events loaded")
}

func (s *eventService) Get(ctx context.Context, token, id string) (*models.Event, models.Result) {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return nil, models.Failure(check.Message)
	}
	event, err := s.events.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.Failure("Event not found")
	}
	if err != nil {
		return nil, models.Failure(utils.ErrorMessage(err, "Failed to load event"))
	}
	s.decorate([]*models.Event{event})
	return event, models.Ok("Event loaded")
}

// Set upserts an event by id. On create every meaningful field is logged; on
// update only a non-empty field diff produces a log entry.
func (s *eventService) Set(ctx context.Context, token, id string, input models.EventInput) models.Result {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return models.Failure(check.Message)
	}

	date, err := parseEventDate(input.Date, input.Timezone)
	if err != nil {
		return models.Failure(utils.ErrorMessage(err, "Invalid event date"))
	}

	prior, err := s.events.Raw(ctx, id)
	isCreate := errors.Is(err, repositories.ErrNotFound)
	if err != nil && !isCreate {
		return models.Failure(utils.ErrorMessage(err, "Failed to load event"))
	}

	event := eventFromInput(id, date, input)
	if !isCreate {
		// The photo sequence is owned by the photo actions; an event update
		// must carry it over untouched.
		existing, err := s.events.FindByID(ctx, id)
		if err != nil {
			return models.Failure(utils.ErrorMessage(err, "Failed to load event"))
		}
		event.Photos = existing.Photos
	}

	if err := s.events.Set(ctx, event); err != nil {
		return models.Failure(utils.ErrorMessage(err, "Failed to update event"))
	}

	proposed := meaningfulFields(date, input)
	if isCreate {
		s.audit.Record(ctx, check.UID, audit.CreateEvent{EventID: id, Fields: proposed})
	} else {
		addClearedFields(proposed, prior, input)
		changes := diff.Fields(prior, proposed)
		if len(changes) > 0 {
			s.audit.Record(ctx, check.UID, audit.UpdateEvent{EventID: id, Changes: changes})
		}
	}

	return models.Ok("Event updated")
}

// Delete removes the event document after a best-effort purge of its media
// folder, and logs the full prior snapshot.
func (s *eventService) Delete(ctx context.Context, token, id string) models.Result {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return models.Failure(check.Message)
	}

	errtrack.BestEffort(s.track, "failed to delete event media folder", func() error {
		return s.media.DeleteFolder(ctx, mediaFolder(id))
	})

	snapshot, err := s.events.Raw(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Failure("Event not found")
	}
	if err != nil {
		return models.Failure(utils.ErrorMessage(err, "Failed to delete event"))
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return models.Failure(utils.ErrorMessage(err, "Failed to delete event"))
	}

	s.audit.Record(ctx, check.UID, audit.DeleteEvent{EventID: id, Snapshot: snapshot})
	return models.Ok("Event deleted")
}

// AddPhoto uploads image bytes into the event's media folder and prepends
// the stored photo inside one read-modify-write transaction.
func (s *eventService) AddPhoto(ctx context.Context, token, id string, data io.Reader, fileName string) (*models.Photo, models.Result) {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return nil, models.Failure(check.Message)
	}

	// Checked before the upload so a missing event cannot leave an orphaned
	// media asset behind.
	exists, err := s.events.Exists(ctx, id)
	if err != nil {
		return nil, models.Failure(utils.ErrorMessage(err, "Failed to load event"))
	}
	if !exists {
		return nil, models.Failure("Event not found")
	}

	if fileName == "" {
		fileName = fmt.Sprintf("KDD_%d", s.now().UnixMilli())
	}
	uploaded, err := s.media.Upload(ctx, data, mediaFolder(id), fileName)
	if err != nil {
		return nil, models.Failure(utils.ErrorMessage(err, "Upload failed"))
	}

	created := uploaded.CreatedAt.UTC().Format(time.RFC3339)
	photo := models.Photo{
		Key:         uploaded.PublicID,
		Src:         uploaded.URL,
		Alt:         "KDD photo " + created,
		Title:       "KDD photo " + created,
		Description: "Uploaded on " + created,
		Width:       uploaded.Width,
		Height:      uploaded.Height,
	}

	err = s.events.UpdatePhotos(ctx, id, func(photos []models.Photo) ([]models.Photo, error) {
		return append([]models.Photo{photo}, photos...), nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, models.Failure("Event not found")
	}
	if err != nil {
		return nil, models.Failure(utils.ErrorMessage(err, "Upload failed"))
	}

	s.audit.Record(ctx, check.UID, audit.AddPhoto{EventID: id, Photo: photo})
	return &photo, models.Ok("Photo added")
}

// MovePhoto repositions one photo inside a single transaction. Indices are
// clamped to the sequence bounds; equal indices leave it untouched.
func (s *eventService) MovePhoto(ctx context.Context, token, id string, oldIndex, newIndex int) models.Result {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return models.Failure(check.Message)
	}

	err := s.events.UpdatePhotos(ctx, id, func(photos []models.Photo) ([]models.Photo, error) {
		return utils.ArrayMove(photos, oldIndex, newIndex), nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Failure("Event not found")
	}
	if err != nil {
		return models.Failure(utils.ErrorMessage(err, "Failed to move photo"))
	}

	s.audit.Record(ctx, check.UID, audit.MovePhoto{EventID: id, OldIndex: oldIndex, NewIndex: newIndex})
	return models.Ok("Photo moved")
}

// DeletePhoto removes the matching photo entry from the stored sequence. The
// underlying media object is deleted best-effort first.
func (s *eventService) DeletePhoto(ctx context.Context, token, id string, photo models.Photo) models.Result {
	check := identity.VerifyAdmin(ctx, s.identity, token)
	if !check.Valid {
		return models.Failure(check.Message)
	}

	errtrack.BestEffort(s.track, "failed to delete photo media", func() error {
		return s.media.Delete(ctx, photo.Key)
	})

	err := s.events.RemovePhoto(ctx, id, photo)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Failure("Event not found")
	}
	if err != nil {
		return models.Failure(utils.ErrorMessage(err, "Failed to delete photo"))
	}

	s.audit.Record(ctx, check.UID, audit.DeletePhoto{EventID: id, PhotoKey: photo.Key, PhotoSrc: photo.Src})
	return models.Ok("Photo deleted")
}

func (s *eventService) decorate(events []*models.Event) []*models.Event {
	if s.cloudName == "" {
		return events
	}
	for _, event := range events {
		for i, photo := range event.Photos {
			event.Photos[i] = cloudinary.AddSrcSet(photo, s.cloudName)
		}
	}
	return events
}

func mediaFolder(eventID string) string {
	return "events/" + eventID
}

// parseEventDate converts a client-supplied local wall-clock time plus IANA
// timezone into the stored absolute instant.
func parseEventDate(date, timezone string) (time.Time, error) {
	loc := time.UTC
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown timezone %q", timezone)
		}
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, date, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", date)
}

func eventFromInput(id string, date time.Time, input models.EventInput) *models.Event {
	return &models.Event{
		ID:              id,
		Date:            date,
		Title:           input.Title,
		Type:            input.Type,
		Location:        input.Location,
		LocationDetails: input.LocationDetails,
		LocationLink:    input.LocationLink,
		Image:           input.Image,
		Description:     input.Description,
		JoinLink:        input.JoinLink,
		Duration:        input.Duration,
		Price:           input.Price,
		Quantity:        input.Quantity,
		Draft:           input.Draft,
		Photos:          []models.Photo{},
	}
}

// addClearedFields re-adds the zero value for every optional field the stored
// record carries but the update clears, so clearing a field leaves a diff
// trail instead of vanishing silently.
func addClearedFields(fields map[string]interface{}, prior map[string]interface{}, input models.EventInput) {
	optional := map[string]interface{}{
		"type":            input.Type,
		"location":        input.Location,
		"locationDetails": input.LocationDetails,
		"locationLink":    input.LocationLink,
		"image":           input.Image,
		"description":     input.Description,
		"joinLink":        input.JoinLink,
		"price":           input.Price,
		"duration":        input.Duration,
		"quantity":        input.Quantity,
		"draft":           input.Draft,
	}
	for key, value := range optional {
		if _, proposed := fields[key]; proposed {
			continue
		}
		if _, stored := prior[key]; stored {
			fields[key] = value
		}
	}
}

// meaningfulFields drops zero-valued optional fields, leaving the subset of
// proposed fields the diff engine and create log operate on.
func meaningfulFields(date time.Time, input models.EventInput) map[string]interface{} {
	fields := map[string]interface{}{
		"date":  date,
		"title": input.Title,
	}
	setNonEmpty := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	setNonEmpty("type", input.Type)
	setNonEmpty("location", input.Location)
	setNonEmpty("locationDetails", input.LocationDetails)
	setNonEmpty("locationLink", input.LocationLink)
	setNonEmpty("image", input.Image)
	setNonEmpty("description", input.Description)
	setNonEmpty("joinLink", input.JoinLink)
	setNonEmpty("price", input.Price)
	if input.Duration > 0 {
		fields["duration"] = input.Duration
	}
	if input.Quantity > 0 {
		fields["quantity"] = input.Quantity
	}
	if input.Draft {
		fields["draft"] = true
	}
	return fields
}
