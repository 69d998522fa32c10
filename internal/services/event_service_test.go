package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdd-community/website-backend/internal/audit"
	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/repositories"
	"github.com/kdd-community/website-backend/pkg/cloudinary"
	"github.com/kdd-community/website-backend/pkg/errtrack"
	"github.com/kdd-community/website-backend/pkg/identity"
	"github.com/kdd-community/website-backend/pkg/webhook"
)

const (
	adminToken  = "token-admin"
	memberToken = "token-member"
)

type stubProvider struct {
	claims map[string]map[string]interface{} // token -> claims
	users  map[string]*models.User
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		claims: map[string]map[string]interface{}{
			adminToken:  {"admin": true},
			memberToken: {},
		},
		users: map[string]*models.User{
			"uid-admin":  {UID: "uid-admin", Email: "admin@example.com", DisplayName: "Admin"},
			"uid-member": {UID: "uid-member", Email: "member@example.com", DisplayName: "Member"},
		},
	}
}

func (p *stubProvider) VerifyToken(ctx context.Context, token string) (*identity.Token, error) {
	claims, ok := p.claims[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	uid := "uid-member"
	if token == adminToken {
		uid = "uid-admin"
	}
	return &identity.Token{UID: uid, Email: p.users[uid].Email, Claims: claims}, nil
}

func (p *stubProvider) GetUser(ctx context.Context, uid string) (*models.User, error) {
	user, ok := p.users[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (p *stubProvider) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	for token, tokenUID := range map[string]string{adminToken: "uid-admin", memberToken: "uid-member"} {
		if tokenUID == uid {
			p.claims[token] = claims
		}
	}
	return nil
}

type memEvents struct {
	mu     sync.Mutex
	events map[string]*models.Event
}

func newMemEvents(seed ...*models.Event) *memEvents {
	r := &memEvents{events: map[string]*models.Event{}}
	for _, e := range seed {
		r.events[e.ID] = e
	}
	return r
}

func (r *memEvents) FindByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *e
	out.Photos = append([]models.Photo{}, e.Photos...)
	return &out, nil
}

func (r *memEvents) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[id]
	return ok, nil
}

func (r *memEvents) Raw(ctx context.Context, id string) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	m := map[string]interface{}{"_id": e.ID, "date": e.Date, "title": e.Title}
	add := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	add("type", e.Type)
	add("location", e.Location)
	add("locationDetails", e.LocationDetails)
	add("locationLink", e.LocationLink)
	add("image", e.Image)
	add("description", e.Description)
	add("joinLink", e.JoinLink)
	add("price", e.Price)
	if e.Duration > 0 {
		m["duration"] = e.Duration
	}
	if e.Quantity > 0 {
		m["quantity"] = e.Quantity
	}
	if e.Draft {
		m["draft"] = true
	}
	return m, nil
}

func (r *memEvents) Set(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *event
	stored.Photos = append([]models.Photo{}, event.Photos...)
	r.events[event.ID] = &stored
	return nil
}

func (r *memEvents) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *memEvents) FindAll(ctx context.Context) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Event, 0, len(r.events))
	for _, e := range r.events {
		copied := *e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memEvents) FindUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.Event, error) {
	all, _ := r.FindAll(ctx)
	out := []*models.Event{}
	for _, e := range all {
		if !e.Draft && !e.Date.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEvents) FindPast(ctx context.Context, before time.Time, limit int) ([]*models.Event, error) {
	all, _ := r.FindAll(ctx)
	out := []*models.Event{}
	for _, e := range all {
		if !e.Draft && e.Date.Before(before) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEvents) UpdatePhotos(ctx context.Context, id string, fn func(photos []models.Photo) ([]models.Photo, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	next, err := fn(append([]models.Photo{}, e.Photos...))
	if err != nil {
		return err
	}
	e.Photos = next
	return nil
}

func (r *memEvents) RemovePhoto(ctx context.Context, id string, photo models.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	kept := e.Photos[:0]
	for _, p := range e.Photos {
		if p.Key != photo.Key {
			kept = append(kept, p)
		}
	}
	e.Photos = kept
	return nil
}

type stubHost struct {
	uploadErr    error
	deleteErr    error
	folderErr    error
	deleted      []string
	purged       []string
	uploadedTo   string
	uploadedName string
}

func (h *stubHost) Upload(ctx context.Context, data io.Reader, folder, name string) (*cloudinary.UploadResult, error) {
	if h.uploadErr != nil {
		return nil, h.uploadErr
	}
	h.uploadedTo = folder
	h.uploadedName = name
	return &cloudinary.UploadResult{
		PublicID:  folder + "/" + name,
		URL:       "https://res.cloudinary.com/demo/image/upload/v1700000000/" + folder + "/" + name + ".jpg",
		Width:     1600,
		Height:    900,
		CreatedAt: time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC),
	}, nil
}

func (h *stubHost) Delete(ctx context.Context, publicID string) error {
	if h.deleteErr != nil {
		return h.deleteErr
	}
	h.deleted = append(h.deleted, publicID)
	return nil
}

func (h *stubHost) DeleteFolder(ctx context.Context, folder string) error {
	if h.folderErr != nil {
		return h.folderErr
	}
	h.purged = append(h.purged, folder)
	return nil
}

type memLogs struct {
	mu      sync.Mutex
	entries []*models.LogEntry
}

func (r *memLogs) Append(ctx context.Context, entry *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memLogs) FindRecent(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.LogEntry, len(r.entries))
	copy(out, r.entries)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fixture struct {
	service  EventService
	events   *memEvents
	host     *stubHost
	logs     *memLogs
	track    *errtrack.MemorySink
	provider *stubProvider
}

func newFixture(seed ...*models.Event) *fixture {
	provider := newStubProvider()
	events := newMemEvents(seed...)
	host := &stubHost{}
	logs := &memLogs{}
	track := errtrack.NewMemorySink()
	logger := audit.NewLogger(provider, logs, webhook.NewMockSink(), track)
	return &fixture{
		service:  NewEventService(events, host, provider, logger, track, ""),
		events:   events,
		host:     host,
		logs:     logs,
		track:    track,
		provider: provider,
	}
}

func seedEvent() *models.Event {
	return &models.Event{
		ID:    "evt-1",
		Date:  time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
		Title: "Monthly Meetup",
		Price: "10.00",
		Photos: []models.Photo{
			{Key: "events/evt-1/p1", Src: "https://cdn.example.com/p1"},
			{Key: "events/evt-1/p2", Src: "https://cdn.example.com/p2"},
		},
	}
}

func input() models.EventInput {
	return models.EventInput{
		Date:  "2025-06-01 18:00",
		Title: "Monthly Meetup",
		Price: "10.00",
	}
}

func (f *fixture) logEvents() []models.LogEvent {
	out := []models.LogEvent{}
	for _, e := range f.logs.entries {
		out = append(out, e.Event)
	}
	return out
}

func TestSet_UnauthorizedTokenIsRejectedUnlogged(t *testing.T) {
	f := newFixture()

	res := f.service.Set(context.Background(), memberToken, "evt-1", input())

	assert.Equal(t, models.Result{Success: false, Message: "Unauthorized"}, res)
	_, err := f.events.FindByID(context.Background(), "evt-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Empty(t, f.logs.entries)
}

func TestSet_CreateStoresEventAndLogsFields(t *testing.T) {
	f := newFixture()

	res := f.service.Set(context.Background(), adminToken, "evt-1", input())

	require.True(t, res.Success, res.Message)
	stored, err := f.events.FindByID(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "Monthly Meetup", stored.Title)
	assert.Equal(t, time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), stored.Date)
	assert.NotNil(t, stored.Photos)

	require.Equal(t, []models.LogEvent{models.LogCreateEvent}, f.logEvents())
	entry := f.logs.entries[0]
	assert.Equal(t, "uid-admin", entry.UserInfo.UID)
	assert.Equal(t, "evt-1", entry.Data["eventId"])
	assert.Equal(t, "Monthly Meetup", entry.Data["title"])
	assert.Equal(t, "10.00", entry.Data["price"])
	assert.NotContains(t, entry.Data, "location")
}

func TestSet_DateParsedInTimezone(t *testing.T) {
	f := newFixture()

	in := input()
	in.Date = "2025-06-01 18:00"
	in.Timezone = "Asia/Seoul"
	res := f.service.Set(context.Background(), adminToken, "evt-1", in)

	require.True(t, res.Success, res.Message)
	stored, err := f.events.FindByID(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), stored.Date)
}

func TestSet_InvalidDateFails(t *testing.T) {
	f := newFixture()

	in := input()
	in.Date = "June 1st"
	res := f.service.Set(context.Background(), adminToken, "evt-1", in)

	assert.False(t, res.Success)
	assert.Empty(t, f.logs.entries)
}

func TestSet_UpdateLogsOnlyChangedFields(t *testing.T) {
	f := newFixture(seedEvent())

	in := input()
	in.Price = "12.00"
	res := f.service.Set(context.Background(), adminToken, "evt-1", in)

	require.True(t, res.Success, res.Message)
	require.Equal(t, []models.LogEvent{models.LogUpdateEvent}, f.logEvents())
	entry := f.logs.entries[0]
	assert.Equal(t, map[string]interface{}{"from": "10.00", "to": "12.00"}, entry.Data["price"])
	assert.NotContains(t, entry.Data, "title")
	assert.NotContains(t, entry.Data, "date")
}

func TestSet_UpdatePreservesPhotoSequence(t *testing.T) {
	f := newFixture(seedEvent())

	res := f.service.Set(context.Background(), adminToken, "evt-1", input())

	require.True(t, res.Success, res.Message)
	stored, err := f.events.FindByID(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, stored.Photos, 2)
	assert.Equal(t, "events/evt-1/p1", stored.Photos[0].Key)
}

func TestSet_ClearingFieldIsLogged(t *testing.T) {
	f := newFixture(seedEvent())

	in := input()
	in.Price = ""
	res := f.service.Set(context.Background(), adminToken, "evt-1", in)

	require.True(t, res.Success, res.Message)
	stored, err := f.events.FindByID(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Price)

	require.Equal(t, []models.LogEvent{models.LogUpdateEvent}, f.logEvents())
	assert.Equal(t, map[string]interface{}{"from": "10.00", "to": ""}, f.logs.entries[0].Data["price"])
}

func TestSet_NoChangesWritesNoLog(t *testing.T) {
	f := newFixture(seedEvent())

	res := f.service.Set(context.Background(), adminToken, "evt-1", input())

	require.True(t, res.Success, res.Message)
	assert.Empty(t, f.logs.entries)
}

func TestDelete_RemovesEventAndLogsSnapshot(t *testing.T) {
	f := newFixture(seedEvent())

	res := f.service.Delete(context.Background(), adminToken, "evt-1")

	require.True(t, res.Success, res.Message)
	_, err := f.events.FindByID(context.Background(), "evt-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, []string{"events/evt-1"}, f.host.purged)

	require.Equal(t, []models.LogEvent{models.LogDeleteEvent}, f.logEvents())
	entry := f.logs.entries[0]
	assert.Equal(t, "evt-1", entry.Data["eventId"])
	assert.Equal(t, "Monthly Meetup", entry.Data["title"])
	assert.NotContains(t, entry.Data, "_id")
}

func TestDelete_MediaPurgeFailureDoesNotBlockDeletion(t *testing.T) {
	f := newFixture(seedEvent())
	f.host.folderErr = errors.New("rate limited")

	res := f.service.Delete(context.Background(), adminToken, "evt-1")

	require.True(t, res.Success, res.Message)
	_, err := f.events.FindByID(context.Background(), "evt-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Contains(t, f.track.Events(), "failed to delete event media folder")
}

func TestDelete_MissingEvent(t *testing.T) {
	f := newFixture()

	res := f.service.Delete(context.Background(), adminToken, "evt-404")

	assert.Equal(t, models.Result{Success: false, Message: "Event not found"}, res)
	assert.Empty(t, f.logs.entries)
}

func TestAddPhoto_PrependsAndLogs(t *testing.T) {
	f := newFixture(seedEvent())

	photo, res := f.service.AddPhoto(context.Background(), adminToken, "evt-1", bytes.NewReader([]byte("img")), "group_photo")

	require.True(t, res.Success, res.Message)
	require.NotNil(t, photo)
	assert.Equal(t, "events/evt-1/group_photo", photo.Key)
	assert.Equal(t, 1600, photo.Width)
	assert.True(t, strings.HasPrefix(photo.Alt, "KDD photo "))
	assert.True(t, strings.HasPrefix(photo.Description, "Uploaded on "))

	stored, err := f.events.FindByID(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, stored.Photos, 3)
	assert.Equal(t, photo.Key, stored.Photos[0].Key)

	require.Equal(t, []models.LogEvent{models.LogAddEventPhoto}, f.logEvents())
	assert.Equal(t, photo.Key, f.logs.entries[0].Data["photoKey"])
}

func TestAddPhoto_DefaultNameFromClock(t *testing.T) {
	f := newFixture(seedEvent())

	_, res := f.service.AddPhoto(context.Background(), adminToken, "evt-1", bytes.NewReader([]byte("img")), "")

	require.True(t, res.Success, res.Message)
	assert.True(t, strings.HasPrefix(f.host.uploadedName, "KDD_"))
	assert.Equal(t, "events/evt-1", f.host.uploadedTo)
}

func TestAddPhoto_UploadFailure(t *testing.T) {
	f := newFixture(seedEvent())
	f.host.uploadErr = errors.New("payload too large")

	photo, res := f.service.AddPhoto(context.Background(), adminToken, "evt-1", bytes.NewReader(nil), "x")

	assert.Nil(t, photo)
	assert.False(t, res.Success)
	assert.Equal(t, "payload too large", res.Message)
	assert.Empty(t, f.logs.entries)
}

func TestAddPhoto_MissingEvent(t *testing.T) {
	f := newFixture()

	_, res := f.service.AddPhoto(context.Background(), adminToken, "evt-404", bytes.NewReader(nil), "x")

	assert.Equal(t, models.Result{Success: false, Message: "Event not found"}, res)
	// The upload must not run for a missing event; nothing gets orphaned on
	// the media host.
	assert.Empty(t, f.host.uploadedTo)
	assert.Empty(t, f.logs.entries)
}

func TestMovePhoto_ReordersAndLogs(t *testing.T) {
	f := newFixture(seedEvent())

	res := f.service.MovePhoto(context.Background(), adminToken, "evt-1", 0, 1)

	require.True(t, res.Success, res.Message)
	stored, err := f.events.FindByID(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "events/evt-1/p2", stored.Photos[0].Key)
	assert.Equal(t, "events/evt-1/p1", stored.Photos[1].Key)

	require.Equal(t, []models.LogEvent{models.LogMoveEventPhoto}, f.logEvents())
	assert.Equal(t, 0, f.logs.entries[0].Data["oldIndex"])
	assert.Equal(t, 1, f.logs.entries[0].Data["newIndex"])
}

func TestMovePhoto_Unauthorized(t *testing.T) {
	f := newFixture(seedEvent())

	res := f.service.MovePhoto(context.Background(), memberToken, "evt-1", 0, 1)

	assert.Equal(t, models.Result{Success: false, Message: "Unauthorized"}, res)
	stored, _ := f.events.FindByID(context.Background(), "evt-1")
	assert.Equal(t, "events/evt-1/p1", stored.Photos[0].Key)
}

func TestDeletePhoto_RemovesEntryDespiteMediaFailure(t *testing.T) {
	f := newFixture(seedEvent())
	f.host.deleteErr = errors.New("asset locked")

	res := f.service.DeletePhoto(context.Background(), adminToken, "evt-1", models.Photo{Key: "events/evt-1/p1", Src: "https://cdn.example.com/p1"})

	require.True(t, res.Success, res.Message)
	stored, _ := f.events.FindByID(context.Background(), "evt-1")
	require.Len(t, stored.Photos, 1)
	assert.Equal(t, "events/evt-1/p2", stored.Photos[0].Key)
	assert.Contains(t, f.track.Events(), "failed to delete photo media")
	require.Equal(t, []models.LogEvent{models.LogDeleteEventPhoto}, f.logEvents())
}

func TestDeletePhoto_MissingEventFailsUnlogged(t *testing.T) {
	f := newFixture()

	res := f.service.DeletePhoto(context.Background(), adminToken, "evt-404", models.Photo{Key: "events/evt-404/p1"})

	assert.Equal(t, models.Result{Success: false, Message: "Event not found"}, res)
	assert.Empty(t, f.logs.entries)
}

func TestGetUpcomingExcludesPastAndDrafts(t *testing.T) {
	now := time.Now().UTC()
	f := newFixture(
		&models.Event{ID: "past", Date: now.Add(-48 * time.Hour), Title: "Past"},
		&models.Event{ID: "next", Date: now.Add(48 * time.Hour), Title: "Next"},
		&models.Event{ID: "hidden", Date: now.Add(72 * time.Hour), Title: "Hidden", Draft: true},
	)

	upcoming, err := f.service.GetUpcoming(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "next", upcoming[0].ID)

	past, err := f.service.GetPast(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "past", past[0].ID)
}

func TestList_RequiresAdmin(t *testing.T) {
	f := newFixture(seedEvent())

	_, res := f.service.List(context.Background(), memberToken)
	assert.Equal(t, "Unauthorized", res.Message)

	events, res := f.service.List(context.Background(), adminToken)
	require.True(t, res.Success)
	assert.Len(t, events, 1)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()

	_, res := f.service.Get(context.Background(), adminToken, "evt-404")
	assert.Equal(t, models.Result{Success: false, Message: "Event not found"}, res)
}

func TestDecorate_AddsSrcSetForCloudinaryPhotos(t *testing.T) {
	provider := newStubProvider()
	events := newMemEvents(&models.Event{
		ID:    "evt-1",
		Date:  time.Now().UTC(),
		Title: "Meetup",
		Photos: []models.Photo{{
			Key:    "events/evt-1/p1",
			Src:    "https://res.cloudinary.com/demo/image/upload/v1700000000/events/evt-1/p1.jpg",
			Width:  1600,
			Height: 900,
		}},
	})
	logger := audit.NewLogger(provider, &memLogs{}, webhook.NewMockSink(), errtrack.NewMemorySink())
	service := NewEventService(events, &stubHost{}, provider, logger, errtrack.NewMemorySink(), "demo")

	event, err := service.GetPublic(context.Background(), "evt-1")
	require.NoError(t, err)
	require.NotEmpty(t, event.Photos[0].SrcSet)
	first := event.Photos[0].SrcSet[0]
	assert.Equal(t, 300, first.Width)
	assert.Equal(t, 169, first.Height)
	assert.Contains(t, first.Src, "w_300")
	assert.Contains(t, first.Src, "v1700000000/events/evt-1/p1")
}
