// Package gallery holds the client-side photo sequence for one event and
// makes edits feel instantaneous: transitions apply speculatively before the
// authoritative mutation completes, and a failure rolls the view back to the
// last server-confirmed sequence.
package gallery

import (
	"sync"

	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/utils"
)

// Action is a gallery state transition. The four variants are the only
// mutation surface the store exposes.
type Action interface {
	isAction()
}

// Prepend puts a photo at the front of the sequence
type Prepend struct {
	Photo models.Photo
}

// Move repositions the photo at OldIndex to NewIndex
type Move struct {
	OldIndex int
	NewIndex int
}

// RemoveAt drops the photo at Index
type RemoveAt struct {
	Index int
}

// Reset replaces the whole sequence with an authoritative one
type Reset struct {
	Photos []models.Photo
}

func (Prepend) isAction()  {}
func (Move) isAction()     {}
func (RemoveAt) isAction() {}
func (Reset) isAction()    {}

// Reduce is the pure reducer step: current sequence plus one action yields
// the next sequence. The input is never modified.
func Reduce(photos []models.Photo, action Action) []models.Photo {
	switch a := action.(type) {
	case Prepend:
		out := make([]models.Photo, 0, len(photos)+1)
		out = append(out, a.Photo)
		return append(out, photos...)
	case Move:
		return utils.ArrayMove(photos, a.OldIndex, a.NewIndex)
	case RemoveAt:
		out := make([]models.Photo, 0, len(photos))
		for i, p := range photos {
			if i != a.Index {
				out = append(out, p)
			}
		}
		return out
	case Reset:
		out := make([]models.Photo, len(a.Photos))
		copy(out, a.Photos)
		return out
	}
	out := make([]models.Photo, len(photos))
	copy(out, photos)
	return out
}

// Store is the client-held gallery state. Transitions are synchronous and
// ordered by the caller; asynchronous mutation outcomes reconcile through
// Succeed and Fail, with a monotonically increasing token discarding
// responses that a newer reset has already superseded.
type Store struct {
	mu        sync.Mutex
	photos    []models.Photo
	confirmed []models.Photo
	nextToken uint64
	barrier   uint64
	pending   map[uint64]struct{}
}

// NewStore creates a Store seeded with a server-confirmed sequence
func NewStore(photos []models.Photo) *Store {
	s := &Store{pending: map[uint64]struct{}{}}
	s.photos = Reduce(nil, Reset{Photos: photos})
	s.confirmed = Reduce(nil, Reset{Photos: photos})
	return s
}

// Photos returns a snapshot of the current (possibly speculative) sequence
func (s *Store) Photos() []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

// PhotoAt returns the photo currently displayed at index
func (s *Store) PhotoAt(index int) (models.Photo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.photos) {
		return models.Photo{}, false
	}
	return s.photos[index], true
}

// Begin applies an optimistic transition and returns the token its
// authoritative completion must present.
func (s *Store) Begin(action Action) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextToken++
	s.pending[s.nextToken] = struct{}{}
	s.photos = Reduce(s.photos, action)
	return s.nextToken
}

// Succeed marks an in-flight edit as confirmed. Once no live edit remains
// pending, the current view becomes the new server-confirmed sequence.
// Stale tokens are ignored.
func (s *Store) Succeed(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, token)
	if token <= s.barrier {
		return
	}
	if !s.anyLivePendingLocked() {
		s.confirmed = make([]models.Photo, len(s.photos))
		copy(s.confirmed, s.photos)
	}
}

// Fail rolls the view back to the last server-confirmed sequence. Every
// currently pending edit becomes stale: its eventual completion is ignored.
// Returns false when the failure itself was already superseded.
//
// This is deliberately a blanket reset: a still-pending later edit loses its
// speculative effect even though it may yet succeed server-side, leaving a
// transient inconsistency until the next authoritative refresh.
func (s *Store) Fail(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, token)
	if token <= s.barrier {
		return false
	}
	s.photos = make([]models.Photo, len(s.confirmed))
	copy(s.photos, s.confirmed)
	s.barrier = s.nextToken
	return true
}

// ApplyConfirmed applies a transition that is already authoritative (the
// server performed it before the client learned of it, e.g. a finished
// upload) in one step.
func (s *Store) ApplyConfirmed(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextToken++
	s.photos = Reduce(s.photos, action)
	if !s.anyLivePendingLocked() {
		s.confirmed = make([]models.Photo, len(s.photos))
		copy(s.confirmed, s.photos)
	}
}

// ResetConfirmed installs a fresh authoritative sequence, superseding every
// in-flight edit.
func (s *Store) ResetConfirmed(photos []models.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = Reduce(nil, Reset{Photos: photos})
	s.confirmed = Reduce(nil, Reset{Photos: photos})
	s.barrier = s.nextToken
}

// anyLivePendingLocked reports whether an edit issued after the last reset
// is still awaiting its authoritative outcome.
func (s *Store) anyLivePendingLocked() bool {
	for token := range s.pending {
		if token > s.barrier {
			return true
		}
	}
	return false
}
