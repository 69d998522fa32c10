package gallery

import (
	"context"
	"sync"

	"github.com/kdd-community/website-backend/internal/models"
)

// Mutator is the request/response contract to the authoritative mutation
// actions for one event's gallery.
type Mutator interface {
	MovePhoto(ctx context.Context, oldIndex, newIndex int) models.Result
	RemovePhoto(ctx context.Context, photo models.Photo) models.Result
}

// Notifier surfaces mutation outcomes to the user
type Notifier interface {
	Notify(title, message string, success bool)
}

// Dispatcher ties the optimistic store to the mutation actions: each edit is
// applied locally before its mutation is issued, and a failed mutation rolls
// the store back and notifies the user, naming the operation that failed.
type Dispatcher struct {
	store    *Store
	mutator  Mutator
	notifier Notifier
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over an existing store
func NewDispatcher(store *Store, mutator Mutator, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		store:    store,
		mutator:  mutator,
		notifier: notifier,
	}
}

// Store returns the underlying optimistic store
func (d *Dispatcher) Store() *Store {
	return d.store
}

// Move repositions a photo optimistically and issues the authoritative move
func (d *Dispatcher) Move(ctx context.Context, oldIndex, newIndex int) {
	token := d.store.Begin(Move{OldIndex: oldIndex, NewIndex: newIndex})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		res := d.mutator.MovePhoto(ctx, oldIndex, newIndex)
		if res.Success {
			d.store.Succeed(token)
			return
		}
		if d.store.Fail(token) {
			d.notifier.Notify("Move Photo Failed", res.Message, false)
		}
	}()
}

// Remove deletes the photo currently shown at index, optimistically first
func (d *Dispatcher) Remove(ctx context.Context, index int) {
	photo, ok := d.store.PhotoAt(index)
	if !ok {
		return
	}
	token := d.store.Begin(RemoveAt{Index: index})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		res := d.mutator.RemovePhoto(ctx, photo)
		if res.Success {
			d.store.Succeed(token)
			d.notifier.Notify("Delete Photo Success", res.Message, true)
			return
		}
		if d.store.Fail(token) {
			d.notifier.Notify("Delete Photo Failed", res.Message, false)
		}
	}()
}

// Uploaded prepends a photo the server has already stored
func (d *Dispatcher) Uploaded(photo models.Photo) {
	d.store.ApplyConfirmed(Prepend{Photo: photo})
}

// Refresh installs a freshly fetched authoritative sequence
func (d *Dispatcher) Refresh(photos []models.Photo) {
	d.store.ResetConfirmed(photos)
}

// Wait blocks until every issued mutation has completed. Used in tests and
// on teardown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
