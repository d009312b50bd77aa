package runtime

import (
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

type observer[F any] struct {
	id domain.SubscriptionID
	fn F
}

// observers is an ordered callback list safe for concurrent use.
type observers[F any] struct {
	mu    sync.Mutex
	items []observer[F]
}

func (o *observers[F]) add(id domain.SubscriptionID, fn F) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, observer[F]{id: id, fn: fn})
}

func (o *observers[F]) remove(id domain.SubscriptionID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, item := range o.items {
		if item.id == id {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot copies the callbacks so they can run without the lock.
func (o *observers[F]) snapshot() []F {
	o.mu.Lock()
	defer o.mu.Unlock()
	fns := make([]F, len(o.items))
	for i, item := range o.items {
		fns[i] = item.fn
	}
	return fns
}

func (e *Engine) nextID() domain.SubscriptionID {
	return domain.SubscriptionID(e.ids.Inc())
}

// SubscribeToActiveViewChanged registers fn and returns its id.
func (e *Engine) SubscribeToActiveViewChanged(fn domain.ActiveViewChangedFunc) domain.SubscriptionID {
	id := e.nextID()
	e.activeChanged.add(id, fn)
	return id
}

// UnsubscribeFromActiveViewChanged removes a callback. Unknown ids are ignored.
func (e *Engine) UnsubscribeFromActiveViewChanged(id domain.SubscriptionID) bool {
	return e.activeChanged.remove(id)
}

// SubscribeToBeforeNavigate registers fn and returns its id.
func (e *Engine) SubscribeToBeforeNavigate(fn domain.BeforeNavigateFunc) domain.SubscriptionID {
	id := e.nextID()
	e.before.add(id, fn)
	return id
}

// UnsubscribeFromBeforeNavigate removes a callback. Unknown ids are ignored.
func (e *Engine) UnsubscribeFromBeforeNavigate(id domain.SubscriptionID) bool {
	return e.before.remove(id)
}

// SubscribeToAfterNavigate registers fn and returns its id.
func (e *Engine) SubscribeToAfterNavigate(fn domain.AfterNavigateFunc) domain.SubscriptionID {
	id := e.nextID()
	e.after.add(id, fn)
	return id
}

// UnsubscribeFromAfterNavigate removes a callback. Unknown ids are ignored.
func (e *Engine) UnsubscribeFromAfterNavigate(id domain.SubscriptionID) bool {
	return e.after.remove(id)
}
