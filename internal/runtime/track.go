package runtime

// track serialises one kind of work. It is guarded by Engine.mu.
type track[T any] struct {
	busy    bool
	pending *T
}

// acquire claims the track. When it is busy, req is parked instead and the
// previously parked request, if any, is returned as dropped.
func (t *track[T]) acquire(req T) (owned bool, dropped *T) {
	if t.busy {
		dropped, t.pending = t.pending, &req
		return false, dropped
	}
	t.busy = true
	return true, nil
}

// next hands the parked request to the owner, or releases the track when none is left.
func (t *track[T]) next() (*T, bool) {
	if t.pending == nil {
		t.busy = false
		return nil, false
	}
	req := t.pending
	t.pending = nil
	return req, true
}

// contended reports whether a newer request is waiting.
func (t *track[T]) contended() bool {
	return t.pending != nil
}
