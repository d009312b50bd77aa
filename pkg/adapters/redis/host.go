package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const maxRetries = 10

type record struct {
	Key int64  `json:"key"`
	URL string `json:"url"`
}

type document struct {
	Stack  []record `json:"stack"`
	Cursor int      `json:"cursor"`
}

// Host implements ports.Host on top of a Store. The stack and cursor live in
// Redis so a session survives restarts and can be served by any replica.
// Writes use optimistic transactions (WATCH/MULTI).
type Host struct {
	store   *Store
	session string

	mu   sync.Mutex
	subs []ports.PopStateFunc
}

var _ ports.Host = (*Host)(nil)

// Session returns the session id the host is bound to.
func (h *Host) Session() string {
	return h.session
}

func (h *Host) PushState(ctx context.Context, state domain.HistoryState, url string) error {
	_, err := h.update(ctx, func(doc *document) bool {
		doc.Stack = append(doc.Stack[:doc.Cursor+1], record{Key: state.Key, URL: url})
		doc.Cursor++
		return true
	})
	return err
}

func (h *Host) ReplaceState(ctx context.Context, state domain.HistoryState, url string) error {
	_, err := h.update(ctx, func(doc *document) bool {
		if doc.Cursor < 0 {
			doc.Stack = []record{{Key: state.Key, URL: url}}
			doc.Cursor = 0
			return true
		}
		doc.Stack[doc.Cursor] = record{Key: state.Key, URL: url}
		return true
	})
	return err
}

func (h *Host) Current(ctx context.Context) (domain.HistoryState, string, error) {
	doc, err := h.load(ctx, h.store.client)
	if err != nil {
		return domain.HistoryState{}, "", err
	}
	if doc.Cursor < 0 {
		return domain.HistoryState{}, "", domain.ErrNoHistory
	}
	r := doc.Stack[doc.Cursor]
	return domain.HistoryState{Key: r.Key}, r.URL, nil
}

func (h *Host) Back(ctx context.Context) error {
	return h.move(ctx, -1)
}

func (h *Host) Forward(ctx context.Context) error {
	return h.move(ctx, 1)
}

func (h *Host) OnPopState(fn ports.PopStateFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}

// URLs returns the stored stack URLs, oldest first.
func (h *Host) URLs(ctx context.Context) ([]string, error) {
	urls, _, err := h.Stack(ctx)
	return urls, err
}

// Stack returns the stored stack URLs, oldest first, and the index of the current one.
// cursor is -1 for a session without history.
func (h *Host) Stack(ctx context.Context) (urls []string, cursor int, err error) {
	doc, err := h.load(ctx, h.store.client)
	if err != nil {
		return nil, -1, err
	}
	urls = make([]string, len(doc.Stack))
	for i, r := range doc.Stack {
		urls[i] = r.URL
	}
	return urls, doc.Cursor, nil
}

func (h *Host) move(ctx context.Context, delta int) error {
	var target domain.HistoryState
	moved, err := h.update(ctx, func(doc *document) bool {
		next := doc.Cursor + delta
		if doc.Cursor < 0 || next < 0 || next >= len(doc.Stack) {
			return false
		}
		doc.Cursor = next
		target = domain.HistoryState{Key: doc.Stack[next].Key}
		return true
	})
	if err != nil || !moved {
		return err
	}

	h.mu.Lock()
	subs := append([]ports.PopStateFunc(nil), h.subs...)
	h.mu.Unlock()

	var errs []error
	for _, fn := range subs {
		if err := fn(ctx, target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Host) load(ctx context.Context, c backend.Cmdable) (document, error) {
	doc := document{Cursor: -1}
	data, err := c.Get(ctx, h.store.key(h.session)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return doc, nil
		}
		return doc, fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return doc, nil
}

// update applies fn to the stored document inside a WATCH transaction and
// retries when another writer got in between. fn reports whether it changed doc.
func (h *Host) update(ctx context.Context, fn func(doc *document) bool) (bool, error) {
	key := h.store.key(h.session)
	var changed bool

	txf := func(tx *backend.Tx) error {
		doc, err := h.load(ctx, tx)
		if err != nil {
			return err
		}
		if changed = fn(&doc); !changed {
			return nil
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, data, h.store.ttl)
			pipe.ZAdd(ctx, h.store.indexKey(), backend.Z{Score: h.store.score(), Member: h.session})
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := h.store.client.Watch(ctx, txf, key)
		if err == nil {
			return changed, nil
		}
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		return false, fmt.Errorf("failed to save to redis: %w", err)
	}
	return false, fmt.Errorf("history of session %q kept changing under concurrent writers", h.session)
}
