// Package notify holds the client-side notification state: the inbox
// list behind the dropdown, the bell that toggles it and the toast text
// each action produces.
package notify

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/route"
	"github.com/nhle/camphub/internal/source"
)

const (
	// defaultConcurrency caps in-flight requests during MarkAllAsRead.
	defaultConcurrency = 4
	// defaultTimeout bounds a shared mark-read request.
	defaultTimeout = 30 * time.Second
)

// BatchResult is the outcome of MarkAllAsRead. Succeeded keeps the order
// of Attempted.
type BatchResult struct {
	Attempted []string
	Succeeded []string
	Failed    map[string]error
}

// Partial reports whether some but not all items succeeded.
func (r BatchResult) Partial() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

// Inbox is the list shown in the dropdown. It fetches independently of
// the poller and mirrors every successful mutation locally.
type Inbox struct {
	api         source.NotificationAPI
	isAdmin     bool
	logger      *zap.Logger
	concurrency int
	timeout     time.Duration

	mu    gosync.Mutex
	items []model.Notification

	reads singleflight.Group
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithLogger sets the logger for failed actions.
func WithLogger(l *zap.Logger) Option {
	return func(b *Inbox) { b.logger = l }
}

// WithConcurrency bounds the mark-all fan-out.
func WithConcurrency(n int) Option {
	return func(b *Inbox) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRequestTimeout bounds each mark-read request.
func WithRequestTimeout(d time.Duration) Option {
	return func(b *Inbox) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// NewInbox creates an empty Inbox. isAdmin selects back-office routes in Open.
func NewInbox(api source.NotificationAPI, isAdmin bool, opts ...Option) *Inbox {
	b := &Inbox{
		api:         api,
		isAdmin:     isAdmin,
		logger:      zap.NewNop(),
		concurrency: defaultConcurrency,
		timeout:     defaultTimeout,
		items:       []model.Notification{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsAdmin reports whether Open resolves back-office routes.
func (b *Inbox) IsAdmin() bool {
	return b.isAdmin
}

// Load replaces the list with a fresh fetch, newest first. On failure the
// list becomes empty and the error is returned for logging.
func (b *Inbox) Load(ctx context.Context) error {
	list, err := b.api.ListMine(ctx)
	if err != nil {
		b.logger.Warn("loading notifications", zap.Error(err))
		b.mu.Lock()
		b.items = []model.Notification{}
		b.mu.Unlock()
		return fmt.Errorf("loading notifications: %w", err)
	}

	sorted := make([]model.Notification, len(list))
	copy(sorted, list)
	model.SortNewestFirst(sorted)

	b.mu.Lock()
	b.items = sorted
	b.mu.Unlock()
	return nil
}

// Items returns a copy of the current list.
func (b *Inbox) Items() []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Notification, len(b.items))
	copy(out, b.items)
	return out
}

// UnreadCount counts unread entries in the current list.
func (b *Inbox) UnreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return model.CountUnread(b.items)
}

// MarkAsRead marks id read on the backend, then locally. Concurrent calls
// for the same id share a single request, which is bounded by the request
// timeout rather than by any one caller's context. A caller whose ctx ends
// first gets ctx.Err while the shared request carries on for the others.
func (b *Inbox) MarkAsRead(ctx context.Context, id string) error {
	ch := b.reads.DoChan(id, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()

		if err := b.api.MarkRead(callCtx, id); err != nil {
			return nil, err
		}
		b.setRead(id)
		return nil, nil
	})

	var err error
	select {
	case res := <-ch:
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		b.logger.Warn("marking notification read", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("marking %s read: %w", id, err)
	}
	return nil
}

func (b *Inbox) setRead(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].IsRead = true
			return
		}
	}
}

// MarkAllAsRead marks every unread entry read, one request per entry.
// Only entries whose request succeeded flip locally. With nothing unread
// no request is made and an empty result is returned.
func (b *Inbox) MarkAllAsRead(ctx context.Context) (BatchResult, error) {
	b.mu.Lock()
	var ids []string
	for _, n := range b.items {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	b.mu.Unlock()

	result := BatchResult{Attempted: ids, Failed: map[string]error{}}
	if len(ids) == 0 {
		return result, nil
	}

	ok := make([]bool, len(ids))
	var mu gosync.Mutex

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := b.MarkAsRead(ctx, id); err != nil {
				mu.Lock()
				result.Failed[id] = err
				mu.Unlock()
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range ids {
		if ok[i] {
			result.Succeeded = append(result.Succeeded, id)
		}
	}

	if len(result.Failed) > 0 {
		errs := make([]error, 0, len(result.Failed))
		for _, id := range ids {
			if err, failed := result.Failed[id]; failed {
				errs = append(errs, err)
			}
		}
		return result, errors.Join(errs...)
	}
	return result, nil
}

// Delete removes id on the backend, then drops it from the list. The
// remaining entries keep their order.
func (b *Inbox) Delete(ctx context.Context, id string) error {
	if err := b.api.Delete(ctx, id); err != nil {
		b.logger.Warn("deleting notification", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("deleting %s: %w", id, err)
	}

	b.mu.Lock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	return nil
}

// Open marks n read if needed and returns the route to navigate to. When
// marking fails no route is returned.
func (b *Inbox) Open(ctx context.Context, n model.Notification) (string, error) {
	if !n.IsRead {
		if err := b.MarkAsRead(ctx, n.ID); err != nil {
			return "", err
		}
		n.IsRead = true
	}
	return route.Resolve(n, b.isAdmin), nil
}
