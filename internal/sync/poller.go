package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/source"
	"github.com/nhle/camphub/internal/store"
)

// SyncState represents the current state of the poller.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus is a point-in-time view of the poller.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// PollResultMsg is a tea.Msg sent after every fetch attempt. On failure
// Unread still carries the last known count.
type PollResultMsg struct {
	Notifications []model.Notification
	Unread        int
	Err           error
	AuthError     bool
	Cached        bool
	At            time.Time
}

const (
	// defaultFetchTimeout bounds a single fetch.
	defaultFetchTimeout = 30 * time.Second
	// resultBuffer is how many results may queue before new ones are dropped.
	resultBuffer = 16
)

// Poller fetches the principal's notifications on an interval and derives
// the unread count. All fetches run on one goroutine, so results are
// applied in the order they were requested.
type Poller struct {
	lister   source.NotificationLister
	store    store.Store
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration

	resultCh  chan PollResultMsg
	triggerCh chan struct{}
	cancel    context.CancelFunc
	wg        gosync.WaitGroup

	mu      gosync.Mutex
	running bool
	stopped bool
	fetched bool
	unread  int
	status  SyncStatus
}

// Option configures a Poller.
type Option func(*Poller)

// WithStore saves every successful fetch as the offline snapshot.
func WithStore(s store.Store) Option {
	return func(p *Poller) { p.store = s }
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithFetchTimeout overrides the per-fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// New creates a Poller. A non-positive interval falls back to the default
// of 30 seconds.
func New(lister source.NotificationLister, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = time.Duration(model.DefaultPollIntervalSec) * time.Second
	}
	p := &Poller{
		lister:    lister,
		logger:    zap.NewNop(),
		interval:  interval,
		timeout:   defaultFetchTimeout,
		resultCh:  make(chan PollResultMsg, resultBuffer),
		triggerCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling goroutine and returns a tea.Cmd that waits
// for the first result. It fetches immediately, then on every tick.
// Calling Start twice, or after Stop, returns nil.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go p.loop(ctx)

	return p.waitForResult()
}

// Stop cancels any in-flight fetch, waits for the polling goroutine to
// exit and closes the result channel. Results already queued can still
// be drained.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	wasRunning := p.running
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	if wasRunning {
		cancel()
		p.wg.Wait()
	}
	close(p.resultCh)
}

// Refresh requests an immediate fetch. If one is already queued the
// request is dropped.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// UnreadCount returns the last known unread count.
func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Results exposes the result channel for callers outside Bubble Tea.
// The channel is closed by Stop.
func (p *Poller) Results() <-chan PollResultMsg {
	return p.resultCh
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// Call it after handling a PollResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

// LoadCached reads the offline snapshot, if a store is configured, and
// seeds the unread count when no live fetch has completed yet.
func (p *Poller) LoadCached(ctx context.Context) (PollResultMsg, error) {
	msg := PollResultMsg{Cached: true, Notifications: []model.Notification{}}
	if p.store == nil {
		return msg, nil
	}

	list, err := p.store.GetNotifications(ctx, store.NotificationFilter{})
	if err != nil {
		return msg, err
	}
	at, err := p.store.LastSync(ctx)
	if err != nil {
		return msg, err
	}

	msg.Notifications = list
	msg.Unread = model.CountUnread(list)
	msg.At = at

	p.mu.Lock()
	if !p.fetched {
		p.unread = msg.Unread
		p.status.LastSync = at
	}
	p.mu.Unlock()

	return msg, nil
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		case <-p.triggerCh:
			p.fetch(ctx)
		}
	}
}

// fetch performs a single fetch and publishes the outcome.
func (p *Poller) fetch(ctx context.Context) {
	p.setState(SyncRunning, nil)

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	list, err := p.lister.ListMine(fetchCtx)
	if ctx.Err() != nil {
		// Stopped mid-flight; the result belongs to nobody.
		return
	}

	if err != nil {
		p.logger.Warn("notification poll failed", zap.Error(err))
		p.setState(SyncError, err)
		p.sendResult(PollResultMsg{
			Unread:    p.UnreadCount(),
			Err:       err,
			AuthError: source.IsAuthError(err),
			At:        time.Now(),
		})
		return
	}

	unread := model.CountUnread(list)
	now := time.Now()

	p.mu.Lock()
	p.unread = unread
	p.fetched = true
	p.status = SyncStatus{State: SyncIdle, LastSync: now}
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.ReplaceNotifications(fetchCtx, list, now); err != nil {
			p.logger.Warn("saving notification snapshot", zap.Error(err))
		}
	}

	p.logger.Debug("notification poll",
		zap.Int("total", len(list)),
		zap.Int("unread", unread),
	)
	p.sendResult(PollResultMsg{
		Notifications: list,
		Unread:        unread,
		At:            now,
	})
}

func (p *Poller) setState(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
}

// sendResult queues msg without blocking the poll loop.
func (p *Poller) sendResult(msg PollResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		p.logger.Debug("poll result dropped, channel full")
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
