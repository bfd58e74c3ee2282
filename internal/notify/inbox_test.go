package notify

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/camphub/internal/model"
)

type fakeAPI struct {
	mu          gosync.Mutex
	list        []model.Notification
	listErr     error
	failRead    map[string]bool
	failDelete  map[string]bool
	readCalls   []string
	deleteCalls []string
	gate        chan struct{}
}

func newFakeAPI(list ...model.Notification) *fakeAPI {
	return &fakeAPI{
		list:       list,
		failRead:   map[string]bool{},
		failDelete: map[string]bool{},
	}
}

func (f *fakeAPI) ListMine(ctx context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Notification, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	f.readCalls = append(f.readCalls, id)
	gate := f.gate
	fail := f.failRead[id]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.failDelete[id] {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeAPI) reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.readCalls)
}

var t0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func note(id string, minutes int, read bool) model.Notification {
	return model.Notification{
		ID:            id,
		Type:          model.TypeBookingCreated,
		ReferenceType: model.RefBooking,
		ReferenceID:   "b-" + id,
		Title:         "Booking " + id,
		IsRead:        read,
		CreatedAt:     t0.Add(time.Duration(minutes) * time.Minute),
	}
}

func loaded(t *testing.T, api *fakeAPI, isAdmin bool) *Inbox {
	t.Helper()
	b := NewInbox(api, isAdmin)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func ids(list []model.Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func TestLoadSortsNewestFirst(t *testing.T) {
	api := newFakeAPI(note("a", 0, false), note("c", 5, true), note("b", 5, false))
	b := loaded(t, api, false)

	assert.Equal(t, []string{"c", "b", "a"}, ids(b.Items()))
	assert.Equal(t, 2, b.UnreadCount())
}

func TestLoadFailureEmptiesList(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	b := loaded(t, api, false)
	require.Len(t, b.Items(), 1)

	api.listErr = errors.New("offline")
	err := b.Load(context.Background())
	require.Error(t, err)
	assert.NotNil(t, b.Items())
	assert.Empty(t, b.Items())
	assert.Equal(t, 0, b.UnreadCount())
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	api := newFakeAPI(note("a", 0, false), note("b", 1, false))
	b := loaded(t, api, false)
	ctx := context.Background()

	require.NoError(t, b.MarkAsRead(ctx, "a"))
	assert.Equal(t, 1, b.UnreadCount())

	require.NoError(t, b.MarkAsRead(ctx, "a"))
	assert.Equal(t, 1, b.UnreadCount())
	assert.Equal(t, 2, api.reads())

	for _, n := range b.Items() {
		if n.ID == "a" {
			assert.True(t, n.IsRead)
		}
	}
}

func TestMarkAsReadFailureKeepsState(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	api.failRead["a"] = true
	b := loaded(t, api, false)

	err := b.MarkAsRead(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, 1, b.UnreadCount())
	assert.Equal(t, MsgMarkReadFailed, ReadToast(err).Text)
}

func TestConcurrentMarkAsReadSharesRequest(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	api.gate = make(chan struct{})
	b := loaded(t, api, false)

	var wg gosync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = b.MarkAsRead(context.Background(), "a")
		}()
	}

	require.Eventually(t, func() bool { return api.reads() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(api.gate)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, api.reads())
	assert.Equal(t, 0, b.UnreadCount())
}

func TestSharedMarkAsReadOutlivesFirstCaller(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	api.gate = make(chan struct{})
	b := loaded(t, api, false)

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	errShort := make(chan error, 1)
	go func() { errShort <- b.MarkAsRead(short, "a") }()
	require.Eventually(t, func() bool { return api.reads() == 1 }, time.Second, time.Millisecond)

	errLong := make(chan error, 1)
	go func() { errLong <- b.MarkAsRead(context.Background(), "a") }()

	select {
	case err := <-errShort:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("short caller did not give up")
	}

	close(api.gate)
	select {
	case err := <-errLong:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("long caller did not finish")
	}
	assert.Equal(t, 1, api.reads())
	assert.Equal(t, 0, b.UnreadCount())
}

func TestSharedMarkAsReadIsBoundedByTimeout(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	api.gate = make(chan struct{})
	defer close(api.gate)

	b := NewInbox(api, false, WithRequestTimeout(20*time.Millisecond))
	require.NoError(t, b.Load(context.Background()))

	err := b.MarkAsRead(context.Background(), "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, b.UnreadCount())
}

func TestMarkAllWithNothingUnreadMakesNoCalls(t *testing.T) {
	api := newFakeAPI(note("a", 0, true), note("b", 1, true))
	b := loaded(t, api, false)

	res, err := b.MarkAllAsRead(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Attempted)
	assert.Equal(t, 0, api.reads())
	assert.Equal(t, MsgAllAlreadyRead, ReadAllToast(res).Text)
	assert.False(t, ReadAllToast(res).Error)
}

func TestMarkAllAsRead(t *testing.T) {
	api := newFakeAPI(note("a", 0, false), note("b", 1, true), note("c", 2, false))
	b := loaded(t, api, false)

	res, err := b.MarkAllAsRead(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, res.Attempted)
	assert.Equal(t, res.Attempted, res.Succeeded)
	assert.Equal(t, 2, api.reads())
	assert.Equal(t, 0, b.UnreadCount())
	assert.Equal(t, "Marked 2 notifications as read", ReadAllToast(res).Text)
}

func TestMarkAllPartialFailure(t *testing.T) {
	api := newFakeAPI(note("a", 0, false), note("b", 1, false), note("c", 2, false))
	api.failRead["b"] = true
	b := NewInbox(api, false, WithConcurrency(1))
	require.NoError(t, b.Load(context.Background()))

	res, err := b.MarkAllAsRead(context.Background())
	require.Error(t, err)
	assert.True(t, res.Partial())
	assert.Equal(t, []string{"c", "a"}, res.Succeeded)
	require.Contains(t, res.Failed, "b")
	assert.Equal(t, 1, b.UnreadCount())

	for _, n := range b.Items() {
		assert.Equal(t, n.ID != "b", n.IsRead, n.ID)
	}

	toast := ReadAllToast(res)
	assert.True(t, toast.Error)
	assert.Equal(t, "Marked 2 of 3 as read, 1 failed", toast.Text)
}

func TestMarkAllTotalFailure(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	api.failRead["a"] = true
	b := loaded(t, api, false)

	res, err := b.MarkAllAsRead(context.Background())
	require.Error(t, err)
	assert.False(t, res.Partial())
	assert.Equal(t, "Failed to mark 1 notifications as read", ReadAllToast(res).Text)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	api := newFakeAPI(note("a", 0, false), note("b", 1, true), note("c", 2, false))
	b := loaded(t, api, false)
	before := b.Items()

	require.NoError(t, b.Delete(context.Background(), "b"))
	after := b.Items()
	assert.Equal(t, []model.Notification{before[0], before[2]}, after)
	assert.Equal(t, MsgDeleted, DeleteToast(nil).Text)
}

func TestDeleteFailureKeepsList(t *testing.T) {
	api := newFakeAPI(note("a", 0, false), note("b", 1, false))
	api.failDelete["a"] = true
	b := loaded(t, api, false)
	before := b.Items()

	err := b.Delete(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, before, b.Items())
	assert.True(t, DeleteToast(err).Error)
}

func TestOpenMarksReadThenRoutes(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	b := loaded(t, api, false)

	path, err := b.Open(context.Background(), b.Items()[0])
	require.NoError(t, err)
	assert.Equal(t, "/CampHub/profile?tab=rental-orders&bookingId=b-a", path)
	assert.Equal(t, 0, b.UnreadCount())
	assert.Equal(t, 1, api.reads())
}

func TestOpenReadNotificationSkipsCall(t *testing.T) {
	api := newFakeAPI(note("a", 0, true))
	b := loaded(t, api, true)

	path, err := b.Open(context.Background(), b.Items()[0])
	require.NoError(t, err)
	assert.Equal(t, "/admin/bookings?bookingId=b-a", path)
	assert.Equal(t, 0, api.reads())
}

func TestOpenSkipsNavigationOnFailure(t *testing.T) {
	api := newFakeAPI(note("a", 0, false))
	api.failRead["a"] = true
	b := loaded(t, api, false)

	path, err := b.Open(context.Background(), b.Items()[0])
	require.Error(t, err)
	assert.Empty(t, path)
	assert.Equal(t, 1, b.UnreadCount())
}
