package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/store"
	"github.com/nhle/camphub/tests/testutil"
)

func sample() []model.Notification {
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return []model.Notification{
		{ID: "a", RecipientID: "u1", Type: model.TypeBookingCreated, ReferenceType: model.RefBooking, ReferenceID: "b1", Title: "Booked", CreatedAt: base},
		{ID: "b", RecipientID: "u1", Type: model.TypeDisputeCreated, ReferenceType: model.RefDispute, ReferenceID: "d1", Title: "Dispute", CreatedAt: base.Add(2 * time.Hour), IsRead: true},
		{ID: "c", RecipientID: "u1", Type: model.TypeBookingCreated, ReferenceType: model.RefBooking, ReferenceID: "b2", Title: "Booked again", CreatedAt: base.Add(time.Hour)},
	}
}

func TestReplaceAndQuery(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	synced := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.ReplaceNotifications(ctx, sample(), synced))

	all, err := s.GetNotifications(ctx, store.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[0].IsRead)
	assert.Equal(t, model.RefDispute, all[0].ReferenceType)
	assert.True(t, all[2].CreatedAt.Equal(sample()[0].CreatedAt))

	unread, err := s.GetNotifications(ctx, store.NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	typ := model.TypeDisputeCreated
	byType, err := s.GetNotifications(ctx, store.NotificationFilter{Type: &typ})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "b", byType[0].ID)

	page, err := s.GetNotifications(ctx, store.NotificationFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].ID)

	count, err := s.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	last, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(synced))
}

func TestReplaceDropsStaleRows(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, sample(), time.Now()))
	require.NoError(t, s.ReplaceNotifications(ctx, sample()[:1], time.Now()))

	all, err := s.GetNotifications(ctx, store.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)

	require.NoError(t, s.ReplaceNotifications(ctx, nil, time.Now()))
	all, err = s.GetNotifications(ctx, store.NotificationFilter{})
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestMeta(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	v, err := s.GetMeta(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	last, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	require.NoError(t, s.SetMeta(ctx, "user", "u1"))
	require.NoError(t, s.SetMeta(ctx, "user", "u2"))
	v, err = s.GetMeta(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "u2", v)
}

func TestReopenKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceNotifications(ctx, sample(), time.Now()))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	count, err := s.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
