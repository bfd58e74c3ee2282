package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/camphub/internal/auth"
	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/source"
	"github.com/nhle/camphub/internal/store"
	"github.com/nhle/camphub/tests/testutil"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func userDemo() []model.Notification {
	var out []model.Notification
	for _, n := range demoNotifications(fixedNow) {
		if n.RecipientID == stubUserID {
			out = append(out, n)
		}
	}
	return out
}

func TestFilterList(t *testing.T) {
	list := userDemo()

	unread := filterList(list, store.NotificationFilter{UnreadOnly: true})
	for _, n := range unread {
		assert.False(t, n.IsRead)
	}
	assert.Equal(t, model.CountUnread(list), len(unread))

	limited := filterList(list, store.NotificationFilter{Limit: 2})
	require.Len(t, limited, 2)
	assert.Equal(t, "n1", limited[0].ID)
	assert.Equal(t, "n2", limited[1].ID)

	page := filterList(list, store.NotificationFilter{UnreadOnly: true, Limit: 2, Offset: 2})
	require.Len(t, page, 2)
	assert.Equal(t, "n3", page[0].ID)
	assert.Equal(t, "n5", page[1].ID)

	typ := model.TypePaymentSuccess
	byType := filterList(list, store.NotificationFilter{Type: &typ})
	require.Len(t, byType, 1)
	assert.Equal(t, "n2", byType[0].ID)

	assert.NotNil(t, filterList(nil, store.NotificationFilter{UnreadOnly: true, Limit: 5}))
}

func TestListFilterFromFlags(t *testing.T) {
	t.Cleanup(func() { listType, listLimit, listOffset, listUnread = "", 0, 0, false })

	listType, listLimit, listOffset, listUnread = " booking_created ", 3, 1, true
	f, err := listFilter()
	require.NoError(t, err)
	require.NotNil(t, f.Type)
	assert.Equal(t, model.TypeBookingCreated, *f.Type)
	assert.Equal(t, store.NotificationFilter{UnreadOnly: true, Type: f.Type, Limit: 3, Offset: 1}, f)

	listType = "NOT_A_TYPE"
	_, err = listFilter()
	assert.ErrorContains(t, err, "unknown notification type")
}

func TestListCachedUsesSnapshotAndFilter(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewTestStore(t)

	require.NoError(t, st.ReplaceNotifications(ctx, userDemo(), fixedNow))
	require.NoError(t, st.SetMeta(ctx, metaPrincipal, stubUserID))

	listFormat = "json"
	t.Cleanup(func() { listFormat = "" })

	run := func(e *env, f store.NotificationFilter) (string, string) {
		var out, errOut bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		require.NoError(t, listCached(ctx, cmd, e, f))
		return out.String(), errOut.String()
	}

	typ := model.TypeBookingCreated
	out, header := run(&env{store: st}, store.NotificationFilter{Type: &typ})
	assert.Contains(t, header, "5 unread")
	assert.NotContains(t, header, "not the current token")

	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "n1", listed[0]["id"])

	other, err := auth.NewManager("test-secret", time.Hour).GenerateToken("u2", "other@camphub.test", auth.RoleUser)
	require.NoError(t, err)
	_, header = run(&env{store: st, token: other}, store.NotificationFilter{})
	assert.Contains(t, header, "for u1, not the current token")
}

func TestExplainNotFound(t *testing.T) {
	err := explain(fmt.Errorf("deleting n9: %w", &source.APIError{
		Method: "DELETE", Path: "/notifications/n9", Status: http.StatusNotFound, Message: "not found",
	}))
	assert.ErrorContains(t, err, "no such notification")
	assert.True(t, source.IsNotFound(err))

	err = explain(&source.AuthError{Status: http.StatusUnauthorized, Message: "expired"})
	assert.ErrorContains(t, err, "camphub login")

	plain := errors.New("boom")
	assert.Equal(t, plain, explain(plain))
}

func TestPrintNotificationsJSONIncludesRoute(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printNotifications(&buf, userDemo()[:2], false, "json", fixedNow))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "n1", out[0]["id"])
	assert.Equal(t, "/CampHub/profile?tab=rental-orders&bookingId=b101", out[0]["route"])
	assert.Equal(t, "/CampHub/profile?tab=transactions&transactionId=t55", out[1]["route"])

	assert.Contains(t, buf.String(), `"route": "/CampHub/profile?tab=rental-orders&bookingId=b101"`)
	assert.NotContains(t, buf.String(), `\u0026`)
}

func TestPrintNotificationsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printNotifications(&buf, userDemo()[:1], false, "TABLE", fixedNow))

	out := buf.String()
	assert.Contains(t, out, "n1")
	assert.Contains(t, out, "New booking request")
	assert.Contains(t, out, "bookingId=b101")
}

func TestPrintNotificationsAdminRoutes(t *testing.T) {
	var admin []model.Notification
	for _, n := range demoNotifications(fixedNow) {
		if n.RecipientID == stubAdminID {
			admin = append(admin, n)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, printNotifications(&buf, admin, true, "json", fixedNow))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "/admin/disputes?disputeId=d9", out[0]["route"])
	assert.Equal(t, "/admin/items?status=pending&itemId=i13", out[1]["route"])
	assert.Equal(t, "/admin/bookings?bookingId=b102", out[2]["route"])
}

func TestPrintNotificationsRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, printNotifications(&buf, nil, false, "yaml", fixedNow))
}

func TestDemoNotificationsHaveUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range demoNotifications(fixedNow) {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
		assert.False(t, n.CreatedAt.IsZero())
	}
}

func TestInteractiveOnlyForTUI(t *testing.T) {
	assert.True(t, interactive(tuiCmd))
	assert.False(t, interactive(listCmd))
	assert.False(t, interactive(watchCmd))
	assert.False(t, interactive(stubServerCmd))
	assert.Equal(t, stdoutIsTerminal(), interactive(rootCmd))
}
