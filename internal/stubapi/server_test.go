package stubapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/camphub/internal/auth"
	"github.com/nhle/camphub/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	srv    *Server
	router *gin.Engine
	user   string
	admin  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := auth.NewManager("test-secret", time.Hour)
	user, err := m.GenerateToken("u1", "camper@camphub.test", auth.RoleUser)
	require.NoError(t, err)
	admin, err := m.GenerateToken("admin1", "admin@camphub.test", auth.RoleAdmin)
	require.NoError(t, err)

	srv := New(m, nil)
	return &fixture{srv: srv, router: srv.Router(), user: user, admin: admin}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAdminCreatesNotificationForRecipient(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/notifications", f.admin, map[string]string{
		"recipientId":   "u1",
		"type":          string(model.TypeItemApproved),
		"referenceType": string(model.RefItem),
		"referenceId":   "i42",
		"title":         "Listing approved",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created model.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "admin1", created.SenderID)
	assert.False(t, created.IsRead)

	w = f.do(http.MethodGet, "/notifications/mine", f.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []model.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
	assert.Equal(t, "i42", mine[0].ReferenceID)

	w = f.do(http.MethodGet, "/notifications/mine", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCreateRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/notifications", f.user, map[string]string{
		"recipientId": "u1",
		"type":        string(model.TypeSystemAnnouncement),
		"title":       "Hello",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")

	w = f.do(http.MethodGet, "/notifications/mine", f.user, nil)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCreateValidatesBody(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/notifications", f.admin, map[string]string{
		"recipientId": "u1",
		"type":        string(model.TypeSystemAnnouncement),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request data")
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/notifications/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/notifications/mine", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserCannotReadOthersNotification(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed(model.Notification{ID: "a1", RecipientID: "admin1", Type: model.TypeDisputeCreated, Title: "Dispute"})

	w := f.do(http.MethodPost, "/notifications/a1/read", f.user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	n, ok := f.srv.Get("a1")
	require.True(t, ok)
	assert.False(t, n.IsRead)
}
