package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/camphub/internal/auth"
	"github.com/nhle/camphub/internal/stubapi"
)

// StubSecret signs every token minted by NewStub.
const StubSecret = "camphub-test-secret"

// Stub bundles a running stub backend with tokens for a regular user
// ("u1") and an admin ("admin1").
type Stub struct {
	API        *stubapi.Server
	HTTP       *httptest.Server
	UserToken  string
	AdminToken string
}

// URL returns the base URL of the running stub.
func (s *Stub) URL() string {
	return s.HTTP.URL
}

// NewStub starts a stub backend on a random local port. It is shut down
// automatically when the test completes.
func NewStub(t *testing.T) *Stub {
	t.Helper()

	gin.SetMode(gin.TestMode)

	m := auth.NewManager(StubSecret, time.Hour)
	api := stubapi.New(m, nil)
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	return &Stub{
		API:        api,
		HTTP:       srv,
		UserToken:  MustToken(t, m, "u1", auth.RoleUser),
		AdminToken: MustToken(t, m, "admin1", auth.RoleAdmin),
	}
}

// MustToken signs a token or fails the test.
func MustToken(t *testing.T, m *auth.Manager, userID, role string) string {
	t.Helper()

	token, err := m.GenerateToken(userID, userID+"@camphub.test", role)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}
