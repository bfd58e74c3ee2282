package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/camphub/internal/model"
)

// AuthError indicates that authentication has failed or expired.
// It is returned by the backend client when a 401 or 403 response is received.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%d): %s", e.Status, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a non-2xx response that is not an authentication failure.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("camphub API error (%d) on %s %s: %s", e.Status, e.Method, e.Path, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// NotificationLister fetches the current principal's notifications.
type NotificationLister interface {
	ListMine(ctx context.Context) ([]model.Notification, error)
}

// NotificationAPI is the backend contract the notification subsystem
// depends on. There is no bulk mark-all endpoint.
type NotificationAPI interface {
	NotificationLister

	// MarkRead marks one notification as read.
	MarkRead(ctx context.Context, id string) error

	// Delete removes one notification.
	Delete(ctx context.Context, id string) error
}
