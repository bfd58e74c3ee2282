package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/nhle/camphub/internal/auth"
	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/notify"
	"github.com/nhle/camphub/internal/source"
	"github.com/nhle/camphub/internal/source/camphub"
	"github.com/nhle/camphub/internal/store"
	appsync "github.com/nhle/camphub/internal/sync"
)

// Session bundles everything bound to one base URL and token.
type Session struct {
	API       source.NotificationAPI
	Poller    *appsync.Poller
	Inbox     *notify.Inbox
	Principal string
	IsAdmin   bool
}

// NewAPIFunc builds the backend client for a connection.
type NewAPIFunc func(cfg model.AppConfig, baseURL, token string, logger *zap.Logger) source.NotificationAPI

// DefaultAPI builds the HTTP client from the configuration.
func DefaultAPI(cfg model.AppConfig, baseURL, token string, logger *zap.Logger) source.NotificationAPI {
	return camphub.NewClient(baseURL, token,
		camphub.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		camphub.WithMaxRetries(cfg.API.MaxRetries),
		camphub.WithLogger(logger),
	)
}

// Connect wires a Session. The admin flag comes from the token's claims;
// an undecodable token is treated as a regular user and left to the
// backend to reject.
func Connect(
	cfg model.AppConfig,
	baseURL, token string,
	s store.Store,
	logger *zap.Logger,
	newAPI NewAPIFunc,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if newAPI == nil {
		newAPI = DefaultAPI
	}

	claims, err := auth.ParseUnverified(token)
	if err != nil {
		logger.Debug("token claims unreadable", zap.Error(err))
	}

	api := newAPI(cfg, baseURL, token, logger)

	pollOpts := []appsync.Option{
		appsync.WithLogger(logger),
		appsync.WithFetchTimeout(cfg.RequestTimeout()),
	}
	if s != nil {
		pollOpts = append(pollOpts, appsync.WithStore(s))
	}

	return &Session{
		API:       api,
		Poller:    appsync.New(api, cfg.PollInterval(), pollOpts...),
		Inbox:     notify.NewInbox(api, claims.IsAdmin(),
			notify.WithLogger(logger),
			notify.WithRequestTimeout(cfg.RequestTimeout()),
		),
		Principal: claims.Principal(),
		IsAdmin:   claims.IsAdmin(),
	}
}

// Close stops the poller.
func (s *Session) Close() {
	if s != nil && s.Poller != nil {
		s.Poller.Stop()
	}
}

// Validate checks that token is accepted by the backend at baseURL and
// returns a label for the principal.
func Validate(ctx context.Context, cfg model.AppConfig, baseURL, token string, newAPI NewAPIFunc) (string, error) {
	if newAPI == nil {
		newAPI = DefaultAPI
	}
	if _, err := newAPI(cfg, baseURL, token, zap.NewNop()).ListMine(ctx); err != nil {
		return "", fmt.Errorf("listing notifications: %w", err)
	}

	claims, err := auth.ParseUnverified(token)
	if err != nil {
		return "", nil
	}
	label := claims.Principal()
	if claims.Email != "" {
		label = claims.Email
	}
	if claims.IsAdmin() {
		label += " (admin)"
	}
	return label, nil
}
