package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/camphub/internal/keys"
)

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("http://localhost:8089"))
	assert.Error(t, validateURL(""))
	assert.Error(t, validateURL("localhost"))

	assert.NoError(t, validateRequired("Token")("abc"))
	assert.EqualError(t, validateRequired("Token")("  "), "Token is required")
}

func TestValidateAndSaveSuccess(t *testing.T) {
	var savedURL, savedToken string
	deps := Deps{
		Validate: func(ctx context.Context, baseURL, token string) (string, error) {
			return "u1", nil
		},
		Save: func(baseURL, token string) error {
			savedURL, savedToken = baseURL, token
			return nil
		},
	}
	m := New(deps, keys.DefaultKeyMap(), "http://localhost:8089/", 80, 24)
	m.formToken = " tok "

	msg := m.validateAndSave()()
	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, ModeResult, m.Mode())
	assert.Equal(t, "http://localhost:8089", savedURL)
	assert.Equal(t, "tok", savedToken)

	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)
	assert.Equal(t, "u1", saved.Principal)
	assert.Contains(t, m.View(), "Signed in as: u1")
}

func TestValidateFailureSkipsSave(t *testing.T) {
	saves := 0
	deps := Deps{
		Validate: func(ctx context.Context, baseURL, token string) (string, error) {
			return "", errors.New("401 unauthorized")
		},
		Save: func(baseURL, token string) error {
			saves++
			return nil
		},
	}
	m := New(deps, keys.DefaultKeyMap(), "http://localhost:8089", 80, 24)

	m, cmd := m.Update(m.validateAndSave()())
	assert.Nil(t, cmd)
	assert.Equal(t, 0, saves)
	assert.Contains(t, m.View(), "Connection failed")
	assert.Contains(t, m.View(), "401 unauthorized")
}

func TestSaveFailureIsReported(t *testing.T) {
	deps := Deps{
		Validate: func(ctx context.Context, baseURL, token string) (string, error) {
			return "u1", nil
		},
		Save: func(baseURL, token string) error {
			return errors.New("keyring locked")
		},
	}
	m := New(deps, keys.DefaultKeyMap(), "http://localhost:8089", 80, 24)

	m, _ = m.Update(m.validateAndSave()())
	assert.Contains(t, m.View(), "connection OK but save failed")
}
