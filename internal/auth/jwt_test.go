package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateToken("u1", "u1@camphub.test", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Principal())
	assert.True(t, claims.IsAdmin())
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret", time.Hour).GenerateToken("u1", "", RoleUser)
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := NewManager("secret", -time.Minute).GenerateToken("u1", "", RoleUser)
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestParseUnverifiedReadsRole(t *testing.T) {
	token, err := NewManager("whatever", time.Hour).GenerateToken("u2", "", RoleUser)
	require.NoError(t, err)

	claims, err := ParseUnverified(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
	assert.Equal(t, "u2", claims.Principal())
}

func TestParseUnverifiedGarbage(t *testing.T) {
	_, err := ParseUnverified("not-a-jwt")
	assert.Error(t, err)

	var nilClaims *Claims
	assert.False(t, nilClaims.IsAdmin())
	assert.Empty(t, nilClaims.Principal())
}
