package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chittrack/internal/core"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	session := Session{Role: core.RoleAdmin, Phone: "9876543210", Name: "Administrator"}
	token, err := manager.Generate(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := manager.Validate(token)
	require.NoError(t, err)
	require.Equal(t, session, got)
}

func TestJWTRejectsExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate(Session{Role: core.RoleMember, Phone: "9000000001", Name: "Asha"})
	require.NoError(t, err)

	_, err = manager.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).Generate(Session{Role: core.RoleAdmin})
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	_, err := manager.Validate("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
