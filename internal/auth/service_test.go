package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/printhart/printhart/internal/shared"
)

type memoryRepo struct {
	users map[string]User
}

func (r *memoryRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	u, ok := r.users[strings.ToLower(username)]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, shared.ErrNotFound)
	}
	return &u, nil
}

func seedUser(t *testing.T, username, password string, active bool) *memoryRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &memoryRepo{users: map[string]User{
		strings.ToLower(username): {
			ID:           1,
			Username:     username,
			PasswordHash: string(hash),
			IsActive:     active,
		},
	}}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := NewService(seedUser(t, "operator", "s3cret", true))

	user, err := svc.Authenticate(context.Background(), "operator", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "operator", user.Username)
}

func TestAuthenticateUsernameIgnoresCase(t *testing.T) {
	svc := NewService(seedUser(t, "operator", "s3cret", true))

	_, err := svc.Authenticate(context.Background(), "OPERATOR", "s3cret")
	require.NoError(t, err)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(seedUser(t, "operator", "s3cret", true))

	_, err := svc.Authenticate(context.Background(), "operator", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewService(seedUser(t, "operator", "s3cret", true))

	_, err := svc.Authenticate(context.Background(), "nobody", "s3cret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc := NewService(seedUser(t, "operator", "s3cret", false))

	_, err := svc.Authenticate(context.Background(), "operator", "s3cret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
