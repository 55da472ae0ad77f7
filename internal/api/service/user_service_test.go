package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctchen222/tictactoe-ai/internal/api/models"
	"ctchen222/tictactoe-ai/internal/api/repository"
	"ctchen222/tictactoe-ai/internal/db"
)

func newService(t *testing.T, ttl time.Duration) UserService {
	t.Helper()
	pool, err := db.Connect(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return NewUserService(repository.NewUserRepository(pool), "test-secret", ttl)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, time.Hour)

	reg, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", reg.PlayerID)

	_, err = svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "secret2"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	login, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	playerID, err := svc.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.PlayerID, playerID)

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &models.LoginRequest{Username: "bob", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGuestLogin(t *testing.T) {
	svc := newService(t, time.Hour)

	a, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	b, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.PlayerID, b.PlayerID)

	id, err := svc.ParseToken(a.Token)
	require.NoError(t, err)
	assert.Equal(t, a.PlayerID, id)
}

func TestParseTokenRejects(t *testing.T) {
	svc := newService(t, time.Hour)

	expired, err := newService(t, -time.Minute).GuestLogin(context.Background())
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "p1",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	foreignToken, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"expired":      expired.Token,
		"wrong secret": foreignToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
