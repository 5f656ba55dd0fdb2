package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/huddle/internal/auth/domain"
	authrepo "github.com/smallbiznis/huddle/internal/auth/repository"
	authservice "github.com/smallbiznis/huddle/internal/auth/service"
	"github.com/smallbiznis/huddle/internal/clock"
	"github.com/smallbiznis/huddle/internal/migration"
)

type fixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	svc   domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	users, sessions := authrepo.New(db)
	svc := authservice.New(users, sessions, node, clk, zap.NewNop())

	return &fixture{db: db, clock: clk, svc: svc}
}

var client = domain.ClientInfo{UserAgent: "test-agent", IPAddress: "127.0.0.1"}

func TestSignupAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Signup(ctx, domain.SignupRequest{
		Email:    " Alice@Example.com ",
		Password: "correct horse",
		Name:     "Alice",
	}, client)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), result.ExpiresAt)

	user, session, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)
	assert.Equal(t, "test-agent", session.UserAgent)

	// Raw tokens are never persisted.
	var count int64
	require.NoError(t, f.db.Table("sessions").
		Where("session_token_hash = ?", result.Token).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSignupDefaultsNameFromEmail(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Signup(context.Background(), domain.SignupRequest{
		Email:    "bob.builder@example.com",
		Password: "longenough",
	}, client)
	require.NoError(t, err)
	assert.Equal(t, "bob.builder", result.User.Name)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, domain.SignupRequest{
		Email: "not-an-email", Password: "longenough",
	}, client)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Signup(ctx, domain.SignupRequest{
		Email: "short@example.com", Password: "short",
	}, client)
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = f.svc.Signup(ctx, domain.SignupRequest{
		Email: "dup@example.com", Password: "longenough",
	}, client)
	require.NoError(t, err)
	_, err = f.svc.Signup(ctx, domain.SignupRequest{
		Email: "DUP@example.com", Password: "longenough",
	}, client)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, domain.SignupRequest{
		Email: "carol@example.com", Password: "correct horse",
	}, client)
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, domain.LoginRequest{
		Email: "Carol@Example.com", Password: "correct horse",
	}, client)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = f.svc.Login(ctx, domain.LoginRequest{
		Email: "carol@example.com", Password: "wrong password",
	}, client)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown accounts produce the same error as bad passwords.
	_, err = f.svc.Login(ctx, domain.LoginRequest{
		Email: "nobody@example.com", Password: "correct horse",
	}, client)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Signup(ctx, domain.SignupRequest{
		Email: "dave@example.com", Password: "longenough",
	}, client)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, result.Token))

	_, _, err = f.svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)

	// Logout with an unknown token is a no-op.
	assert.NoError(t, f.svc.Logout(ctx, "bogus-token"))
}

func TestSessionExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Signup(ctx, domain.SignupRequest{
		Email: "erin@example.com", Password: "longenough",
	}, client)
	require.NoError(t, err)

	f.clock.Advance(7*24*time.Hour - time.Minute)
	_, _, err = f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	_, _, err = f.svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}
