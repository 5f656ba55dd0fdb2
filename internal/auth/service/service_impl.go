package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/huddle/internal/auth/domain"
	"github.com/smallbiznis/huddle/internal/auth/password"
	"github.com/smallbiznis/huddle/internal/clock"
)

const (
	sessionTTL        = 7 * 24 * time.Hour
	minPasswordLength = 8
)

type service struct {
	users    domain.Repository
	sessions domain.SessionRepository
	node     *snowflake.Node
	clock    clock.Clock
	log      *zap.Logger
}

func New(
	users domain.Repository,
	sessions domain.SessionRepository,
	node *snowflake.Node,
	clk clock.Clock,
	log *zap.Logger,
) domain.Service {
	return &service{users: users, sessions: sessions, node: node, clock: clk, log: log}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest, client domain.ClientInfo) (*domain.AuthResult, error) {
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	user := &domain.User{
		ID:           uint64(s.node.Generate().Int64()),
		Email:        email,
		Name:         name,
		AvatarURL:    strings.TrimSpace(req.AvatarURL),
		PasswordHash: &hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.startSession(ctx, user, client)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest, client domain.ClientInfo) (*domain.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := password.Verify(req.Password, *user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, user, client)
}

func (s *service) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.FindByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if err := s.sessions.Revoke(ctx, session.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	session, err := s.sessions.FindByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, nil, err
	}
	if session.RevokedAt != nil {
		return nil, nil, domain.ErrSessionRevoked
	}
	if s.clock.Now().After(session.ExpiresAt) {
		return nil, nil, domain.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessions.TouchLastSeen(ctx, session.ID); err != nil {
		s.log.Warn("failed to update session last_seen", zap.Error(err))
	}

	return user, session, nil
}

func (s *service) startSession(ctx context.Context, user *domain.User, client domain.ClientInfo) (*domain.AuthResult, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:               uint64(s.node.Generate().Int64()),
		UserID:           user.ID,
		SessionTokenHash: hashToken(token),
		UserAgent:        client.UserAgent,
		IPAddress:        client.IPAddress,
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
