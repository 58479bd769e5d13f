package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL        = 30 * 24 * time.Hour
	DefaultTokenBytes = 32
)

type Service struct {
	repo       Repository
	ttl        time.Duration
	tokenBytes int
	now        func() time.Time
}

func NewService(repo Repository, ttl time.Duration, tokenBytes int) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tokenBytes < 16 {
		tokenBytes = DefaultTokenBytes
	}
	return &Service{
		repo:       repo,
		ttl:        ttl,
		tokenBytes: tokenBytes,
		now:        time.Now,
	}
}

// Issue creates a fresh bearer token for the member. A member may hold any
// number of concurrent live tokens, one per device.
func (s *Service) Issue(ctx context.Context, memberNumber, role string) (*Session, error) {
	token, err := generateToken(s.tokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created := Session{
		ID:           uuid.NewString(),
		Token:        token,
		MemberNumber: memberNumber,
		Role:         role,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// Resolve maps a presented token to an identity. Expiry and revocation are
// terminal; there is no implicit renewal.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	stored, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if stored.Revoked {
		return nil, ErrTokenInvalid
	}
	if !s.now().UTC().Before(stored.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	return &Identity{MemberNumber: stored.MemberNumber, Role: stored.Role}, nil
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.repo.Revoke(ctx, token)
}

func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredBefore(ctx, s.now().UTC())
}

func generateToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
