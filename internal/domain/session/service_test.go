package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSessionRepo struct {
	sessions map[string]*Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *Session) error {
	r.sessions[s.Token] = s
	return nil
}

func (r *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*Session, error) {
	s, ok := r.sessions[token]
	if !ok {
		return nil, ErrTokenInvalid
	}
	return s, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	if s, ok := r.sessions[token]; ok {
		s.Revoked = true
	}
	return nil
}

func (r *fakeSessionRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	for token, s := range r.sessions {
		if s.ExpiresAt.Before(cutoff) {
			delete(r.sessions, token)
			purged++
		}
	}
	return purged, nil
}

func TestIssueAndResolve(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewService(repo, time.Hour, 32)

	issued, err := svc.Issue(context.Background(), "M1001", "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Token == "" {
		t.Fatalf("expected a token")
	}
	if !issued.ExpiresAt.After(issued.IssuedAt) {
		t.Fatalf("expected expiry after issue, got %v / %v", issued.IssuedAt, issued.ExpiresAt)
	}

	identity, err := svc.Resolve(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity.MemberNumber != "M1001" || identity.Role != "member" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestIssueTokensAreDistinct(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewService(repo, time.Hour, 32)

	first, err := svc.Issue(context.Background(), "M1001", "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := svc.Issue(context.Background(), "M1001", "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first.Token == second.Token {
		t.Fatalf("tokens for separate logins must differ")
	}

	// Both device sessions stay valid at once.
	if _, err := svc.Resolve(context.Background(), first.Token); err != nil {
		t.Fatalf("resolve first: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), second.Token); err != nil {
		t.Fatalf("resolve second: %v", err)
	}
}

func TestResolveExpired(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewService(repo, time.Hour, 32)

	issued, err := svc.Issue(context.Background(), "M1001", "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := svc.Resolve(context.Background(), issued.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestResolveRevoked(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewService(repo, time.Hour, 32)

	issued, err := svc.Issue(context.Background(), "M1001", "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(context.Background(), issued.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), issued.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	svc := NewService(newFakeSessionRepo(), time.Hour, 32)

	if _, err := svc.Resolve(context.Background(), "no-such-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "  "); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for blank token, got %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewService(repo, time.Hour, 32)

	live, err := svc.Issue(context.Background(), "M1001", "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stale, err := svc.Issue(context.Background(), "M1002", "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	repo.sessions[stale.Token].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	purged, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
	if _, err := svc.Resolve(context.Background(), live.Token); err != nil {
		t.Fatalf("live session must survive, got %v", err)
	}
}
