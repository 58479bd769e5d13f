package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Revoke(ctx context.Context, token string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
