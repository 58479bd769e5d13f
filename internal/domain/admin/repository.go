package admin

import (
	"context"
	"time"

	"club-pass-go/internal/domain/member"
)

type Repository interface {
	// Transaction runs fn inside a serializable transaction so the admin
	// count cannot go stale between the check and the insert.
	Transaction(ctx context.Context, fn func(Repository) error) error
	CountAdmins(ctx context.Context) (int64, error)
	CreateMember(ctx context.Context, m *member.Member) error
	IsIdentifierTaken(ctx context.Context, identifier string) (bool, error)
	IsNumberTaken(ctx context.Context, memberNumber string) (bool, error)
	Stats(ctx context.Context, now time.Time, expiringWithin time.Duration) (*Stats, error)
	ListMembers(ctx context.Context) ([]MemberOverview, error)
	ExpiringMembers(ctx context.Context, now time.Time, within time.Duration) ([]ExpiringMember, error)
}
