package member

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetByIdentifier(ctx context.Context, identifier string) (*Member, error)
	GetByNumber(ctx context.Context, memberNumber string) (*Member, error)
	GetCard(ctx context.Context, cardNumber string) (*Card, error)
	ListDependents(ctx context.Context, primaryID string) ([]DependentCard, error)
	Create(ctx context.Context, m *Member) error
	Upsert(ctx context.Context, m *Member) error
	ReplaceDependents(ctx context.Context, primaryID string, cards []DependentCard) error
	UpdatePasswordHash(ctx context.Context, memberNumber, hash string) error
	AddPoints(ctx context.Context, memberNumber string, delta int64) error
	IsIdentifierTaken(ctx context.Context, identifier, excludeNumber string) (bool, error)
	IsNumberTaken(ctx context.Context, memberNumber string) (bool, error)
}
