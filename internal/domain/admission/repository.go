package admission

import (
	"context"
	"time"

	"club-pass-go/internal/domain/member"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LockCard takes a write lock on the underlying member or dependent
	// row so concurrent grants for the same card serialize. Different
	// cards must not contend.
	LockCard(ctx context.Context, card *member.Card) error
	HasGrantSince(ctx context.Context, cardNumber string, since time.Time) (bool, error)
	AppendEvent(ctx context.Context, event *Event) error
	AddPoints(ctx context.Context, card *member.Card, delta int64) error
	ListEvents(ctx context.Context, limit int) ([]Event, error)
	ListEventsForCards(ctx context.Context, cardNumbers []string, limit int) ([]Event, error)
}
