package admission

import (
	"context"
	"time"

	admissiondomain "club-pass-go/internal/domain/admission"
	memberdomain "club-pass-go/internal/domain/member"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(admissiondomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) LockCard(ctx context.Context, card *memberdomain.Card) error {
	locking := clause.Locking{Strength: "UPDATE"}
	if card.IsDependent {
		var dep memberdomain.DependentCard
		return r.db.WithContext(ctx).Clauses(locking).
			Where("card_number = ?", card.CardNumber).
			First(&dep).Error
	}
	var m memberdomain.Member
	return r.db.WithContext(ctx).Clauses(locking).
		Where("member_number = ?", card.CardNumber).
		First(&m).Error
}

func (r *PostgresRepository) HasGrantSince(ctx context.Context, cardNumber string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&admissiondomain.Event{}).
		Where("card_number = ? AND outcome = ? AND created_at > ?", cardNumber, admissiondomain.OutcomeGranted, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) AppendEvent(ctx context.Context, event *admissiondomain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *PostgresRepository) AddPoints(ctx context.Context, card *memberdomain.Card, delta int64) error {
	if card.IsDependent {
		return r.db.WithContext(ctx).Model(&memberdomain.DependentCard{}).
			Where("card_number = ?", card.CardNumber).
			Update("points", gorm.Expr("points + ?", delta)).Error
	}
	return r.db.WithContext(ctx).Model(&memberdomain.Member{}).
		Where("member_number = ?", card.CardNumber).
		Update("points", gorm.Expr("points + ?", delta)).Error
}

func (r *PostgresRepository) ListEvents(ctx context.Context, limit int) ([]admissiondomain.Event, error) {
	var events []admissiondomain.Event
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) ListEventsForCards(ctx context.Context, cardNumbers []string, limit int) ([]admissiondomain.Event, error) {
	var events []admissiondomain.Event
	if err := r.db.WithContext(ctx).
		Where("card_number IN ?", cardNumbers).
		Order("created_at desc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
