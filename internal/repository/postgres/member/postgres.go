package member

import (
	"context"
	"errors"

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

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(memberdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*memberdomain.Member, error) {
	var m memberdomain.Member
	if err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, memberdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) GetByNumber(ctx context.Context, memberNumber string) (*memberdomain.Member, error) {
	var m memberdomain.Member
	if err := r.db.WithContext(ctx).Where("member_number = ?", memberNumber).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, memberdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) GetCard(ctx context.Context, cardNumber string) (*memberdomain.Card, error) {
	var m memberdomain.Member
	err := r.db.WithContext(ctx).Where("member_number = ?", cardNumber).First(&m).Error
	if err == nil {
		card := m.CardView()
		return &card, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var dep memberdomain.DependentCard
	err = r.db.WithContext(ctx).
		Preload("Primary").
		Where("card_number = ?", cardNumber).
		First(&dep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, memberdomain.ErrCardNotFound
		}
		return nil, err
	}

	return &memberdomain.Card{
		CardNumber:   dep.CardNumber,
		Name:         dep.Name,
		MemberNumber: dep.Primary.MemberNumber,
		Category:     dep.Primary.Category,
		Status:       dep.Primary.Status,
		ExpiryDate:   dep.Primary.ExpiryDate,
		Points:       dep.Points,
		IsDependent:  true,
	}, nil
}

func (r *PostgresRepository) ListDependents(ctx context.Context, primaryID string) ([]memberdomain.DependentCard, error) {
	var cards []memberdomain.DependentCard
	if err := r.db.WithContext(ctx).
		Where("primary_id = ?", primaryID).
		Order("card_number asc").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *memberdomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) Upsert(ctx context.Context, m *memberdomain.Member) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "member_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "surname", "identifier", "password_hash",
			"category", "expiry_date", "status", "role", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// On conflict the existing row keeps its id; read it back so callers
	// reference the stored primary key, not the candidate one.
	var stored memberdomain.Member
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("member_number = ?", m.MemberNumber).
		First(&stored).Error; err != nil {
		return err
	}
	m.ID = stored.ID
	return nil
}

func (r *PostgresRepository) ReplaceDependents(ctx context.Context, primaryID string, cards []memberdomain.DependentCard) error {
	if err := r.db.WithContext(ctx).Where("primary_id = ?", primaryID).Delete(&memberdomain.DependentCard{}).Error; err != nil {
		return err
	}
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cards).Error
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, memberNumber, hash string) error {
	result := r.db.WithContext(ctx).Model(&memberdomain.Member{}).
		Where("member_number = ?", memberNumber).
		Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return memberdomain.ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRepository) AddPoints(ctx context.Context, memberNumber string, delta int64) error {
	return r.db.WithContext(ctx).Model(&memberdomain.Member{}).
		Where("member_number = ?", memberNumber).
		Update("points", gorm.Expr("points + ?", delta)).Error
}

func (r *PostgresRepository) IsIdentifierTaken(ctx context.Context, identifier, excludeNumber string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&memberdomain.Member{}).Where("identifier = ?", identifier)
	if excludeNumber != "" {
		query = query.Where("member_number <> ?", excludeNumber)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) IsNumberTaken(ctx context.Context, memberNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&memberdomain.Member{}).Where("member_number = ?", memberNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
