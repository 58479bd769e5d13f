package session

import (
	"context"
	"errors"
	"time"

	sessiondomain "club-pass-go/internal/domain/session"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *sessiondomain.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*sessiondomain.Session, error) {
	var s sessiondomain.Session
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sessiondomain.ErrTokenInvalid
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Model(&sessiondomain.Session{}).
		Where("token = ?", token).
		Update("revoked", true).Error
}

func (r *PostgresRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&sessiondomain.Session{})
	return result.RowsAffected, result.Error
}
