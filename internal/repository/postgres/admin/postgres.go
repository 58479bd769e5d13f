package admin

import (
	"context"
	"database/sql"
	"time"

	admindomain "club-pass-go/internal/domain/admin"
	admissiondomain "club-pass-go/internal/domain/admission"
	memberdomain "club-pass-go/internal/domain/member"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(admindomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (r *PostgresRepository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&memberdomain.Member{}).
		Where("role = ?", memberdomain.RoleAdmin).
		Count(&count).Error
	return count, err
}

func (r *PostgresRepository) CreateMember(ctx context.Context, m *memberdomain.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresRepository) IsIdentifierTaken(ctx context.Context, identifier string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&memberdomain.Member{}).Where("identifier = ?", identifier).Count(&count).Error; err != nil {
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

func (r *PostgresRepository) Stats(ctx context.Context, now time.Time, expiringWithin time.Duration) (*admindomain.Stats, error) {
	stats := admindomain.Stats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&memberdomain.Member{}).
		Where("status = ?", memberdomain.StatusActive).
		Count(&stats.ActiveMembers).Error; err != nil {
		return nil, err
	}

	threshold := now.Add(expiringWithin)
	if err := db.Model(&memberdomain.Member{}).
		Where("status = ? AND expiry_date > ? AND expiry_date <= ?", memberdomain.StatusActive, now, threshold).
		Count(&stats.ExpiringSoon).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&memberdomain.Member{}).
		Where("category LIKE ?", "%Family%").
		Count(&stats.FamilyMemberships).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&memberdomain.Member{}).
		Where("category LIKE ?", "%Solo%").
		Count(&stats.SoloMemberships).Error; err != nil {
		return nil, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := db.Model(&admissiondomain.Event{}).
		Where("outcome = ? AND created_at >= ?", admissiondomain.OutcomeGranted, dayStart).
		Count(&stats.TodayAttendance).Error; err != nil {
		return nil, err
	}

	var memberPoints, dependentPoints sql.NullInt64
	if err := db.Model(&memberdomain.Member{}).Select("SUM(points)").Scan(&memberPoints).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&memberdomain.DependentCard{}).Select("SUM(points)").Scan(&dependentPoints).Error; err != nil {
		return nil, err
	}
	stats.TotalPoints = memberPoints.Int64 + dependentPoints.Int64

	admins, err := r.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	stats.AdminAccounts = admins

	return &stats, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context) ([]admindomain.MemberOverview, error) {
	var rows []admindomain.MemberOverview
	err := r.db.WithContext(ctx).
		Table("members").
		Select(`members.member_number, members.first_name, members.surname, members.identifier,
			members.category, members.expiry_date, members.status, members.points, members.role,
			COUNT(DISTINCT dependent_cards.id) AS dependent_count,
			COUNT(DISTINCT admission_events.id) AS attendance_count`).
		Joins("LEFT JOIN dependent_cards ON dependent_cards.primary_id = members.id").
		Joins("LEFT JOIN admission_events ON admission_events.card_number = members.member_number").
		Group("members.id").
		Order("members.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) ExpiringMembers(ctx context.Context, now time.Time, within time.Duration) ([]admindomain.ExpiringMember, error) {
	var rows []admindomain.ExpiringMember
	err := r.db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Select("member_number, first_name, surname, identifier, category, expiry_date").
		Where("status = ? AND expiry_date > ? AND expiry_date <= ?", memberdomain.StatusActive, now, now.Add(within)).
		Order("expiry_date asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
