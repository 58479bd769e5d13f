package member

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusSuspended = "suspended"
)

type Member struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	MemberNumber string    `gorm:"not null;uniqueIndex"`
	FirstName    string    `gorm:"not null"`
	Surname      string    `gorm:"not null"`
	Identifier   string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Category     string    `gorm:"not null"`
	ExpiryDate   time.Time `gorm:"not null"`
	Status       string    `gorm:"type:varchar(16);not null"`
	Points       int64     `gorm:"not null;default:0"`
	Role         string    `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

type DependentCard struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	PrimaryID    string    `gorm:"type:uuid;not null;index"`
	CardNumber   string    `gorm:"not null;uniqueIndex"`
	Name         string    `gorm:"not null"`
	Relationship string    `gorm:"type:varchar(32)"`
	Points       int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Primary Member `gorm:"foreignKey:PrimaryID;references:ID;constraint:OnDelete:CASCADE"`
}

// Card is the scannable view of either a primary member or a dependent
// sub-card. For dependents the status and expiry come from the primary
// account, which always governs its sub-cards.
type Card struct {
	CardNumber   string
	Name         string
	MemberNumber string
	Category     string
	Status       string
	ExpiryDate   time.Time
	Points       int64
	IsDependent  bool
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.Surname
}

func (m *Member) CardView() Card {
	return Card{
		CardNumber:   m.MemberNumber,
		Name:         m.FullName(),
		MemberNumber: m.MemberNumber,
		Category:     m.Category,
		Status:       m.Status,
		ExpiryDate:   m.ExpiryDate,
		Points:       m.Points,
	}
}
