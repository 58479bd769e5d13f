package session

import "time"

type Session struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Token        string    `gorm:"not null;uniqueIndex"`
	MemberNumber string    `gorm:"not null;index"`
	Role         string    `gorm:"type:varchar(16);not null"`
	IssuedAt     time.Time `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	Revoked      bool      `gorm:"not null;default:false"`
}

// Identity is what a resolved token grants for the rest of the request.
type Identity struct {
	MemberNumber string
	Role         string
}
