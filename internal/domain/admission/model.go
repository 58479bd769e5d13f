package admission

import "time"

type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
)

type Reason string

const (
	ReasonTampered      Reason = "tampered"
	ReasonUnknownMember Reason = "unknown_member"
	ReasonInactive      Reason = "inactive"
	ReasonExpired       Reason = "expired"
	ReasonDuplicateScan Reason = "duplicate_scan"
)

const DefaultPointsAward = 10

// Event is one scan attempt and its recorded outcome. The log is
// append-only; nothing in the engine updates or deletes rows.
type Event struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	CardNumber    string    `gorm:"not null;index"`
	MemberName    string    `gorm:"not null"`
	EventName     string    `gorm:"not null"`
	ScannedBy     string    `gorm:"not null"`
	DeviceContext string    `gorm:""`
	Outcome       Outcome   `gorm:"type:varchar(16);not null"`
	Reason        Reason    `gorm:"type:varchar(32)"`
	PointsDelta   int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

func (Event) TableName() string {
	return "admission_events"
}

type ScanInput struct {
	Payload       string
	EventName     string
	ScannedBy     string
	DeviceContext string
}

type Result struct {
	Outcome       Outcome
	Reason        Reason
	CardNumber    string
	MemberName    string
	PointsAwarded int64
}
