package admin

import "time"

type Stats struct {
	ActiveMembers     int64 `json:"active_members"`
	ExpiringSoon      int64 `json:"expiring_soon"`
	FamilyMemberships int64 `json:"family_memberships"`
	SoloMemberships   int64 `json:"solo_memberships"`
	TodayAttendance   int64 `json:"today_attendance"`
	TotalPoints       int64 `json:"total_points"`
	AdminAccounts     int64 `json:"admin_accounts"`
}

type MemberOverview struct {
	MemberNumber    string    `json:"member_number"`
	FirstName       string    `json:"first_name"`
	Surname         string    `json:"surname"`
	Identifier      string    `json:"identifier"`
	Category        string    `json:"category"`
	ExpiryDate      time.Time `json:"expiry_date"`
	Status          string    `json:"status"`
	Points          int64     `json:"points"`
	Role            string    `json:"role"`
	DependentCount  int64     `json:"dependent_count"`
	AttendanceCount int64     `json:"attendance_count"`
}

type ExpiringMember struct {
	MemberNumber string    `json:"member_number"`
	FirstName    string    `json:"first_name"`
	Surname      string    `json:"surname"`
	Identifier   string    `json:"identifier"`
	Category     string    `json:"category"`
	ExpiryDate   time.Time `json:"expiry_date"`
}
