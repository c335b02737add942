package model

import "time"

type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// Session is one parking stay keyed by canonical plate. At most one OPEN
// session per plate exists at any instant (partial unique index); a CLOSED
// session is never modified again.
type Session struct {
	ID              uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Plate           string        `gorm:"type:varchar(32);not null;index" json:"plate"`
	VehicleType     string        `gorm:"type:varchar(32);not null" json:"vehicle_type"`
	SlotID          string        `gorm:"type:varchar(16);not null" json:"slot_id"`
	EntryTime       time.Time     `gorm:"not null" json:"entry_time"`
	ExitTime        *time.Time    `json:"exit_time"`
	DurationMinutes *int64        `json:"duration_minutes"`
	Amount          *int64        `json:"amount"`
	Status          SessionStatus `gorm:"type:varchar(8);not null;default:OPEN;index" json:"status"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string {
	return "parking_sessions"
}
