package model

import "time"

type SlotClass string

const (
	SlotSmall  SlotClass = "small"
	SlotMedium SlotClass = "medium"
	SlotLarge  SlotClass = "large"
	SlotXL     SlotClass = "xl"
)

// SlotClasses is ordered smallest to largest.
var SlotClasses = []SlotClass{SlotSmall, SlotMedium, SlotLarge, SlotXL}

// Slot is a physical parking slot. OccupantPlate and OccupiedSince are
// set iff Occupied is true; the slot repository is the only mutator.
type Slot struct {
	ID            string     `gorm:"type:varchar(16);primaryKey" json:"id"`
	Class         SlotClass  `gorm:"type:varchar(16);not null;index" json:"class"`
	Occupied      bool       `gorm:"not null;default:false" json:"occupied"`
	OccupantPlate *string    `gorm:"type:varchar(32);index" json:"occupant_plate,omitempty"`
	OccupiedSince *time.Time `json:"occupied_since,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Slot) TableName() string {
	return "parking_slots"
}
