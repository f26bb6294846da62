package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Medication represents one drug regimen entry in the catalog.
// Apart from the supply counter it is never mutated after creation;
// removal happens only through a full data reset.
type Medication struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Name      string `gorm:"size:256;not null" json:"name"`
	Dosage    string `gorm:"size:128" json:"dosage"`
	Frequency string `gorm:"size:64;not null" json:"frequency"`
	// Times holds the scheduled clock times ("HH:MM") as a JSON column.
	// Empty only for "As needed" medications.
	Times datatypes.JSONSlice[string] `json:"times"`
	// Duration is the raw label selected at creation ("7 days", "Ongoing").
	// The leading integer is parsed at evaluation time; -1 means ongoing.
	Duration        string    `gorm:"size:32;not null" json:"duration"`
	StartDate       time.Time `gorm:"not null" json:"start_date"`
	Color           string    `gorm:"size:16" json:"color"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	RefillReminder  bool      `json:"refill_reminder"`
	CurrentSupply   int       `json:"current_supply"`
	RefillAt        int       `json:"refill_at"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate assigns the immutable identifier.
func (m *Medication) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
