package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// DoseHistory is one entry in the append-only dose ledger. Entries are
// immutable once written; a miss is the absence of an entry for an expected
// slot, not a negative record. MedicationID is a weak reference: it may
// dangle after a reset and readers must tolerate that.
type DoseHistory struct {
	ID           string    `gorm:"primaryKey;size:26" json:"id"`
	MedicationID string    `gorm:"index;size:36;not null" json:"medication_id"`
	Timestamp    time.Time `gorm:"index;not null" json:"timestamp"`
	Taken        bool      `gorm:"not null" json:"taken"`
}

// BeforeCreate assigns a ULID so ledger IDs sort in insertion order.
func (d *DoseHistory) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
		if err != nil {
			return err
		}
		d.ID = id.String()
	}
	return nil
}
