package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medreminder-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	ListMedications(ctx context.Context) ([]model.Medication, error)
	GetMedication(ctx context.Context, id string) (*model.Medication, error)
	CreateMedication(ctx context.Context, med *model.Medication) error

	ListDoseHistory(ctx context.Context) ([]model.DoseHistory, error)
	ListDosesBetween(ctx context.Context, from, to time.Time) ([]model.DoseHistory, error)
	AppendDose(ctx context.Context, entry *model.DoseHistory) error

	ClearAll(ctx context.Context) error

	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for collaborators that run their own
// queries (notification workers, migrations in tests).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListMedications returns the catalog in creation order.
func (s *gormStore) ListMedications(ctx context.Context) ([]model.Medication, error) {
	var meds []model.Medication
	if err := s.db.WithContext(ctx).Order("created_at").Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

func (s *gormStore) GetMedication(ctx context.Context, id string) (*model.Medication, error) {
	var med model.Medication
	if err := s.db.WithContext(ctx).First(&med, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &med, nil
}

func (s *gormStore) CreateMedication(ctx context.Context, med *model.Medication) error {
	if err := s.db.WithContext(ctx).Create(med).Error; err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

// ListDoseHistory returns the full ledger in append order.
func (s *gormStore) ListDoseHistory(ctx context.Context) ([]model.DoseHistory, error) {
	var doses []model.DoseHistory
	if err := s.db.WithContext(ctx).Order("id").Find(&doses).Error; err != nil {
		return nil, fmt.Errorf("failed to list dose history: %w", err)
	}
	return doses, nil
}

// ListDosesBetween returns ledger entries with from <= timestamp < to,
// in append order.
func (s *gormStore) ListDosesBetween(ctx context.Context, from, to time.Time) ([]model.DoseHistory, error) {
	var doses []model.DoseHistory
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("id").
		Find(&doses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list doses between %s and %s: %w", from, to, err)
	}
	return doses, nil
}

// AppendDose writes one immutable ledger entry. No deduplication happens
// here: recording the same medication twice in a day yields two entries.
// When the entry is marked taken the medication's supply counter drops by
// one in the same transaction; a dangling medication reference is tolerated.
func (s *gormStore) AppendDose(ctx context.Context, entry *model.DoseHistory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append dose entry: %w", err)
		}
		if entry.Taken {
			err := tx.Model(&model.Medication{}).
				Where("id = ? AND current_supply > 0", entry.MedicationID).
				UpdateColumn("current_supply", gorm.Expr("current_supply - 1")).Error
			if err != nil {
				return fmt.Errorf("failed to decrement supply for medication %s: %w", entry.MedicationID, err)
			}
		}
		return nil
	})
}

// ClearAll wipes the medication catalog and dose ledger atomically. Push
// subscriptions are device registrations and survive the reset.
func (s *gormStore) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.DoseHistory{}).Error; err != nil {
			return fmt.Errorf("failed to clear dose history: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Medication{}).Error; err != nil {
			return fmt.Errorf("failed to clear medications: %w", err)
		}
		return nil
	})
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
