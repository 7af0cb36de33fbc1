package database

import (
	"context"
	"errors"
	"fmt"

	"ayudame-ya/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlagRepository stores persisted flags per visitor.
type FlagRepository struct {
	db *gorm.DB
}

func NewFlagRepository(db *gorm.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

func (r *FlagRepository) Flag(ctx context.Context, visitorID, key string) (string, bool, error) {
	var flag models.PersistedFlag
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND key = ?", visitorID, key).
		First(&flag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read flag %s: %w", key, err)
	}
	return flag.Value, true, nil
}

// SetFlag creates or overwrites the flag.
func (r *FlagRepository) SetFlag(ctx context.Context, visitorID, key, value string) error {
	flag := models.PersistedFlag{VisitorID: visitorID, Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "visitor_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&flag).Error
	if err != nil {
		return fmt.Errorf("save flag %s: %w", key, err)
	}
	return nil
}

// CopyFlags copies every flag from src into dst in one transaction, keeping
// IDs. Existing rows in dst are updated.
func CopyFlags(src, dst *gorm.DB) (int, error) {
	var flags []models.PersistedFlag
	if err := src.Find(&flags).Error; err != nil {
		return 0, fmt.Errorf("read flags: %w", err)
	}
	if len(flags) == 0 {
		return 0, nil
	}
	err := dst.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "visitor_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).CreateInBatches(&flags, 500).Error
	})
	if err != nil {
		return 0, fmt.Errorf("write flags: %w", err)
	}
	return len(flags), nil
}

// SyncSequences moves PostgreSQL id sequences past the copied rows.
func SyncSequences(db *gorm.DB) error {
	table := models.PersistedFlag{}.TableName()
	query := "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), coalesce(max(id), 0) + 1, false) FROM " + table
	if err := db.Exec(query).Error; err != nil {
		return fmt.Errorf("sync sequence %s: %w", table, err)
	}
	return nil
}
