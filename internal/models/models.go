package models

import (
	"time"
)

// PersistedFlag is one key-value flag a visitor's browser would otherwise
// keep in local storage.
type PersistedFlag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VisitorID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_visitor_key" json:"visitor_id"`
	Key       string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_visitor_key" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PersistedFlag) TableName() string {
	return "persisted_flags"
}
