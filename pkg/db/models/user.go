package models

import "time"

// User maps a Telegram account to the internal id that scopes inventory rows.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TelegramID   int64     `gorm:"column:telegram_id;not null;uniqueIndex"`
	BusinessName *string   `gorm:"column:business_name"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
