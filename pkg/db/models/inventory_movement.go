package models

import (
	"time"

	"github.com/angelmondragon/vineinventory-viewer/pkg/enums"
)

// InventoryMovement records one stock change written by the processor.
type InventoryMovement struct {
	ID             int64              `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         int64              `gorm:"column:user_id;not null"`
	BusinessName   string             `gorm:"column:business_name;not null"`
	WineName       string             `gorm:"column:wine_name;not null"`
	MovementType   enums.MovementType `gorm:"column:movement_type;not null"`
	QuantityChange int                `gorm:"column:quantity_change;not null"`
	QuantityBefore *int               `gorm:"column:quantity_before"`
	QuantityAfter  *int               `gorm:"column:quantity_after"`
	MovementDate   time.Time          `gorm:"column:movement_date;not null"`
}
