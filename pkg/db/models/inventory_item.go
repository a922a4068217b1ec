package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is one wine entry owned by a (user, business) pair.
type InventoryItem struct {
	ID             int64               `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         int64               `gorm:"column:user_id;not null;index:idx_inventory_items_owner"`
	BusinessName   string              `gorm:"column:business_name;not null;index:idx_inventory_items_owner"`
	Name           *string             `gorm:"column:name"`
	Producer       *string             `gorm:"column:producer"`
	Supplier       *string             `gorm:"column:supplier"`
	Vintage        *int                `gorm:"column:vintage"`
	Quantity       *int                `gorm:"column:quantity"`
	MinQuantity    *int                `gorm:"column:min_quantity"`
	SellingPrice   decimal.NullDecimal `gorm:"column:selling_price;type:numeric(10,2)"`
	CostPrice      decimal.NullDecimal `gorm:"column:cost_price;type:numeric(10,2)"`
	WineType       *string             `gorm:"column:wine_type"`
	GrapeVariety   *string             `gorm:"column:grape_variety"`
	Region         *string             `gorm:"column:region"`
	Country        *string             `gorm:"column:country"`
	Classification *string             `gorm:"column:classification"`
	AlcoholContent decimal.NullDecimal `gorm:"column:alcohol_content;type:numeric(5,2)"`
	Description    *string             `gorm:"column:description"`
	Notes          *string             `gorm:"column:notes"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      *time.Time          `gorm:"column:updated_at;autoUpdateTime:false"`
}
