package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/angelmondragon/vineinventory-viewer/pkg/db/models"
	"gorm.io/gorm"
)

const itemsTable = "inventory_items"

// ErrUserNotFound is returned when no user matches a telegram id.
var ErrUserNotFound = errors.New("user not found")

// Repository manages persistence for inventory rows and their movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	ListItems(ctx context.Context, userID int64, businessName string) ([]models.InventoryItem, error)
	UpdateItemColumn(ctx context.Context, update ColumnUpdate) (int64, error)
	ListMovements(ctx context.Context, userID int64, businessName, wineName string) ([]models.InventoryMovement, error)
}

// ColumnUpdate writes Value into Column of one item and stamps updated_at.
type ColumnUpdate struct {
	UserID       int64
	BusinessName string
	ItemID       int64
	Column       string
	Value        any
	UpdatedAt    time.Time
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListItems(ctx context.Context, userID int64, businessName string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND business_name = ?", userID, businessName).
		Order("name ASC NULLS LAST, vintage ASC NULLS LAST, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItemColumn builds the statement with squirrel because the target
// column varies. Column must already be checked against the editable set.
func (r *repository) UpdateItemColumn(ctx context.Context, update ColumnUpdate) (int64, error) {
	query, args, err := squirrel.Update(itemsTable).
		Set(update.Column, update.Value).
		Set("updated_at", update.UpdatedAt).
		Where(squirrel.Eq{
			"id":            update.ItemID,
			"user_id":       update.UserID,
			"business_name": update.BusinessName,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) ListMovements(ctx context.Context, userID int64, businessName, wineName string) ([]models.InventoryMovement, error) {
	var movements []models.InventoryMovement
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND business_name = ? AND wine_name = ?", userID, businessName, wineName).
		Order("movement_date ASC, id ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
