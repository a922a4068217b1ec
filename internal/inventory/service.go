package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/vineinventory-viewer/pkg/db"
	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

// Service exposes the inventory read and edit operations behind the viewer API.
type Service interface {
	Snapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error)
	UpdateField(ctx context.Context, input FieldUpdate) error
	Movements(ctx context.Context, telegramID int64, businessName, wineName string) ([]types.Movement, error)
}

// FieldUpdate describes a single-column edit of one inventory row.
type FieldUpdate struct {
	TelegramID   int64
	BusinessName string
	WineID       int64
	Field        string
	Value        string
}

// ServiceParams groups the collaborators of the inventory service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Clock  func() time.Time
}

type service struct {
	repo  Repository
	logg  *logger.Logger
	clock func() time.Time
}

// NewService wires the inventory service with the provided repository.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:  params.Repo,
		logg:  params.Logger,
		clock: clock,
	}, nil
}

func (s *service) Snapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error) {
	now := s.clock().UTC()
	user, err := s.repo.FindUserByTelegramID(ctx, telegramID)
	if errors.Is(err, ErrUserNotFound) {
		s.debug(ctx, "snapshot.user_missing")
		return EmptySnapshot(now), nil
	}
	if err != nil {
		return nil, internalError(err, "resolve user")
	}

	items, err := s.repo.ListItems(ctx, user.ID, strings.TrimSpace(businessName))
	if err != nil {
		if db.IsUndefinedTable(err) {
			s.warn(ctx, "snapshot.inventory_table_missing")
			return EmptySnapshot(now), nil
		}
		return nil, internalError(err, "load inventory")
	}
	return BuildSnapshot(items, now), nil
}

func (s *service) UpdateField(ctx context.Context, input FieldUpdate) error {
	field := strings.TrimSpace(input.Field)
	value, err := CoerceFieldValue(field, input.Value)
	if err != nil {
		return err
	}
	if input.WineID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "wine_id must be positive").
			WithDetails(map[string]any{"field": "wine_id", "value": input.WineID})
	}

	user, err := s.repo.FindUserByTelegramID(ctx, input.TelegramID)
	if errors.Is(err, ErrUserNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return internalError(err, "resolve user")
	}

	affected, err := s.repo.UpdateItemColumn(ctx, ColumnUpdate{
		UserID:       user.ID,
		BusinessName: strings.TrimSpace(input.BusinessName),
		ItemID:       input.WineID,
		Column:       field,
		Value:        value,
		UpdatedAt:    s.clock().UTC(),
	})
	if err != nil {
		if db.IsUndefinedTable(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "inventory not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory field")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wine not found").
			WithDetails(map[string]any{"wine_id": input.WineID})
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"wine_id": input.WineID, "field": field})
		s.logg.Info(logCtx, "inventory.field_updated")
	}
	return nil
}

func (s *service) Movements(ctx context.Context, telegramID int64, businessName, wineName string) ([]types.Movement, error) {
	movements := []types.Movement{}
	user, err := s.repo.FindUserByTelegramID(ctx, telegramID)
	if errors.Is(err, ErrUserNotFound) {
		return movements, nil
	}
	if err != nil {
		return nil, internalError(err, "resolve user")
	}

	records, err := s.repo.ListMovements(ctx, user.ID, strings.TrimSpace(businessName), wineName)
	if err != nil {
		if db.IsUndefinedTable(err) {
			s.warn(ctx, "movements.table_missing")
			return movements, nil
		}
		return nil, internalError(err, "load movements")
	}

	for _, record := range records {
		movements = append(movements, types.Movement{
			Date:           formatTimestamp(record.MovementDate),
			Type:           string(record.MovementType),
			QuantityChange: record.QuantityChange,
			QuantityBefore: record.QuantityBefore,
			QuantityAfter:  record.QuantityAfter,
		})
	}
	return movements, nil
}

func internalError(err error, action string) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func (s *service) debug(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Debug(ctx, msg)
	}
}

func (s *service) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}
