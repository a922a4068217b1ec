package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/vineinventory-viewer/api/middleware"
	"github.com/angelmondragon/vineinventory-viewer/api/responses"
	"github.com/angelmondragon/vineinventory-viewer/api/validators"
	"github.com/angelmondragon/vineinventory-viewer/internal/inventory"
	"github.com/angelmondragon/vineinventory-viewer/internal/viewer"
	"github.com/angelmondragon/vineinventory-viewer/pkg/auth"
	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

const maxWineNameLength = 255

type updateFieldPayload struct {
	Token  string `json:"token" validate:"required"`
	WineID int64  `json:"wine_id" validate:"required"`
	Field  string `json:"field" validate:"required"`
	Value  any    `json:"value"`
}

type updateFieldResponse struct {
	Status string `json:"status"`
	WineID int64  `json:"wine_id"`
	Field  string `json:"field"`
}

type movementsResponse struct {
	Movements []types.Movement `json:"movements"`
}

// InventorySnapshot returns rows, facets and meta for the token's business.
func InventorySnapshot(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		identity, ok := middleware.ViewerIdentityFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "viewer identity missing"))
			return
		}

		snapshot, err := svc.Snapshot(ctx, identity.TelegramID, identity.BusinessName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// InventoryExportCSV sends the snapshot as a CSV attachment.
func InventoryExportCSV(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		identity, ok := middleware.ViewerIdentityFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "viewer identity missing"))
			return
		}

		snapshot, err := svc.Snapshot(ctx, identity.TelegramID, identity.BusinessName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := viewer.WriteCSV(&buf, snapshot); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render csv"))
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, viewer.CSVFilename(identity.BusinessName)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func InventoryMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		identity, ok := middleware.ViewerIdentityFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "viewer identity missing"))
			return
		}

		wineName, err := validators.RequireQuery(r, "wine_name", maxWineNameLength)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		movements, err := svc.Movements(ctx, identity.TelegramID, identity.BusinessName, wineName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, movementsResponse{Movements: movements})
	}
}

// InventoryUpdateField edits one column of one row. The token travels in the
// body, so it is validated here instead of by ViewerAuth.
func InventoryUpdateField(svc inventory.Service, tokens middleware.TokenValidator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || tokens == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload updateFieldPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		identity, err := tokens.Validate(payload.Token)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token rejected"))
			return
		}
		ctx = withIdentityFields(ctx, logg, identity)

		field := strings.TrimSpace(payload.Field)
		value, err := fieldValueString(field, payload.Value)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.UpdateField(ctx, inventory.FieldUpdate{
			TelegramID:   identity.TelegramID,
			BusinessName: identity.BusinessName,
			WineID:       payload.WineID,
			Field:        field,
			Value:        value,
		}); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, updateFieldResponse{Status: "ok", WineID: payload.WineID, Field: field})
	}
}

// fieldValueString accepts the JSON scalars the viewer sends for a cell.
func fieldValueString(field string, raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid value").
			WithDetails(map[string]any{"field": field, "value": fmt.Sprint(raw)})
	}
}

func withIdentityFields(ctx context.Context, logg *logger.Logger, identity auth.ViewerIdentity) context.Context {
	if logg == nil {
		return ctx
	}
	ctx = logg.WithTelegramID(ctx, identity.TelegramID)
	return logg.WithField(ctx, "business_name", identity.BusinessName)
}
