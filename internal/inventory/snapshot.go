package inventory

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/angelmondragon/vineinventory-viewer/pkg/db/models"
	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	// Placeholder replaces blank text values in snapshot rows.
	Placeholder = "-"
	// DefaultWineType is used when an item carries no type.
	DefaultWineType = "Altro"
)

// BuildSnapshot normalizes the items and aggregates their facets. Items are
// expected in display order already.
func BuildSnapshot(items []models.InventoryItem, now time.Time) *types.Snapshot {
	rows := make([]types.SnapshotRow, 0, len(items))
	facets := types.NewFacets()
	var lastUpdate time.Time

	for _, item := range items {
		row := normalizeRow(item)
		rows = append(rows, row)

		facets.Type[row.Type]++
		if row.Vintage != nil {
			facets.Vintage[strconv.Itoa(*row.Vintage)]++
		}
		if row.Winery != Placeholder {
			facets.Winery[row.Winery]++
		}
		if row.Supplier != Placeholder {
			facets.Supplier[row.Supplier]++
		}

		if item.UpdatedAt != nil && item.UpdatedAt.After(lastUpdate) {
			lastUpdate = *item.UpdatedAt
		}
	}

	if lastUpdate.IsZero() {
		lastUpdate = now
	}

	return &types.Snapshot{
		Rows:   rows,
		Facets: facets,
		Meta: types.SnapshotMeta{
			TotalRows:  len(rows),
			LastUpdate: formatTimestamp(lastUpdate),
		},
	}
}

// EmptySnapshot is returned when the owner has no data yet.
func EmptySnapshot(now time.Time) *types.Snapshot {
	return BuildSnapshot(nil, now)
}

// IsCritical reports whether stock has fallen to or below the minimum.
func IsCritical(quantity, minQuantity *int) bool {
	if quantity == nil || minQuantity == nil {
		return false
	}
	return *quantity <= *minQuantity
}

func normalizeRow(item models.InventoryItem) types.SnapshotRow {
	row := types.SnapshotRow{
		ID:             item.ID,
		Name:           textOrPlaceholder(item.Name),
		Winery:         textOrPlaceholder(item.Producer),
		Supplier:       normalizeSupplier(item.Supplier),
		Vintage:        item.Vintage,
		MinQty:         item.MinQuantity,
		Price:          decimalOrZero(item.SellingPrice),
		CostPrice:      decimalPtr(item.CostPrice),
		Type:           NormalizeWineType(item.WineType),
		Critical:       IsCritical(item.Quantity, item.MinQuantity),
		GrapeVariety:   item.GrapeVariety,
		Region:         item.Region,
		Country:        item.Country,
		Classification: item.Classification,
		AlcoholContent: decimalPtr(item.AlcoholContent),
		Description:    item.Description,
		Notes:          item.Notes,
	}
	if item.Quantity != nil {
		row.Qty = *item.Quantity
	}
	if item.UpdatedAt != nil {
		ts := formatTimestamp(*item.UpdatedAt)
		row.UpdatedAt = &ts
	}
	return row
}

// NormalizeWineType trims and capitalizes the type, defaulting to Altro.
func NormalizeWineType(value *string) string {
	if value == nil {
		return DefaultWineType
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return DefaultWineType
	}
	first, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(first)) + strings.ToLower(trimmed[size:])
}

func normalizeSupplier(value *string) string {
	text := textOrPlaceholder(value)
	switch strings.ToLower(text) {
	case "null", "none":
		return Placeholder
	}
	return text
}

func textOrPlaceholder(value *string) string {
	if value == nil {
		return Placeholder
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return Placeholder
	}
	return trimmed
}

func decimalOrZero(value decimal.NullDecimal) float64 {
	if !value.Valid {
		return 0
	}
	return value.Decimal.InexactFloat64()
}

func decimalPtr(value decimal.NullDecimal) *float64 {
	if !value.Valid {
		return nil
	}
	f := value.Decimal.InexactFloat64()
	return &f
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
