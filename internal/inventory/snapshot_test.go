package inventory

import (
	"testing"
	"time"

	"github.com/angelmondragon/vineinventory-viewer/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapshotNormalizesRows(t *testing.T) {
	updated := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	items := []models.InventoryItem{
		{
			ID:             7,
			Name:           strPtr("  Barolo "),
			Producer:       strPtr(" Conterno "),
			Supplier:       strPtr("None"),
			Vintage:        intPtr(2018),
			Quantity:       intPtr(3),
			MinQuantity:    intPtr(5),
			SellingPrice:   decimal.NewNullDecimal(decimal.RequireFromString("45.90")),
			CostPrice:      decimal.NewNullDecimal(decimal.RequireFromString("30")),
			WineType:       strPtr(" rOSSO "),
			AlcoholContent: decimal.NewNullDecimal(decimal.RequireFromString("14.5")),
			UpdatedAt:      &updated,
		},
	}

	snap := BuildSnapshot(items, time.Now())
	require.Len(t, snap.Rows, 1)
	row := snap.Rows[0]
	assert.EqualValues(t, 7, row.ID)
	assert.Equal(t, "Barolo", row.Name)
	assert.Equal(t, "Conterno", row.Winery)
	assert.Equal(t, Placeholder, row.Supplier)
	assert.Equal(t, "Rosso", row.Type)
	assert.Equal(t, 3, row.Qty)
	assert.InDelta(t, 45.90, row.Price, 0.0001)
	require.NotNil(t, row.CostPrice)
	assert.InDelta(t, 30.0, *row.CostPrice, 0.0001)
	require.NotNil(t, row.AlcoholContent)
	assert.InDelta(t, 14.5, *row.AlcoholContent, 0.0001)
	assert.True(t, row.Critical)
	require.NotNil(t, row.UpdatedAt)
	assert.Equal(t, "2024-02-03T04:05:06Z", *row.UpdatedAt)
	assert.Equal(t, "2024-02-03T04:05:06Z", snap.Meta.LastUpdate)
}

func TestBuildSnapshotDefaultsMissingValues(t *testing.T) {
	snap := BuildSnapshot([]models.InventoryItem{{ID: 1}}, time.Now())
	row := snap.Rows[0]
	assert.Equal(t, Placeholder, row.Name)
	assert.Equal(t, Placeholder, row.Winery)
	assert.Equal(t, Placeholder, row.Supplier)
	assert.Equal(t, DefaultWineType, row.Type)
	assert.Zero(t, row.Qty)
	assert.Zero(t, row.Price)
	assert.Nil(t, row.Vintage)
	assert.Nil(t, row.CostPrice)
	assert.Nil(t, row.MinQty)
	assert.False(t, row.Critical)
}

func TestIsCriticalBoundaries(t *testing.T) {
	assert.True(t, IsCritical(intPtr(5), intPtr(5)))
	assert.False(t, IsCritical(intPtr(6), intPtr(5)))
	assert.True(t, IsCritical(intPtr(0), intPtr(5)))
	assert.False(t, IsCritical(intPtr(1), nil))
	assert.False(t, IsCritical(nil, intPtr(1)))
}

func TestBuildSnapshotFacetsMatchRows(t *testing.T) {
	items := []models.InventoryItem{
		{ID: 1, WineType: strPtr("rosso"), Vintage: intPtr(2018), Producer: strPtr("Gaja"), Supplier: strPtr("Vinexus")},
		{ID: 2, WineType: strPtr("Rosso"), Vintage: intPtr(2018), Producer: strPtr("Gaja"), Supplier: strPtr("null")},
		{ID: 3, WineType: strPtr("bianco"), Vintage: nil, Producer: strPtr(" "), Supplier: strPtr("Vinexus")},
		{ID: 4, WineType: nil, Vintage: intPtr(2020), Producer: nil, Supplier: nil},
	}

	snap := BuildSnapshot(items, time.Now())

	assert.Equal(t, map[string]int{"Rosso": 2, "Bianco": 1, "Altro": 1}, snap.Facets.Type)
	assert.Equal(t, map[string]int{"2018": 2, "2020": 1}, snap.Facets.Vintage)
	assert.Equal(t, map[string]int{"Gaja": 2}, snap.Facets.Winery)
	assert.Equal(t, map[string]int{"Vinexus": 2}, snap.Facets.Supplier)

	total := 0
	for _, count := range snap.Facets.Type {
		total += count
	}
	assert.Equal(t, snap.Meta.TotalRows, total)

	for value, count := range snap.Facets.Winery {
		matches := 0
		for _, row := range snap.Rows {
			if row.Winery == value {
				matches++
			}
		}
		assert.Equal(t, count, matches, "winery %s", value)
	}
}

func TestEmptySnapshot(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := EmptySnapshot(now)

	assert.NotNil(t, snap.Rows)
	assert.Empty(t, snap.Rows)
	assert.Empty(t, snap.Facets.Type)
	assert.Empty(t, snap.Facets.Vintage)
	assert.Empty(t, snap.Facets.Winery)
	assert.Empty(t, snap.Facets.Supplier)
	assert.Zero(t, snap.Meta.TotalRows)
	assert.Equal(t, "2024-06-01T12:00:00Z", snap.Meta.LastUpdate)
}

func TestNormalizeWineType(t *testing.T) {
	cases := map[string]string{
		"rosso":      "Rosso",
		"  BIANCO  ": "Bianco",
		"rosé":       "Rosé",
		"":           DefaultWineType,
		"   ":        DefaultWineType,
	}
	for in, want := range cases {
		value := in
		assert.Equal(t, want, NormalizeWineType(&value), "input %q", in)
	}
	assert.Equal(t, DefaultWineType, NormalizeWineType(nil))
}
