package types

// Snapshot is the normalized inventory view for one user and business.
type Snapshot struct {
	Rows   []SnapshotRow `json:"rows"`
	Facets Facets        `json:"facets"`
	Meta   SnapshotMeta  `json:"meta"`
}

// SnapshotRow is one normalized inventory item.
type SnapshotRow struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Winery         string   `json:"winery"`
	Supplier       string   `json:"supplier"`
	Vintage        *int     `json:"vintage"`
	Qty            int      `json:"qty"`
	MinQty         *int     `json:"min_qty"`
	Price          float64  `json:"price"`
	CostPrice      *float64 `json:"cost_price"`
	Type           string   `json:"type"`
	Critical       bool     `json:"critical"`
	GrapeVariety   *string  `json:"grape_variety"`
	Region         *string  `json:"region"`
	Country        *string  `json:"country"`
	Classification *string  `json:"classification"`
	AlcoholContent *float64 `json:"alcohol_content"`
	Description    *string  `json:"description"`
	Notes          *string  `json:"notes"`
	UpdatedAt      *string  `json:"updated_at"`
}

// Facets maps each filter dimension to value counts.
type Facets struct {
	Type     map[string]int `json:"type"`
	Vintage  map[string]int `json:"vintage"`
	Winery   map[string]int `json:"winery"`
	Supplier map[string]int `json:"supplier"`
}

// NewFacets returns facets with every map allocated so they encode as {}.
func NewFacets() Facets {
	return Facets{
		Type:     map[string]int{},
		Vintage:  map[string]int{},
		Winery:   map[string]int{},
		Supplier: map[string]int{},
	}
}

type SnapshotMeta struct {
	TotalRows  int    `json:"total_rows"`
	LastUpdate string `json:"last_update"`
}

// Movement is one stock change as returned to the viewer.
type Movement struct {
	Date           string `json:"date"`
	Type           string `json:"type"`
	QuantityChange int    `json:"quantity_change"`
	QuantityBefore *int   `json:"quantity_before"`
	QuantityAfter  *int   `json:"quantity_after"`
}
