package inventory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	minVintage = 1800
	maxVintage = 2100
	// numeric columns store two fractional digits.
	amountScale = 2
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldVintage
	fieldPrice
	fieldAlcohol
)

// editableFields maps the client field name to its column kind. Field names
// double as column names.
var editableFields = map[string]fieldKind{
	"producer":        fieldText,
	"supplier":        fieldText,
	"vintage":         fieldVintage,
	"grape_variety":   fieldText,
	"classification":  fieldText,
	"selling_price":   fieldPrice,
	"cost_price":      fieldPrice,
	"alcohol_content": fieldAlcohol,
	"description":     fieldText,
	"notes":           fieldText,
}

var (
	hundred = decimal.NewFromInt(100)
	// selling_price and cost_price are numeric(10,2).
	maxPriceExclusive = decimal.New(1, 8)
)

// EditableFields lists the fields accepted by UpdateField, sorted.
func EditableFields() []string {
	names := make([]string, 0, len(editableFields))
	for name := range editableFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoerceFieldValue validates the raw value for field and returns what should be
// written to the column. A nil result clears the column.
func CoerceFieldValue(field, raw string) (any, error) {
	kind, ok := editableFields[field]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedField, fmt.Sprintf("field %q cannot be updated", field)).
			WithDetails(map[string]any{"field": field, "allowed": EditableFields()})
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	switch kind {
	case fieldVintage:
		year, err := strconv.Atoi(trimmed)
		if err != nil || year < minVintage || year > maxVintage {
			return nil, invalidValue(field, raw, fmt.Sprintf("vintage must be a year between %d and %d", minVintage, maxVintage))
		}
		return year, nil
	case fieldPrice:
		amount, err := parseDecimal(trimmed)
		if err != nil || amount.IsNegative() || !amount.LessThan(maxPriceExclusive) {
			return nil, invalidValue(field, raw, "price must be a non-negative number below 100000000")
		}
		if !fitsScale(amount) {
			return nil, invalidValue(field, raw, "price allows at most 2 decimal places")
		}
		return amount, nil
	case fieldAlcohol:
		amount, err := parseDecimal(trimmed)
		if err != nil || amount.IsNegative() || amount.GreaterThan(hundred) {
			return nil, invalidValue(field, raw, "alcohol content must be between 0 and 100")
		}
		if !fitsScale(amount) {
			return nil, invalidValue(field, raw, "alcohol content allows at most 2 decimal places")
		}
		return amount, nil
	default:
		return trimmed, nil
	}
}

func parseDecimal(value string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
}

func fitsScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(amountScale))
}

func invalidValue(field, raw, reason string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid value %q for %s: %s", raw, field, reason)).
		WithDetails(map[string]any{"field": field, "value": raw})
}
