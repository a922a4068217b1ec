package enums

import "fmt"

// MovementType maps to the movement_type column of inventory_movements.
type MovementType string

const (
	MovementTypeConsumption MovementType = "consumo"
	MovementTypeRestock     MovementType = "rifornimento"
)

var validMovementTypes = []MovementType{
	MovementTypeConsumption,
	MovementTypeRestock,
}

// IsValid reports whether the value matches a known movement type.
func (t MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMovementType converts raw input into MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
