package enums

import "fmt"

// TableStatus reflects the physical state of a dining table. The reservation
// engine only ever writes Reserved and Idle; Occupied is forced by the dine-in
// order workflow while a table is mid-service.
type TableStatus string

const (
	TableStatusIdle     TableStatus = "idle"
	TableStatusReserved TableStatus = "reserved"
	TableStatusOccupied TableStatus = "occupied"
	TableStatusCleaning TableStatus = "cleaning"
)

var validTableStatuses = []TableStatus{
	TableStatusIdle,
	TableStatusReserved,
	TableStatusOccupied,
	TableStatusCleaning,
}

// String implements fmt.Stringer.
func (t TableStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TableStatus.
func (t TableStatus) IsValid() bool {
	for _, candidate := range validTableStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTableStatus converts raw input into a TableStatus.
func ParseTableStatus(value string) (TableStatus, error) {
	for _, candidate := range validTableStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table status %q", value)
}
