package enums

import "fmt"

// DineOrderStatus tracks a dine-in order from first fire to settlement.
type DineOrderStatus string

const (
	DineOrderStatusOpen      DineOrderStatus = "open"
	DineOrderStatusServed    DineOrderStatus = "served"
	DineOrderStatusDelivered DineOrderStatus = "delivered"
	DineOrderStatusClosed    DineOrderStatus = "closed"
	DineOrderStatusVoided    DineOrderStatus = "voided"
)

var validDineOrderStatuses = []DineOrderStatus{
	DineOrderStatusOpen,
	DineOrderStatusServed,
	DineOrderStatusDelivered,
	DineOrderStatusClosed,
	DineOrderStatusVoided,
}

// String implements fmt.Stringer.
func (d DineOrderStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DineOrderStatus.
func (d DineOrderStatus) IsValid() bool {
	for _, candidate := range validDineOrderStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order no longer occupies its table. An order
// whose payment is still pending but was delivered counts as active, so only
// closed and voided orders release the table.
func (d DineOrderStatus) IsTerminal() bool {
	return d == DineOrderStatusClosed || d == DineOrderStatusVoided
}

// ParseDineOrderStatus converts raw input into a DineOrderStatus.
func ParseDineOrderStatus(value string) (DineOrderStatus, error) {
	for _, candidate := range validDineOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dine order status %q", value)
}
