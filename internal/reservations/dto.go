package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// CreateInput books a table (or waitlists when TableID is absent).
type CreateInput struct {
	BranchID   uuid.UUID  `json:"branch_id" validate:"required"`
	CustomerID uuid.UUID  `json:"customer_id" validate:"required"`
	TableID    *uuid.UUID `json:"table_id,omitempty"`
	GuestName  string     `json:"guest_name" validate:"required,max=120"`
	GuestPhone *string    `json:"guest_phone,omitempty" validate:"omitempty,max=32"`
	PartySize  int        `json:"party_size" validate:"required,gte=1"`
	StartTime  time.Time  `json:"start_time" validate:"required"`
	EndTime    time.Time  `json:"end_time" validate:"required"`
	Notes      *string    `json:"notes,omitempty"`
}

// UpdateInput carries partial reservation edits. Nil fields stay untouched.
type UpdateInput struct {
	TableID    *uuid.UUID `json:"table_id,omitempty"`
	GuestName  *string    `json:"guest_name,omitempty" validate:"omitempty,max=120"`
	GuestPhone *string    `json:"guest_phone,omitempty" validate:"omitempty,max=32"`
	PartySize  *int       `json:"party_size,omitempty" validate:"omitempty,gte=1"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// UpdateStatusInput moves a reservation along its lifecycle by hand.
type UpdateStatusInput struct {
	Status             string  `json:"status" validate:"required"`
	CancellationReason *string `json:"cancellation_reason,omitempty" validate:"omitempty,max=255"`
}

// ListFilters narrow a reservation listing. BranchID is mandatory; the rest
// are optional and combine with AND semantics.
type ListFilters struct {
	BranchID   uuid.UUID
	CustomerID *uuid.UUID
	TableID    *uuid.UUID
	Status     *enums.ReservationStatus
	// Date restricts results to reservations whose window intersects the
	// calendar day containing Date, in UTC.
	Date *time.Time
}
