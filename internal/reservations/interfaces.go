package reservations

import (
	"context"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// DeadlineScheduler arms and disarms the start and end deadline timers that
// drive automatic lifecycle transitions.
type DeadlineScheduler interface {
	Schedule(ctx context.Context, res *models.Reservation)
	Reschedule(ctx context.Context, res *models.Reservation)
	Cancel(reservationID uuid.UUID)
}

// TableStateSync re-derives a table's status from reservation coverage and
// active orders after anything that could change either.
type TableStateSync interface {
	Sync(ctx context.Context, tableID uuid.UUID) (enums.TableStatus, error)
}
