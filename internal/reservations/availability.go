package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
)

// AvailabilityChecker decides whether a table is free for a requested window.
type AvailabilityChecker struct {
	repo Repository
}

// NewAvailabilityChecker builds a checker over the reservations store.
func NewAvailabilityChecker(repo Repository) (*AvailabilityChecker, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	return &AvailabilityChecker{repo: repo}, nil
}

// IsAvailable reports whether the table is free for [start, end). When it is
// not, the earliest overlapping reservation is returned so callers can name
// the conflict. A store failure yields (false, nil, err): the caller must
// treat the window as unavailable rather than confirm blind.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, tableID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, *models.Reservation, error) {
	overlapping, err := c.repo.FindOverlapping(ctx, tableID, start, end, excludeID)
	if err != nil {
		return false, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking table availability")
	}
	if len(overlapping) == 0 {
		return true, nil, nil
	}
	return false, &overlapping[0], nil
}
