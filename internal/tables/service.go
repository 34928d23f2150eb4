package tables

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/internal/notify"
	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
)

// ResolveStatus decides a table's status from reservation coverage and active
// orders. A confirmed reservation covering "now" wins, then an open check,
// otherwise the table is idle. Callers must re-evaluate rather than toggle:
// a table can leave a reservation window while still carrying an open order.
func ResolveStatus(hasCoveringReservation, hasActiveOrders bool) enums.TableStatus {
	switch {
	case hasCoveringReservation:
		return enums.TableStatusReserved
	case hasActiveOrders:
		return enums.TableStatusOccupied
	default:
		return enums.TableStatusIdle
	}
}

// CoverageChecker reports whether a confirmed reservation covers the table at
// the given instant.
type CoverageChecker interface {
	HasConfirmedCovering(ctx context.Context, tableID uuid.UUID, at time.Time) (bool, error)
}

// ActiveOrderChecker reports whether the table carries a dine-in order in a
// non-terminal status.
type ActiveOrderChecker interface {
	HasActiveForTable(ctx context.Context, tableID uuid.UUID) (bool, error)
}

// ServiceParams configure the tables service.
type ServiceParams struct {
	Repo     Repository
	Coverage CoverageChecker
	Orders   ActiveOrderChecker
	Notifier notify.Notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service owns table status writes and the change-event emission that goes
// with them.
type Service struct {
	repo     Repository
	coverage CoverageChecker
	orders   ActiveOrderChecker
	notifier notify.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the tables service dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	if params.Coverage == nil {
		return nil, fmt.Errorf("coverage checker required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("active order checker required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     params.Repo,
		coverage: params.Coverage,
		orders:   params.Orders,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// CreateInput registers a table on the branch floor.
type CreateInput struct {
	BranchID uuid.UUID `json:"branch_id" validate:"required"`
	Number   int       `json:"number" validate:"required,gte=1"`
	Seats    int       `json:"seats" validate:"required,gte=1"`
}

// Create registers a new table. Tables start idle.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.DiningTable, error) {
	table := &models.DiningTable{
		ID:       uuid.New(),
		BranchID: input.BranchID,
		Number:   input.Number,
		Seats:    input.Seats,
		Status:   enums.TableStatusIdle,
	}
	if err := s.repo.Create(ctx, table); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating table")
	}
	return table, nil
}

// GetByID loads a single table.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading table")
	}
	return table, nil
}

// ListByBranch returns the floor view for a branch.
func (s *Service) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.DiningTable, error) {
	tables, err := s.repo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing tables")
	}
	return tables, nil
}

// SetStatus writes the given status and emits a change event when the stored
// value actually moved.
func (s *Service) SetStatus(ctx context.Context, tableID uuid.UUID, status enums.TableStatus) error {
	table, changed, err := s.repo.SetStatus(ctx, tableID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating table status")
	}
	if !changed {
		return nil
	}
	s.emit(ctx, table)
	return nil
}

// Sync recomputes the table's status from reservation coverage and active
// orders and persists the result. It is idempotent and safe to re-run on any
// trigger.
func (s *Service) Sync(ctx context.Context, tableID uuid.UUID) (enums.TableStatus, error) {
	covered, err := s.coverage.HasConfirmedCovering(ctx, tableID, s.now())
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking reservation coverage")
	}
	active, err := s.orders.HasActiveForTable(ctx, tableID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking active orders")
	}

	target := ResolveStatus(covered, active)
	if err := s.SetStatus(ctx, tableID, target); err != nil {
		return "", err
	}
	return target, nil
}

func (s *Service) emit(ctx context.Context, table *models.DiningTable) {
	event := notify.TableStatusChanged{
		TableID:  table.ID,
		BranchID: table.BranchID,
		Status:   table.Status,
	}
	if err := s.notifier.TableStatusChanged(ctx, event); err != nil {
		// The event sink is best-effort; state is already durable.
		s.logg.Error(ctx, "table status notification failed", err)
	}
}
