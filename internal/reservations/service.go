package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
)

// ServiceParams configure the reservation lifecycle coordinator.
type ServiceParams struct {
	Repo      Repository
	Checker   *AvailabilityChecker
	Scheduler DeadlineScheduler
	Tables    TableStateSync
	Logger    *logger.Logger
	MaxWindow time.Duration
	Now       func() time.Time
}

// Service coordinates the reservation lifecycle: it owns create, edit and
// cancel paths, keeps the deadline timers in step with every change, and is
// the transition target the scheduler calls back into when a deadline fires.
type Service struct {
	repo      Repository
	checker   *AvailabilityChecker
	sched     DeadlineScheduler
	tables    TableStateSync
	logg      *logger.Logger
	maxWindow time.Duration
	now       func() time.Time
}

// NewService wires the coordinator dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if params.Checker == nil {
		return nil, fmt.Errorf("availability checker required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("deadline scheduler required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("table state sync required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      params.Repo,
		checker:   params.Checker,
		sched:     params.Scheduler,
		tables:    params.Tables,
		logg:      params.Logger,
		maxWindow: params.MaxWindow,
		now:       now,
	}, nil
}

// Create books a reservation. The table, when one is requested, must be free
// for the whole window; conflicts name the reservation already holding it.
// The new reservation starts out pending with both deadlines armed.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Reservation, error) {
	if err := s.validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if input.PartySize < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party size must be at least 1")
	}

	if input.TableID != nil {
		if err := s.ensureAvailable(ctx, *input.TableID, input.StartTime, input.EndTime, nil); err != nil {
			return nil, err
		}
	}

	res := &models.Reservation{
		ID:         uuid.New(),
		BranchID:   input.BranchID,
		CustomerID: input.CustomerID,
		TableID:    input.TableID,
		GuestName:  input.GuestName,
		GuestPhone: input.GuestPhone,
		PartySize:  input.PartySize,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Status:     enums.ReservationStatusPending,
		Notes:      input.Notes,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating reservation")
	}

	s.sched.Schedule(ctx, res)
	return res, nil
}

// GetByID loads a single reservation.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading reservation")
	}
	return res, nil
}

// List returns the branch's reservations, optionally narrowed by customer,
// table, status or day.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]models.Reservation, error) {
	out, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing reservations")
	}
	return out, nil
}

// Update applies a partial edit. Moving the window or the table re-runs the
// availability check against everyone but this reservation, and always
// replaces both deadline timers with ones matching the new state.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Reservation, error) {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is already terminal")
	}

	oldTableID := res.TableID
	windowChanged := false
	tableChanged := false

	if input.TableID != nil && (res.TableID == nil || *input.TableID != *res.TableID) {
		res.TableID = input.TableID
		tableChanged = true
	}
	if input.StartTime != nil && !input.StartTime.Equal(res.StartTime) {
		res.StartTime = *input.StartTime
		windowChanged = true
	}
	if input.EndTime != nil && !input.EndTime.Equal(res.EndTime) {
		res.EndTime = *input.EndTime
		windowChanged = true
	}
	if input.GuestName != nil {
		res.GuestName = *input.GuestName
	}
	if input.GuestPhone != nil {
		res.GuestPhone = input.GuestPhone
	}
	if input.PartySize != nil {
		if *input.PartySize < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "party size must be at least 1")
		}
		res.PartySize = *input.PartySize
	}
	if input.Notes != nil {
		res.Notes = input.Notes
	}

	if err := s.validateWindow(res.StartTime, res.EndTime); err != nil {
		return nil, err
	}
	if (tableChanged || windowChanged) && res.TableID != nil {
		if err := s.ensureAvailable(ctx, *res.TableID, res.StartTime, res.EndTime, &res.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, res); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving reservation")
	}
	s.sched.Reschedule(ctx, res)

	// Coverage may have moved off the old table or onto the new window.
	if tableChanged && oldTableID != nil {
		s.syncTable(ctx, *oldTableID)
	}
	if (tableChanged || windowChanged) && res.TableID != nil {
		s.syncTable(ctx, *res.TableID)
	}
	return res, nil
}

// UpdateStatus moves the reservation to an explicit status. Timers are always
// disarmed first and re-armed only when the new status is non-terminal, so a
// cancelled reservation can never fire a stale deadline.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*models.Reservation, error) {
	status, err := enums.ParseReservationStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing reservation status")
	}
	if input.CancellationReason != nil && status != enums.ReservationStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason requires cancelled status")
	}

	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is already terminal")
	}

	// Disarm even when the status is unchanged so a repeated call converges
	// the timers too.
	s.sched.Cancel(res.ID)
	if err := s.repo.UpdateStatus(ctx, res.ID, status, input.CancellationReason); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating reservation status")
	}
	res.Status = status
	if input.CancellationReason != nil {
		res.CancellationReason = input.CancellationReason
	}

	if !status.IsTerminal() {
		s.sched.Schedule(ctx, res)
	}
	if res.TableID != nil {
		s.syncTable(ctx, *res.TableID)
	}
	return res, nil
}

// Delete removes the reservation record. Ordering matters: timers are
// disarmed first, then the table is re-derived without this reservation's
// coverage, then the row goes away. Deleting first would let an in-flight
// timer act on a reservation the store no longer reports.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.sched.Cancel(res.ID)
	if res.TableID != nil {
		if !res.Status.IsTerminal() {
			// Drop coverage before re-deriving, otherwise a confirmed
			// mid-window reservation would keep its own table reserved.
			if err := s.repo.UpdateStatus(ctx, res.ID, enums.ReservationStatusCancelled, nil); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "releasing reservation")
			}
		}
		s.syncTable(ctx, *res.TableID)
	}
	if err := s.repo.Delete(ctx, res.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting reservation")
	}
	return nil
}

// ReservationStarted runs when a start deadline fires. It re-reads current
// state so a concurrent cancel or delete degrades to a no-op instead of
// resurrecting the reservation.
func (s *Service) ReservationStarted(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading reservation")
	}
	if res.Status.IsTerminal() {
		return false, nil
	}

	if res.Status != enums.ReservationStatusConfirmed {
		if err := s.repo.UpdateStatus(ctx, res.ID, enums.ReservationStatusConfirmed, nil); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirming reservation")
		}
		res.Status = enums.ReservationStatusConfirmed
	}
	if res.TableID != nil {
		if _, err := s.tables.Sync(ctx, *res.TableID); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ReservationEnded runs when an end deadline fires. Same re-read-before-write
// discipline as ReservationStarted.
func (s *Service) ReservationEnded(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading reservation")
	}
	if res.Status.IsTerminal() {
		return false, nil
	}

	if err := s.repo.UpdateStatus(ctx, res.ID, enums.ReservationStatusCompleted, nil); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "completing reservation")
	}
	if res.TableID != nil {
		if _, err := s.tables.Sync(ctx, *res.TableID); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Service) validateWindow(start, end time.Time) error {
	if !end.After(start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end time must be after start time")
	}
	if s.maxWindow > 0 && end.Sub(start) > s.maxWindow {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("reservation window exceeds the %s maximum", s.maxWindow))
	}
	return nil
}

func (s *Service) ensureAvailable(ctx context.Context, tableID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	available, conflict, err := s.checker.IsAvailable(ctx, tableID, start, end, excludeID)
	if err != nil {
		return err
	}
	if available {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("table is already reserved for %s from %s to %s",
			conflict.GuestName,
			conflict.StartTime.Format(time.RFC3339),
			conflict.EndTime.Format(time.RFC3339))).
		WithDetails(map[string]any{
			"conflicting_reservation_id": conflict.ID.String(),
			"start_time":                 conflict.StartTime.Format(time.RFC3339),
			"end_time":                   conflict.EndTime.Format(time.RFC3339),
		})
}

func (s *Service) syncTable(ctx context.Context, tableID uuid.UUID) {
	if _, err := s.tables.Sync(ctx, tableID); err != nil {
		// The table converges on the next trigger; reservation state is
		// already persisted.
		s.logg.Error(ctx, "table sync after reservation change failed", err)
	}
}
