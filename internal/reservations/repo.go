package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// Repository defines persistence operations for reservations. It is the
// single source of truth the in-memory timer map derives from.
type Repository interface {
	Create(ctx context.Context, res *models.Reservation) error
	Save(ctx context.Context, res *models.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	// FindOverlapping returns pending or confirmed reservations on the table
	// whose window overlaps [start, end) under half-open semantics. excludeID
	// lets an update check against every reservation except itself.
	FindOverlapping(ctx context.Context, tableID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]models.Reservation, error)
	// HasConfirmedCovering reports whether a confirmed reservation covers the
	// table at the given instant.
	HasConfirmedCovering(ctx context.Context, tableID uuid.UUID, at time.Time) (bool, error)
	// FindActive returns every reservation in a non-terminal status, overdue
	// ones included, so startup recovery can converge them.
	FindActive(ctx context.Context) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, cancellationReason *string) error
	List(ctx context.Context, filters ListFilters) ([]models.Reservation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, res *models.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *repository) Save(ctx context.Context, res *models.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reservation{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repository) FindOverlapping(ctx context.Context, tableID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]models.Reservation, error) {
	qb := r.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Where("status IN ?", activeStatuses()).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != nil {
		qb = qb.Where("id <> ?", *excludeID)
	}

	var out []models.Reservation
	if err := qb.Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) HasConfirmedCovering(ctx context.Context, tableID uuid.UUID, at time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("table_id = ?", tableID).
		Where("status = ?", enums.ReservationStatusConfirmed).
		Where("start_time <= ? AND end_time > ?", at, at).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindActive(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status IN ?", activeStatuses()).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, cancellationReason *string) error {
	updates := map[string]any{"status": status}
	if cancellationReason != nil {
		updates["cancellation_reason"] = *cancellationReason
	}
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Reservation, error) {
	qb := r.db.WithContext(ctx).Where("branch_id = ?", filters.BranchID)
	if filters.CustomerID != nil {
		qb = qb.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.TableID != nil {
		qb = qb.Where("table_id = ?", *filters.TableID)
	}
	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	}
	if filters.Date != nil {
		dayStart := filters.Date.UTC().Truncate(24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)
		qb = qb.Where("start_time < ? AND end_time > ?", dayEnd, dayStart)
	}

	var out []models.Reservation
	if err := qb.Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func activeStatuses() []enums.ReservationStatus {
	return []enums.ReservationStatus{
		enums.ReservationStatusPending,
		enums.ReservationStatusConfirmed,
	}
}
