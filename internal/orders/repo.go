package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// Repository defines persistence operations for dine-in orders.
type Repository interface {
	Create(ctx context.Context, order *models.DineOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DineOrder, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.DineOrder, error)
	AddItem(ctx context.Context, item *models.DineOrderItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DineOrderStatus, closedAt *time.Time) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	// HasActiveForTable reports whether the table carries any order that has
	// not been closed or voided. Delivered-but-unpaid checks count as active.
	HasActiveForTable(ctx context.Context, tableID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *models.DineOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DineOrder, error) {
	var order models.DineOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.DineOrder, error) {
	var out []models.DineOrder
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("opened_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) AddItem(ctx context.Context, item *models.DineOrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DineOrderStatus, closedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if closedAt != nil {
		updates["closed_at"] = *closedAt
	}
	return r.db.WithContext(ctx).
		Model(&models.DineOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.DineOrder{}).
		Where("id = ?", id).
		Update("total", total).Error
}

func (r *repository) HasActiveForTable(ctx context.Context, tableID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DineOrder{}).
		Where("table_id = ?", tableID).
		Where("status NOT IN ?", []enums.DineOrderStatus{
			enums.DineOrderStatusClosed,
			enums.DineOrderStatusVoided,
		}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
