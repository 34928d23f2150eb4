package tables

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// Repository defines persistence operations for dining tables.
type Repository interface {
	Create(ctx context.Context, table *models.DiningTable) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.DiningTable, error)
	// SetStatus persists the status and reports whether the row actually
	// changed, so callers can emit change events exactly once.
	SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) (*models.DiningTable, bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tables repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, table *models.DiningTable) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	var table models.DiningTable
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.DiningTable, error) {
	var tables []models.DiningTable
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("number ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) (*models.DiningTable, bool, error) {
	table, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if table.Status == status {
		return table, false, nil
	}
	err = r.db.WithContext(ctx).
		Model(&models.DiningTable{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return nil, false, err
	}
	table.Status = status
	return table, true, nil
}
