package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a menu item sold by a branch.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BranchID  uuid.UUID       `gorm:"column:branch_id;type:uuid;not null;uniqueIndex:idx_products_branch_sku,priority:1"`
	Name      string          `gorm:"column:name;not null"`
	SKU       string          `gorm:"column:sku;not null;uniqueIndex:idx_products_branch_sku,priority:2"`
	Category  string          `gorm:"column:category;not null;index"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Available bool            `gorm:"column:available;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
