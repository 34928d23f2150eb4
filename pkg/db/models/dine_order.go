package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// DineOrder is a dine-in check opened against a table. While the order is in a
// non-terminal status the table counts as occupied for the reservation engine.
type DineOrder struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	BranchID  uuid.UUID             `gorm:"column:branch_id;type:uuid;not null;index"`
	TableID   uuid.UUID             `gorm:"column:table_id;type:uuid;not null;index"`
	Status    enums.DineOrderStatus `gorm:"column:status;type:text;not null;default:'open'"`
	Total     decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	Items     []DineOrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	OpenedAt  time.Time             `gorm:"column:opened_at;not null"`
	ClosedAt  *time.Time            `gorm:"column:closed_at"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// DineOrderItem snapshots a product line at the price it was fired at.
type DineOrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Qty       int             `gorm:"column:qty;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
