package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// DiningTable is a physical table on a branch floor. Its status is owned
// jointly by the reservation engine and the dine-in order workflow.
type DiningTable struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BranchID  uuid.UUID         `gorm:"column:branch_id;type:uuid;not null;index"`
	Number    int               `gorm:"column:number;not null"`
	Seats     int               `gorm:"column:seats;not null"`
	Status    enums.TableStatus `gorm:"column:status;type:text;not null;default:'idle'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (DiningTable) TableName() string {
	return "dining_tables"
}
