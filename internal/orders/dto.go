package orders

import "github.com/google/uuid"

// OpenInput opens a new dine-in check against a table.
type OpenInput struct {
	BranchID uuid.UUID `json:"branch_id" validate:"required"`
	TableID  uuid.UUID `json:"table_id" validate:"required"`
}

// AddItemInput fires a product line onto an open order.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gte=1"`
}

// UpdateStatusInput moves an order along its lifecycle.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}
