package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miguelgarza/comanda-backend/pkg/pagination"
)

// CreateInput registers a menu item for a branch.
type CreateInput struct {
	BranchID uuid.UUID       `json:"branch_id" validate:"required"`
	Name     string          `json:"name" validate:"required,max=120"`
	SKU      string          `json:"sku" validate:"required,max=64"`
	Category string          `json:"category" validate:"required,max=64"`
	Price    decimal.Decimal `json:"price" validate:"required"`
}

// UpdateInput carries partial menu item edits. Nil fields stay untouched.
type UpdateInput struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Category  *string          `json:"category,omitempty" validate:"omitempty,max=64"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Available *bool            `json:"available,omitempty"`
}

// ListFilters describe the supported filter knobs for the menu browse endpoint.
type ListFilters struct {
	Category  string `json:"category,omitempty"`
	Available *bool  `json:"available,omitempty"`
	Query     string `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate a branch menu.
type ListInput struct {
	BranchID   uuid.UUID
	Filters    ListFilters
	Pagination pagination.Params
}
