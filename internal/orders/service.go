package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
)

// ProductCatalog resolves products for price snapshots.
type ProductCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// TableSync re-derives a table's status after order activity changes it.
type TableSync interface {
	Sync(ctx context.Context, tableID uuid.UUID) (enums.TableStatus, error)
}

// ServiceParams configure the orders service.
type ServiceParams struct {
	Repo     Repository
	Catalog  ProductCatalog
	Tables   TableSync
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service runs the dine-in order workflow. Opening and settling orders drives
// the occupied side of table state.
type Service struct {
	repo    Repository
	catalog ProductCatalog
	tables  TableSync
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the orders service dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("table sync required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    params.Repo,
		catalog: params.Catalog,
		tables:  params.Tables,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// Open creates a new check against the table and re-derives the table status.
func (s *Service) Open(ctx context.Context, input OpenInput) (*models.DineOrder, error) {
	active, err := s.repo.HasActiveForTable(ctx, input.TableID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking open orders")
	}
	if active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "table already has an open order")
	}

	order := &models.DineOrder{
		ID:       uuid.New(),
		BranchID: input.BranchID,
		TableID:  input.TableID,
		Status:   enums.DineOrderStatusOpen,
		Total:    decimal.Zero,
		OpenedAt: s.now(),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
	}

	s.syncTable(ctx, order.TableID)
	return order, nil
}

// GetByID loads an order with its line items.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.DineOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return order, nil
}

// ListByBranch returns the branch's orders, newest first.
func (s *Service) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.DineOrder, error) {
	out, err := s.repo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return out, nil
}

// AddItem fires a product line onto an open order, snapshotting the product
// price at fire time.
func (s *Service) AddItem(ctx context.Context, orderID uuid.UUID, input AddItemInput) (*models.DineOrder, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already settled")
	}

	product, err := s.catalog.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if !product.Available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	qty := decimal.NewFromInt(int64(input.Qty))
	item := &models.DineOrderItem{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Qty:       input.Qty,
		UnitPrice: product.Price,
		Total:     product.Price.Mul(qty),
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adding order item")
	}

	total := order.Total.Add(item.Total)
	if err := s.repo.UpdateTotal(ctx, order.ID, total); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order total")
	}

	order.Items = append(order.Items, *item)
	order.Total = total
	return order, nil
}

// UpdateStatus moves the order along its lifecycle. Settling an order (closed
// or voided) stamps ClosedAt and re-derives the table status so a table with
// no remaining claims goes back to idle.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*models.DineOrder, error) {
	status, err := enums.ParseDineOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing order status")
	}

	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already settled")
	}

	var closedAt *time.Time
	if status.IsTerminal() {
		now := s.now()
		closedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, status, closedAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}
	order.Status = status
	order.ClosedAt = closedAt

	if status.IsTerminal() {
		s.syncTable(ctx, order.TableID)
	}
	return order, nil
}

func (s *Service) syncTable(ctx context.Context, tableID uuid.UUID) {
	if _, err := s.tables.Sync(ctx, tableID); err != nil {
		// The periodic sync or the next status write will converge the table.
		s.logg.Error(ctx, "table sync after order change failed", err)
	}
}
