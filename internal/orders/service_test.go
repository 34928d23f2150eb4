package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
)

type stubRepo struct {
	orders map[uuid.UUID]*models.DineOrder
	items  []models.DineOrderItem
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: make(map[uuid.UUID]*models.DineOrder)}
}

func (r *stubRepo) Create(_ context.Context, order *models.DineOrder) error {
	r.orders[order.ID] = order
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.DineOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *stubRepo) ListByBranch(_ context.Context, branchID uuid.UUID) ([]models.DineOrder, error) {
	var out []models.DineOrder
	for _, o := range r.orders {
		if o.BranchID == branchID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubRepo) AddItem(_ context.Context, item *models.DineOrderItem) error {
	r.items = append(r.items, *item)
	return nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.DineOrderStatus, closedAt *time.Time) error {
	order, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	order.ClosedAt = closedAt
	return nil
}

func (r *stubRepo) UpdateTotal(_ context.Context, id uuid.UUID, total decimal.Decimal) error {
	order, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Total = total
	return nil
}

func (r *stubRepo) HasActiveForTable(_ context.Context, tableID uuid.UUID) (bool, error) {
	for _, o := range r.orders {
		if o.TableID == tableID && !o.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (c *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := c.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubTableSync struct {
	synced []uuid.UUID
}

func (s *stubTableSync) Sync(_ context.Context, tableID uuid.UUID) (enums.TableStatus, error) {
	s.synced = append(s.synced, tableID)
	return enums.TableStatusIdle, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: discard{}})
}

func testProduct(price string) *models.Product {
	return &models.Product{
		ID:        uuid.New(),
		BranchID:  uuid.New(),
		Name:      "Tacos al pastor",
		SKU:       "TAC-001",
		Category:  "mains",
		Price:     decimal.RequireFromString(price),
		Available: true,
	}
}

func newTestService(t *testing.T, repo Repository, catalog ProductCatalog, sync TableSync) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Catalog: catalog,
		Tables:  sync,
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestOpenCreatesOrderAndSyncsTable(t *testing.T) {
	repo := newStubRepo()
	sync := &stubTableSync{}
	svc := newTestService(t, repo, &stubCatalog{}, sync)

	input := OpenInput{BranchID: uuid.New(), TableID: uuid.New()}
	order, err := svc.Open(context.Background(), input)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if order.Status != enums.DineOrderStatusOpen {
		t.Fatalf("expected open status, got %s", order.Status)
	}
	if !order.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", order.Total)
	}
	if len(sync.synced) != 1 || sync.synced[0] != input.TableID {
		t.Fatalf("expected table sync after open, got %v", sync.synced)
	}
}

func TestOpenRejectsSecondOrderOnSameTable(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubCatalog{}, &stubTableSync{})

	input := OpenInput{BranchID: uuid.New(), TableID: uuid.New()}
	if _, err := svc.Open(context.Background(), input); err != nil {
		t.Fatalf("first open: %v", err)
	}
	_, err := svc.Open(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddItemSnapshotsPriceAndUpdatesTotal(t *testing.T) {
	repo := newStubRepo()
	product := testProduct("85.50")
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc := newTestService(t, repo, catalog, &stubTableSync{})

	order, err := svc.Open(context.Background(), OpenInput{BranchID: uuid.New(), TableID: uuid.New()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	updated, err := svc.AddItem(context.Background(), order.ID, AddItemInput{ProductID: product.ID, Qty: 3})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if want := decimal.RequireFromString("256.50"); !updated.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, updated.Total)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected one stored item, got %d", len(repo.items))
	}
	item := repo.items[0]
	if !item.UnitPrice.Equal(product.Price) || item.Name != product.Name {
		t.Fatalf("item must snapshot the product, got %+v", item)
	}

	// A later price change must not rewrite fired lines.
	product.Price = decimal.RequireFromString("120.00")
	reloaded, err := svc.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if want := decimal.RequireFromString("256.50"); !reloaded.Total.Equal(want) {
		t.Fatalf("expected frozen total %s, got %s", want, reloaded.Total)
	}
}

func TestAddItemRejectsUnavailableProduct(t *testing.T) {
	repo := newStubRepo()
	product := testProduct("40.00")
	product.Available = false
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc := newTestService(t, repo, catalog, &stubTableSync{})

	order, err := svc.Open(context.Background(), OpenInput{BranchID: uuid.New(), TableID: uuid.New()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = svc.AddItem(context.Background(), order.ID, AddItemInput{ProductID: product.ID, Qty: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusClosingOrderStampsClosedAtAndSyncsTable(t *testing.T) {
	repo := newStubRepo()
	sync := &stubTableSync{}
	svc := newTestService(t, repo, &stubCatalog{}, sync)

	order, err := svc.Open(context.Background(), OpenInput{BranchID: uuid.New(), TableID: uuid.New()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sync.synced = nil

	closed, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "closed"})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != enums.DineOrderStatusClosed || closed.ClosedAt == nil {
		t.Fatalf("expected closed order with timestamp, got %+v", closed)
	}
	if len(sync.synced) != 1 {
		t.Fatalf("expected table sync after settlement, got %v", sync.synced)
	}
}

func TestUpdateStatusDeliveredKeepsTableClaimed(t *testing.T) {
	repo := newStubRepo()
	sync := &stubTableSync{}
	svc := newTestService(t, repo, &stubCatalog{}, sync)

	order, err := svc.Open(context.Background(), OpenInput{BranchID: uuid.New(), TableID: uuid.New()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sync.synced = nil

	delivered, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "delivered"})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.ClosedAt != nil {
		t.Fatal("delivered order must not be stamped closed")
	}
	if len(sync.synced) != 0 {
		t.Fatalf("non-terminal status change must not sync the table, got %v", sync.synced)
	}

	active, err := repo.HasActiveForTable(context.Background(), order.TableID)
	if err != nil || !active {
		t.Fatalf("delivered order must keep the table active, got active=%v err=%v", active, err)
	}
}

func TestUpdateStatusRejectsSettledOrder(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubCatalog{}, &stubTableSync{})

	order, err := svc.Open(context.Background(), OpenInput{BranchID: uuid.New(), TableID: uuid.New()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "voided"}); err != nil {
		t.Fatalf("void: %v", err)
	}
	_, err = svc.UpdateStatus(context.Background(), order.ID, UpdateStatusInput{Status: "open"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
