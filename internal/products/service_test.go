package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
)

type stubRepo struct {
	products  map[uuid.UUID]*models.Product
	createErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (r *stubRepo) Create(_ context.Context, product *models.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, p := range r.products {
		if p.BranchID == product.BranchID && p.SKU == product.SKU {
			return errors.New(`duplicate key value violates unique constraint "idx_products_branch_sku"`)
		}
	}
	r.products[product.ID] = product
	return nil
}

func (r *stubRepo) Update(_ context.Context, product *models.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.products[product.ID] = product
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (r *stubRepo) List(_ context.Context, input ListInput) (*ListResult, error) {
	var out []models.Product
	for _, p := range r.products {
		if p.BranchID == input.BranchID {
			out = append(out, *p)
		}
	}
	return &ListResult{Products: out}, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: discard{}})
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		BranchID: uuid.New(),
		Name:     "Agua de jamaica",
		SKU:      "BEV-010",
		Category: "drinks",
		Price:    decimal.RequireFromString("-5"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateMapsDuplicateSKUToConflict(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	input := CreateInput{
		BranchID: uuid.New(),
		Name:     "Flan",
		SKU:      "DES-001",
		Category: "desserts",
		Price:    decimal.RequireFromString("45.00"),
	}
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{
		BranchID: uuid.New(),
		Name:     "Pozole",
		SKU:      "MAI-005",
		Category: "mains",
		Price:    decimal.RequireFromString("95.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	available := false
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Available: &available})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Available {
		t.Fatal("expected product to be marked unavailable")
	}
	if updated.Name != "Pozole" || !updated.Price.Equal(created.Price) {
		t.Fatalf("untouched fields must survive, got %+v", updated)
	}
}

func TestGetByIDUnknownProduct(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
