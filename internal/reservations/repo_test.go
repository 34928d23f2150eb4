package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

func setupReservationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	reservations := `
CREATE TABLE IF NOT EXISTS reservations (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  table_id TEXT,
  guest_name TEXT NOT NULL,
  guest_phone TEXT,
  party_size INTEGER NOT NULL,
  start_time DATETIME NOT NULL,
  end_time DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  cancellation_reason TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(reservations).Error)
	// The shared-cache DB survives across tests in this package.
	require.NoError(t, db.Exec("DELETE FROM reservations").Error)
	return db
}

func insertReservation(t *testing.T, repo Repository, branchID uuid.UUID, tableID *uuid.UUID, start, end time.Time, status enums.ReservationStatus) *models.Reservation {
	t.Helper()

	res := &models.Reservation{
		ID:         uuid.New(),
		BranchID:   branchID,
		CustomerID: uuid.New(),
		TableID:    tableID,
		GuestName:  "Lucia Vega",
		PartySize:  2,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
	}
	require.NoError(t, repo.Create(context.Background(), res))
	return res
}

func TestRepoFindOverlappingHalfOpen(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	branchID := uuid.New()
	tableID := uuid.New()
	held := insertReservation(t, repo, branchID, &tableID, base, base.Add(time.Hour), enums.ReservationStatusConfirmed)

	// Nested request overlaps.
	got, err := repo.FindOverlapping(ctx, tableID, base.Add(15*time.Minute), base.Add(30*time.Minute), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, held.ID, got[0].ID)

	// Back-to-back at the boundary does not.
	got, err = repo.FindOverlapping(ctx, tableID, base.Add(time.Hour), base.Add(2*time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.FindOverlapping(ctx, tableID, base.Add(-time.Hour), base, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Excluding the holder clears the window.
	got, err = repo.FindOverlapping(ctx, tableID, base, base.Add(time.Hour), &held.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepoFindOverlappingIgnoresTerminalAndOtherTables(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	branchID := uuid.New()
	tableID := uuid.New()
	otherTable := uuid.New()

	insertReservation(t, repo, branchID, &tableID, base, base.Add(time.Hour), enums.ReservationStatusCancelled)
	insertReservation(t, repo, branchID, &tableID, base, base.Add(time.Hour), enums.ReservationStatusCompleted)
	insertReservation(t, repo, branchID, &otherTable, base, base.Add(time.Hour), enums.ReservationStatusConfirmed)

	got, err := repo.FindOverlapping(ctx, tableID, base, base.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepoHasConfirmedCovering(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	branchID := uuid.New()
	tableID := uuid.New()
	insertReservation(t, repo, branchID, &tableID, base, base.Add(time.Hour), enums.ReservationStatusConfirmed)

	covered, err := repo.HasConfirmedCovering(ctx, tableID, base)
	require.NoError(t, err)
	assert.True(t, covered, "window start is covered")

	covered, err = repo.HasConfirmedCovering(ctx, tableID, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, covered)

	covered, err = repo.HasConfirmedCovering(ctx, tableID, base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, covered, "window end is excluded")

	// A pending reservation never covers.
	pendingTable := uuid.New()
	insertReservation(t, repo, branchID, &pendingTable, base, base.Add(time.Hour), enums.ReservationStatusPending)
	covered, err = repo.HasConfirmedCovering(ctx, pendingTable, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, covered)
}

func TestRepoFindActiveIncludesOverdue(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	branchID := uuid.New()
	tableID := uuid.New()

	future := insertReservation(t, repo, branchID, &tableID, base.Add(time.Hour), base.Add(2*time.Hour), enums.ReservationStatusPending)
	overdue := insertReservation(t, repo, branchID, &tableID, base.Add(-3*time.Hour), base.Add(-2*time.Hour), enums.ReservationStatusConfirmed)
	insertReservation(t, repo, branchID, &tableID, base, base.Add(time.Hour), enums.ReservationStatusCompleted)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)

	ids := map[uuid.UUID]bool{}
	for _, res := range active {
		ids[res.ID] = true
	}
	assert.True(t, ids[future.ID])
	assert.True(t, ids[overdue.ID], "overdue reservations must be recovered, not skipped")
	assert.Len(t, ids, 2)
}

func TestRepoUpdateStatusStoresReason(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	res := insertReservation(t, repo, uuid.New(), nil, base, base.Add(time.Hour), enums.ReservationStatusPending)

	reason := "no show"
	require.NoError(t, repo.UpdateStatus(ctx, res.ID, enums.ReservationStatusCancelled, &reason))

	reloaded, err := repo.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationStatusCancelled, reloaded.Status)
	require.NotNil(t, reloaded.CancellationReason)
	assert.Equal(t, reason, *reloaded.CancellationReason)
}

func TestRepoListFilters(t *testing.T) {
	db := setupReservationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	branchID := uuid.New()
	tableID := uuid.New()

	inBranch := insertReservation(t, repo, branchID, &tableID, base, base.Add(time.Hour), enums.ReservationStatusConfirmed)
	insertReservation(t, repo, branchID, nil, base.Add(48*time.Hour), base.Add(49*time.Hour), enums.ReservationStatusPending)
	insertReservation(t, repo, uuid.New(), &tableID, base, base.Add(time.Hour), enums.ReservationStatusPending)

	all, err := repo.List(ctx, ListFilters{BranchID: branchID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byTable, err := repo.List(ctx, ListFilters{BranchID: branchID, TableID: &tableID})
	require.NoError(t, err)
	require.Len(t, byTable, 1)
	assert.Equal(t, inBranch.ID, byTable[0].ID)

	status := enums.ReservationStatusConfirmed
	byStatus, err := repo.List(ctx, ListFilters{BranchID: branchID, Status: &status})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, inBranch.ID, byStatus[0].ID)

	day := base
	byDay, err := repo.List(ctx, ListFilters{BranchID: branchID, Date: &day})
	require.NoError(t, err)
	require.Len(t, byDay, 1)
	assert.Equal(t, inBranch.ID, byDay[0].ID)

	byCustomer, err := repo.List(ctx, ListFilters{BranchID: branchID, CustomerID: &inBranch.CustomerID})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
}
