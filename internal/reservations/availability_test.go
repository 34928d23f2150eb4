package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/enums"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
)

func seedReservation(repo *memRepo, tableID uuid.UUID, start, end time.Time, status enums.ReservationStatus) *models.Reservation {
	res := &models.Reservation{
		ID:         uuid.New(),
		BranchID:   uuid.New(),
		CustomerID: uuid.New(),
		TableID:    &tableID,
		GuestName:  "Ana Sosa",
		PartySize:  2,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
	}
	repo.reservations[res.ID] = res
	return res
}

func TestIsAvailableOverlapSemantics(t *testing.T) {
	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	tableID := uuid.New()

	cases := []struct {
		name      string
		start     time.Time
		end       time.Time
		available bool
	}{
		{"identical window", base, base.Add(time.Hour), false},
		{"nested window", base.Add(15 * time.Minute), base.Add(30 * time.Minute), false},
		{"overlaps tail", base.Add(45 * time.Minute), base.Add(90 * time.Minute), false},
		{"overlaps head", base.Add(-30 * time.Minute), base.Add(15 * time.Minute), false},
		{"starts at existing end", base.Add(time.Hour), base.Add(2 * time.Hour), true},
		{"ends at existing start", base.Add(-time.Hour), base, true},
		{"entirely before", base.Add(-2 * time.Hour), base.Add(-time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepo()
			seedReservation(repo, tableID, base, base.Add(time.Hour), enums.ReservationStatusConfirmed)
			checker, err := NewAvailabilityChecker(repo)
			if err != nil {
				t.Fatalf("new checker: %v", err)
			}

			available, conflict, err := checker.IsAvailable(context.Background(), tableID, tc.start, tc.end, nil)
			if err != nil {
				t.Fatalf("is available: %v", err)
			}
			if available != tc.available {
				t.Fatalf("expected available=%v, got %v", tc.available, available)
			}
			if !available && conflict == nil {
				t.Fatal("unavailable result must name the conflicting reservation")
			}
		})
	}
}

func TestIsAvailableIgnoresTerminalReservations(t *testing.T) {
	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	tableID := uuid.New()
	repo := newMemRepo()
	seedReservation(repo, tableID, base, base.Add(time.Hour), enums.ReservationStatusCancelled)
	seedReservation(repo, tableID, base, base.Add(time.Hour), enums.ReservationStatusCompleted)

	checker, err := NewAvailabilityChecker(repo)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}
	available, _, err := checker.IsAvailable(context.Background(), tableID, base, base.Add(time.Hour), nil)
	if err != nil {
		t.Fatalf("is available: %v", err)
	}
	if !available {
		t.Fatal("terminal reservations must not block the table")
	}
}

func TestIsAvailableExcludesOwnReservation(t *testing.T) {
	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	tableID := uuid.New()
	repo := newMemRepo()
	own := seedReservation(repo, tableID, base, base.Add(time.Hour), enums.ReservationStatusPending)

	checker, err := NewAvailabilityChecker(repo)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}
	available, _, err := checker.IsAvailable(context.Background(), tableID, base.Add(10*time.Minute), base.Add(70*time.Minute), &own.ID)
	if err != nil {
		t.Fatalf("is available: %v", err)
	}
	if !available {
		t.Fatal("a reservation must not conflict with itself during an update")
	}
}

func TestIsAvailableFailsClosedOnStoreError(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("connection refused")
	checker, err := NewAvailabilityChecker(repo)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	available, conflict, err := checker.IsAvailable(context.Background(), uuid.New(), time.Now(), time.Now().Add(time.Hour), nil)
	if available || conflict != nil {
		t.Fatal("a failed lookup must report unavailable")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
