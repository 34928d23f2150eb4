package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/enums"
)

// Reservation claims a table for the half-open window [StartTime, EndTime).
// TableID is nil for waitlist entries that have not been seated yet.
type Reservation struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	BranchID           uuid.UUID               `gorm:"column:branch_id;type:uuid;not null;index"`
	CustomerID         uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	TableID            *uuid.UUID              `gorm:"column:table_id;type:uuid;index"`
	GuestName          string                  `gorm:"column:guest_name;not null"`
	GuestPhone         *string                 `gorm:"column:guest_phone"`
	PartySize          int                     `gorm:"column:party_size;not null"`
	StartTime          time.Time               `gorm:"column:start_time;not null;index"`
	EndTime            time.Time               `gorm:"column:end_time;not null"`
	Status             enums.ReservationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CancellationReason *string                 `gorm:"column:cancellation_reason"`
	Notes              *string                 `gorm:"column:notes"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// Window returns the reservation's claim interval.
func (r Reservation) Window() (time.Time, time.Time) {
	return r.StartTime, r.EndTime
}

// Covers reports whether t falls inside the reservation window and the
// reservation is confirmed.
func (r Reservation) Covers(t time.Time) bool {
	if r.Status != enums.ReservationStatusConfirmed {
		return false
	}
	return !t.Before(r.StartTime) && t.Before(r.EndTime)
}
