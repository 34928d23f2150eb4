package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/db/models"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
	"github.com/miguelgarza/comanda-backend/pkg/metrics"
)

const (
	kindStart = "start"
	kindEnd   = "end"
)

// Transitioner applies the state change a fired deadline demands. Both hooks
// re-read the reservation from the store and report false when the transition
// no-opped because the reservation had already gone terminal.
type Transitioner interface {
	ReservationStarted(ctx context.Context, reservationID uuid.UUID) (bool, error)
	ReservationEnded(ctx context.Context, reservationID uuid.UUID) (bool, error)
}

// Scheduler holds up to two armed deadline timers per reservation and fires
// the matching transition at each wall-clock moment. The in-memory timer map
// is a derived cache: the store stays authoritative and the bootstrapper can
// rebuild every entry after a restart.
type Scheduler struct {
	clk     Clock
	logg    *logger.Logger
	metrics *metrics.SchedulerMetrics
	trans   Transitioner

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

type entry struct {
	start Timer
	end   Timer
}

// New builds a deadline scheduler.
func New(clk Clock, trans Transitioner, logg *logger.Logger, m *metrics.SchedulerMetrics) (*Scheduler, error) {
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	if trans == nil {
		return nil, fmt.Errorf("transitioner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Scheduler{
		clk:     clk,
		logg:    logg,
		metrics: m,
		trans:   trans,
		entries: make(map[uuid.UUID]*entry),
	}, nil
}

// Schedule arms the start and end deadlines for the reservation, replacing any
// previously armed timers for the same id. Deadlines already in the past are
// applied synchronously before Schedule returns, so a restarted process
// converges without waiting.
func (s *Scheduler) Schedule(ctx context.Context, res *models.Reservation) {
	if res == nil {
		return
	}
	id := res.ID

	var fireStartNow, fireEndNow bool

	s.mu.Lock()
	s.cancelLocked(id)
	if !res.Status.IsTerminal() {
		now := s.clk.Now()
		e := &entry{}
		switch {
		case now.Before(res.StartTime):
			e.start = s.clk.AfterFunc(res.StartTime.Sub(now), func() { s.fire(id, kindStart) })
			s.metrics.TimerArmed(kindStart)
		case now.Before(res.EndTime):
			// The window already started, e.g. after a restart.
			fireStartNow = true
		}
		if now.Before(res.EndTime) {
			e.end = s.clk.AfterFunc(res.EndTime.Sub(now), func() { s.fire(id, kindEnd) })
			s.metrics.TimerArmed(kindEnd)
		} else {
			fireEndNow = true
		}
		if e.start != nil || e.end != nil {
			s.entries[id] = e
		}
	}
	s.mu.Unlock()

	if fireStartNow {
		s.apply(ctx, id, kindStart)
	}
	if fireEndNow {
		s.apply(ctx, id, kindEnd)
	}
}

// Reschedule replaces the reservation's deadlines with ones matching its
// current state. The cancel and re-arm happen under one lock, so no window
// exists where old and new timers are both live.
func (s *Scheduler) Reschedule(ctx context.Context, res *models.Reservation) {
	s.Schedule(ctx, res)
}

// Cancel disarms both deadlines for the reservation id. It is a no-op when
// nothing is armed.
func (s *Scheduler) Cancel(reservationID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(reservationID)
}

// Armed reports which deadlines are currently armed for the reservation id.
func (s *Scheduler) Armed(reservationID uuid.UUID) (start, end bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[reservationID]
	if !ok {
		return false, false
	}
	return e.start != nil, e.end != nil
}

func (s *Scheduler) cancelLocked(id uuid.UUID) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	if e.start != nil && e.start.Stop() {
		s.metrics.TimerDisarmed(kindStart)
	}
	if e.end != nil && e.end.Stop() {
		s.metrics.TimerDisarmed(kindEnd)
	}
	delete(s.entries, id)
}

// fire runs on the timer goroutine when a deadline elapses.
func (s *Scheduler) fire(id uuid.UUID, kind string) {
	s.mu.Lock()
	if e, ok := s.entries[id]; ok {
		if kind == kindStart {
			e.start = nil
		} else {
			e.end = nil
		}
		if e.start == nil && e.end == nil {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
	s.metrics.TimerDisarmed(kind)

	s.apply(context.Background(), id, kind)
}

func (s *Scheduler) apply(ctx context.Context, id uuid.UUID, kind string) {
	ctx = s.logg.WithReservationID(ctx, id.String())
	ctx = s.logg.WithField(ctx, "deadline", kind)

	var applied bool
	var err error
	if kind == kindStart {
		applied, err = s.trans.ReservationStarted(ctx, id)
	} else {
		applied, err = s.trans.ReservationEnded(ctx, id)
	}
	if err != nil {
		// Give up for this firing. The reservation stays in its persisted
		// state and the next edit or restart re-evaluates it.
		s.metrics.TransitionFailed(kind)
		s.logg.Error(ctx, "deadline transition failed", err)
		return
	}
	if !applied {
		s.metrics.TransitionSkipped(kind)
		return
	}
	s.metrics.TransitionApplied(kind)
	s.logg.Info(ctx, "deadline transition applied")
}
