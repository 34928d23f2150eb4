package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Relay is a Transitioner that forwards to one bound later. The scheduler and
// the coordinator reference each other, so wiring builds the scheduler against
// a relay first and binds the coordinator once it exists. Nothing can fire
// before binding because timers are only armed through Schedule calls made
// after the graph is complete.
type Relay struct {
	mu     sync.RWMutex
	target Transitioner
}

// NewRelay builds an unbound relay.
func NewRelay() *Relay {
	return &Relay{}
}

// Bind sets the forwarding target. Later calls replace it.
func (r *Relay) Bind(target Transitioner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
}

func (r *Relay) ReservationStarted(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	target, err := r.resolve()
	if err != nil {
		return false, err
	}
	return target.ReservationStarted(ctx, reservationID)
}

func (r *Relay) ReservationEnded(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	target, err := r.resolve()
	if err != nil {
		return false, err
	}
	return target.ReservationEnded(ctx, reservationID)
}

func (r *Relay) resolve() (Transitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.target == nil {
		return nil, fmt.Errorf("transitioner not bound")
	}
	return r.target, nil
}
