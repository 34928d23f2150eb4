package reservations

import (
	"context"
	"fmt"

	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
)

// Bootstrapper rebuilds the in-memory deadline timers from durable state at
// process startup. It must finish before the API starts taking traffic.
type Bootstrapper struct {
	repo  Repository
	sched DeadlineScheduler
	logg  *logger.Logger
}

// NewBootstrapper wires the startup recovery dependencies.
func NewBootstrapper(repo Repository, sched DeadlineScheduler, logg *logger.Logger) (*Bootstrapper, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if sched == nil {
		return nil, fmt.Errorf("deadline scheduler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Bootstrapper{repo: repo, sched: sched, logg: logg}, nil
}

// Run schedules every non-terminal reservation exactly as the coordinator
// would on create. Deadlines that elapsed while the process was down fire
// synchronously inside Schedule, so a long-dead process converges before
// serving its first request.
func (b *Bootstrapper) Run(ctx context.Context) error {
	active, err := b.repo.FindActive(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading active reservations")
	}

	for i := range active {
		b.sched.Schedule(ctx, &active[i])
	}

	ctx = b.logg.WithField(ctx, "count", len(active))
	b.logg.Info(ctx, "reservation deadlines rebuilt")
	return nil
}
