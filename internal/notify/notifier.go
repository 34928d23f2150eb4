package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/miguelgarza/comanda-backend/pkg/enums"
	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/logger"
)

// TableStatusChanged is published once per actual table status transition,
// never once per timer firing.
type TableStatusChanged struct {
	TableID  uuid.UUID         `json:"table_id"`
	BranchID uuid.UUID         `json:"branch_id"`
	Status   enums.TableStatus `json:"status"`
}

// Notifier fans table-status events out to branch-scoped subscribers.
type Notifier interface {
	TableStatusChanged(ctx context.Context, event TableStatusChanged) error
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	TableEventsChannel(branchID string) string
}

// RedisNotifier publishes events over redis pub/sub, one channel per branch.
type RedisNotifier struct {
	client publisher
	logg   *logger.Logger
}

// NewRedisNotifier builds a redis-backed notifier.
func NewRedisNotifier(client publisher, logg *logger.Logger) (*RedisNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisNotifier{client: client, logg: logg}, nil
}

func (n *RedisNotifier) TableStatusChanged(ctx context.Context, event TableStatusChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding table status event")
	}
	channel := n.client.TableEventsChannel(event.BranchID.String())
	if err := n.client.Publish(ctx, channel, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publishing table status event")
	}

	ctx = n.logg.WithFields(ctx, map[string]any{
		"table_id": event.TableID.String(),
		"status":   event.Status.String(),
		"channel":  channel,
	})
	n.logg.Info(ctx, "table status event published")
	return nil
}
