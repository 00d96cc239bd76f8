package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/events"
	"github.com/spec-kit/parking-garage-service/internal/service"
)

// CacheWorker drops the statistics snapshot whenever garage occupancy
// changes, so reads after a mutation always recompute.
type CacheWorker struct {
	stats  *service.StatsService
	logger *zap.Logger
}

// NewCacheWorker constructs the worker.
func NewCacheWorker(stats *service.StatsService, logger *zap.Logger) *CacheWorker {
	return &CacheWorker{stats: stats, logger: logger}
}

// Register subscribes the worker to every occupancy event type.
func (w *CacheWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range events.AllEventTypes() {
		dispatcher.Subscribe(eventType, w.handle)
	}
}

func (w *CacheWorker) handle(ctx context.Context, event events.Event) error {
	w.stats.InvalidateSnapshot(ctx)
	w.logger.Debug("stats snapshot invalidated",
		zap.String("event_type", string(event.Type)),
		zap.Int("lot_number", event.LotNumber))
	return nil
}
