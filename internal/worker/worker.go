package worker

import (
	"context"

	"dms-service/internal/broker"
	"dms-service/internal/models"
	"dms-service/internal/util"

	"go.uber.org/zap"
)

// SnapshotWorker follows stored snapshots and exports their collection sizes as metrics
type SnapshotWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewSnapshotWorker creates a new snapshot worker
func NewSnapshotWorker(consumer *broker.Consumer, logger *zap.Logger) *SnapshotWorker {
	logger = util.LoggerOr(logger)
	w := &SnapshotWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(logger),
		logger:       logger,
	}
	w.eventHandler.OnSnapshotStored(w.HandleSnapshotStored)
	return w
}

// Handler returns the message handler the worker consumes with
func (w *SnapshotWorker) Handler() broker.MessageHandler {
	return w.eventHandler.HandleMessage
}

// HandleSnapshotStored updates the collection record gauges
func (w *SnapshotWorker) HandleSnapshotStored(ctx context.Context, event *models.SnapshotStoredEvent) error {
	for collection, n := range event.Counts {
		util.CollectionRecords.WithLabelValues(collection).Set(float64(n))
	}
	w.logger.Info("Snapshot stored",
		zap.String("event_id", event.EventID),
		zap.Time("updated_at", event.UpdatedAt),
		zap.Any("counts", event.Counts))
	return nil
}

// Start starts the worker
func (w *SnapshotWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting snapshot worker")
	return w.consumer.StartConsuming(ctx, w.Handler())
}

// Stop stops the worker
func (w *SnapshotWorker) Stop() error {
	w.logger.Info("Stopping snapshot worker")
	return w.consumer.Close()
}
