package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"dms-service/internal/models"
	"dms-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// SnapshotDocumentKey keys every snapshot event so they stay ordered on one partition
const SnapshotDocumentKey = "dms-data-1"

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSnapshotStored publishes a SnapshotStored event
func (ep *EventPublisher) PublishSnapshotStored(ctx context.Context, event *models.SnapshotStoredEvent) error {
	return ep.producer.PublishEvent(ctx, SnapshotDocumentKey, event)
}

// EventHandler routes incoming events by type
type EventHandler struct {
	onSnapshotStored func(context.Context, *models.SnapshotStoredEvent) error
	logger           *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(logger *zap.Logger) *EventHandler {
	return &EventHandler{logger: util.LoggerOr(logger)}
}

// OnSnapshotStored registers a handler for SnapshotStored events
func (eh *EventHandler) OnSnapshotStored(handler func(context.Context, *models.SnapshotStoredEvent) error) {
	eh.onSnapshotStored = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeSnapshotStored:
		if eh.onSnapshotStored != nil {
			var event models.SnapshotStoredEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SnapshotStored event: %w", err)
			}
			return eh.onSnapshotStored(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
