package services

import (
	"context"

	"parkwatch/internal/queue"
	"parkwatch/pkg/logger"
	"parkwatch/pkg/websocket"
)

// NotificationService fans successful-mutation events out to real-time
// subscribers. Delivery is best effort: a subscriber outage never fails the
// originating operation.
type NotificationService interface {
	SpotEvent(ctx context.Context, spotID, section, event string, data map[string]interface{})
}

type notificationService struct {
	wsHandler *websocket.Handler
	publisher *queue.Publisher
	logger    *logger.Logger
}

func NewNotificationService(wsHandler *websocket.Handler, publisher *queue.Publisher, log *logger.Logger) NotificationService {
	return &notificationService{
		wsHandler: wsHandler,
		publisher: publisher,
		logger:    log,
	}
}

func (n *notificationService) SpotEvent(ctx context.Context, spotID, section, event string, data map[string]interface{}) {
	if n.wsHandler != nil {
		n.wsHandler.BroadcastSpotEvent(spotID, section, event, data)
	}
	if n.publisher != nil {
		_ = n.publisher.Publish(ctx, queue.SpotEvent{
			Event:   event,
			SpotID:  spotID,
			Section: section,
			Data:    data,
		})
	}
	n.logger.LogSpotEvent(spotID, event, data)
}
