package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/events"
)

// NotificationService logs domain events for operators.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.logEvent("CommentAdded"))
	n.dispatcher.Subscribe(events.EventFileUploaded, n.logEvent("FileUploaded"))
	n.dispatcher.Subscribe(events.EventFileTagsUpdated, n.logEvent("FileTagsUpdated"))
	n.dispatcher.Subscribe(events.EventSearchCompleted, n.handleSearchCompleted)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
		return nil
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", string(event.Actor)),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}

func (n *NotificationService) handleSearchCompleted(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SearchCompletedPayload)
	if payload.Failed {
		n.logger.Warn("SearchCompleted with failure", zap.String("task_id", payload.TaskID))
		return nil
	}
	n.logger.Info("SearchCompleted", zap.String("task_id", payload.TaskID), zap.Int("matches", payload.Matches))
	return nil
}

func (n *NotificationService) logEvent(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(name,
			zap.String("ticket_id", event.TicketID),
			zap.String("actor", string(event.Actor)),
			zap.Any("payload", event.Payload))
		return nil
	}
}
