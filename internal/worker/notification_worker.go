// Package worker attaches background consumers to the event dispatcher.
package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/events"
	"github.com/spec-kit/supportops/internal/realtime"
	"github.com/spec-kit/supportops/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartBroadcastWorker forwards every created ticket to notifier, which pushes
// it to real-time clients.
func StartBroadcastWorker(dispatcher events.Dispatcher, notifier realtime.Notifier, logger *zap.Logger) {
	if dispatcher == nil || notifier == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, event events.Event) error {
		ticket, ok := events.CreatedTicket(event)
		if !ok {
			return fmt.Errorf("broadcast: event %s has no ticket payload", event.ID)
		}
		if err := notifier.Notify(ctx, ticket); err != nil {
			return fmt.Errorf("broadcast ticket %d: %w", ticket.ID, err)
		}
		logger.Debug("ticket broadcast", zap.Int64("ticket_id", ticket.ID))
		return nil
	})
}
