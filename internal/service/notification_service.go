package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/config"
	"github.com/spec-kit/supportops/internal/events"
	"github.com/spec-kit/supportops/pkg/util"
)

const webhookTimeout = 5 * time.Second

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	httpClient *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: webhookTimeout},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	ticket, _ := events.CreatedTicket(event)
	n.logger.Info("TicketCreated",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("priority", string(ticket.Priority)),
		zap.Bool("ai_fallback", isFallback(event)))

	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	// Delivery never holds up the request that created the ticket.
	detached := context.WithoutCancel(ctx)
	util.SafeGo(n.logger, "webhook", func() {
		if err := n.sendWebhook(detached, url, event); err != nil {
			n.logger.Warn("webhook delivery failed", zap.Int64("ticket_id", event.TicketID), zap.Error(err))
		}
	})
	return nil
}

// sendWebhook posts the event as JSON to url.
func (n *NotificationService) sendWebhook(ctx context.Context, url string, event events.Event) error {
	body, err := json.Marshal(webhookPayload(event))
	if err != nil {
		return fmt.Errorf("webhook: marshaling event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: sending: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	n.logger.Debug("webhook delivered", zap.Int64("ticket_id", event.TicketID))
	return nil
}

type webhookTicket struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	SuggestedReply string    `json:"suggestedReply"`
	CreatedAt      time.Time `json:"createdAt"`
}

type webhookBody struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Ticket    webhookTicket `json:"ticket"`
}

func webhookPayload(event events.Event) webhookBody {
	ticket, _ := events.CreatedTicket(event)
	return webhookBody{
		ID:        event.ID,
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Ticket: webhookTicket{
			ID:             ticket.ID,
			Title:          ticket.Title,
			Status:         string(ticket.Status),
			Priority:       string(ticket.Priority),
			SuggestedReply: ticket.SuggestedReply,
			CreatedAt:      ticket.CreatedAt,
		},
	}
}

func isFallback(event events.Event) bool {
	if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
		return payload.Fallback
	}
	return false
}
