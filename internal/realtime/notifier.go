package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/api/dto"
	"github.com/spec-kit/supportops/internal/domain"
	"github.com/spec-kit/supportops/pkg/util"
)

// Notifier announces a newly created ticket to real-time clients.
type Notifier interface {
	Notify(ctx context.Context, ticket domain.Ticket) error
}

// HubNotifier broadcasts on the local hub only.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier wraps hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// Notify broadcasts ticket.
func (n *HubNotifier) Notify(_ context.Context, ticket domain.Ticket) error {
	n.hub.Broadcast(dto.TicketFromDomain(ticket))
	return nil
}

// RedisNotifier publishes tickets on a Redis channel so that every instance's
// RedisRelay can broadcast them. If publishing fails the ticket goes to the
// fallback notifier instead.
type RedisNotifier struct {
	client   *redis.Client
	channel  string
	fallback Notifier
	logger   *zap.Logger
}

// NewRedisNotifier builds a publisher on channel.
func NewRedisNotifier(client *redis.Client, channel string, fallback Notifier, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, fallback: fallback, logger: logger}
}

// Notify publishes ticket.
func (n *RedisNotifier) Notify(ctx context.Context, ticket domain.Ticket) error {
	data, err := json.Marshal(dto.TicketFromDomain(ticket))
	if err != nil {
		return fmt.Errorf("realtime: marshaling ticket: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		n.logger.Warn("redis publish failed, broadcasting locally", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		return n.fallback.Notify(ctx, ticket)
	}
	return nil
}

// RedisRelay forwards tickets published on a Redis channel to the local hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
}

// NewRedisRelay builds a relay.
func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, hub: hub, logger: logger}
}

// Start subscribes and returns once the subscription is confirmed. Messages
// are relayed on a background goroutine until ctx is done.
func (r *RedisRelay) Start(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("realtime: subscribing to %s: %w", r.channel, err)
	}
	util.SafeGo(r.logger, "redis-relay", func() {
		defer sub.Close()
		r.relay(ctx, sub.Channel())
	})
	return nil
}

func (r *RedisRelay) relay(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var ticket dto.TicketResponse
			if err := json.Unmarshal([]byte(msg.Payload), &ticket); err != nil {
				r.logger.Warn("ignoring malformed relay message", zap.Error(err))
				continue
			}
			r.hub.Broadcast(ticket)
		}
	}
}
