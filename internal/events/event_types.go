package events

import (
	"time"

	"github.com/spec-kit/supportops/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries the stored ticket.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
	// Fallback records that AI enrichment was skipped or failed.
	Fallback bool `json:"fallback"`
}

// CreatedTicket extracts the ticket from an EventTicketCreated event.
func CreatedTicket(event Event) (domain.Ticket, bool) {
	switch payload := event.Payload.(type) {
	case TicketCreatedPayload:
		return payload.Ticket, true
	case *TicketCreatedPayload:
		if payload != nil {
			return payload.Ticket, true
		}
	}
	return domain.Ticket{}, false
}
