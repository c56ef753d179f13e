package dto

import (
	"time"

	"github.com/spec-kit/supportops/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title string `json:"title"`
}

// TicketResponse is the wire form of a ticket, shared by HTTP and websocket.
type TicketResponse struct {
	ID             int64                 `json:"id"`
	Title          string                `json:"title"`
	Status         domain.TicketStatus   `json:"status"`
	CreatedAt      time.Time             `json:"createdAt"`
	Priority       domain.TicketPriority `json:"priority"`
	SuggestedReply string                `json:"suggestedReply"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// TicketFromDomain maps a ticket to its wire form.
func TicketFromDomain(ticket domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Status:         ticket.Status,
		CreatedAt:      ticket.CreatedAt,
		Priority:       ticket.Priority,
		SuggestedReply: ticket.SuggestedReply,
	}
}

// TicketsFromDomain maps a list, never returning nil so it encodes as [].
func TicketsFromDomain(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		out = append(out, TicketFromDomain(ticket))
	}
	return out
}
