package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

// TicketStatusNew is the only status a ticket ever holds.
const TicketStatusNew TicketStatus = "new"

// TicketPriority enumerates triage urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// DefaultPriority is applied when no usable classification exists.
const DefaultPriority = TicketPriorityMedium

// Ticket is the aggregate for support requests. It is never mutated once stored.
type Ticket struct {
	ID             int64
	Title          string
	Status         TicketStatus
	Priority       TicketPriority
	SuggestedReply string
	CreatedAt      time.Time
}

// NewTicket constructs a ticket with creation defaults.
func NewTicket(title string, now time.Time) *Ticket {
	return &Ticket{
		Title:     title,
		Status:    TicketStatusNew,
		Priority:  DefaultPriority,
		CreatedAt: now,
	}
}

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ParsePriority normalizes free-form classifier output. Anything outside the
// known set becomes DefaultPriority.
func ParsePriority(raw string) TicketPriority {
	cleaned := strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "."))
	p := TicketPriority(strings.TrimSpace(cleaned))
	if !p.Valid() {
		return DefaultPriority
	}
	return p
}
