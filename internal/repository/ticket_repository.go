package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/supportops/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context) ([]domain.Ticket, error)
}

// memoryTicketRepository keeps tickets newest first in process memory.
type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
	lastID  int64
}

// MemoryTicketRepository is the in-process store. Seed is exposed for the
// sample row; everything else goes through TicketRepository.
type MemoryTicketRepository interface {
	TicketRepository
	Seed(ticket domain.Ticket)
}

// NewMemoryTicketRepository instantiates an empty repository.
func NewMemoryTicketRepository() MemoryTicketRepository {
	return &memoryTicketRepository{}
}

// Create assigns the next id and prepends the ticket.
func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	ticket.ID = r.lastID
	r.tickets = append([]domain.Ticket{*ticket}, r.tickets...)
	return nil
}

// List returns a copy of every ticket, newest first.
func (r *memoryTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Ticket, len(r.tickets))
	copy(out, r.tickets)
	return out, nil
}

// Seed stores a ticket with a caller-chosen id and keeps the sequence ahead of it.
func (r *memoryTicketRepository) Seed(ticket domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID > r.lastID {
		r.lastID = ticket.ID
	}
	r.tickets = append([]domain.Ticket{ticket}, r.tickets...)
}
