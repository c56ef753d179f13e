package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/domain"
	"github.com/spec-kit/supportops/internal/events"
	"github.com/spec-kit/supportops/internal/repository"
	"github.com/spec-kit/supportops/internal/triage"
	apperrors "github.com/spec-kit/supportops/pkg/util"
)

// Enricher derives a priority and reply for a ticket title. It must not fail.
type Enricher interface {
	Triage(ctx context.Context, text string) triage.Result
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	enricher   Enricher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Enricher   Enricher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		enricher:   deps.Enricher,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket validates the title, enriches the ticket, stores it and
// announces it. Enrichment failures never fail creation.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	// Blank titles are rejected; accepted titles are stored as received.
	title := input.Title
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticket := domain.NewTicket(title, s.now())

	enrichment := triage.DefaultResult()
	if s.enricher != nil {
		enrichment = s.enricher.Triage(ctx, title)
	}
	if enrichment.Priority.Valid() {
		ticket.Priority = enrichment.Priority
	}
	ticket.SuggestedReply = enrichment.SuggestedReply

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("store ticket: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Ticket:   *ticket,
			Fallback: enrichment.Fallback,
		},
	})
	return ticket, nil
}

// ListTickets returns every ticket, newest first.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

// SeedSampleTicket stores the row a fresh process starts with.
func SeedSampleTicket(repo repository.MemoryTicketRepository, now time.Time) {
	sample := domain.NewTicket("Sample ticket: internet down", now)
	sample.ID = 1
	repo.Seed(*sample)
}
