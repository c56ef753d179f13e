package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/supportops/internal/api/dto"
	"github.com/spec-kit/supportops/internal/service"
	apperrors "github.com/spec-kit/supportops/pkg/util"
)

// TicketsHandler serves the ticket intake endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	// A body that is absent or not JSON carries no title.
	if len(c.Body()) > 0 && c.Is("json") {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{Title: req.Title})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.TicketFromDomain(*ticket))
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketsFromDomain(tickets))
}
