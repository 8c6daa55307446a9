package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/worker"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets   repository.TicketRepository
	customers repository.CustomerRepository
	comments  repository.CommentRepository
	history   repository.TicketHistoryRepository
	events    eventPublisher
	clock     worker.Clock
	logger    *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CustomerRepo repository.CustomerRepository
	CommentRepo  repository.CommentRepository
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
	Clock        worker.Clock
	Logger       *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CustomerID  string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := clockOrReal(deps.Clock)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:   deps.TicketRepo,
		customers: deps.CustomerRepo,
		comments:  deps.CommentRepo,
		history:   deps.HistoryRepo,
		events:    eventPublisher{dispatcher: deps.Dispatcher, clock: clock, logger: logger},
		clock:     clock,
		logger:    logger,
	}
}

// CreateTicket opens a ticket in Draft for an existing customer.
func (s *TicketService) CreateTicket(ctx context.Context, role domain.Role, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errorutil.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityLow
	}
	if !priority.Valid() {
		return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	customerID := strings.TrimSpace(input.CustomerID)
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errorutil.NewValidationError("customer does not exist", map[string]any{"customerId": customerID})
		}
		return nil, err
	}

	now := s.clock.Now()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Status:      domain.TicketStatusDraft,
		CustomerID:  customerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    role,
		Payload: events.TicketCreatedPayload{
			CustomerID: ticket.CustomerID,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets matching filter in creation order.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errorutil.NewValidationError("unknown ticket status", map[string]any{"status": filter.Status})
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": filter.Priority})
	}
	return s.tickets.List(ctx, filter)
}

// GetTicket fetches a ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}
	return ticket, nil
}

// RequestTransition moves a ticket to requested when the lifecycle allows
// role to take that edge. The check and the write happen atomically.
func (s *TicketService) RequestTransition(ctx context.Context, ticketID, requested string, role domain.Role) (*domain.Ticket, error) {
	target, err := parseStatus(strings.TrimSpace(requested))
	if err != nil {
		return nil, err
	}

	var oldStatus domain.TicketStatus
	ticket, err := s.tickets.Mutate(ctx, ticketID, func(ticket *domain.Ticket) error {
		if err := authorizeTransition(ticket.Status, target, role); err != nil {
			return err
		}
		oldStatus = ticket.Status
		ticket.Status = target
		ticket.UpdatedAt = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}

	entry := &domain.TicketHistory{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		ChangedBy: role,
		OldStatus: oldStatus,
		NewStatus: ticket.Status,
		CreatedAt: ticket.UpdatedAt,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("record status history", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	s.events.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    role,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// ListHistory returns the status history of a ticket, oldest first.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticketID)
}

// AddComment appends a comment written by role. Closed tickets reject it.
func (s *TicketService) AddComment(ctx context.Context, ticketID string, role domain.Role, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errorutil.NewValidationError("text is required", map[string]any{"field": "text"})
	}
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := ensureOpenForChanges(ticket); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		Text:      text,
		Author:    role,
		CreatedAt: s.clock.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.events.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    role,
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			TextPreview: stringPreview(comment.Text, 120),
		},
	})
	return comment, nil
}

// ListComments returns a ticket's comments oldest first.
func (s *TicketService) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.comments.ListByTicket(ctx, ticketID)
}

func ensureOpenForChanges(ticket *domain.Ticket) error {
	if !ticket.Status.Closed() {
		return nil
	}
	return errorutil.NewValidationError("ticket is closed for changes", map[string]any{
		"id":     ticket.ID,
		"status": ticket.Status,
	})
}
