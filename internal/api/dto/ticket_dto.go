package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	CustomerID  string                `json:"customerId"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse represents a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	CustomerID  string                `json:"customerId"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// TransitionsResponse lists the statuses the caller may request next.
type TransitionsResponse struct {
	Current domain.TicketStatus   `json:"current"`
	Role    domain.Role           `json:"role"`
	Allowed []domain.TicketStatus `json:"allowed"`
}

// HistoryEntryResponse is one recorded status change.
type HistoryEntryResponse struct {
	ID        string              `json:"id"`
	ChangedBy domain.Role         `json:"changedBy"`
	OldStatus domain.TicketStatus `json:"oldStatus"`
	NewStatus domain.TicketStatus `json:"newStatus"`
	CreatedAt time.Time           `json:"createdAt"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse represents a comment.
type CommentResponse struct {
	ID        string      `json:"id"`
	TicketID  string      `json:"ticketId"`
	Text      string      `json:"text"`
	Author    domain.Role `json:"author"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		CustomerID:  ticket.CustomerID,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewTicketList maps a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewHistoryList maps history entries.
func NewHistoryList(entries []domain.TicketHistory) []HistoryEntryResponse {
	items := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, HistoryEntryResponse{
			ID:        entry.ID,
			ChangedBy: entry.ChangedBy,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			CreatedAt: entry.CreatedAt,
		})
	}
	return items
}

// NewCommentResponse maps a comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		Text:      comment.Text,
		Author:    comment.Author,
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentList maps comments.
func NewCommentList(comments []domain.Comment) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, NewCommentResponse(&comments[i]))
	}
	return items
}
