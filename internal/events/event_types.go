package events

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventCommentAdded        EventType = "comment_added"
	EventFileUploaded        EventType = "file_uploaded"
	EventFileTagsUpdated     EventType = "file_tags_updated"
	EventSearchCompleted     EventType = "search_completed"
)

// EventTypes lists every type a forwarder subscribes to.
var EventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventCommentAdded,
	EventFileUploaded,
	EventFileTagsUpdated,
	EventSearchCompleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     domain.Role `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID string                `json:"customer_id"`
	Priority   domain.TicketPriority `json:"priority"`
	Title      string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	TextPreview string `json:"text_preview"`
}

// FileUploadedPayload payload.
type FileUploadedPayload struct {
	FileID    string `json:"file_id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// FileTagsUpdatedPayload payload.
type FileTagsUpdatedPayload struct {
	FileID string   `json:"file_id"`
	Tags   []string `json:"tags"`
}

// SearchCompletedPayload payload.
type SearchCompletedPayload struct {
	TaskID      string   `json:"task_id"`
	RequestTags []string `json:"request_tags"`
	Matches     int      `json:"matches"`
	Failed      bool     `json:"failed,omitempty"`
}
