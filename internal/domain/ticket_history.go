package domain

import "time"

// TicketHistory is an immutable audit entry for a status transition.
type TicketHistory struct {
	ID        string
	TicketID  string
	ChangedBy Role
	OldStatus TicketStatus
	NewStatus TicketStatus
	CreatedAt time.Time
}
