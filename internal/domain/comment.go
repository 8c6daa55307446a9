package domain

import "time"

// Comment is a note attached to a ticket thread. Author is the role of the
// writer since there are no user accounts.
type Comment struct {
	ID        string
	TicketID  string
	Text      string
	Author    Role
	CreatedAt time.Time
}
