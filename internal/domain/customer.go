package domain

import "time"

// Customer owns tickets.
type Customer struct {
	ID        string
	Name      string
	City      string
	Email     string
	CreatedAt time.Time
}
