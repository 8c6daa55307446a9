package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrTaskNotPending is returned when completing a task that is missing
	// or already completed.
	ErrTaskNotPending = errors.New("task is not pending")
)

// Store bundles the repositories the services depend on.
type Store struct {
	Tickets   TicketRepository
	Customers CustomerRepository
	Comments  CommentRepository
	Files     FileRepository
	History   TicketHistoryRepository
	Tasks     TaskRepository
}

// NewPostgresStore returns a Store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return Store{
		Tickets:   NewTicketRepository(pool),
		Customers: NewCustomerRepository(pool),
		Comments:  NewCommentRepository(pool),
		Files:     NewFileRepository(pool),
		History:   NewTicketHistoryRepository(pool),
		Tasks:     NewTaskRepository(pool),
	}
}
