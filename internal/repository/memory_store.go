package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// MemoryStore keeps every record in process memory. It is the default
// backend and lives for the lifetime of the process. All records are copied
// on the way in and out so callers never share mutable state with it.
type MemoryStore struct {
	mu sync.RWMutex

	tickets     map[string]domain.Ticket
	ticketOrder []string
	customers   map[string]domain.Customer
	comments    map[string][]domain.Comment
	files       map[string]domain.StoredFile
	fileOrder   []string
	history     map[string][]domain.TicketHistory
	tasks       map[string]domain.Task
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	m.Reset()
	return m
}

// Reset drops every record. Intended for test harnesses.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets = make(map[string]domain.Ticket)
	m.ticketOrder = nil
	m.customers = make(map[string]domain.Customer)
	m.comments = make(map[string][]domain.Comment)
	m.files = make(map[string]domain.StoredFile)
	m.fileOrder = nil
	m.history = make(map[string][]domain.TicketHistory)
	m.tasks = make(map[string]domain.Task)
}

// Store exposes the memory repositories behind the common Store bundle.
func (m *MemoryStore) Store() Store {
	return Store{
		Tickets:   memoryTickets{m},
		Customers: memoryCustomers{m},
		Comments:  memoryComments{m},
		Files:     memoryFiles{m},
		History:   memoryHistory{m},
		Tasks:     memoryTasks{m},
	}
}

type memoryTickets struct{ m *MemoryStore }

func (r memoryTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.tickets[ticket.ID]; !exists {
		r.m.ticketOrder = append(r.m.ticketOrder, ticket.ID)
	}
	r.m.tickets[ticket.ID] = *ticket
	return nil
}

func (r memoryTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	ticket, ok := r.m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (r memoryTickets) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	term := strings.ToLower(strings.TrimSpace(filter.TitleContains))
	result := []domain.Ticket{}
	for _, id := range r.m.ticketOrder {
		ticket := r.m.tickets[id]
		if filter.Status != "" && ticket.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && ticket.Priority != filter.Priority {
			continue
		}
		if filter.CustomerID != "" && ticket.CustomerID != filter.CustomerID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(ticket.Title), term) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (r memoryTickets) Mutate(_ context.Context, id string, fn TicketMutation) (*domain.Ticket, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ticket, ok := r.m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&ticket); err != nil {
		return nil, err
	}
	r.m.tickets[id] = ticket
	return &ticket, nil
}

type memoryCustomers struct{ m *MemoryStore }

func (r memoryCustomers) Create(_ context.Context, customer *domain.Customer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.customers[customer.ID] = *customer
	return nil
}

func (r memoryCustomers) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	customer, ok := r.m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &customer, nil
}

func (r memoryCustomers) List(_ context.Context, filter CustomerFilter) ([]domain.Customer, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	name := strings.ToLower(strings.TrimSpace(filter.NameContains))
	city := strings.TrimSpace(filter.City)
	result := []domain.Customer{}
	for _, customer := range r.m.customers {
		if name != "" && !strings.Contains(strings.ToLower(customer.Name), name) {
			continue
		}
		if city != "" && !strings.EqualFold(customer.City, city) {
			continue
		}
		result = append(result, customer)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

type memoryComments struct{ m *MemoryStore }

func (r memoryComments) Create(_ context.Context, comment *domain.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.comments[comment.TicketID] = append(r.m.comments[comment.TicketID], *comment)
	return nil
}

func (r memoryComments) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	result := append([]domain.Comment{}, r.m.comments[ticketID]...)
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type memoryFiles struct{ m *MemoryStore }

func (r memoryFiles) Create(_ context.Context, file *domain.StoredFile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.files[file.ID]; !exists {
		r.m.fileOrder = append(r.m.fileOrder, file.ID)
	}
	r.m.files[file.ID] = file.Clone()
	return nil
}

func (r memoryFiles) GetByID(_ context.Context, id string) (*domain.StoredFile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	file, ok := r.m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := file.Clone()
	return &clone, nil
}

func (r memoryFiles) ListByTicket(_ context.Context, ticketID string) ([]domain.StoredFile, error) {
	return r.list(func(f domain.StoredFile) bool { return f.TicketID == ticketID }), nil
}

func (r memoryFiles) ListAll(_ context.Context) ([]domain.StoredFile, error) {
	return r.list(func(domain.StoredFile) bool { return true }), nil
}

func (r memoryFiles) list(keep func(domain.StoredFile) bool) []domain.StoredFile {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	result := []domain.StoredFile{}
	for _, id := range r.m.fileOrder {
		file := r.m.files[id]
		if keep(file) {
			result = append(result, file.Clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].UploadedAt.Before(result[j].UploadedAt)
	})
	return result
}

func (r memoryFiles) ReplaceTags(_ context.Context, id string, tags []string) (*domain.StoredFile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	file, ok := r.m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	file.Tags = append([]string{}, tags...)
	r.m.files[id] = file
	clone := file.Clone()
	return &clone, nil
}

type memoryHistory struct{ m *MemoryStore }

func (r memoryHistory) Create(_ context.Context, history *domain.TicketHistory) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.history[history.TicketID] = append(r.m.history[history.TicketID], *history)
	return nil
}

func (r memoryHistory) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return append([]domain.TicketHistory{}, r.m.history[ticketID]...), nil
}

type memoryTasks struct{ m *MemoryStore }

func (r memoryTasks) Create(_ context.Context, requestTags []string, createdAt time.Time) (*domain.Task, error) {
	task := domain.Task{
		ID:          uuid.NewString(),
		Status:      domain.TaskStatusPending,
		RequestTags: append([]string(nil), requestTags...),
		CreatedAt:   createdAt,
	}
	r.m.mu.Lock()
	r.m.tasks[task.ID] = task
	r.m.mu.Unlock()
	clone := task.Clone()
	return &clone, nil
}

func (r memoryTasks) Get(_ context.Context, id string) (*domain.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	task, ok := r.m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := task.Clone()
	return &clone, nil
}

func (r memoryTasks) Complete(_ context.Context, id string, result []domain.StoredFile, completedAt time.Time) (*domain.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	task, ok := r.m.tasks[id]
	if !ok || task.Status != domain.TaskStatusPending {
		return nil, ErrTaskNotPending
	}
	task.Status = domain.TaskStatusCompleted
	task.Result = make([]domain.StoredFile, len(result))
	for i := range result {
		task.Result[i] = result[i].Clone()
	}
	task.CompletedAt = &completedAt
	r.m.tasks[id] = task
	clone := task.Clone()
	return &clone, nil
}
