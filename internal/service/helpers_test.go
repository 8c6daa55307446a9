package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/storage"
	"github.com/spec-kit/servicedesk/internal/worker"
)

type testEnv struct {
	store     repository.Store
	clock     *worker.FakeClock
	scheduler *worker.Scheduler
	recorded  *[]events.Event

	tickets   *TicketService
	customers *CustomerService
	files     *FileService
	searches  *SearchService
}

func newTestEnv(t *testing.T, delay time.Duration) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore().Store()
	clock := worker.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	scheduler := worker.NewScheduler(clock, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())

	recorded := &[]events.Event{}
	for _, eventType := range events.EventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			*recorded = append(*recorded, event)
			return nil
		})
	}

	blobs, err := storage.NewDiskStore(t.TempDir(), "/assets/")
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}

	return &testEnv{
		store:     store,
		clock:     clock,
		scheduler: scheduler,
		recorded:  recorded,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:   store.Tickets,
			CustomerRepo: store.Customers,
			CommentRepo:  store.Comments,
			HistoryRepo:  store.History,
			Dispatcher:   dispatcher,
			Clock:        clock,
		}),
		customers: NewCustomerService(store.Customers, clock),
		files: NewFileService(FileDependencies{
			TicketRepo: store.Tickets,
			FileRepo:   store.Files,
			Blobs:      blobs,
			Dispatcher: dispatcher,
			Clock:      clock,
		}),
		searches: NewSearchService(SearchDependencies{
			TaskRepo:   store.Tasks,
			FileRepo:   store.Files,
			Scheduler:  scheduler,
			Delay:      delay,
			Dispatcher: dispatcher,
		}),
	}
}

func (e *testEnv) customer(t *testing.T) *domain.Customer {
	t.Helper()
	customer, err := e.customers.CreateCustomer(context.Background(), CustomerInput{Name: "Acme", City: "Berlin"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func (e *testEnv) ticket(t *testing.T) *domain.Ticket {
	t.Helper()
	customer := e.customer(t)
	ticket, err := e.tickets.CreateTicket(context.Background(), domain.RoleUser, TicketCreateInput{
		Title:      "Printer on fire",
		CustomerID: customer.ID,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

// ticketIn forces a ticket into status through the store, bypassing the
// lifecycle rules.
func (e *testEnv) ticketIn(t *testing.T, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket := e.ticket(t)
	updated, err := e.store.Tickets.Mutate(context.Background(), ticket.ID, func(tk *domain.Ticket) error {
		tk.Status = status
		return nil
	})
	if err != nil {
		t.Fatalf("force status: %v", err)
	}
	return updated
}

func (e *testEnv) countEvents(eventType events.EventType) int {
	count := 0
	for _, event := range *e.recorded {
		if event.Type == eventType {
			count++
		}
	}
	return count
}
