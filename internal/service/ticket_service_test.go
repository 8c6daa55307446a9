package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

func TestCreateTicketDefaults(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	ticket := env.ticket(t)
	if ticket.Status != domain.TicketStatusDraft {
		t.Fatalf("expected Draft, got %s", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityLow {
		t.Fatalf("expected Low priority, got %s", ticket.Priority)
	}
	if env.countEvents(events.EventTicketCreated) != 1 {
		t.Fatalf("expected ticket_created event")
	}
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	customer := env.customer(t)
	cases := map[string]TicketCreateInput{
		"unknown customer": {Title: "x", CustomerID: "missing"},
		"missing title":    {Title: "  ", CustomerID: customer.ID},
		"bad priority":     {Title: "x", CustomerID: customer.ID, Priority: "Urgent"},
	}
	for name, input := range cases {
		if _, err := env.tickets.CreateTicket(context.Background(), domain.RoleUser, input); !errorutil.HasCode(err, "VALIDATION_FAILED") {
			t.Fatalf("%s: expected VALIDATION_FAILED, got %v", name, err)
		}
	}
}

func TestRequestTransitionScenarios(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Minute)
	ticket := env.ticket(t)

	env.clock.Advance(time.Minute)
	opened, err := env.tickets.RequestTransition(ctx, ticket.ID, "Open", domain.RoleSupportAgent)
	if err != nil {
		t.Fatalf("Draft -> Open as Support-Agent: %v", err)
	}
	if opened.Status != domain.TicketStatusOpen || !opened.UpdatedAt.After(ticket.UpdatedAt) {
		t.Fatalf("unexpected ticket after transition %+v", opened)
	}

	_, err = env.tickets.RequestTransition(ctx, ticket.ID, "Resolved", domain.RoleUser)
	if !errorutil.HasCode(err, "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN for user, got %v", err)
	}
	current, _ := env.tickets.GetTicket(ctx, ticket.ID)
	if current.Status != domain.TicketStatusOpen {
		t.Fatalf("denied transition changed status to %s", current.Status)
	}

	if _, err := env.tickets.RequestTransition(ctx, ticket.ID, "Closed", domain.RoleEngineer); !errorutil.HasCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected VALIDATION_FAILED for unknown status, got %v", err)
	}
	if _, err := env.tickets.RequestTransition(ctx, "missing", "Open", domain.RoleEngineer); !errorutil.HasCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	if _, err := env.tickets.RequestTransition(ctx, ticket.ID, "In-Progress", domain.RoleEngineer); err != nil {
		t.Fatalf("Open -> In-Progress as Engineer: %v", err)
	}
	if _, err := env.tickets.RequestTransition(ctx, ticket.ID, "Open", domain.RoleEngineer); !errorutil.HasCode(err, "FORBIDDEN") {
		t.Fatalf("expected In-Progress -> Open to be forbidden, got %v", err)
	}
	if _, err := env.tickets.RequestTransition(ctx, ticket.ID, "Resolved", domain.RoleEngineer); err != nil {
		t.Fatalf("In-Progress -> Resolved as Engineer: %v", err)
	}
	if _, err := env.tickets.RequestTransition(ctx, ticket.ID, "Archived", domain.RoleSupportAgent); err != nil {
		t.Fatalf("Resolved -> Archived as Support-Agent: %v", err)
	}

	history, err := env.tickets.ListHistory(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusArchived,
	}
	if len(history) != len(want) {
		t.Fatalf("expected %d history entries, got %d", len(want), len(history))
	}
	for i, entry := range history {
		if entry.NewStatus != want[i] {
			t.Fatalf("history[%d]: got %s want %s", i, entry.NewStatus, want[i])
		}
	}
	if history[0].ChangedBy != domain.RoleSupportAgent || history[0].OldStatus != domain.TicketStatusDraft {
		t.Fatalf("unexpected first history entry %+v", history[0])
	}
	if env.countEvents(events.EventTicketStatusChanged) != 4 {
		t.Fatalf("expected 4 status events, got %d", env.countEvents(events.EventTicketStatusChanged))
	}
}

func TestSameStatusFollowsTable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Minute)

	resolved := env.ticketIn(t, domain.TicketStatusResolved)
	env.clock.Advance(time.Second)
	again, err := env.tickets.RequestTransition(ctx, resolved.ID, "Resolved", domain.RoleEngineer)
	if err != nil {
		t.Fatalf("Resolved -> Resolved as Engineer: %v", err)
	}
	if !again.UpdatedAt.After(resolved.UpdatedAt) {
		t.Fatalf("expected UpdatedAt refresh")
	}

	draft := env.ticket(t)
	if _, err := env.tickets.RequestTransition(ctx, draft.ID, "Draft", domain.RoleEngineer); !errorutil.HasCode(err, "FORBIDDEN") {
		t.Fatalf("expected Draft -> Draft to be forbidden, got %v", err)
	}
}

func TestCommentsRespectClosedTickets(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Minute)
	ticket := env.ticket(t)

	first, err := env.tickets.AddComment(ctx, ticket.ID, domain.RoleUser, "first")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if first.Author != domain.RoleUser {
		t.Fatalf("expected author User, got %s", first.Author)
	}
	env.clock.Advance(time.Second)
	if _, err := env.tickets.AddComment(ctx, ticket.ID, domain.RoleEngineer, "second"); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if _, err := env.tickets.AddComment(ctx, ticket.ID, domain.RoleEngineer, "   "); !errorutil.HasCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected VALIDATION_FAILED for empty text, got %v", err)
	}

	comments, err := env.tickets.ListComments(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "first" || comments[1].Text != "second" {
		t.Fatalf("unexpected comments %+v", comments)
	}

	for _, status := range []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusArchived} {
		closed := env.ticketIn(t, status)
		if _, err := env.tickets.AddComment(ctx, closed.ID, domain.RoleEngineer, "late"); !errorutil.HasCode(err, "VALIDATION_FAILED") {
			t.Fatalf("%s: expected VALIDATION_FAILED, got %v", status, err)
		}
	}
}

func TestCustomerValidation(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	cases := map[string]CustomerInput{
		"short name":  {Name: "A", City: "Berlin"},
		"no city":     {Name: "Acme", City: " "},
		"bad email":   {Name: "Acme", City: "Berlin", Email: "not-an-email"},
		"named email": {Name: "Acme", City: "Berlin", Email: "Acme <ops@acme.test>"},
	}
	for name, input := range cases {
		if _, err := env.customers.CreateCustomer(context.Background(), input); !errorutil.HasCode(err, "VALIDATION_FAILED") {
			t.Fatalf("%s: expected VALIDATION_FAILED, got %v", name, err)
		}
	}
	customer, err := env.customers.CreateCustomer(context.Background(), CustomerInput{Name: "Acme", City: "Berlin", Email: "ops@acme.test"})
	if err != nil {
		t.Fatalf("valid customer: %v", err)
	}
	if _, err := env.customers.GetCustomer(context.Background(), customer.ID); err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if _, err := env.customers.GetCustomer(context.Background(), "missing"); !errorutil.HasCode(err, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
