package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

func TestMemoryTicketsMutateAndFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"Printer jam", "VPN down", "printer toner"} {
		ticket := &domain.Ticket{
			ID:        title,
			Title:     title,
			Priority:  domain.TicketPriorityLow,
			Status:    domain.TicketStatusDraft,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Tickets.Create(ctx, ticket); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := store.Tickets.List(ctx, TicketFilter{TitleContains: "PRINTER"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "Printer jam" || list[1].ID != "printer toner" {
		t.Fatalf("unexpected filter result %+v", list)
	}

	updated, err := store.Tickets.Mutate(ctx, "VPN down", func(ticket *domain.Ticket) error {
		ticket.Status = domain.TicketStatusOpen
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if updated.Status != domain.TicketStatusOpen {
		t.Fatalf("expected Open, got %s", updated.Status)
	}

	abort := errors.New("abort")
	if _, err := store.Tickets.Mutate(ctx, "VPN down", func(ticket *domain.Ticket) error {
		ticket.Status = domain.TicketStatusArchived
		return abort
	}); !errors.Is(err, abort) {
		t.Fatalf("expected abort error, got %v", err)
	}
	current, _ := store.Tickets.GetByID(ctx, "VPN down")
	if current.Status != domain.TicketStatusOpen {
		t.Fatalf("aborted mutation leaked: %s", current.Status)
	}

	if _, err := store.Tickets.Mutate(ctx, "missing", func(*domain.Ticket) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryFilesKeepUploadOrderAndCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"f3", "f1", "f2"} {
		file := &domain.StoredFile{ID: id, TicketID: "t1", Tags: []string{"Logfile"}, UploadedAt: base.Add(time.Duration(i) * time.Second)}
		if err := store.Files.Create(ctx, file); err != nil {
			t.Fatalf("create: %v", err)
		}
		file.Tags[0] = "mutated"
	}

	all, err := store.Files.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 || all[0].ID != "f3" || all[1].ID != "f1" || all[2].ID != "f2" {
		t.Fatalf("expected upload order, got %+v", all)
	}
	if all[0].Tags[0] != "Logfile" {
		t.Fatalf("store shares caller slices: %v", all[0].Tags)
	}

	all[0].Tags[0] = "changed"
	again, _ := store.Files.GetByID(ctx, "f3")
	if again.Tags[0] != "Logfile" {
		t.Fatalf("store returned shared slice")
	}

	replaced, err := store.Files.ReplaceTags(ctx, "f1", []string{"Critical"})
	if err != nil {
		t.Fatalf("replace tags: %v", err)
	}
	if len(replaced.Tags) != 1 || replaced.Tags[0] != "Critical" {
		t.Fatalf("unexpected tags %v", replaced.Tags)
	}
	if _, err := store.Files.ReplaceTags(ctx, "nope", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCustomersSortedByName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	for _, c := range []domain.Customer{
		{ID: "1", Name: "Zed", City: "Berlin"},
		{ID: "2", Name: "Anna", City: "Paris"},
		{ID: "3", Name: "Mona", City: "berlin"},
	} {
		c := c
		if err := store.Customers.Create(ctx, &c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, _ := store.Customers.List(ctx, CustomerFilter{})
	if list[0].Name != "Anna" || list[1].Name != "Mona" || list[2].Name != "Zed" {
		t.Fatalf("expected name order, got %+v", list)
	}
	list, _ = store.Customers.List(ctx, CustomerFilter{City: "Berlin"})
	if len(list) != 2 {
		t.Fatalf("expected 2 berlin customers, got %d", len(list))
	}
}

func TestMemoryTasksCompleteOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	task, err := store.Tasks.Create(ctx, []string{"A"}, created)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != domain.TaskStatusPending || task.ID == "" {
		t.Fatalf("unexpected task %+v", task)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Tasks.Complete(ctx, task.ID, []domain.StoredFile{{ID: "f1"}}, created.Add(time.Minute))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, ErrTaskNotPending) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("expected exactly one completion, got %d", successes)
	}

	done, err := store.Tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if done.Status != domain.TaskStatusCompleted || done.CompletedAt == nil || len(done.Result) != 1 {
		t.Fatalf("unexpected completed task %+v", done)
	}
	if _, err := store.Tasks.Get(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := mem.Store()
	_ = store.Files.Create(ctx, &domain.StoredFile{ID: "f"})
	mem.Reset()
	all, _ := store.Files.ListAll(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty catalog after reset, got %d", len(all))
	}
}
