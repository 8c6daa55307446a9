package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/worker"
)

type brokenDispatcher struct{}

func (brokenDispatcher) Publish(context.Context, events.Event) error {
	return errors.New("broker unreachable")
}

func (brokenDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func TestPublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	publisher := eventPublisher{
		dispatcher: brokenDispatcher{},
		clock:      worker.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		logger:     zap.New(core),
	}
	publisher.publish(context.Background(), events.Event{Type: events.EventSearchCompleted})

	entries := logs.FilterMessage("publish event").All()
	if len(entries) != 1 {
		t.Fatalf("expected one publish error entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != string(events.EventSearchCompleted) || fields["event_id"] == "" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if fields["error"] != "broker unreachable" {
		t.Fatalf("expected broker error, got %v", fields["error"])
	}
}

func TestStringPreview(t *testing.T) {
	cases := []struct {
		body string
		max  int
		want string
	}{
		{"  short  ", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"printer is on fire", 10, "printer..."},
		{"äöüäöüäöü", 5, "äö..."},
		{"日本語テキスト", 3, "日本語"},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		got := stringPreview(tc.body, tc.max)
		if got != tc.want {
			t.Fatalf("stringPreview(%q, %d) = %q, want %q", tc.body, tc.max, got, tc.want)
		}
		if !utf8.ValidString(got) || utf8.RuneCountInString(got) > tc.max {
			t.Fatalf("stringPreview(%q, %d) produced %q", tc.body, tc.max, got)
		}
	}
}
