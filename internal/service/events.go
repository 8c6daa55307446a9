package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/worker"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// eventPublisher stamps and publishes events. A nil dispatcher drops them.
type eventPublisher struct {
	dispatcher events.Dispatcher
	clock      worker.Clock
	logger     *zap.Logger
}

func (p eventPublisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock.Now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Error("publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func clockOrReal(clock worker.Clock) worker.Clock {
	if clock == nil {
		return worker.RealClock()
	}
	return clock
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

// stringPreview shortens body to at most max runes, marking the cut with "...".
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	if max <= 3 {
		return string([]rune(body)[:max])
	}
	return string([]rune(body)[:max-3]) + "..."
}
