package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/search"
	"github.com/spec-kit/servicedesk/internal/worker"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

const (
	defaultCompleteAttempts = 3
	defaultCompleteBackoff  = 200 * time.Millisecond
)

// SearchService runs tag searches as long-running operations: StartSearch
// registers a Pending task and returns at once, the match runs after the
// configured delay, and clients poll the task until it is Completed.
type SearchService struct {
	tasks     repository.TaskRepository
	files     repository.FileRepository
	scheduler *worker.Scheduler
	delay     time.Duration
	events    eventPublisher
	metrics   *observability.Metrics
	tracer    trace.Tracer
	logger    *zap.Logger

	completeAttempts int
	completeBackoff  time.Duration
}

// SearchDependencies bundles collaborators for the search service.
type SearchDependencies struct {
	TaskRepo   repository.TaskRepository
	FileRepo   repository.FileRepository
	Scheduler  *worker.Scheduler
	Delay      time.Duration
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// CompleteAttempts and CompleteBackoff bound the retries of the final
	// registry write. Zero values select 3 attempts starting at 200ms.
	CompleteAttempts int
	CompleteBackoff  time.Duration
}

// NewSearchService constructs the service. Task timestamps come from the
// scheduler's clock.
func NewSearchService(deps SearchDependencies) *SearchService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = worker.NewScheduler(nil, logger)
	}
	delay := deps.Delay
	if delay < 0 {
		delay = 0
	}
	attempts := deps.CompleteAttempts
	if attempts <= 0 {
		attempts = defaultCompleteAttempts
	}
	backoff := deps.CompleteBackoff
	if backoff <= 0 {
		backoff = defaultCompleteBackoff
	}
	return &SearchService{
		tasks:     deps.TaskRepo,
		files:     deps.FileRepo,
		scheduler: scheduler,
		delay:     delay,
		events:    eventPublisher{dispatcher: deps.Dispatcher, clock: scheduler.Clock(), logger: logger},
		metrics:   deps.Metrics,
		tracer:    otel.Tracer(observability.TracerName),
		logger:    logger,

		completeAttempts: attempts,
		completeBackoff:  backoff,
	}
}

// StartSearch registers a Pending task for tags and schedules the match.
func (s *SearchService) StartSearch(ctx context.Context, tags []string) (*domain.Task, error) {
	if len(tags) == 0 {
		return nil, errorutil.NewValidationError("at least one tag is required", map[string]any{"field": "tags"})
	}
	for i, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return nil, errorutil.NewValidationError("tags must not be blank", map[string]any{"index": i})
		}
	}

	tags = domain.NormalizeTags(tags)

	task, err := s.tasks.Create(ctx, tags, s.scheduler.Clock().Now())
	if err != nil {
		return nil, fmt.Errorf("create search task: %w", err)
	}

	requested := append([]string(nil), task.RequestTags...)
	if _, err := s.scheduler.Schedule("search:"+task.ID, s.delay, func(jobCtx context.Context) {
		s.execute(jobCtx, task.ID, requested, task.CreatedAt)
	}); err != nil {
		// Never leave a task Pending with nothing scheduled to finish it.
		s.finish(ctx, task.ID, requested, task.CreatedAt, nil, err)
		return nil, errorutil.NewServiceUnavailable("search engine is shutting down")
	}

	s.metrics.SearchStarted()
	s.logger.Info("search task accepted",
		zap.String("task_id", task.ID),
		zap.Strings("tags", requested),
		zap.Duration("delay", s.delay))
	return task, nil
}

// PollStatus returns the current state of a task without blocking.
func (s *SearchService) PollStatus(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, notFound(err, "task", taskID)
	}
	return task, nil
}

// Shutdown runs every waiting search immediately and waits for all of them
// to finish or ctx to end.
func (s *SearchService) Shutdown(ctx context.Context) error {
	return s.scheduler.Shutdown(ctx)
}

func (s *SearchService) execute(ctx context.Context, taskID string, tags []string, createdAt time.Time) {
	ctx, span := s.tracer.Start(ctx, "search.execute", trace.WithAttributes(
		attribute.String("task.id", taskID),
		attribute.StringSlice("search.tags", tags),
	))
	defer span.End()

	result, err := s.collect(ctx, tags)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
	}
	span.SetAttributes(attribute.Int("search.matches", len(result)))
	s.finish(ctx, taskID, tags, createdAt, result, err)
}

// collect reads the catalog as it is now and matches it. Panics are turned
// into errors so the task still completes.
func (s *SearchService) collect(ctx context.Context, tags []string) (result []domain.StoredFile, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("search panicked: %v", r)
		}
	}()
	catalog, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read file catalog: %w", err)
	}
	return search.Match(catalog, tags), nil
}

func (s *SearchService) finish(ctx context.Context, taskID string, tags []string, createdAt time.Time, result []domain.StoredFile, failure error) {
	if failure != nil {
		s.logger.Error("search failed; completing with empty result",
			zap.String("task_id", taskID),
			zap.Strings("tags", tags),
			zap.Error(failure))
		result = []domain.StoredFile{}
	}
	if result == nil {
		result = []domain.StoredFile{}
	}

	completedAt := s.scheduler.Clock().Now()
	if err := s.complete(ctx, taskID, result, completedAt); err != nil {
		s.logger.Error("complete search task; giving up",
			zap.String("task_id", taskID),
			zap.Int("attempts", s.completeAttempts),
			zap.Error(err))
		return
	}

	s.metrics.SearchCompleted(completedAt.Sub(createdAt), failure != nil)
	s.logger.Info("search task completed",
		zap.String("task_id", taskID),
		zap.Int("matches", len(result)))
	s.events.publish(ctx, events.Event{
		Type: events.EventSearchCompleted,
		Payload: events.SearchCompletedPayload{
			TaskID:      taskID,
			RequestTags: tags,
			Matches:     len(result),
			Failed:      failure != nil,
		},
	})
}

// complete records the result, retrying transient registry failures with a
// doubling backoff. A task that is no longer Pending is not retried.
func (s *SearchService) complete(ctx context.Context, taskID string, result []domain.StoredFile, completedAt time.Time) error {
	backoff := s.completeBackoff
	var lastErr error
	for attempt := 1; attempt <= s.completeAttempts; attempt++ {
		_, err := s.tasks.Complete(ctx, taskID, result, completedAt)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrTaskNotPending) {
			return err
		}
		lastErr = err
		if attempt == s.completeAttempts {
			break
		}
		s.logger.Warn("complete search task failed; retrying",
			zap.String("task_id", taskID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return lastErr
}
