package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// TaskRepository is the registry of asynchronous search tasks.
//
// Complete is the only transition a task ever makes. Implementations apply
// it as a single atomic update so no reader sees Completed without a
// result, and they return ErrTaskNotPending for missing or already
// completed tasks.
type TaskRepository interface {
	Create(ctx context.Context, requestTags []string, createdAt time.Time) (*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Complete(ctx context.Context, id string, result []domain.StoredFile, completedAt time.Time) (*domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed task registry.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, status, request_tags, result, created_at, completed_at`

func (r *taskRepository) Create(ctx context.Context, requestTags []string, createdAt time.Time) (*domain.Task, error) {
	task := &domain.Task{
		ID:          uuid.NewString(),
		Status:      domain.TaskStatusPending,
		RequestTags: append([]string(nil), requestTags...),
		CreatedAt:   createdAt,
	}
	const query = `
        INSERT INTO search_tasks (id, status, request_tags, created_at)
        VALUES ($1,$2,$3,$4)`
	if _, err := r.pool.Exec(ctx, query, task.ID, task.Status, task.RequestTags, task.CreatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM search_tasks WHERE id=$1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

func (r *taskRepository) Complete(ctx context.Context, id string, result []domain.StoredFile, completedAt time.Time) (*domain.Task, error) {
	if result == nil {
		result = []domain.StoredFile{}
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	query := `
        UPDATE search_tasks SET status=$1, result=$2, completed_at=$3
        WHERE id=$4 AND status=$5
        RETURNING ` + taskColumns
	task, err := scanTask(r.pool.QueryRow(ctx, query,
		domain.TaskStatusCompleted,
		payload,
		completedAt,
		id,
		domain.TaskStatusPending,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotPending
	}
	return task, err
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task   domain.Task
		result []byte
	)
	if err := row.Scan(
		&task.ID,
		&task.Status,
		&task.RequestTags,
		&result,
		&task.CreatedAt,
		&task.CompletedAt,
	); err != nil {
		return nil, err
	}
	if result != nil {
		if err := json.Unmarshal(result, &task.Result); err != nil {
			return nil, err
		}
		if task.Result == nil {
			task.Result = []domain.StoredFile{}
		}
	}
	return &task, nil
}
