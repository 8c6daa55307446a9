package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/servicedesk/internal/domain"
)

type redisTaskRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisTaskRepository returns a task registry keeping one JSON document
// per task. A positive ttl expires tasks after they are created.
func NewRedisTaskRepository(client *redis.Client, prefix string, ttl time.Duration) TaskRepository {
	return &redisTaskRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisTaskRepository) key(id string) string {
	return r.prefix + "task:" + id
}

func (r *redisTaskRepository) Create(ctx context.Context, requestTags []string, createdAt time.Time) (*domain.Task, error) {
	task := &domain.Task{
		ID:          uuid.NewString(),
		Status:      domain.TaskStatusPending,
		RequestTags: append([]string(nil), requestTags...),
		CreatedAt:   createdAt,
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	ok, err := r.client.SetNX(ctx, r.key(task.ID), payload, r.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("task id collision")
	}
	return task, nil
}

func (r *redisTaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	return r.load(ctx, r.client, id)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *redisTaskRepository) load(ctx context.Context, getter redisGetter, id string) (*domain.Task, error) {
	raw, err := getter.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Complete swaps the document inside a WATCH/MULTI transaction so the
// Pending to Completed transition happens exactly once.
func (r *redisTaskRepository) Complete(ctx context.Context, id string, result []domain.StoredFile, completedAt time.Time) (*domain.Task, error) {
	key := r.key(id)
	var completed *domain.Task
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		task, err := r.load(ctx, tx, id)
		if errors.Is(err, ErrNotFound) {
			return ErrTaskNotPending
		}
		if err != nil {
			return err
		}
		if task.Status != domain.TaskStatusPending {
			return ErrTaskNotPending
		}
		task.Status = domain.TaskStatusCompleted
		task.Result = make([]domain.StoredFile, len(result))
		for i := range result {
			task.Result[i] = result[i].Clone()
		}
		done := completedAt
		task.CompletedAt = &done

		payload, err := json.Marshal(task)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		completed = task
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return completed, nil
}
