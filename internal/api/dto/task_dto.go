package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// SearchPollHint tells clients where to poll a started search.
const SearchPollHint = "Search started. Poll /api/tasks/:id for results."

// SearchRequest starts a tag search.
type SearchRequest struct {
	Tags []string `json:"tags"`
}

// SearchAcceptedResponse is returned with 202 Accepted.
type SearchAcceptedResponse struct {
	TaskID  string            `json:"taskId"`
	Status  domain.TaskStatus `json:"status"`
	Message string            `json:"message"`
}

// TaskResponse exposes a task. CompletedAt and Result appear only once the
// task is Completed.
type TaskResponse struct {
	ID          string            `json:"id"`
	Status      domain.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	RequestTags []string          `json:"requestTags,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	Result      *[]FileResponse   `json:"result,omitempty"`
}

// NewTaskResponse maps a task according to its status.
func NewTaskResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:        task.ID,
		Status:    task.Status,
		CreatedAt: task.CreatedAt,
	}
	if task.Status != domain.TaskStatusCompleted {
		return resp
	}
	result := NewFileList(task.Result)
	resp.RequestTags = append([]string(nil), task.RequestTags...)
	resp.CompletedAt = task.CompletedAt
	resp.Result = &result
	return resp
}
