package domain

import "time"

// TaskStatus tracks a long-running operation.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Task is the handle for one asynchronous tag search. Result and
// CompletedAt stay nil until the task is Completed, after which the task
// is immutable.
type Task struct {
	ID          string
	Status      TaskStatus
	RequestTags []string
	Result      []StoredFile
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Clone returns a deep copy.
func (t Task) Clone() Task {
	t.RequestTags = append([]string(nil), t.RequestTags...)
	if t.Result != nil {
		result := make([]StoredFile, len(t.Result))
		for i := range t.Result {
			result[i] = t.Result[i].Clone()
		}
		t.Result = result
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		t.CompletedAt = &completed
	}
	return t
}
