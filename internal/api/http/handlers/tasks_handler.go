package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/service"
)

// TasksHandler exposes long-running operation status.
type TasksHandler struct {
	search *service.SearchService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(search *service.SearchService) *TasksHandler {
	return &TasksHandler{search: search}
}

// Get GET /api/tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	task, err := h.search.PollStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTaskResponse(task))
}
