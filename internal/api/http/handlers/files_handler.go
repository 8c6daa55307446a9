package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// uploadField is the multipart form field carrying the file.
const uploadField = "file"

// FilesHandler serves uploads, tag edits and the asynchronous search.
type FilesHandler struct {
	files  *service.FileService
	search *service.SearchService
}

// NewFilesHandler constructs handler.
func NewFilesHandler(files *service.FileService, search *service.SearchService) *FilesHandler {
	return &FilesHandler{files: files, search: search}
}

// Upload POST /api/tickets/:id/files.
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	role, err := callerRole(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile(uploadField)
	if err != nil {
		return apperrors.NewValidationError("multipart field \"file\" is required", nil)
	}
	src, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer src.Close()

	file, err := h.files.UploadFile(c.UserContext(), c.Params("id"), role, header.Filename, src)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewFileResponse(file))
}

// ListByTicket GET /api/tickets/:id/files.
func (h *FilesHandler) ListByTicket(c *fiber.Ctx) error {
	files, err := h.files.ListFiles(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewFileList(files))
}

// UpdateTags PUT /api/files/:id/tags.
func (h *FilesHandler) UpdateTags(c *fiber.Ctx) error {
	// Anonymous edits are recorded without an actor.
	role, _ := auth.RoleFromContext(c)
	var req dto.UpdateTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	file, err := h.files.UpdateTags(c.UserContext(), c.Params("id"), role, req.Tags)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewFileResponse(file))
}

// Search POST /api/files/search. The response is sent before any matching
// happens; clients poll the task.
func (h *FilesHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	task, err := h.search.StartSearch(c.UserContext(), req.Tags)
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(dto.SearchAcceptedResponse{
		TaskID:  task.ID,
		Status:  task.Status,
		Message: dto.SearchPollHint,
	})
}
