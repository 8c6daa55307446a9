package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/storage"
	"github.com/spec-kit/servicedesk/internal/worker"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

const allowedUploadExt = ".txt"

// FileService stores ticket attachments and maintains their search tags.
type FileService struct {
	tickets repository.TicketRepository
	files   repository.FileRepository
	blobs   storage.Blobstore
	events  eventPublisher
	clock   worker.Clock
	logger  *zap.Logger
}

// FileDependencies bundles collaborators for the file service.
type FileDependencies struct {
	TicketRepo repository.TicketRepository
	FileRepo   repository.FileRepository
	Blobs      storage.Blobstore
	Dispatcher events.Dispatcher
	Clock      worker.Clock
	Logger     *zap.Logger
}

// NewFileService constructs the service.
func NewFileService(deps FileDependencies) *FileService {
	clock := clockOrReal(deps.Clock)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		tickets: deps.TicketRepo,
		files:   deps.FileRepo,
		blobs:   deps.Blobs,
		events:  eventPublisher{dispatcher: deps.Dispatcher, clock: clock, logger: logger},
		clock:   clock,
		logger:  logger,
	}
}

// UploadFile stores a plain text attachment for an open ticket. The blob is
// written as "<file id>_<original name>".
func (s *FileService) UploadFile(ctx context.Context, ticketID string, role domain.Role, name string, content io.Reader) (*domain.StoredFile, error) {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, errorutil.NewValidationError("file name is required", map[string]any{"field": "file"})
	}
	if !strings.HasSuffix(name, allowedUploadExt) {
		return nil, errorutil.NewUnsupportedMediaType("only .txt files are accepted")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}
	if err := ensureOpenForChanges(ticket); err != nil {
		return nil, err
	}

	fileID := uuid.NewString()
	key := fileID + "_" + name
	obj, err := s.blobs.Put(ctx, key, content)
	if err != nil {
		return nil, err
	}

	file := &domain.StoredFile{
		ID:           fileID,
		TicketID:     ticket.ID,
		OriginalName: name,
		StorageKey:   obj.Key,
		URL:          obj.URL,
		SizeBytes:    obj.SizeBytes,
		Checksum:     obj.Checksum,
		Tags:         []string{},
		UploadedAt:   s.clock.Now(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("remove orphaned blob", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.events.publish(ctx, events.Event{
		Type:     events.EventFileUploaded,
		TicketID: ticket.ID,
		Actor:    role,
		Payload: events.FileUploadedPayload{
			FileID:    file.ID,
			Name:      file.OriginalName,
			SizeBytes: file.SizeBytes,
			Checksum:  file.Checksum,
		},
	})
	return file, nil
}

// ListFiles returns a ticket's attachments in upload order.
func (s *FileService) ListFiles(ctx context.Context, ticketID string) ([]domain.StoredFile, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, notFound(err, "ticket", ticketID)
	}
	return s.files.ListByTicket(ctx, ticketID)
}

// UpdateTags replaces the file's tag set wholesale.
func (s *FileService) UpdateTags(ctx context.Context, fileID string, role domain.Role, tags []string) (*domain.StoredFile, error) {
	if tags == nil {
		return nil, errorutil.NewValidationError("tags are required", map[string]any{"field": "tags"})
	}
	normalized := domain.NormalizeTags(tags)
	file, err := s.files.ReplaceTags(ctx, fileID, normalized)
	if err != nil {
		return nil, notFound(err, "file", fileID)
	}
	s.events.publish(ctx, events.Event{
		Type:     events.EventFileTagsUpdated,
		TicketID: file.TicketID,
		Actor:    role,
		Payload: events.FileTagsUpdatedPayload{
			FileID: file.ID,
			Tags:   append([]string(nil), file.Tags...),
		},
	})
	return file, nil
}
