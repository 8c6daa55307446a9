package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// UpdateTagsRequest replaces a file's tags.
type UpdateTagsRequest struct {
	Tags []string `json:"tags"`
}

// FileResponse represents stored file metadata.
type FileResponse struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticketId"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	URL          string    `json:"url"`
	SizeBytes    int64     `json:"sizeBytes"`
	Checksum     string    `json:"checksum"`
	Tags         []string  `json:"tags"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// NewFileResponse maps a stored file.
func NewFileResponse(file *domain.StoredFile) FileResponse {
	tags := file.Tags
	if tags == nil {
		tags = []string{}
	}
	return FileResponse{
		ID:           file.ID,
		TicketID:     file.TicketID,
		OriginalName: file.OriginalName,
		StoredName:   file.StorageKey,
		URL:          file.URL,
		SizeBytes:    file.SizeBytes,
		Checksum:     file.Checksum,
		Tags:         append([]string(nil), tags...),
		UploadedAt:   file.UploadedAt,
	}
}

// NewFileList maps stored files.
func NewFileList(files []domain.StoredFile) []FileResponse {
	items := make([]FileResponse, 0, len(files))
	for i := range files {
		items = append(items, NewFileResponse(&files[i]))
	}
	return items
}
