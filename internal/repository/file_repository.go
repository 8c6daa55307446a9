package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// FileRepository persists stored-file metadata and serves the file
// catalog read by searches.
type FileRepository interface {
	Create(ctx context.Context, file *domain.StoredFile) error
	GetByID(ctx context.Context, id string) (*domain.StoredFile, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StoredFile, error)
	// ListAll returns the whole catalog in upload order.
	ListAll(ctx context.Context) ([]domain.StoredFile, error)
	// ReplaceTags overwrites the file's tag set.
	ReplaceTags(ctx context.Context, id string, tags []string) (*domain.StoredFile, error)
}

type fileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository constructs repository.
func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &fileRepository{pool: pool}
}

const fileColumns = `id, ticket_id, original_name, storage_key, url, size_bytes, checksum, tags, uploaded_at`

func (r *fileRepository) Create(ctx context.Context, file *domain.StoredFile) error {
	const query = `
        INSERT INTO stored_files (id, ticket_id, original_name, storage_key, url, size_bytes, checksum, tags, uploaded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	tags := file.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		file.ID,
		file.TicketID,
		file.OriginalName,
		file.StorageKey,
		file.URL,
		file.SizeBytes,
		file.Checksum,
		tags,
		file.UploadedAt,
	)
	return err
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*domain.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM stored_files WHERE id=$1`
	return scanFile(r.pool.QueryRow(ctx, query, id))
}

func (r *fileRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM stored_files WHERE ticket_id=$1 ORDER BY uploaded_at ASC, id ASC`
	return r.list(ctx, query, ticketID)
}

func (r *fileRepository) ListAll(ctx context.Context) ([]domain.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM stored_files ORDER BY uploaded_at ASC, id ASC`
	return r.list(ctx, query)
}

func (r *fileRepository) ReplaceTags(ctx context.Context, id string, tags []string) (*domain.StoredFile, error) {
	query := `UPDATE stored_files SET tags=$1 WHERE id=$2 RETURNING ` + fileColumns
	if tags == nil {
		tags = []string{}
	}
	return scanFile(r.pool.QueryRow(ctx, query, tags, id))
}

func (r *fileRepository) list(ctx context.Context, query string, args ...any) ([]domain.StoredFile, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StoredFile{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *file)
	}
	return result, rows.Err()
}

func scanFile(row pgx.Row) (*domain.StoredFile, error) {
	var file domain.StoredFile
	if err := row.Scan(
		&file.ID,
		&file.TicketID,
		&file.OriginalName,
		&file.StorageKey,
		&file.URL,
		&file.SizeBytes,
		&file.Checksum,
		&file.Tags,
		&file.UploadedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}
