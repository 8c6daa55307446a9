// Package storage writes uploaded attachment content to a blob backend and
// reports where clients can fetch it.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/spec-kit/servicedesk/internal/config"
)

// Object describes a blob after it has been written.
type Object struct {
	Key       string
	URL       string
	SizeBytes int64
	// Checksum is the hex BLAKE2b-256 digest of the content.
	Checksum string
}

// Blobstore persists attachment content.
type Blobstore interface {
	Put(ctx context.Context, key string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// New returns the blob store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Blobstore, error) {
	switch cfg.Backend {
	case "", "disk":
		return NewDiskStore(cfg.Dir, cfg.PublicPrefix)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Checksum returns the hex BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digestReader hashes and counts everything read through it.
type digestReader struct {
	r    io.Reader
	h    hash.Hash
	size int64
}

func newDigestReader(r io.Reader) *digestReader {
	h, _ := blake2b.New256(nil)
	return &digestReader{r: r, h: h}
}

func (d *digestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		d.h.Write(p[:n])
		d.size += int64(n)
	}
	return n, err
}

func (d *digestReader) sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

func publicURL(prefix, key string) string {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + key
}
