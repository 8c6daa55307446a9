package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs as files under a root directory which the HTTP
// layer serves statically.
type DiskStore struct {
	root   string
	prefix string
}

// NewDiskStore creates root when missing.
func NewDiskStore(root, publicPrefix string) (*DiskStore, error) {
	if root == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{root: root, prefix: publicPrefix}, nil
}

// Root returns the directory blobs are written to.
func (d *DiskStore) Root() string {
	return d.root
}

func (d *DiskStore) path(key string) (string, error) {
	clean := filepath.Base(key)
	if clean != key || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(d.root, clean), nil
}

// Put writes r to root/key.
func (d *DiskStore) Put(ctx context.Context, key string, r io.Reader) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := d.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}
	digest := newDigestReader(r)
	if _, err := io.Copy(f, digest); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close blob: %w", err)
	}

	return &Object{
		Key:       key,
		URL:       publicURL(d.prefix, key),
		SizeBytes: digest.size,
		Checksum:  digest.sum(),
	}, nil
}

// Delete removes the blob. Missing blobs are not an error.
func (d *DiskStore) Delete(_ context.Context, key string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
