package domain

import (
	"strings"
	"time"
)

// StoredFile describes an uploaded attachment and its search tags.
type StoredFile struct {
	ID           string
	TicketID     string
	OriginalName string
	StorageKey   string
	URL          string
	SizeBytes    int64
	Checksum     string
	Tags         []string
	UploadedAt   time.Time
}

// HasAllTags reports whether the file's tag set contains every required tag.
func (f StoredFile) HasAllTags(required []string) bool {
	if len(f.Tags) == 0 {
		return len(required) == 0
	}
	set := make(map[string]struct{}, len(f.Tags))
	for _, tag := range f.Tags {
		set[tag] = struct{}{}
	}
	for _, tag := range required {
		if _, ok := set[tag]; !ok {
			return false
		}
	}
	return true
}

// NormalizeTags trims tags, drops empty values and duplicates while keeping
// first-occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Clone returns a deep copy safe to hand across goroutines.
func (f StoredFile) Clone() StoredFile {
	if f.Tags != nil {
		f.Tags = append([]string(nil), f.Tags...)
	}
	return f
}
