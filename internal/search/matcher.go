// Package search holds the tag matching used by asynchronous file searches.
package search

import "github.com/spec-kit/servicedesk/internal/domain"

// Match returns every file in catalog whose tag set contains all of the
// required tags. Results keep the catalog's order. Matching is exact and
// case-sensitive; a file without tags never matches a non-empty
// requirement. The returned files are copies.
func Match(catalog []domain.StoredFile, required []string) []domain.StoredFile {
	matches := make([]domain.StoredFile, 0)
	if len(required) == 0 {
		return matches
	}
	for _, file := range catalog {
		if len(file.Tags) == 0 {
			continue
		}
		if file.HasAllTags(required) {
			matches = append(matches, file.Clone())
		}
	}
	return matches
}
