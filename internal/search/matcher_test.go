package search

import (
	"testing"

	"github.com/spec-kit/servicedesk/internal/domain"
)

func ids(files []domain.StoredFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatchSupersetSemantics(t *testing.T) {
	logfile := domain.StoredFile{ID: "log", Tags: []string{"Logfile", "Critical"}}
	catalog := []domain.StoredFile{logfile}

	cases := []struct {
		required []string
		want     []string
	}{
		{[]string{"Logfile"}, []string{"log"}},
		{[]string{"Logfile", "Critical"}, []string{"log"}},
		{[]string{"Critical", "Logfile"}, []string{"log"}},
		{[]string{"Logfile", "Urgent"}, []string{}},
		{[]string{"logfile"}, []string{}},
	}
	for _, tc := range cases {
		got := ids(Match(catalog, tc.required))
		if !equalIDs(got, tc.want) {
			t.Fatalf("required %v: got %v want %v", tc.required, got, tc.want)
		}
	}
}

func TestMatchKeepsCatalogOrderAndSkipsUntagged(t *testing.T) {
	catalog := []domain.StoredFile{
		{ID: "first", Tags: []string{"A", "B", "C"}},
		{ID: "second", Tags: []string{"A"}},
		{ID: "untagged"},
		{ID: "third", Tags: []string{"B", "A"}},
	}
	got := ids(Match(catalog, []string{"A", "B"}))
	if !equalIDs(got, []string{"first", "third"}) {
		t.Fatalf("unexpected matches %v", got)
	}
	if got := Match(catalog, nil); len(got) != 0 {
		t.Fatalf("empty requirement should match nothing, got %v", ids(got))
	}
}

func TestMatchReturnsCopies(t *testing.T) {
	catalog := []domain.StoredFile{{ID: "f", Tags: []string{"A"}}}
	got := Match(catalog, []string{"A"})
	got[0].Tags[0] = "mutated"
	if catalog[0].Tags[0] != "A" {
		t.Fatalf("match result aliases catalog tags")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := domain.NormalizeTags([]string{" A ", "", "B", "A", "  "})
	if !equalIDs(got, []string{"A", "B"}) {
		t.Fatalf("unexpected normalized tags %v", got)
	}
}
