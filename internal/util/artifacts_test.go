package util

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJSONAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib", "documents", "doc", "report.json")
	if err := WriteJSONAtomic(path, map[string]int{"total": 3}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["total"] != 3 {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestWriteJSONLinesAtomicOneRowPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapters.jsonl")
	rows := []any{map[string]string{"title": "One"}, map[string]string{"title": "Two"}}
	if err := WriteJSONLinesAtomic(path, rows); err != nil {
		t.Fatalf("write jsonl: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(b))
	}
}

func TestArtifactPaths(t *testing.T) {
	if got, want := DocumentOutDir("/out", "lib1", "doc1"), filepath.Join("/out", "lib1", "documents", "doc1"); got != want {
		t.Fatalf("document dir %q, want %q", got, want)
	}
	if got, want := LibrarySummaryPath("/out", "lib1"), filepath.Join("/out", "lib1", "library_summary.json"); got != want {
		t.Fatalf("summary path %q, want %q", got, want)
	}
	if got, want := LibraryInDir("/in", "lib1"), filepath.Join("/in", "lib1"); got != want {
		t.Fatalf("in dir %q, want %q", got, want)
	}
}
