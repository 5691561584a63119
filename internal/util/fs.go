package util

import (
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// LibraryInDir is where uploaded PDFs for one library are collected.
func LibraryInDir(inRoot, libraryID string) string {
	return filepath.Join(inRoot, libraryID)
}

// DocumentOutDir holds one document's structured artifacts under the
// output root.
func DocumentOutDir(outRoot, libraryID, documentID string) string {
	return filepath.Join(outRoot, libraryID, "documents", documentID)
}

// LibrarySummaryPath is the library-level rollup written after ingest.
func LibrarySummaryPath(outRoot, libraryID string) string {
	return filepath.Join(outRoot, libraryID, "library_summary.json")
}
