package util

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomic stages content in a temp file next to the target and renames
// it into place, so readers of the output tree never observe a partial
// artifact.
func writeAtomic(path, pattern string, fill func(*os.File) error) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), pattern)
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// WriteJSONAtomic writes v as indented JSON. The per-document content and
// report artifacts use this shape.
func WriteJSONAtomic(path string, v any) error {
	return writeAtomic(path, "tmp-*.json", func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	})
}

// WriteJSONLinesAtomic writes one JSON object per line, the shape of the
// chapter artifact.
func WriteJSONLinesAtomic(path string, rows []any) error {
	return writeAtomic(path, "tmp-*.jsonl", func(f *os.File) error {
		w := bufio.NewWriter(f)
		for _, row := range rows {
			b, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("marshal row: %w", err)
			}
			b = append(b, '\n')
			if _, err := w.Write(b); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush rows: %w", err)
		}
		return nil
	})
}
