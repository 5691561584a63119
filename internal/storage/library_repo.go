package storage

import (
	"context"
	"fmt"

	"docstruct/internal/models"
)

type LibraryRepo struct {
	db *DB
}

func NewLibraryRepo(db *DB) *LibraryRepo {
	return &LibraryRepo{db: db}
}

func (r *LibraryRepo) CreateLibrary(ctx context.Context, lib models.Library) error {
	_, err := r.db.Pool.Exec(ctx, `INSERT INTO libraries (library_id, name) VALUES ($1, $2)`, lib.LibraryID, lib.Name)
	if err != nil {
		return fmt.Errorf("insert library: %w", err)
	}
	return nil
}

func (r *LibraryRepo) ListLibraries(ctx context.Context) ([]models.Library, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT library_id::text, name, created_at FROM libraries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()

	out := make([]models.Library, 0)
	for rows.Next() {
		var l models.Library
		if err := rows.Scan(&l.LibraryID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate libraries: %w", err)
	}
	return out, nil
}
