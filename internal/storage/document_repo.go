package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"docstruct/internal/models"
	"docstruct/internal/util"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) UpsertDocument(ctx context.Context, d models.Document) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO documents (document_id, library_id, filename, title, author, status, fail_reason)
VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6, NULLIF($7,''))
ON CONFLICT (document_id)
DO UPDATE SET
  library_id = EXCLUDED.library_id,
  filename = EXCLUDED.filename,
  title = COALESCE(EXCLUDED.title, documents.title),
  author = COALESCE(EXCLUDED.author, documents.author),
  status = EXCLUDED.status,
  fail_reason = EXCLUDED.fail_reason,
  updated_at = NOW()`,
		d.DocumentID, d.LibraryID, d.Filename, d.Title, d.Author, d.Status, d.FailReason,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) UpdateDocumentStatus(ctx context.Context, documentID, status, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE documents SET status=$2, fail_reason=NULLIF($3,''), updated_at=NOW() WHERE document_id=$1`, documentID, status, failReason)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepo) ListDocumentsByLibrary(ctx context.Context, libraryID string) ([]models.Document, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT document_id, library_id::text, filename, COALESCE(title,''), COALESCE(author,''),
       status, COALESCE(fail_reason,''), created_at, updated_at
FROM documents
WHERE library_id=$1
ORDER BY created_at DESC`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Document, 0)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.DocumentID, &d.LibraryID, &d.Filename, &d.Title, &d.Author, &d.Status, &d.FailReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepo) GetDocumentByID(ctx context.Context, documentID string) (models.Document, error) {
	var d models.Document
	err := r.db.Pool.QueryRow(ctx, `
SELECT document_id, library_id::text, filename, COALESCE(title,''), COALESCE(author,''),
       status, COALESCE(fail_reason,''), created_at, updated_at
FROM documents
WHERE document_id=$1`, documentID).
		Scan(&d.DocumentID, &d.LibraryID, &d.Filename, &d.Title, &d.Author, &d.Status, &d.FailReason, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Document{}, util.ErrDocumentNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document by id: %w", err)
	}
	return d, nil
}
