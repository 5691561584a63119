package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"docstruct/internal/models"
	"docstruct/internal/util"
)

// ResultRepo persists structured document content. The full payload goes
// into one JSONB column; chapters are additionally broken out into rows so
// the API can list them without loading the whole document.
type ResultRepo struct {
	db *DB
}

func NewResultRepo(db *DB) *ResultRepo {
	return &ResultRepo{db: db}
}

func (r *ResultRepo) UpsertResult(ctx context.Context, documentID string, content models.DocumentContent) error {
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin result tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO document_results (document_id, overall_confidence, content)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (document_id)
DO UPDATE SET
  overall_confidence = EXCLUDED.overall_confidence,
  content = EXCLUDED.content,
  updated_at = NOW()`,
		documentID, content.Report.Quality.Overall, string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM document_chapters WHERE document_id=$1`, documentID); err != nil {
		return fmt.Errorf("clear chapters: %w", err)
	}
	for _, ch := range content.Chapters {
		_, err := tx.Exec(ctx, `
INSERT INTO document_chapters (chapter_id, document_id, number, title, page, word_count, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ch.ID, documentID, ch.Number, ch.Title, ch.Page, ch.WordCount, ch.Confidence,
		)
		if err != nil {
			return fmt.Errorf("insert chapter: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit result tx: %w", err)
	}
	return nil
}

func (r *ResultRepo) GetResult(ctx context.Context, documentID string) (models.DocumentContent, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT content FROM document_results WHERE document_id=$1`, documentID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DocumentContent{}, util.ErrResultNotFound
	}
	if err != nil {
		return models.DocumentContent{}, fmt.Errorf("get result: %w", err)
	}
	var content models.DocumentContent
	if err := json.Unmarshal(payload, &content); err != nil {
		return models.DocumentContent{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return content, nil
}

func (r *ResultRepo) ListChapters(ctx context.Context, documentID string) ([]models.Chapter, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT chapter_id, number, title, page, word_count, confidence
FROM document_chapters
WHERE document_id=$1
ORDER BY number`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	out := make([]models.Chapter, 0)
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.ID, &ch.Number, &ch.Title, &ch.Page, &ch.WordCount, &ch.Confidence); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chapters: %w", err)
	}
	return out, nil
}
