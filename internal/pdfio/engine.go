package pdfio

import (
	"context"
	"fmt"

	"docstruct/internal/models"
	"docstruct/internal/util"
)

// Extraction is the raw material the structuring pipeline consumes: spans,
// images, outline entries and metadata as reported by one engine. List
// fields may be empty; consumers must not assume otherwise.
type Extraction struct {
	PageCount int
	Spans     []models.TextSpan
	Images    []models.RawImage
	TOC       []models.TOCEntry
	Metadata  map[string]string
}

// Engine decodes one PDF. Engines are black boxes to the pipeline; the only
// contract is the Extraction shape.
type Engine interface {
	Name() string
	Extract(ctx context.Context, path string) (*Extraction, error)
}

// Extractor tries the primary engine first and falls back to alternates in
// order. This is the only retry surface the pipeline has.
type Extractor struct {
	engines []Engine
}

func NewExtractor(engines ...Engine) *Extractor {
	if len(engines) == 0 {
		engines = []Engine{NewLayoutEngine(), NewStreamEngine()}
	}
	return &Extractor{engines: engines}
}

// Extract returns the first successful extraction and the name of the
// engine that produced it. All engines failing is a collaborator failure
// and aborts the run.
func (e *Extractor) Extract(ctx context.Context, path string) (*Extraction, string, error) {
	var lastErr error
	for _, engine := range e.engines {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		ext, err := engine.Extract(ctx, path)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", engine.Name(), err)
			continue
		}
		if len(ext.Spans) == 0 {
			lastErr = fmt.Errorf("%s: %w", engine.Name(), util.ErrNoExtractableText)
			continue
		}
		return ext, engine.Name(), nil
	}
	return nil, "", fmt.Errorf("all pdf engines failed: %w", lastErr)
}
