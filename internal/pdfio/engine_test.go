package pdfio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
	"docstruct/internal/util"
)

type fakeEngine struct {
	name string
	ext  *Extraction
	err  error
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Extract(ctx context.Context, path string) (*Extraction, error) {
	return f.ext, f.err
}

func TestExtractorFallsBackOnError(t *testing.T) {
	good := &Extraction{Spans: []models.TextSpan{{Text: "hello world", Page: 1}}}
	e := NewExtractor(
		&fakeEngine{name: "broken", err: errors.New("corrupt xref")},
		&fakeEngine{name: "ok", ext: good},
	)

	ext, engine, err := e.Extract(context.Background(), "x.pdf")
	require.NoError(t, err)
	require.Equal(t, "ok", engine)
	require.Equal(t, good, ext)
}

func TestExtractorTreatsEmptySpansAsFailure(t *testing.T) {
	e := NewExtractor(
		&fakeEngine{name: "empty", ext: &Extraction{}},
		&fakeEngine{name: "alsoempty", ext: &Extraction{}},
	)

	_, _, err := e.Extract(context.Background(), "x.pdf")
	require.ErrorIs(t, err, util.ErrNoExtractableText)
}

func TestExtractorHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewExtractor(&fakeEngine{name: "ok", ext: &Extraction{Spans: []models.TextSpan{{Text: "x"}}}})
	_, _, err := e.Extract(ctx, "x.pdf")
	require.ErrorIs(t, err, context.Canceled)
}
