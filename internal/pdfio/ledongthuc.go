package pdfio

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"docstruct/internal/models"
	"docstruct/internal/util"
)

// defaultPageHeight is used to flip the PDF coordinate system (origin at
// the bottom-left) into top-down positions when the page dimensions cannot
// be resolved.
const defaultPageHeight = 792.0

// rowGapFactor decides when two consecutive text rows belong to the same
// block. A vertical gap larger than this multiple of the font size starts
// a new span.
const rowGapFactor = 1.6

// LayoutEngine extracts positioned text spans with font information. It
// cannot decode embedded images, so Images is always empty; outline entries
// carry no page numbers in this engine and are omitted.
type LayoutEngine struct{}

func NewLayoutEngine() *LayoutEngine { return &LayoutEngine{} }

func (e *LayoutEngine) Name() string { return "layout" }

func (e *LayoutEngine) Extract(ctx context.Context, path string) (out *Extraction, err error) {
	// The underlying reader panics on some malformed files instead of
	// returning an error. Treat a panic as a failed extraction so the
	// caller can fall back to the next engine.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ext := &Extraction{
		PageCount: r.NumPage(),
		Metadata:  readInfoDict(r),
	}

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		p := r.Page(pageNum)
		if p.V.IsNull() {
			continue
		}
		ext.Spans = append(ext.Spans, pageSpans(p, pageNum)...)
	}
	if len(ext.Spans) == 0 {
		return nil, util.ErrNoExtractableText
	}
	return ext, nil
}

// pageSpans groups the raw glyph runs of one page into block-level spans.
// Runs are first merged into rows by baseline, rows then into blocks by
// vertical proximity.
func pageSpans(p pdf.Page, pageNum int) []models.TextSpan {
	texts := p.Content().Text
	if len(texts) == 0 {
		return nil
	}

	rows := buildRows(texts)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y < rows[j].y })
	return groupRows(rows, pageNum)
}

// groupRows folds baseline rows into block-level spans. Rows must already be
// sorted top to bottom.
func groupRows(rows []*textRow, pageNum int) []models.TextSpan {
	var spans []models.TextSpan
	var block *models.TextSpan
	var lastRow textRow
	for _, row := range rows {
		text := strings.TrimSpace(row.text.String())
		if text == "" {
			continue
		}
		if block != nil && sameBlock(lastRow, *row) {
			block.Text += "\n" + text
			block.BBox.Height = row.y + row.size - block.BBox.Y
			if row.minX < block.BBox.X {
				block.BBox.X = row.minX
			}
			if w := row.maxX - block.BBox.X; w > block.BBox.Width {
				block.BBox.Width = w
			}
		} else {
			if block != nil {
				spans = append(spans, *block)
			}
			block = &models.TextSpan{
				Text:     text,
				Page:     pageNum,
				FontSize: row.size,
				FontName: row.font,
				Bold:     isBoldFont(row.font),
				BBox: models.BoundingBox{
					X:      row.minX,
					Y:      row.y,
					Width:  row.maxX - row.minX,
					Height: row.size,
				},
			}
		}
		lastRow = *row
	}
	if block != nil {
		spans = append(spans, *block)
	}
	return spans
}

type textRow struct {
	y    float64 // top-down position
	minX float64
	maxX float64
	font string
	size float64
	text strings.Builder
}

// buildRows merges consecutive glyph runs that share a baseline. The run
// order follows the content stream, which is good enough for body text;
// multi-column pages are handled downstream by the profiler.
func buildRows(texts []pdf.Text) []*textRow {
	var rows []*textRow
	var cur *textRow
	var lastEnd float64
	for _, t := range texts {
		y := topDownY(t.Y, t.FontSize)
		if cur == nil || math.Abs(y-cur.y) > 0.5 {
			cur = &textRow{y: y, minX: t.X, maxX: t.X + t.W, font: t.Font, size: t.FontSize}
			rows = append(rows, cur)
			lastEnd = t.X
		}
		if t.X-lastEnd > 1.0 && cur.text.Len() > 0 {
			cur.text.WriteByte(' ')
		}
		cur.text.WriteString(t.S)
		lastEnd = t.X + t.W
		if t.X < cur.minX {
			cur.minX = t.X
		}
		if end := t.X + t.W; end > cur.maxX {
			cur.maxX = end
		}
		if t.FontSize > cur.size {
			cur.size = t.FontSize
			cur.font = t.Font
		}
	}
	return rows
}

func sameBlock(prev, next textRow) bool {
	gap := next.y - prev.y
	if gap < 0 {
		return false
	}
	size := prev.size
	if size <= 0 {
		size = 12
	}
	return gap <= size*rowGapFactor && prev.font == next.font
}

func topDownY(y, fontSize float64) float64 {
	v := defaultPageHeight - y - fontSize
	if v < 0 {
		return 0
	}
	return v
}

func isBoldFont(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bold") || strings.Contains(lower, "black") ||
		strings.Contains(lower, "heavy")
}

// readInfoDict pulls the document information dictionary. Missing or
// malformed entries are skipped silently.
func readInfoDict(r *pdf.Reader) map[string]string {
	md := map[string]string{}
	defer func() { _ = recover() }()
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return md
	}
	for _, key := range []string{"Title", "Author", "Subject", "Creator", "Producer"} {
		if v := strings.TrimSpace(info.Key(key).Text()); v != "" {
			md[strings.ToLower(key)] = v
		}
	}
	return md
}
