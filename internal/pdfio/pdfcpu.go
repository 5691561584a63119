package pdfio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"docstruct/internal/models"
	"docstruct/internal/util"
)

// StreamEngine parses page content streams directly. It recovers text from
// files the layout engine cannot open, at the cost of positioning: spans
// carry a zero bounding box and a nominal 12pt font. Outline entries and
// image inventories come from the cross-reference table.
type StreamEngine struct{}

func NewStreamEngine() *StreamEngine { return &StreamEngine{} }

func (e *StreamEngine) Name() string { return "stream" }

func (e *StreamEngine) Extract(goctx context.Context, path string) (*Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	ext := &Extraction{
		PageCount: ctx.PageCount,
		Metadata:  map[string]string{},
		TOC:       outlineEntries(ctx),
	}

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		select {
		case <-goctx.Done():
			return nil, goctx.Err()
		default:
		}
		for _, block := range pageBlocks(ctx, pageNr) {
			ext.Spans = append(ext.Spans, models.TextSpan{
				Text:     block,
				Page:     pageNr,
				FontSize: 12,
			})
		}
		ext.Images = append(ext.Images, pageImages(ctx, pageNr)...)
	}
	if len(ext.Spans) == 0 {
		return nil, util.ErrNoExtractableText
	}
	if title := firstLine(ext.Spans); title != "" {
		ext.Metadata["title"] = title
	}
	return ext, nil
}

// pageBlocks extracts the text of one page and splits it into paragraph
// sized blocks on blank lines.
func pageBlocks(ctx *model.Context, pageNr int) []string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}
	text := textFromStream(data)
	var blocks []string
	for _, part := range strings.Split(text, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

// pageImages lists the image XObjects referenced by one page. Placement on
// the page is not recoverable from the object alone, so the bounding box
// stays zero.
func pageImages(ctx *model.Context, pageNr int) []models.RawImage {
	if ctx.Optimize == nil {
		return nil
	}
	var images []models.RawImage
	for _, objNr := range pdfcpu.ImageObjNrs(ctx, pageNr) {
		entry, ok := ctx.Table[objNr]
		if !ok || entry == nil || entry.Free {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		img := models.RawImage{Page: pageNr, Data: sd.Raw}
		if w := sd.IntEntry("Width"); w != nil {
			img.Width = *w
		}
		if h := sd.IntEntry("Height"); h != nil {
			img.Height = *h
		}
		images = append(images, img)
	}
	return images
}

// outlineEntries flattens the document bookmark tree into ordered TOC
// entries. Documents without bookmarks yield nil.
func outlineEntries(ctx *model.Context) []models.TOCEntry {
	bms, err := pdfcpu.Bookmarks(ctx)
	if err != nil {
		return nil
	}
	var entries []models.TOCEntry
	var walk func(items []pdfcpu.Bookmark, level int)
	walk = func(items []pdfcpu.Bookmark, level int) {
		for _, bm := range items {
			title := strings.TrimSpace(bm.Title)
			if title != "" && bm.PageFrom >= 1 {
				entries = append(entries, models.TOCEntry{
					Title: title,
					Level: level,
					Page:  bm.PageFrom,
				})
			}
			walk(bm.Kids, level+1)
		}
	}
	walk(bms, 1)
	return entries
}

func firstLine(spans []models.TextSpan) string {
	for _, s := range spans {
		for _, line := range strings.Split(s.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				if len(line) > 200 {
					line = line[:200]
				}
				return line
			}
		}
	}
	return ""
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromStream parses content stream text-show operators. Tj, TJ and '
// emit text; Td/TD and T* emit separators so downstream splitting can find
// block boundaries.
func textFromStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			sb.WriteByte('\n')
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		case bytes.HasSuffix(line, []byte("BT")):
			sb.WriteString("\n\n")
		}
	}
	return tidyStreamText(sb.String())
}

// decodePDFString handles basic PDF escape sequences, including octal.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\', '(', ')':
				sb.WriteByte(raw[i])
			default:
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
						i++
						val = val*8 + int(raw[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// tidyStreamText squeezes runs of spaces and of blank lines while keeping
// single newlines, which mark line boundaries for the splitter.
func tidyStreamText(text string) string {
	var sb strings.Builder
	spaces := 0
	newlines := 0
	for _, r := range text {
		switch {
		case r == '\n':
			newlines++
			spaces = 0
		case unicode.IsSpace(r):
			spaces++
		case unicode.IsPrint(r):
			if newlines > 0 {
				if newlines > 1 {
					sb.WriteString("\n\n")
				} else {
					sb.WriteByte('\n')
				}
				newlines = 0
			} else if spaces > 0 && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			spaces = 0
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
