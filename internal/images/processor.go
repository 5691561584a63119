package images

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"docstruct/internal/models"
)

// Processor classifies images, attaches page-local textual context and
// scores relevance. Classification is size/aspect heuristics only; it never
// inspects pixel data.
type Processor struct{}

func NewProcessor() *Processor { return &Processor{} }

// Process turns raw engine images into positioned, scored records. An image
// whose payload could not be decoded still yields a record so id continuity
// is preserved.
func (p *Processor) Process(raws []models.RawImage, paras []models.Paragraph, chapters []models.Chapter) []models.ImageRecord {
	out := make([]models.ImageRecord, 0, len(raws))
	for _, raw := range raws {
		rec := models.ImageRecord{
			ID:             uuid.NewString(),
			Type:           classifyType(raw),
			BBox:           raw.BBox,
			Page:           raw.Page,
			Width:          raw.Width,
			Height:         raw.Height,
			TextPosition:   models.PositionInline,
			ColumnPosition: models.ColumnCenter,
		}

		pageParas := paragraphsOnPage(paras, raw.Page)
		ctx := extractContext(pageParas)
		pos := analyzePositioning(pageParas)

		rec.Caption = ctx.caption
		rec.ParagraphBeforeID = pos.beforeID
		rec.ParagraphAfterID = pos.afterID
		rec.Spatial = pos.spatial
		rec.ReferenceMentions = findReferences(pageParas)
		rec.Description = describe(raw, rec.Type, ctx)
		rec.AltText = rec.Description
		rec.RelevanceScore = relevance(ctx, rec.Description)
		rec.ChapterID = associateChapter(raw.Page, chapters)

		out = append(out, rec)
	}
	return out
}

// classifyType is a placeholder for real visual classification: square-ish
// large images read as charts, wide large ones as diagrams, small ones as
// illustrations.
func classifyType(raw models.RawImage) models.ImageType {
	w, h := raw.Width, raw.Height
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	if w > 400 && h > 300 {
		if aspect > 0.8 && aspect < 1.2 {
			return models.ImageChart
		}
		if aspect > 1.5 {
			return models.ImageDiagram
		}
	}
	if w < 100 || h < 100 {
		return models.ImageIllustration
	}
	return models.ImageIllustration
}

func paragraphsOnPage(paras []models.Paragraph, page int) []models.Paragraph {
	var out []models.Paragraph
	for _, p := range paras {
		if p.Page == page {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

type imageContext struct {
	preceding string
	following string
	caption   string
}

var captionKeywords = []string{"figure", "table", "image", "chart"}

// extractContext splits the page's paragraphs at the midpoint and treats
// the halves as preceding/following text. True before/after ordering would
// need spatial data this path does not carry.
func extractContext(pageParas []models.Paragraph) imageContext {
	var ctx imageContext
	if len(pageParas) == 0 {
		return ctx
	}
	mid := len(pageParas) / 2

	preceding := pageParas[:mid]
	if len(preceding) > 2 {
		preceding = preceding[len(preceding)-2:]
	}
	ctx.preceding = truncate(joinContents(preceding), 200)

	following := pageParas[mid:]
	if len(following) > 2 {
		following = following[:2]
	}
	ctx.following = truncate(joinContents(following), 200)

	for _, p := range pageParas {
		lower := strings.ToLower(p.Content)
		hasKeyword := false
		for _, kw := range captionKeywords {
			if strings.Contains(lower, kw) {
				hasKeyword = true
				break
			}
		}
		if hasKeyword && len(strings.Fields(p.Content)) <= 20 {
			ctx.caption = p.Content
			break
		}
	}
	return ctx
}

func joinContents(paras []models.Paragraph) string {
	parts := make([]string, 0, len(paras))
	for _, p := range paras {
		parts = append(parts, p.Content)
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type positioning struct {
	beforeID string
	afterID  string
	spatial  models.SpatialRelationships
}

func analyzePositioning(pageParas []models.Paragraph) positioning {
	var pos positioning
	if len(pageParas) == 0 {
		return pos
	}
	mid := len(pageParas) / 2
	if mid > 0 {
		pos.beforeID = pageParas[mid-1].ID
	}
	if mid < len(pageParas) {
		pos.afterID = pageParas[mid].ID
	}
	pos.spatial = models.SpatialRelationships{
		ParagraphsAbove: mid,
		ParagraphsBelow: len(pageParas) - mid,
	}
	return pos
}

var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:figure|fig\.?)\s+(\d+|[a-z])\b`),
	regexp.MustCompile(`(?i)\b(?:chart|graph)\s+(\d+|[a-z])\b`),
	regexp.MustCompile(`(?i)\btable\s+(\d+|[a-z])\b`),
	regexp.MustCompile(`(?i)\b(?:image|picture)\s+(\d+|[a-z])\b`),
	regexp.MustCompile(`(?i)(?:above|below|following|preceding)\s+(?:figure|chart|graph|table|image|diagram)`),
}

func findReferences(pageParas []models.Paragraph) []models.ReferenceMention {
	var refs []models.ReferenceMention
	for _, p := range pageParas {
		for _, re := range referencePatterns {
			for _, loc := range re.FindAllStringSubmatchIndex(p.Content, -1) {
				ref := models.ReferenceMention{
					Text:        p.Content[loc[0]:loc[1]],
					Type:        "implicit_reference",
					ParagraphID: p.ID,
					Offset:      loc[0],
				}
				if len(loc) > 3 && loc[2] >= 0 {
					ref.Type = "explicit_reference"
					ref.Number = p.Content[loc[2]:loc[3]]
				}
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

var baseDescriptions = map[models.ImageType]string{
	models.ImageChart:        "Data visualization chart",
	models.ImageDiagram:      "Process or conceptual diagram",
	models.ImageGraph:        "Statistical graph",
	models.ImageTable:        "Tabular data presentation",
	models.ImagePhoto:        "Photographic image",
	models.ImageIllustration: "Illustrative graphic",
}

// describe builds an alt-text style description from the type, nearby
// context clues and the caption when one exists.
func describe(raw models.RawImage, t models.ImageType, ctx imageContext) string {
	desc := baseDescriptions[t]
	if desc == "" {
		desc = "Image"
	}

	preceding := strings.ToLower(ctx.preceding)
	if preceding != "" {
		switch {
		case t == models.ImageChart && containsAny(preceding, "sales", "revenue", "profit"):
			desc = "Sales/revenue chart"
		case t == models.ImageDiagram && containsAny(preceding, "process", "workflow", "steps"):
			desc = "Process workflow diagram"
		case t == models.ImageChart && containsAny(preceding, "comparison", "versus", "compare"):
			desc = "Comparison chart"
		}
	}

	if ctx.caption != "" {
		return desc + ": " + ctx.caption
	}
	if raw.Width > 0 && raw.Height > 0 {
		return fmt.Sprintf("%s (%dx%d pixels)", desc, raw.Width, raw.Height)
	}
	return desc
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// relevance starts neutral at 5 of 10 and rewards surrounding text, a
// caption and a descriptive alt text.
func relevance(ctx imageContext, description string) float64 {
	score := 5.0
	if ctx.preceding != "" || ctx.following != "" {
		score += 1.0
	}
	if ctx.caption != "" {
		score += 1.5
	}
	if len(strings.Fields(description)) > 5 {
		score += 1.0
	}
	if score > 10.0 {
		score = 10.0
	}
	return score
}

func associateChapter(page int, chapters []models.Chapter) string {
	var assigned *models.Chapter
	for i := range chapters {
		ch := &chapters[i]
		if ch.Page <= page && (assigned == nil || ch.Page > assigned.Page) {
			assigned = ch
		}
	}
	if assigned == nil {
		return ""
	}
	return assigned.ID
}
