package citations

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"docstruct/internal/models"
	"docstruct/internal/profile"
)

// Processor detects the dominant citation style and extracts citation
// instances accordingly.
type Processor struct{}

func NewProcessor() *Processor { return &Processor{} }

// Extract detects the document's citation style over the full span text,
// runs the matching extractor (all of them for mixed/unknown styles, plus
// the bibliography scanner), then validates and deduplicates.
func (p *Processor) Extract(spans []models.TextSpan) []models.Citation {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
		b.WriteByte(' ')
	}
	style := profile.DetectCitationStyle(b.String())

	var found []models.Citation
	switch style {
	case "apa":
		found = extractStyle(spans, apaPatterns)
	case "mla":
		found = extractStyle(spans, mlaPatterns)
	case "ieee":
		found = extractStyle(spans, ieeePatterns)
	default:
		found = append(found, extractStyle(spans, apaPatterns)...)
		found = append(found, extractStyle(spans, mlaPatterns)...)
		found = append(found, extractStyle(spans, ieeePatterns)...)
		found = append(found, extractBibliography(spans)...)
	}
	return validate(found)
}

type stylePattern struct {
	re    *regexp.Regexp
	cType models.CitationType
}

var apaPatterns = []stylePattern{
	{regexp.MustCompile(`\(([A-Z][a-z]+,\s+\d{4})\)`), models.CitationInline},
	{regexp.MustCompile(`\(([A-Z][a-z]+\s+&\s+[A-Z][a-z]+,\s+\d{4})\)`), models.CitationInline},
	{regexp.MustCompile(`\(([A-Z][a-z]+\s+et\s+al\.,\s+\d{4})\)`), models.CitationInline},
}

var mlaPatterns = []stylePattern{
	{regexp.MustCompile(`\(([A-Z][a-z]+\s+\d+)\)`), models.CitationInline},
	{regexp.MustCompile(`\(([A-Z][a-z]+,\s+"[^"]+"\s+\d+)\)`), models.CitationInline},
}

var ieeePatterns = []stylePattern{
	{regexp.MustCompile(`\[(\d+)\]`), models.CitationInline},
	{regexp.MustCompile(`\[(\d+-\d+)\]`), models.CitationInline},
}

func extractStyle(spans []models.TextSpan, patterns []stylePattern) []models.Citation {
	var out []models.Citation
	for _, s := range spans {
		for _, p := range patterns {
			for _, m := range p.re.FindAllStringSubmatch(s.Text, -1) {
				out = append(out, models.Citation{
					ID:      uuid.NewString(),
					Type:    p.cType,
					Content: m[1],
					Page:    s.Page,
				})
			}
		}
	}
	return out
}

var (
	bibliographyStartWords = []string{"references", "bibliography", "works cited"}
	bibliographyEndWords   = []string{"chapter", "appendix", "index"}
	bibliographyEntryRes   = []*regexp.Regexp{
		regexp.MustCompile(`^[A-Z][a-z]+,\s+[A-Z]`),
		regexp.MustCompile(`^\d+\.\s+[A-Z]`),
		regexp.MustCompile(`^[A-Z][a-z]+,\s+[A-Z][a-z]+`),
	}
)

// extractBibliography scans for a references section and validates each
// line against author-name / numbered-entry shapes.
func extractBibliography(spans []models.TextSpan) []models.Citation {
	var out []models.Citation
	inBibliography := false
	for _, s := range spans {
		lower := strings.ToLower(s.Text)
		if containsAny(lower, bibliographyStartWords) {
			inBibliography = true
			continue
		}
		if inBibliography && containsAny(lower, bibliographyEndWords) {
			inBibliography = false
		}
		if !inBibliography {
			continue
		}
		for _, line := range strings.Split(s.Text, "\n") {
			line = strings.TrimSpace(line)
			if !isBibliographyEntry(line) {
				continue
			}
			out = append(out, models.Citation{
				ID:      uuid.NewString(),
				Type:    models.CitationBibliography,
				Content: line,
				Page:    s.Page,
			})
		}
	}
	return out
}

func isBibliographyEntry(line string) bool {
	if len(line) < 20 {
		return false
	}
	for _, re := range bibliographyEntryRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

var falsePositiveRes = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[a-z]$`),
	regexp.MustCompile(`^see\s+`),
	regexp.MustCompile(`^page\s+\d+`),
}

// validate drops degenerate matches and deduplicates by exact content.
func validate(cits []models.Citation) []models.Citation {
	seen := map[string]struct{}{}
	out := make([]models.Citation, 0, len(cits))
	for _, c := range cits {
		c.Content = strings.TrimSpace(c.Content)
		if len(c.Content) < 3 || isFalsePositive(c.Content) {
			continue
		}
		if _, dup := seen[c.Content]; dup {
			continue
		}
		seen[c.Content] = struct{}{}
		out = append(out, c)
	}
	return out
}

func isFalsePositive(content string) bool {
	lower := strings.ToLower(content)
	for _, re := range falsePositiveRes {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
