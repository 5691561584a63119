package chapters

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"docstruct/internal/models"
)

// DefaultDetectors is the constructed detector list handed to the engine.
// Weights reflect how much consensus trusts each strategy.
func DefaultDetectors() []Detector {
	return []Detector{
		TOCDetector{},
		FontDetector{},
		PatternDetector{},
		StructuralBreakDetector{},
		ContextDetector{},
	}
}

// TOCDetector turns top-level outline entries into candidates. The outline
// reflects authorial structure, so it carries the highest weight.
type TOCDetector struct{}

func (TOCDetector) Name() string    { return "toc" }
func (TOCDetector) Weight() float64 { return 1.0 }

func (TOCDetector) Detect(_ []models.TextSpan, toc []models.TOCEntry) []Candidate {
	var out []Candidate
	for _, entry := range toc {
		if entry.Level != 1 {
			continue
		}
		title := entry.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", len(out)+1)
		}
		page := entry.Page
		if page < 1 {
			page = 1
		}
		out = append(out, Candidate{
			ID:         uuid.NewString(),
			Title:      title,
			Page:       page,
			Confidence: 0.95,
		})
	}
	return out
}

// FontDetector finds spans whose font stands out from the corpus and whose
// text reads like a chapter heading.
type FontDetector struct{}

func (FontDetector) Name() string    { return "font" }
func (FontDetector) Weight() float64 { return 0.8 }

type headingCriteria struct {
	minHeadingSize     float64
	minBoldHeadingSize float64
	largeThreshold     float64
}

func analyzeFonts(spans []models.TextSpan) headingCriteria {
	var total, maxSize float64
	n := 0
	for _, s := range spans {
		if s.FontSize <= 0 {
			continue
		}
		total += s.FontSize
		if s.FontSize > maxSize {
			maxSize = s.FontSize
		}
		n++
	}
	avg := 12.0
	if n > 0 {
		avg = total / float64(n)
	}
	if maxSize == 0 {
		maxSize = 12
	}
	return headingCriteria{
		minHeadingSize:     maxF(avg+2, avg*1.2),
		minBoldHeadingSize: maxF(avg, 12),
		largeThreshold:     maxSize * 0.9,
	}
}

func (d FontDetector) Detect(spans []models.TextSpan, _ []models.TOCEntry) []Candidate {
	criteria := analyzeFonts(spans)
	var headings []Candidate
	for _, s := range spans {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if !matchesHeadingFont(s, criteria) || !looksLikeChapterHeading(text) {
			continue
		}
		headings = append(headings, Candidate{
			ID:         uuid.NewString(),
			Title:      text,
			Page:       s.Page,
			Confidence: fontConfidence(s, criteria),
		})
	}
	return dedupeByPage(headings)
}

func matchesHeadingFont(s models.TextSpan, c headingCriteria) bool {
	size := s.FontSize
	if size <= 0 {
		size = 12
	}
	return size >= c.minHeadingSize || (s.Bold && size >= c.minBoldHeadingSize)
}

func fontConfidence(s models.TextSpan, c headingCriteria) float64 {
	confidence := 0.5
	size := s.FontSize
	if size <= 0 {
		size = 12
	}
	switch {
	case size >= c.largeThreshold:
		confidence += 0.4
	case size >= c.minHeadingSize:
		confidence += 0.2
	}
	if s.Bold {
		confidence += 0.2
	}
	name := strings.ToLower(s.FontName)
	for _, f := range []string{"arial", "helvetica", "calibri", "times"} {
		if strings.Contains(name, f) {
			confidence += 0.1
			break
		}
	}
	return clamp(confidence, 0.1, 1.0)
}

var (
	numericPrefixRe = regexp.MustCompile(`^\d+[.)\s]`)
	romanPrefixRe   = regexp.MustCompile(`^[IVX]+[.)\s]`)
)

// looksLikeChapterHeading applies the textual half of heading detection:
// short, not sentence-terminated, and carrying a structural signal.
func looksLikeChapterHeading(text string) bool {
	if len(strings.Fields(text)) > 20 {
		return false
	}
	if strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "...") {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range []string{"chapter", "section", "part", "introduction", "conclusion"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if numericPrefixRe.MatchString(text) || romanPrefixRe.MatchString(text) {
		return true
	}
	if len(text) > 3 && text == strings.ToUpper(text) && strings.ContainsFunc(text, isUpperLetter) {
		return true
	}
	return false
}

func isUpperLetter(r rune) bool { return r >= 'A' && r <= 'Z' }

// PatternDetector matches explicit chapter numbering schemes, ordered from
// strongest to weakest signature.
type PatternDetector struct{}

func (PatternDetector) Name() string    { return "pattern" }
func (PatternDetector) Weight() float64 { return 0.9 }

type chapterPattern struct {
	re             *regexp.Regexp
	baseConfidence float64
	hasChapterWord bool
	hasNumeric     bool
}

var chapterPatterns = []chapterPattern{
	{regexp.MustCompile(`(?i)^Chapter\s+(\d+|[IVX]+)[\s.:]\s*(.+)$`), 1.0, true, true},
	{regexp.MustCompile(`^(\d+)[.)\s]\s+(.+)$`), 0.8, false, true},
	{regexp.MustCompile(`(?i)^([IVX]+)[.)\s]\s+(.+)$`), 0.7, false, false},
	{regexp.MustCompile(`(?i)^Part\s+(\d+|[IVX]+)[\s.:]\s*(.+)$`), 0.9, false, true},
	{regexp.MustCompile(`(?i)^Section\s+(\d+|[IVX]+)[\s.:]\s*(.+)$`), 0.6, false, true},
}

// pageHeightEstimate approximates page height when positional validation
// has only a y origin to work with.
const pageHeightEstimate = 800.0

func (PatternDetector) Detect(spans []models.TextSpan, _ []models.TOCEntry) []Candidate {
	var out []Candidate
	for _, s := range spans {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		for _, p := range chapterPatterns {
			matched := false
			for _, line := range strings.Split(text, "\n") {
				line = strings.TrimSpace(line)
				m := p.re.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				matched = true
				if !validateCandidatePosition(line, s) {
					break
				}
				title := line
				if len(m) > 2 {
					title = strings.TrimSpace(m[2])
				}
				out = append(out, Candidate{
					ID:         uuid.NewString(),
					Title:      title,
					Page:       s.Page,
					Confidence: p.baseConfidence * patternQuality(p, line),
				})
				break
			}
			if matched {
				break
			}
		}
	}
	return dedupeByPage(out)
}

// validateCandidatePosition rejects matches that are too long for a heading
// or sit in the bottom 70% of the page.
func validateCandidatePosition(line string, s models.TextSpan) bool {
	if len(strings.Fields(line)) > 25 {
		return false
	}
	if s.BBox.Y > 0 {
		if s.BBox.Y/pageHeightEstimate > 0.7 {
			return false
		}
	}
	return true
}

func patternQuality(p chapterPattern, line string) float64 {
	q := 0.8
	if p.hasChapterWord {
		q += 0.1
	}
	if p.hasNumeric {
		q += 0.05
	}
	if len(strings.Fields(line)) < 2 {
		q -= 0.1
	}
	return clamp(q, 0.1, 1.0)
}

// StructuralBreakDetector flags pages whose first span reads like a heading
// or whose previous page closed with ending language.
type StructuralBreakDetector struct{}

func (StructuralBreakDetector) Name() string    { return "break" }
func (StructuralBreakDetector) Weight() float64 { return 0.6 }

func (StructuralBreakDetector) Detect(spans []models.TextSpan, _ []models.TOCEntry) []Candidate {
	byPage := map[int][]models.TextSpan{}
	var pages []int
	for _, s := range spans {
		if _, ok := byPage[s.Page]; !ok {
			pages = append(pages, s.Page)
		}
		byPage[s.Page] = append(byPage[s.Page], s)
	}
	sort.Ints(pages)

	var out []Candidate
	for _, page := range pages {
		first := strings.TrimSpace(byPage[page][0].Text)
		if first == "" {
			continue
		}
		if !looksLikeChapterHeading(first) && !previousPageClosed(byPage[page-1]) {
			continue
		}
		out = append(out, Candidate{
			ID:         uuid.NewString(),
			Title:      extractTitle(first),
			Page:       page,
			Confidence: 0.6,
		})
	}
	return out
}

func previousPageClosed(prev []models.TextSpan) bool {
	if len(prev) == 0 {
		return false
	}
	last := strings.ToLower(prev[len(prev)-1].Text)
	for _, ending := range []string{"the end", "conclusion", "summary"} {
		if strings.Contains(last, ending) {
			return true
		}
	}
	return false
}

func extractTitle(text string) string {
	first := strings.TrimSpace(strings.SplitN(strings.TrimSpace(text), "\n", 2)[0])
	lower := strings.ToLower(first)
	for _, prefix := range []string{"chapter", "section", "part"} {
		if strings.HasPrefix(lower, prefix) {
			parts := strings.SplitN(first, " ", 3)
			if len(parts) > 2 {
				return parts[2]
			}
		}
	}
	if first != "" {
		return first
	}
	return "Untitled"
}

// ContextDetector scans for explicit transition phrases that authors use
// when a new chapter begins.
type ContextDetector struct{}

func (ContextDetector) Name() string    { return "context" }
func (ContextDetector) Weight() float64 { return 0.7 }

var transitionPhrases = []string{
	"now we turn to", "in the next chapter", "moving on to",
	"let us now examine", "we will now discuss", "turning our attention to",
}

func (ContextDetector) Detect(spans []models.TextSpan, _ []models.TOCEntry) []Candidate {
	var out []Candidate
	for _, s := range spans {
		lower := strings.ToLower(s.Text)
		for _, phrase := range transitionPhrases {
			if strings.Contains(lower, phrase) {
				out = append(out, Candidate{
					ID:         uuid.NewString(),
					Title:      fmt.Sprintf("Chapter %d", len(out)+1),
					Page:       s.Page,
					Confidence: 0.8,
				})
				break
			}
		}
	}
	return out
}

// dedupeByPage drops candidates within one page of an already kept one,
// keeping the earliest page order.
func dedupeByPage(cands []Candidate) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Page < cands[j].Page })
	var unique []Candidate
	for _, c := range cands {
		dup := false
		for _, u := range unique {
			if abs(c.Page-u.Page) <= 1 {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, c)
		}
	}
	return unique
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
