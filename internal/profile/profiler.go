package profile

import (
	"regexp"
	"sort"
	"strings"

	"docstruct/internal/models"
)

// SamplePages is how many leading pages feed the profile.
const SamplePages = 10

// Input is the sampled slice of a document handed to the profiler by the
// PDF engine: spans from the first SamplePages pages plus page-level counts
// the engine already knows.
type Input struct {
	Spans        []models.TextSpan
	PageCount    int
	SampledPages int
	ImageCount   int // images seen on the sampled pages
	// TableCount feeds TableDensity. Neither extraction engine detects
	// tables yet, so callers currently leave it zero and TableDensity
	// reports 0.
	TableCount int
}

var documentIndicators = map[string][]string{
	"academic": {
		"abstract", "methodology", "references", "bibliography",
		"figure", "table", "et al.", "doi:", "isbn", "journal",
		"research", "study", "analysis", "hypothesis", "conclusion",
	},
	"business": {
		"executive summary", "roi", "kpi", "strategy", "market",
		"revenue", "customer", "competitive", "analysis", "profit",
		"business", "company", "industry", "sales", "management",
	},
	"technical": {
		"algorithm", "implementation", "code", "api", "framework",
		"architecture", "system", "performance", "optimization",
		"software", "programming", "development", "technical", "function",
	},
	"biography": {
		"born", "early life", "childhood", "education", "career",
		"achievements", "personal", "family", "death", "legacy",
	},
	"self-help": {
		"how to", "self improvement", "personal development", "success",
		"motivation", "habits", "goals", "mindset", "change your life",
	},
}

// Analyze builds a PDFProfile from the sampled input. It never fails: a
// panicking heuristic yields the neutral default profile instead.
func Analyze(in Input) (p models.PDFProfile) {
	defer func() {
		if r := recover(); r != nil {
			p = models.DefaultProfile()
		}
	}()

	sample := sampleText(in.Spans)
	sampled := in.SampledPages
	if sampled <= 0 {
		sampled = pageSpanCount(in.Spans)
	}
	if sampled <= 0 {
		sampled = 1
	}

	p = models.PDFProfile{
		DocumentType:        classifyDocumentType(sample),
		StructureComplexity: structureComplexity(in.Spans, in.ImageCount+in.TableCount, sampled),
		TextQuality:         textQuality(sample),
		LayoutType:          layoutType(in.Spans),
		HasTOC:              detectTOC(sample),
		ChapterPattern:      chapterPattern(sample),
		CitationStyle:       DetectCitationStyle(sample),
		ImageDensity:        float64(in.ImageCount) / float64(sampled),
		TableDensity:        float64(in.TableCount) / float64(sampled),
		FontConsistency:     fontConsistency(in.Spans),
	}
	return p
}

func sampleText(spans []models.TextSpan) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Page > SamplePages {
			continue
		}
		b.WriteString(s.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func pageSpanCount(spans []models.TextSpan) int {
	pages := map[int]struct{}{}
	for _, s := range spans {
		pages[s.Page] = struct{}{}
	}
	return len(pages)
}

func classifyDocumentType(sample string) string {
	lower := strings.ToLower(sample)
	bestType := "other"
	bestScore := 0.0
	// Sorted iteration keeps the argmax deterministic on ties.
	types := make([]string, 0, len(documentIndicators))
	for t := range documentIndicators {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		indicators := documentIndicators[t]
		matches := 0
		for _, ind := range indicators {
			if strings.Contains(lower, ind) {
				matches++
			}
		}
		score := float64(matches) / float64(len(indicators))
		if score > bestScore {
			bestScore = score
			bestType = t
		}
	}
	if bestScore > 0.1 {
		return bestType
	}
	return "other"
}

// structureComplexity blends font diversity, multi-column page fraction and
// visual element counts, each normalized and equally weighted.
func structureComplexity(spans []models.TextSpan, visuals int, sampledPages int) float64 {
	sizes := map[float64]struct{}{}
	for _, s := range spans {
		sizes[s.FontSize] = struct{}{}
	}
	fontDiversity := float64(len(sizes)) / 10.0

	multiColumn := 0
	for _, xs := range xPositionsByPage(spans) {
		if isMultiColumn(xs) {
			multiColumn++
		}
	}
	layoutComplexity := float64(multiColumn) / float64(max(1, sampledPages))
	visualComplexity := minF(1.0, float64(visuals)/20.0)

	return minF(1.0, (fontDiversity+layoutComplexity+visualComplexity)/3.0)
}

func textQuality(sample string) float64 {
	if sample == "" {
		return 0.0
	}
	quality := 1.0
	n := len(sample)

	if strings.Count(sample, "\n\n\n") > n/1000 {
		quality -= 0.1
	}

	words := strings.Fields(sample)
	if len(words) > 0 {
		broken := 0
		for _, w := range words {
			if len(w) == 1 && isLetter(rune(w[0])) {
				broken++
			}
		}
		if float64(broken)/float64(len(words)) > 0.05 {
			quality -= 0.2
		}
	}

	garbled := 0
	for _, r := range sample {
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			garbled++
		}
	}
	if garbled > n/1000 {
		quality -= 0.15
	}

	if len(runTogetherRe.FindAllStringIndex(sample, -1)) > n/500 {
		quality -= 0.1
	}

	readable := 0
	for _, r := range sample {
		if isAlnum(r) || r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			readable++
		}
	}
	if float64(readable)/float64(n) < 0.8 {
		quality -= 0.2
	}

	return maxF(0.0, quality)
}

var runTogetherRe = regexp.MustCompile(`[a-z][A-Z]`)

func layoutType(spans []models.TextSpan) string {
	byPage := xPositionsByPage(spans)
	if len(byPage) == 0 {
		return "single_column"
	}
	multi := 0
	for _, xs := range byPage {
		if isMultiColumn(xs) {
			multi++
		}
	}
	switch {
	case multi*2 >= len(byPage):
		return "multi_column"
	case multi > 0:
		return "mixed"
	default:
		return "single_column"
	}
}

func xPositionsByPage(spans []models.TextSpan) map[int][]float64 {
	byPage := map[int][]float64{}
	for _, s := range spans {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		byPage[s.Page] = append(byPage[s.Page], s.BBox.X)
	}
	return byPage
}

// isMultiColumn looks for clustering gaps in horizontal start positions.
func isMultiColumn(xs []float64) bool {
	if len(xs) < 50 {
		return false
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	total := 0.0
	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		g := sorted[i] - sorted[i-1]
		gaps = append(gaps, g)
		total += g
	}
	if len(gaps) == 0 {
		return false
	}
	avg := total / float64(len(gaps))
	for _, g := range gaps {
		if g > avg*5 {
			return true
		}
	}
	return false
}

var tocLeaderRe = regexp.MustCompile(`(?m)\.\s*\d+\s*$`)

func detectTOC(sample string) bool {
	lower := strings.ToLower(sample)
	indicators := []string{"table of contents", "contents", "index", "chapter 1", "chapter i"}
	hasIndicator := false
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			hasIndicator = true
			break
		}
	}
	return hasIndicator && len(tocLeaderRe.FindAllString(sample, -1)) >= 3
}

var chapterPatternSignatures = []struct {
	name string
	re   *regexp.Regexp
}{
	{"numbered", regexp.MustCompile(`(?m)chapter\s+\d+`)},
	{"numbered", regexp.MustCompile(`(?m)^\d+\.`)},
	{"roman", regexp.MustCompile(`(?m)chapter\s+[ivx]+\b`)},
	{"roman", regexp.MustCompile(`(?m)^[ivx]+\.`)},
	{"named", regexp.MustCompile(`(?m)chapter\s+[a-z]+`)},
}

func chapterPattern(sample string) string {
	lower := strings.ToLower(sample)
	scores := map[string]int{}
	for _, sig := range chapterPatternSignatures {
		scores[sig.name] += len(sig.re.FindAllString(lower, -1))
	}
	best, bestScore := "mixed", 0
	for _, name := range []string{"numbered", "named", "roman"} {
		if scores[name] > bestScore {
			best, bestScore = name, scores[name]
		}
	}
	if bestScore == 0 {
		return "mixed"
	}
	return best
}

var citationSignatures = map[string][]*regexp.Regexp{
	"apa": {
		regexp.MustCompile(`\([A-Z][a-z]+,\s+\d{4}\)`),
		regexp.MustCompile(`\([A-Z][a-z]+\s+&\s+[A-Z][a-z]+,\s+\d{4}\)`),
		regexp.MustCompile(`\([A-Z][a-z]+\s+et\s+al\.,\s+\d{4}\)`),
	},
	"mla": {
		regexp.MustCompile(`\([A-Z][a-z]+\s+\d+\)`),
		regexp.MustCompile(`\([A-Z][a-z]+,\s+"[^"]+"\s+\d+\)`),
	},
	"ieee": {
		regexp.MustCompile(`\[\d+\]`),
		regexp.MustCompile(`\[\d+-\d+\]`),
	},
}

// DetectCitationStyle votes over APA/MLA/IEEE signature frequencies. A style
// wins only if it beats the runner-up and clears a floor of more than two
// matches. Shared with the citation processor.
func DetectCitationStyle(text string) string {
	counts := map[string]int{}
	for style, patterns := range citationSignatures {
		for _, re := range patterns {
			counts[style] += len(re.FindAllString(text, -1))
		}
	}
	apa, mla, ieee := counts["apa"], counts["mla"], counts["ieee"]
	switch {
	case apa > mla && apa > ieee && apa > 2:
		return "apa"
	case mla > ieee && mla > 2:
		return "mla"
	case ieee > 2:
		return "ieee"
	case apa > 0 || mla > 0 || ieee > 0:
		return "mixed"
	default:
		return "none"
	}
}

func fontConsistency(spans []models.TextSpan) float64 {
	if len(spans) == 0 {
		return 0.5
	}
	type fontKey struct {
		name string
		size float64
	}
	unique := map[fontKey]struct{}{}
	for _, s := range spans {
		unique[fontKey{s.FontName, s.FontSize}] = struct{}{}
	}
	return 1.0 - minF(1.0, float64(len(unique))/20.0)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAlnum(r rune) bool {
	return isLetter(r) || (r >= '0' && r <= '9')
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
