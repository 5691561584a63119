package paragraphs

import (
	"fmt"
	"regexp"
	"strings"

	"docstruct/internal/models"
)

const (
	// minParagraphChars filters illegible fragments left over from
	// extraction.
	minParagraphChars = 10
	// splitThresholdChars is the span length past which text is split on
	// sentence boundaries.
	splitThresholdChars = 1000
	// splitTargetChars is the soft cap for split sub-paragraphs.
	splitTargetChars = 500
)

// Classifier segments spans into typed, scored paragraphs.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify turns spans into paragraphs with type, importance, tags and a
// confidence score. Chapter assignment happens separately via
// AssignChapters.
func (c *Classifier) Classify(spans []models.TextSpan) []models.Paragraph {
	out := make([]models.Paragraph, 0, len(spans))
	idx := 0
	for _, span := range spans {
		text := CleanText(span.Text)
		if len(strings.TrimSpace(text)) < minParagraphChars {
			continue
		}
		for _, part := range splitIntoParagraphs(text) {
			if len(strings.TrimSpace(part)) < minParagraphChars {
				continue
			}
			pType := classifyType(part, span)
			p := models.Paragraph{
				ID:             fmt.Sprintf("para_%04d", idx),
				OrderIndex:     idx,
				Content:        part,
				WordCount:      len(strings.Fields(part)),
				Type:           pType,
				Importance:     assessImportance(part, pType, span),
				Concepts:       extractConcepts(part),
				TechnicalTerms: extractTechnicalTerms(part),
				Page:           span.Page,
				Confidence:     paragraphConfidence(part, span),
			}
			out = append(out, p)
			idx++
		}
	}
	return out
}

// AssignChapters links each paragraph to the most recent chapter whose page
// does not exceed the paragraph's page. Paragraphs before the first chapter
// start keep an empty chapter id.
func AssignChapters(paras []models.Paragraph, chapters []models.Chapter) []models.Paragraph {
	for i := range paras {
		var assigned *models.Chapter
		for j := range chapters {
			ch := &chapters[j]
			if ch.Page <= paras[i].Page && (assigned == nil || ch.Page > assigned.Page) {
				assigned = ch
			}
		}
		if assigned != nil {
			paras[i].ChapterID = assigned.ID
		}
	}
	return paras
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pageNumRe    = regexp.MustCompile(`(?m)^\d+\s*$`)
	pageOfRe     = regexp.MustCompile(`(?m)^Page \d+ of \d+\s*$`)
)

// CleanText collapses whitespace, strips stray page-number lines and
// normalizes ligatures and smart punctuation.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = pageNumRe.ReplaceAllString(text, "")
	text = pageOfRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")

	r := strings.NewReplacer(
		"ﬁ", "fi",
		"ﬂ", "fl",
		"–", "-",
		"’", "'",
		"“", `"`,
		"”", `"`,
	)
	return strings.TrimSpace(r.Replace(text))
}

var sentenceBoundaryRe = regexp.MustCompile(`(?:[.!?])\s+`)

// splitIntoParagraphs keeps normal text whole but breaks pathologically
// long runs on sentence boundaries near the target size.
func splitIntoParagraphs(text string) []string {
	if len(text) <= splitThresholdChars {
		return []string{text}
	}
	sentences := splitSentences(text)
	var out []string
	current := ""
	for _, sentence := range sentences {
		if len(current)+len(sentence) > splitTargetChars && current != "" {
			out = append(out, strings.TrimSpace(current))
			current = sentence
			continue
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if strings.TrimSpace(current) != "" {
		out = append(out, strings.TrimSpace(current))
	}
	return out
}

func splitSentences(text string) []string {
	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	var out []string
	start := 0
	for _, loc := range locs {
		// Keep the terminator with its sentence.
		end := loc[0] + 1
		out = append(out, strings.TrimSpace(text[start:end]))
		start = loc[1]
	}
	if start < len(text) {
		out = append(out, strings.TrimSpace(text[start:]))
	}
	return out
}

// classifyType applies checks in precedence order: heading, quote, list,
// caption, code, then plain text.
func classifyType(text string, span models.TextSpan) models.ParagraphType {
	switch {
	case isHeading(text, span):
		return models.ParagraphHeading
	case isQuote(text):
		return models.ParagraphQuote
	case isList(text):
		return models.ParagraphList
	case isCaption(text):
		return models.ParagraphCaption
	case isCode(text, span):
		return models.ParagraphCode
	default:
		return models.ParagraphText
	}
}

var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\d*\s+\w+`),
	regexp.MustCompile(`^[IVX]+\.\s+\w+`),
	regexp.MustCompile(`^[A-Z\s]{3,}$`),
	regexp.MustCompile(`^Chapter\s+\d+`),
}

func isHeading(text string, span models.TextSpan) bool {
	if span.FontSize > 14 || span.Bold {
		if len(strings.Fields(text)) < 20 && !strings.HasSuffix(text, ".") {
			return true
		}
	}
	trimmed := strings.TrimSpace(text)
	for _, re := range headingPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	if len(strings.Fields(text)) <= 10 && !strings.HasSuffix(text, ".") &&
		!strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		if text == strings.ToUpper(text) && strings.ContainsFunc(text, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
			return true
		}
		if isTitleCase(text) {
			return true
		}
	}
	return false
}

func isTitleCase(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := rune(w[0])
		if r >= 'a' && r <= 'z' {
			return false
		}
	}
	return true
}

var quoteAttributionRe = regexp.MustCompile(`\x{2014}\s*[A-Z][a-z]+\s*[A-Z][a-z]+$`)

func isQuote(text string) bool {
	if (strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`)) ||
		(strings.HasPrefix(text, "'") && strings.HasSuffix(text, "'")) {
		return true
	}
	if strings.HasPrefix(text, "> ") || strings.HasPrefix(text, "    ") {
		return true
	}
	return quoteAttributionRe.MatchString(text)
}

var listPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[\x{2022}*\-+]\s+`),
	regexp.MustCompile(`^\s*\d+[.)]\s+`),
	regexp.MustCompile(`^\s*[a-z][.)]\s+`),
	regexp.MustCompile(`^\s*[IVX]+[.)]\s+`),
}

func isList(text string) bool {
	lines := strings.Split(text, "\n")
	matching, nonEmpty := 0, 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonEmpty++
		for _, re := range listPatterns {
			if re.MatchString(line) {
				matching++
				break
			}
		}
	}
	return matching >= 2 && matching*2 > nonEmpty
}

var captionRe = regexp.MustCompile(`(?i)^(Figure|Table|Image|Diagram|Chart|Photo)\s+\d+`)

func isCaption(text string) bool {
	if captionRe.MatchString(text) {
		return true
	}
	return len(strings.Fields(text)) <= 20 && strings.Contains(text, ":")
}

var codeTokens = []string{
	"function", "class", "def ", "var ", "let ", "const ",
	"{", "}", "()", "=>", "return", "if (", "for (", "while (",
}

func isCode(text string, span models.TextSpan) bool {
	name := strings.ToLower(span.FontName)
	for _, mono := range []string{"mono", "courier", "consolas"} {
		if strings.Contains(name, mono) {
			return true
		}
	}
	score := 0
	for _, tok := range codeTokens {
		if strings.Contains(text, tok) {
			score++
		}
	}
	return score >= 3
}

var highImportanceKeywords = []string{
	"important", "critical", "key", "essential", "fundamental",
	"conclusion", "summary", "result", "finding",
}

var mediumImportanceKeywords = []string{
	"note", "consider", "remember", "example", "instance",
}

func assessImportance(text string, pType models.ParagraphType, span models.TextSpan) models.ImportanceLevel {
	if pType == models.ParagraphHeading {
		return models.ImportanceHigh
	}
	lower := strings.ToLower(text)
	for _, kw := range highImportanceKeywords {
		if strings.Contains(lower, kw) {
			return models.ImportanceHigh
		}
	}
	for _, kw := range mediumImportanceKeywords {
		if strings.Contains(lower, kw) {
			return models.ImportanceMedium
		}
	}
	switch {
	case span.FontSize > 13:
		return models.ImportanceHigh
	case span.FontSize > 11:
		return models.ImportanceMedium
	default:
		return models.ImportanceLow
	}
}

var (
	conceptRe   = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	acronymRe   = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	compoundRe  = regexp.MustCompile(`\b\w+[_-]\w+\b`)
	techWordRe  = regexp.MustCompile(`\b\w*[Tt]ech\w*\b`)
	algoWordRe  = regexp.MustCompile(`\b\w*[Aa]lgorithm\w*\b`)
	conceptStop = map[string]struct{}{"The": {}, "This": {}, "That": {}, "These": {}, "Those": {}, "A": {}, "An": {}}
)

// extractConcepts is a coarse pass over capitalized phrases; advisory
// metadata, not NLP.
func extractConcepts(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, term := range conceptRe.FindAllString(text, -1) {
		if _, stop := conceptStop[term]; stop || len(term) <= 3 {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
		if len(out) == 10 {
			break
		}
	}
	return out
}

func extractTechnicalTerms(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, re := range []*regexp.Regexp{acronymRe, compoundRe, techWordRe, algoWordRe} {
		for _, term := range re.FindAllString(text, -1) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
			if len(out) == 15 {
				return out
			}
		}
	}
	return out
}

var cleanCharsetRe = regexp.MustCompile(`^[A-Za-z0-9\s.,!?;:()\-"']+$`)

func paragraphConfidence(text string, span models.TextSpan) float64 {
	confidence := 0.8
	if cleanCharsetRe.MatchString(text) {
		confidence += 0.1
	}
	wc := len(strings.Fields(text))
	if wc < 5 || wc > 500 {
		confidence -= 0.1
	}
	if span.FontName != "" || span.FontSize > 0 {
		confidence += 0.05
	}
	if confidence < 0.1 {
		return 0.1
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}
