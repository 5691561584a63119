package chapters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
)

// bodySpan fabricates a span with the requested word count.
func bodySpan(page, words int) models.TextSpan {
	return models.TextSpan{
		Text:     strings.TrimSpace(strings.Repeat("word ", words)),
		Page:     page,
		FontSize: 12,
	}
}

func bookSpans() []models.TextSpan {
	spans := []models.TextSpan{
		{Text: "Chapter 1: The Beginning", Page: 1, FontSize: 20, Bold: true},
	}
	for p := 1; p <= 10; p++ {
		spans = append(spans, bodySpan(p, 60))
	}
	spans = append(spans, models.TextSpan{Text: "Chapter 2: The Middle", Page: 11, FontSize: 20, Bold: true})
	for p := 11; p <= 20; p++ {
		spans = append(spans, bodySpan(p, 60))
	}
	return spans
}

func TestEngineDetectsChaptersFromHeadings(t *testing.T) {
	eng := NewEngine()
	chapters := eng.Detect(bookSpans(), nil)

	require.Len(t, chapters, 2)
	require.Equal(t, 1, chapters[0].Number)
	require.Equal(t, 2, chapters[1].Number)
	require.Equal(t, 1, chapters[0].Page)
	require.Equal(t, 11, chapters[1].Page)
	require.Contains(t, chapters[0].Title, "The Beginning")
	for _, ch := range chapters {
		require.GreaterOrEqual(t, ch.Confidence, DefaultMinConfidence)
		require.GreaterOrEqual(t, ch.WordCount, DefaultMinWords)
	}
}

func TestEngineUsesTOCWhenPresent(t *testing.T) {
	toc := []models.TOCEntry{
		{Title: "Origins", Level: 1, Page: 1},
		{Title: "Details", Level: 2, Page: 5},
		{Title: "Growth", Level: 1, Page: 11},
	}
	var spans []models.TextSpan
	for p := 1; p <= 20; p++ {
		spans = append(spans, bodySpan(p, 50))
	}

	eng := NewEngine()
	chapters := eng.Detect(spans, toc)

	require.Len(t, chapters, 2)
	require.Equal(t, "Origins", chapters[0].Title)
	require.Equal(t, "Growth", chapters[1].Title)
}

func TestEngineDropsShortChaptersAndRenumbers(t *testing.T) {
	toc := []models.TOCEntry{
		{Title: "Real Chapter", Level: 1, Page: 1},
		{Title: "Stub", Level: 1, Page: 15},
		{Title: "Another Real One", Level: 1, Page: 30},
	}
	var spans []models.TextSpan
	for p := 1; p <= 10; p++ {
		spans = append(spans, bodySpan(p, 50))
	}
	// Pages 15-24 carry almost no text, so Stub falls below the word floor.
	spans = append(spans, bodySpan(15, 5))
	for p := 30; p <= 39; p++ {
		spans = append(spans, bodySpan(p, 50))
	}

	eng := NewEngine()
	chapters := eng.Detect(spans, toc)

	require.Len(t, chapters, 2)
	require.Equal(t, []int{1, 2}, []int{chapters[0].Number, chapters[1].Number})
	require.Equal(t, "Real Chapter", chapters[0].Title)
	require.Equal(t, "Another Real One", chapters[1].Title)
}

func TestEngineEmptyInput(t *testing.T) {
	eng := NewEngine()
	require.Empty(t, eng.Detect(nil, nil))
}

type panicDetector struct{}

func (panicDetector) Name() string    { return "panic" }
func (panicDetector) Weight() float64 { return 1.0 }
func (panicDetector) Detect([]models.TextSpan, []models.TOCEntry) []Candidate {
	panic("detector blew up")
}

func TestEngineSurvivesPanickingDetector(t *testing.T) {
	detectors := append([]Detector{panicDetector{}}, DefaultDetectors()...)
	eng := NewEngine(WithDetectors(detectors))
	chapters := eng.Detect(bookSpans(), nil)
	require.Len(t, chapters, 2)
}

func TestIsLengthOutlier(t *testing.T) {
	require.True(t, IsLengthOutlier(100, 1000))
	require.True(t, IsLengthOutlier(4000, 1000))
	require.False(t, IsLengthOutlier(900, 1000))
}
