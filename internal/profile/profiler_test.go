package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
)

func spanOnPage(page int, text string) models.TextSpan {
	return models.TextSpan{Text: text, Page: page, FontSize: 12, BBox: models.BoundingBox{X: 72}}
}

func TestAnalyzeAcademicDocument(t *testing.T) {
	text := "Abstract. This study presents a methodology and analysis " +
		"of prior research. See references and bibliography, et al. " +
		"The hypothesis is tested against journal baselines (Smith, 2020), " +
		"(Lee, 2019) and (Chan, 2018)."
	in := Input{
		Spans:        []models.TextSpan{spanOnPage(1, text), spanOnPage(2, "More analysis of the study.")},
		PageCount:    40,
		SampledPages: 2,
	}
	p := Analyze(in)
	require.Equal(t, "academic", p.DocumentType)
	require.Equal(t, "single_column", p.LayoutType)
	require.Equal(t, "apa", p.CitationStyle)
	require.False(t, p.HasTOC)
}

func TestAnalyzeEmptyInputYieldsLowQuality(t *testing.T) {
	p := Analyze(Input{PageCount: 5, SampledPages: 5})
	require.Equal(t, "other", p.DocumentType)
	require.Zero(t, p.TextQuality)
}

func TestAnalyzeDetectsTOC(t *testing.T) {
	toc := "Table of Contents\n" +
		"Introduction .......... 1\n" +
		"The Middle Years ...... 25\n" +
		"Conclusion ............ 140\n"
	p := Analyze(Input{Spans: []models.TextSpan{spanOnPage(2, toc)}, PageCount: 150, SampledPages: 1})
	require.True(t, p.HasTOC)
}

func TestAnalyzeChapterPattern(t *testing.T) {
	numbered := "Chapter 1\nsome text\nChapter 2\nmore text\nChapter 3\n"
	p := Analyze(Input{Spans: []models.TextSpan{spanOnPage(1, numbered)}, PageCount: 10, SampledPages: 1})
	require.Equal(t, "numbered", p.ChapterPattern)
}

func TestAnalyzeDensities(t *testing.T) {
	p := Analyze(Input{
		Spans:        []models.TextSpan{spanOnPage(1, "plain text")},
		PageCount:    100,
		SampledPages: 10,
		ImageCount:   5,
		TableCount:   2,
	})
	require.InDelta(t, 0.5, p.ImageDensity, 1e-9)
	require.InDelta(t, 0.2, p.TableDensity, 1e-9)
}

func TestTextQualityPenalizesBrokenExtraction(t *testing.T) {
	clean := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	broken := strings.Repeat("t h e q u i c k b r o w n ", 20)
	require.Greater(t, textQuality(clean), textQuality(broken))
}

func TestDetectCitationStyle(t *testing.T) {
	apa := "Earlier work (Smith, 2019), (Doe, 2020) and (Jones & Lee, 2021) agrees."
	ieee := "As shown in [1] and [2], then refined in [12]."
	none := "No citations here at all."

	require.Equal(t, "apa", DetectCitationStyle(apa))
	require.Equal(t, "ieee", DetectCitationStyle(ieee))
	require.Equal(t, "none", DetectCitationStyle(none))
}

func TestIsMultiColumn(t *testing.T) {
	var xs []float64
	for i := 0; i < 30; i++ {
		xs = append(xs, 72)
		xs = append(xs, 320)
	}
	require.True(t, isMultiColumn(xs))

	var single []float64
	for i := 0; i < 60; i++ {
		single = append(single, 72+float64(i))
	}
	require.False(t, isMultiColumn(single))
}
