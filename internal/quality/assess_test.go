package quality

import (
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
)

func goodParagraph(conf float64) models.Paragraph {
	return models.Paragraph{WordCount: 80, Confidence: conf}
}

func TestAssessWellStructuredDocument(t *testing.T) {
	content := models.DocumentContent{
		Chapters: []models.Chapter{
			{Number: 1, WordCount: 1000},
			{Number: 2, WordCount: 1100},
			{Number: 3, WordCount: 900},
		},
		Paragraphs: []models.Paragraph{goodParagraph(0.9), goodParagraph(0.9), goodParagraph(0.9)},
		Images: []models.ImageRecord{
			{Description: "Sales/revenue chart: Figure 1 shows quarterly revenue", RelevanceScore: 8.5},
		},
		Citations: []models.Citation{{Content: "Jones & Lee, 2021"}},
	}

	r := Assess(content)
	require.InDelta(t, 0.9, r.Metrics.Structure, 1e-9)
	require.InDelta(t, 0.72, r.Metrics.Content, 1e-9)
	require.InDelta(t, 0.8, r.Metrics.Image, 1e-9)
	require.InDelta(t, 0.8, r.Metrics.Citation, 1e-9)

	want := 0.3*0.9 + 0.4*0.72 + 0.2*0.8 + 0.1*0.8
	require.InDelta(t, want, r.Metrics.Overall, 1e-9)
}

func TestAssessEmptyContentFlagsIssues(t *testing.T) {
	r := Assess(models.DocumentContent{})
	require.InDelta(t, 0.5, r.Metrics.Structure, 1e-9)
	require.InDelta(t, 0.4, r.Metrics.Content, 1e-9)
	require.InDelta(t, 0.7, r.Metrics.Image, 1e-9)
	require.InDelta(t, 0.8, r.Metrics.Citation, 1e-9)
	require.Len(t, r.Issues, 2)
	require.Len(t, r.Recommendations, 2)
}

func TestAssessStructurePenalizesNonSequentialNumbers(t *testing.T) {
	chs := []models.Chapter{
		{Number: 1, WordCount: 1000},
		{Number: 3, WordCount: 1000},
	}
	require.InDelta(t, 0.7, assessStructure(chs), 1e-9)
}

func TestAssessStructurePenalizesLengthOutliers(t *testing.T) {
	chs := []models.Chapter{
		{Number: 1, WordCount: 1000},
		{Number: 2, WordCount: 1000},
		{Number: 3, WordCount: 30},
	}
	// sequential bonus, then outlier penalty
	require.InDelta(t, 0.8, assessStructure(chs), 1e-9)
}

func TestAssessImagesPenalizesGenericDescriptions(t *testing.T) {
	imgs := []models.ImageRecord{
		{Description: "Image", RelevanceScore: 5},
		{Description: "Generic chart", RelevanceScore: 5},
	}
	// 0.8 - 0.3 (capped generic penalty), scaled by 0.7 with no context
	require.InDelta(t, 0.35, assessImages(imgs), 1e-9)
}

func TestAssessCitationsScalesBySubstantiveShare(t *testing.T) {
	cits := []models.Citation{
		{Content: "Smith, John. The Structure of Documents."},
		{Content: "101"},
	}
	require.InDelta(t, 0.4, assessCitations(cits), 1e-9)
}
