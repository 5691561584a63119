package paragraphs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
)

func span(text string, page int) models.TextSpan {
	return models.TextSpan{Text: text, Page: page, FontSize: 12, FontName: "Times"}
}

func TestClassifyDropsShortFragments(t *testing.T) {
	c := NewClassifier()
	out := c.Classify([]models.TextSpan{span("ab", 1), span("  x  ", 1)})
	require.Empty(t, out)
}

func TestClassifyTypesAndOrder(t *testing.T) {
	c := NewClassifier()
	heading := models.TextSpan{Text: "Chapter 3: Methods Overview", Page: 4, FontSize: 18, Bold: true}
	body := span("This paragraph explains the general approach taken in the study. It reads as ordinary prose.", 4)
	caption := span("Figure 2 shows the measured throughput.", 5)

	out := c.Classify([]models.TextSpan{heading, body, caption})
	require.Len(t, out, 3)

	require.Equal(t, models.ParagraphHeading, out[0].Type)
	require.Equal(t, models.ImportanceHigh, out[0].Importance)
	require.Equal(t, models.ParagraphText, out[1].Type)
	require.Equal(t, models.ParagraphCaption, out[2].Type)

	for i, p := range out {
		require.Equal(t, i, p.OrderIndex)
		require.NotEmpty(t, p.ID)
		require.Positive(t, p.WordCount)
		require.GreaterOrEqual(t, p.Confidence, 0.1)
		require.LessOrEqual(t, p.Confidence, 1.0)
	}
	require.Equal(t, 4, out[0].Page)
	require.Equal(t, 5, out[2].Page)
}

func TestClassifySplitsLongSpans(t *testing.T) {
	c := NewClassifier()
	sentence := "The experiment ran for several weeks under varying load conditions. "
	long := strings.Repeat(sentence, 30) // well past the split threshold
	out := c.Classify([]models.TextSpan{span(long, 2)})
	require.Greater(t, len(out), 1)
	for _, p := range out {
		require.LessOrEqual(t, len(p.Content), splitTargetChars+len(sentence))
	}
}

func TestClassifyCodeByFont(t *testing.T) {
	c := NewClassifier()
	code := models.TextSpan{Text: "compute the value from the input buffer and then emit it downstream", Page: 1, FontName: "Courier New", FontSize: 10}
	out := c.Classify([]models.TextSpan{code})
	require.Len(t, out, 1)
	require.Equal(t, models.ParagraphCode, out[0].Type)
}

func TestIsListNeedsMajorityOfLines(t *testing.T) {
	require.True(t, isList("- first item here\n- second item here\n- third item here"))
	require.False(t, isList("one plain line\nanother plain line\n- a single bullet"))
}

func TestCleanText(t *testing.T) {
	in := "The ﬁrst “quoted” line\n42\nnext   line"
	got := CleanText(in)
	require.Equal(t, `The first "quoted" line next line`, got)
}

func TestAssignChapters(t *testing.T) {
	chapters := []models.Chapter{
		{ID: "c1", Number: 1, Page: 3},
		{ID: "c2", Number: 2, Page: 10},
	}
	paras := []models.Paragraph{
		{ID: "p0", Page: 1},
		{ID: "p1", Page: 3},
		{ID: "p2", Page: 9},
		{ID: "p3", Page: 10},
		{ID: "p4", Page: 42},
	}
	out := AssignChapters(paras, chapters)
	require.Equal(t, "", out[0].ChapterID)
	require.Equal(t, "c1", out[1].ChapterID)
	require.Equal(t, "c1", out[2].ChapterID)
	require.Equal(t, "c2", out[3].ChapterID)
	require.Equal(t, "c2", out[4].ChapterID)
}

func TestImportanceKeywords(t *testing.T) {
	c := NewClassifier()
	out := c.Classify([]models.TextSpan{
		span("The key finding is a large reduction in latency across runs.", 1),
		span("For example, consider a workload with mostly small files in it.", 1),
	})
	require.Len(t, out, 2)
	require.Equal(t, models.ImportanceHigh, out[0].Importance)
	require.Equal(t, models.ImportanceMedium, out[1].Importance)
}

func TestExtractTechnicalTerms(t *testing.T) {
	terms := extractTechnicalTerms("The HTTP layer uses a rate-limit algorithm shared with GRPC.")
	require.Contains(t, terms, "HTTP")
	require.Contains(t, terms, "GRPC")
	require.Contains(t, terms, "rate-limit")
}
