package citations

import (
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
)

func span(text string, page int) models.TextSpan {
	return models.TextSpan{Text: text, Page: page}
}

func TestExtractAPAInlineCitations(t *testing.T) {
	spans := []models.TextSpan{
		span("Earlier work (Smith, 2019) set the baseline.", 2),
		span("It was later refined (Jones & Lee, 2021) and extended (Chan et al., 2022).", 3),
		span("The baseline (Smith, 2019) is cited again here.", 4),
	}
	out := NewProcessor().Extract(spans)
	require.Len(t, out, 3) // duplicate Smith is collapsed

	contents := make([]string, 0, len(out))
	for _, c := range out {
		require.Equal(t, models.CitationInline, c.Type)
		require.NotEmpty(t, c.ID)
		contents = append(contents, c.Content)
	}
	require.Contains(t, contents, "Smith, 2019")
	require.Contains(t, contents, "Jones & Lee, 2021")
	require.Contains(t, contents, "Chan et al., 2022")
}

func TestExtractStyleFindsIEEEMarkers(t *testing.T) {
	spans := []models.TextSpan{
		span("Prior art [101] and [102] informs the design in [103].", 1),
	}
	out := extractStyle(spans, ieeePatterns)
	require.Len(t, out, 3)
	for _, c := range out {
		require.Equal(t, models.CitationInline, c.Type)
		require.Equal(t, 1, c.Page)
	}
}

func TestExtractDropsBareNumberIEEEMarkers(t *testing.T) {
	// Single-number bracket contents are indistinguishable from page or
	// list markers, so validation discards them; ranges survive.
	spans := []models.TextSpan{
		span("Prior art [101] and [102] builds on the survey in [7-9].", 1),
	}
	out := NewProcessor().Extract(spans)
	require.Len(t, out, 1)
	require.Equal(t, "7-9", out[0].Content)
	require.Equal(t, models.CitationInline, out[0].Type)
}

func TestExtractBibliographySection(t *testing.T) {
	spans := []models.TextSpan{
		span("The closing discussion has no inline markers.", 40),
		span("References", 41),
		span("Smith, John. The Structure of Documents. Acme Press, 2001.\nshort line\nDoe, Jane. Reading at Scale. North Books, 2014.", 42),
		span("Appendix A follows here.", 43),
		span("Smith, John. The Structure of Documents. Acme Press, 2001.", 44),
	}
	out := NewProcessor().Extract(spans)
	require.Len(t, out, 2)
	for _, c := range out {
		require.Equal(t, models.CitationBibliography, c.Type)
		require.Equal(t, 42, c.Page)
	}
}

func TestValidateDropsDegenerateMatches(t *testing.T) {
	in := []models.Citation{
		{Content: "42"},
		{Content: "see chapter two"},
		{Content: "page 12 of the appendix"},
		{Content: "  Smith, 2019  "},
	}
	out := validate(in)
	require.Len(t, out, 1)
	require.Equal(t, "Smith, 2019", out[0].Content)
}
