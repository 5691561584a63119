package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
	"docstruct/internal/pdfio"
)

func bodySpan(page, words int) models.TextSpan {
	return models.TextSpan{
		Text:     strings.TrimSpace(strings.Repeat("word ", words)),
		Page:     page,
		FontSize: 12,
		FontName: "Times",
	}
}

func headingSpan(page int, title string) models.TextSpan {
	return models.TextSpan{Text: title, Page: page, FontSize: 20, FontName: "Times-Bold", Bold: true}
}

func bookExtraction() *pdfio.Extraction {
	spans := []models.TextSpan{headingSpan(1, "Chapter 1: The Beginning")}
	for p := 1; p <= 10; p++ {
		spans = append(spans, bodySpan(p, 60))
	}
	spans = append(spans, headingSpan(11, "Chapter 2: The Middle"))
	for p := 11; p <= 20; p++ {
		spans = append(spans, bodySpan(p, 60))
	}
	return &pdfio.Extraction{
		PageCount: 20,
		Spans:     spans,
		Metadata:  map[string]string{"title": "A Study", "author": "J. Doe"},
	}
}

func TestRunStructuresBook(t *testing.T) {
	p := New(Options{SelfCorrection: false})
	content, err := p.Run(context.Background(), "doc-1", "layout", bookExtraction())
	require.NoError(t, err)

	require.Len(t, content.Chapters, 2)
	require.Equal(t, 1, content.Chapters[0].Number)
	require.Equal(t, 2, content.Chapters[1].Number)
	require.Equal(t, 1, content.Chapters[0].Page)
	require.Equal(t, 11, content.Chapters[1].Page)

	require.NotEmpty(t, content.Paragraphs)
	require.Equal(t, content.Chapters[0].ID, content.Paragraphs[0].ChapterID)

	require.Equal(t, "doc-1", content.Metadata.ID)
	require.Equal(t, "A Study", content.Metadata.Title)
	require.Equal(t, "J. Doe", content.Metadata.Author)
	require.Equal(t, 20, content.Metadata.PageCount)
	require.Equal(t, 1208, content.Metadata.WordCount)
	require.Equal(t, 7, content.Metadata.ReadingTimeMinutes)

	require.Equal(t, "layout+standard_document", content.Report.ExtractionStrategy)
	require.Zero(t, content.Report.CorrectionAttempts)
	require.Empty(t, content.Report.Warnings)
}

func TestRunKeepsChapterListEmptyWhenNoneDetected(t *testing.T) {
	ext := &pdfio.Extraction{
		PageCount: 3,
		Spans:     []models.TextSpan{bodySpan(1, 60), bodySpan(2, 60), bodySpan(3, 60)},
	}
	p := New(Options{SelfCorrection: false})
	content, err := p.Run(context.Background(), "doc-2", "stream", ext)
	require.NoError(t, err)

	require.Empty(t, content.Chapters)
	require.NotEmpty(t, content.Paragraphs)
	for _, para := range content.Paragraphs {
		require.Empty(t, para.ChapterID)
	}
	require.Contains(t, content.Report.Warnings, "no chapter boundaries detected")
	require.InDelta(t, 0.5, content.Report.Quality.Structure, 1e-9)
}

func TestRunZeroSpanDocument(t *testing.T) {
	p := New(Options{SelfCorrection: false})
	content, err := p.Run(context.Background(), "doc-6", "stream", &pdfio.Extraction{PageCount: 2})
	require.NoError(t, err)

	require.Empty(t, content.Chapters)
	require.Empty(t, content.Paragraphs)
	require.InDelta(t, 0.5, content.Report.Quality.Structure, 1e-9)
	require.InDelta(t, 0.4, content.Report.Quality.Content, 1e-9)
	require.Less(t, content.Report.Quality.Overall, DefaultMinOverallConfidence)
}

func TestRunSelfCorrectionIsBounded(t *testing.T) {
	ext := &pdfio.Extraction{
		PageCount: 3,
		Spans:     []models.TextSpan{bodySpan(1, 60), bodySpan(2, 60), bodySpan(3, 60)},
	}
	p := New(Options{SelfCorrection: true, MaxCorrectionAttempts: 5})
	content, err := p.Run(context.Background(), "doc-3", "stream", ext)
	require.NoError(t, err)

	// nothing to correct: the first no-op attempt ends the loop
	require.Equal(t, 1, content.Report.CorrectionAttempts)
	require.Contains(t, content.Report.Warnings, "quality below threshold after self-correction")
	require.Less(t, content.Report.Quality.Overall, DefaultMinOverallConfidence)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Run(ctx, "doc-4", "layout", bookExtraction())
	require.ErrorIs(t, err, context.Canceled)
}

func TestContentSerializationRoundTrip(t *testing.T) {
	p := New(Options{SelfCorrection: false})
	content, err := p.Run(context.Background(), "doc-5", "layout", bookExtraction())
	require.NoError(t, err)

	payload, err := json.Marshal(content)
	require.NoError(t, err)

	var decoded models.DocumentContent
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, content, decoded)
}

func TestChooseStrategy(t *testing.T) {
	require.Equal(t, "layout+academic_complex",
		chooseStrategy(models.PDFProfile{DocumentType: "academic", StructureComplexity: 0.8}, "layout"))
	require.Equal(t, "layout+academic_standard",
		chooseStrategy(models.PDFProfile{DocumentType: "academic", StructureComplexity: 0.4}, "layout"))
	require.Equal(t, "stream+business_visual",
		chooseStrategy(models.PDFProfile{DocumentType: "business", ImageDensity: 0.5}, "stream"))
	require.Equal(t, "stream+business_text_heavy",
		chooseStrategy(models.PDFProfile{DocumentType: "business"}, "stream"))
	require.Equal(t, "layout+technical_detailed",
		chooseStrategy(models.PDFProfile{DocumentType: "technical"}, "layout"))
	require.Equal(t, "layout+complex_document",
		chooseStrategy(models.PDFProfile{DocumentType: "other", StructureComplexity: 0.7}, "layout"))
	require.Equal(t, "layout+standard_document",
		chooseStrategy(models.PDFProfile{DocumentType: "other", StructureComplexity: 0.2}, "layout"))
}
