package pipeline

import (
	"context"
	"strings"
	"time"

	"docstruct/internal/chapters"
	"docstruct/internal/citations"
	"docstruct/internal/images"
	"docstruct/internal/models"
	"docstruct/internal/paragraphs"
	"docstruct/internal/pdfio"
	"docstruct/internal/profile"
	"docstruct/internal/quality"
)

const (
	// DefaultMinOverallConfidence gates the self-correction loop.
	DefaultMinOverallConfidence = 0.8
	// DefaultMaxCorrectionAttempts bounds how often the pipeline re-runs
	// stages trying to lift the quality score.
	DefaultMaxCorrectionAttempts = 2

	readingWordsPerMinute = 200
	processingVersion     = "1.0"
)

// Options holds the tunable thresholds. Zero values fall back to the
// package defaults.
type Options struct {
	MinChapterConfidence  float64
	MinChapterWords       int
	MinOverallConfidence  float64
	SelfCorrection        bool
	MaxCorrectionAttempts int
}

func (o Options) withDefaults() Options {
	if o.MinChapterConfidence <= 0 {
		o.MinChapterConfidence = chapters.DefaultMinConfidence
	}
	if o.MinChapterWords <= 0 {
		o.MinChapterWords = chapters.DefaultMinWords
	}
	if o.MinOverallConfidence <= 0 {
		o.MinOverallConfidence = DefaultMinOverallConfidence
	}
	if o.MaxCorrectionAttempts <= 0 {
		o.MaxCorrectionAttempts = DefaultMaxCorrectionAttempts
	}
	return o
}

// Pipeline turns one raw extraction into structured document content. Stages
// run strictly in order; analyzer stages degrade to empty results rather
// than failing, so Run only errors on cancellation.
type Pipeline struct {
	opts       Options
	classifier *paragraphs.Classifier
	images     *images.Processor
	citations  *citations.Processor
}

func New(opts Options) *Pipeline {
	return &Pipeline{
		opts:       opts.withDefaults(),
		classifier: paragraphs.NewClassifier(),
		images:     images.NewProcessor(),
		citations:  citations.NewProcessor(),
	}
}

// Run structures an extracted document. documentID and engineName feed the
// metadata and the report; they do not influence the analysis.
func (p *Pipeline) Run(ctx context.Context, documentID, engineName string, ext *pdfio.Extraction) (models.DocumentContent, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return models.DocumentContent{}, err
	}

	prof := profile.Analyze(profilerInput(ext))
	strategy := chooseStrategy(prof, engineName)

	content := models.DocumentContent{TOC: ext.TOC}
	content.Chapters = p.detectChapters(ext, p.opts.MinChapterConfidence)
	content.Paragraphs = paragraphs.AssignChapters(p.classifier.Classify(ext.Spans), content.Chapters)
	content.Images = p.images.Process(ext.Images, content.Paragraphs, content.Chapters)
	content.Citations = p.citations.Extract(ext.Spans)

	var warnings []string
	if len(content.Chapters) == 0 {
		// A zero-chapter document is a valid outcome, not an error. The
		// empty list flows through to the quality report, which scores
		// the missing structure accordingly.
		warnings = append(warnings, "no chapter boundaries detected")
	}

	report := quality.Assess(content)
	attempts := 0
	if p.opts.SelfCorrection {
		for report.Metrics.Overall < p.opts.MinOverallConfidence && attempts < p.opts.MaxCorrectionAttempts {
			if err := ctx.Err(); err != nil {
				return models.DocumentContent{}, err
			}
			attempts++
			if !p.correct(&content, ext, report.Metrics, attempts) {
				break
			}
			report = quality.Assess(content)
		}
		if report.Metrics.Overall < p.opts.MinOverallConfidence {
			warnings = append(warnings, "quality below threshold after self-correction")
		}
	}

	content.Metadata = buildMetadata(documentID, ext, content.Paragraphs)
	content.Report = models.ProcessingReport{
		ElapsedMillis:      time.Since(start).Milliseconds(),
		Profile:            prof,
		ExtractionStrategy: strategy,
		Quality:            report.Metrics,
		CorrectionAttempts: attempts,
		Issues:             report.Issues,
		Recommendations:    report.Recommendations,
		Warnings:           warnings,
	}
	return content, nil
}

func (p *Pipeline) detectChapters(ext *pdfio.Extraction, minConfidence float64) []models.Chapter {
	eng := chapters.NewEngine(
		chapters.WithMinConfidence(minConfidence),
		chapters.WithMinWords(p.opts.MinChapterWords),
	)
	return eng.Detect(ext.Spans, ext.TOC)
}

// correct applies one targeted adjustment aimed at the weakest quality
// dimension. It reports whether anything changed; a no-op ends the loop.
func (p *Pipeline) correct(content *models.DocumentContent, ext *pdfio.Extraction, m models.QualityMetrics, attempt int) bool {
	switch {
	case m.Structure <= m.Content:
		// Relax the consensus floor a step per attempt in case real
		// boundaries fell just short of it.
		relaxed := p.opts.MinChapterConfidence - 0.1*float64(attempt)
		if relaxed < 0.5 {
			relaxed = 0.5
		}
		chs := p.detectChapters(ext, relaxed)
		if len(chs) <= len(content.Chapters) {
			return false
		}
		content.Chapters = chs
		content.Paragraphs = paragraphs.AssignChapters(content.Paragraphs, chs)
		content.Images = p.images.Process(ext.Images, content.Paragraphs, chs)
		return true
	default:
		// Drop paragraphs the classifier itself distrusts.
		kept := content.Paragraphs[:0]
		for _, para := range content.Paragraphs {
			if para.Confidence >= 0.3 {
				kept = append(kept, para)
			}
		}
		if len(kept) == len(content.Paragraphs) {
			return false
		}
		content.Paragraphs = kept
		return true
	}
}

func profilerInput(ext *pdfio.Extraction) profile.Input {
	sampled := ext.PageCount
	if sampled > profile.SamplePages {
		sampled = profile.SamplePages
	}
	in := profile.Input{PageCount: ext.PageCount, SampledPages: sampled}
	for _, s := range ext.Spans {
		if s.Page <= profile.SamplePages {
			in.Spans = append(in.Spans, s)
		}
	}
	for _, img := range ext.Images {
		if img.Page <= profile.SamplePages {
			in.ImageCount++
		}
	}
	return in
}

// chooseStrategy names the extraction strategy recorded in the report,
// keyed on the profiled document type with complexity and image density
// as tie-breakers. It is descriptive; every detector always runs.
func chooseStrategy(prof models.PDFProfile, engineName string) string {
	var strategy string
	switch prof.DocumentType {
	case "academic":
		if prof.StructureComplexity > 0.7 {
			strategy = "academic_complex"
		} else {
			strategy = "academic_standard"
		}
	case "business":
		if prof.ImageDensity > 0.1 {
			strategy = "business_visual"
		} else {
			strategy = "business_text_heavy"
		}
	case "technical":
		strategy = "technical_detailed"
	default:
		if prof.StructureComplexity > 0.6 {
			strategy = "complex_document"
		} else {
			strategy = "standard_document"
		}
	}
	return engineName + "+" + strategy
}

func buildMetadata(documentID string, ext *pdfio.Extraction, paras []models.Paragraph) models.DocumentMetadata {
	words := 0
	for _, para := range paras {
		words += para.WordCount
	}
	md := models.DocumentMetadata{
		ID:                 documentID,
		Title:              strings.TrimSpace(ext.Metadata["title"]),
		Author:             strings.TrimSpace(ext.Metadata["author"]),
		PageCount:          ext.PageCount,
		WordCount:          words,
		ReadingTimeMinutes: (words + readingWordsPerMinute - 1) / readingWordsPerMinute,
		ProcessingVersion:  processingVersion,
		ProcessedAt:        time.Now().UTC(),
	}
	if md.Title == "" {
		md.Title = firstHeading(paras)
	}
	return md
}

func firstHeading(paras []models.Paragraph) string {
	for _, para := range paras {
		if para.Type == models.ParagraphHeading {
			return para.Content
		}
	}
	return ""
}
