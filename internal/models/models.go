package models

import "time"

// TextSpan is the atomic unit produced by a PDF engine: one positioned run
// of text with font metadata. Immutable once produced.
type TextSpan struct {
	Text     string      `json:"text"`
	Page     int         `json:"page"` // 1-based
	BBox     BoundingBox `json:"bbox"`
	FontSize float64     `json:"font_size"`
	FontName string      `json:"font_name"`
	Bold     bool        `json:"bold"`
}

// WordCount returns the whitespace-separated token count of the span.
func (s TextSpan) WordCount() int {
	n := 0
	inWord := false
	for _, r := range s.Text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TOCEntry is one outline entry from the PDF engine.
type TOCEntry struct {
	Title string `json:"title"`
	Level int    `json:"level"` // 1 for chapter, 2 for section, ...
	Page  int    `json:"page"`
}

// RawImage is an embedded image as reported by the PDF engine. Data may be
// nil when the bytes could not be decoded; the record is still listed so id
// continuity is preserved.
type RawImage struct {
	Page   int         `json:"page"`
	BBox   BoundingBox `json:"bbox"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Data   []byte      `json:"data,omitempty"`
}

type Chapter struct {
	ID         string  `json:"id"`
	Number     int     `json:"number"`
	Title      string  `json:"title"`
	Page       int     `json:"page"`
	WordCount  int     `json:"word_count"`
	Confidence float64 `json:"confidence"`
}

type ParagraphType string

const (
	ParagraphText    ParagraphType = "text"
	ParagraphQuote   ParagraphType = "quote"
	ParagraphList    ParagraphType = "list"
	ParagraphHeading ParagraphType = "heading"
	ParagraphCaption ParagraphType = "caption"
	ParagraphCode    ParagraphType = "code"
)

type ImportanceLevel string

const (
	ImportanceHigh   ImportanceLevel = "high"
	ImportanceMedium ImportanceLevel = "medium"
	ImportanceLow    ImportanceLevel = "low"
)

type Paragraph struct {
	ID             string          `json:"id"`
	ChapterID      string          `json:"chapter_id"`
	OrderIndex     int             `json:"order_index"`
	Content        string          `json:"content"`
	WordCount      int             `json:"word_count"`
	Type           ParagraphType   `json:"type"`
	Importance     ImportanceLevel `json:"importance"`
	Concepts       []string        `json:"concepts,omitempty"`
	TechnicalTerms []string        `json:"technical_terms,omitempty"`
	Page           int             `json:"page"`
	Confidence     float64         `json:"confidence"`
}

type ImageType string

const (
	ImageChart        ImageType = "chart"
	ImageDiagram      ImageType = "diagram"
	ImagePhoto        ImageType = "photo"
	ImageIllustration ImageType = "illustration"
	ImageGraph        ImageType = "graph"
	ImageTable        ImageType = "table"
)

type TextPosition string

const (
	PositionInline TextPosition = "inline"
	PositionAbove  TextPosition = "above"
	PositionBelow  TextPosition = "below"
)

type ColumnPosition string

const (
	ColumnLeft   ColumnPosition = "left"
	ColumnRight  ColumnPosition = "right"
	ColumnCenter ColumnPosition = "center"
)

// ReferenceMention is a textual reference to an image ("see Figure 3").
type ReferenceMention struct {
	Text        string `json:"text"`
	Type        string `json:"type"` // explicit_reference or implicit_reference
	ParagraphID string `json:"paragraph_id"`
	Offset      int    `json:"offset"`
	Number      string `json:"number,omitempty"`
}

// SpatialRelationships counts paragraphs around an image on its page.
type SpatialRelationships struct {
	ParagraphsAbove     int `json:"paragraphs_above"`
	ParagraphsBelow     int `json:"paragraphs_below"`
	ParagraphsAlongside int `json:"paragraphs_alongside"`
}

type ImageRecord struct {
	ID                string               `json:"id"`
	ChapterID         string               `json:"chapter_id"`
	Type              ImageType            `json:"type"`
	BBox              BoundingBox          `json:"bbox"`
	Page              int                  `json:"page"`
	Width             int                  `json:"width"`
	Height            int                  `json:"height"`
	TextPosition      TextPosition         `json:"text_position"`
	ColumnPosition    ColumnPosition       `json:"column_position"`
	ParagraphBeforeID string               `json:"paragraph_before_id,omitempty"`
	ParagraphAfterID  string               `json:"paragraph_after_id,omitempty"`
	Caption           string               `json:"caption,omitempty"`
	AltText           string               `json:"alt_text"`
	Description       string               `json:"description"`
	ReferenceMentions []ReferenceMention   `json:"reference_mentions,omitempty"`
	Spatial           SpatialRelationships `json:"spatial_relationships"`
	RelevanceScore    float64              `json:"relevance_score"` // 0-10
}

type CitationType string

const (
	CitationInline       CitationType = "inline"
	CitationFootnote     CitationType = "footnote"
	CitationEndnote      CitationType = "endnote"
	CitationBibliography CitationType = "bibliography"
)

type Citation struct {
	ID      string       `json:"id"`
	Type    CitationType `json:"type"`
	Content string       `json:"content"`
	Page    int          `json:"page"`
}

// PDFProfile captures whole-document characteristics, computed once and
// read-only afterward.
type PDFProfile struct {
	DocumentType        string  `json:"document_type"`
	StructureComplexity float64 `json:"structure_complexity"` // 0-1
	TextQuality         float64 `json:"text_quality"`         // 0-1
	LayoutType          string  `json:"layout_type"`          // single_column, multi_column, mixed
	HasTOC              bool    `json:"has_toc"`
	ChapterPattern      string  `json:"chapter_pattern"` // numbered, named, roman, mixed
	CitationStyle       string  `json:"citation_style"`  // apa, mla, ieee, mixed, none
	ImageDensity        float64 `json:"image_density"`
	TableDensity        float64 `json:"table_density"`
	FontConsistency     float64 `json:"font_consistency"` // 0-1
}

// DefaultProfile is the neutral fallback used when profiling fails.
func DefaultProfile() PDFProfile {
	return PDFProfile{
		DocumentType:        "other",
		StructureComplexity: 0.5,
		TextQuality:         0.7,
		LayoutType:          "single_column",
		HasTOC:              false,
		ChapterPattern:      "mixed",
		CitationStyle:       "none",
		ImageDensity:        0,
		TableDensity:        0,
		FontConsistency:     0.5,
	}
}

type QualityMetrics struct {
	Overall   float64 `json:"overall_confidence"`
	Structure float64 `json:"structure_confidence"`
	Content   float64 `json:"content_confidence"`
	Image     float64 `json:"image_confidence"`
	Citation  float64 `json:"citation_confidence"`
}

// DocumentMetadata summarizes the source document.
type DocumentMetadata struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Author             string    `json:"author"`
	PageCount          int       `json:"page_count"`
	WordCount          int       `json:"word_count"`
	ReadingTimeMinutes int       `json:"estimated_reading_time_minutes"`
	ProcessingVersion  string    `json:"processing_version"`
	ProcessedAt        time.Time `json:"processed_at"`
}

// ProcessingReport carries everything a downstream consumer needs to judge
// how much to trust the result.
type ProcessingReport struct {
	ElapsedMillis      int64          `json:"elapsed_ms"`
	Profile            PDFProfile     `json:"pdf_profile"`
	ExtractionStrategy string         `json:"extraction_strategy"`
	Quality            QualityMetrics `json:"quality_metrics"`
	CorrectionAttempts int            `json:"correction_attempts"`
	Issues             []string       `json:"issues,omitempty"`
	Recommendations    []string       `json:"recommendations,omitempty"`
	Warnings           []string       `json:"warnings,omitempty"`
	Errors             []string       `json:"errors,omitempty"`
}

// Library groups documents the way they arrive: one ingest directory,
// many PDFs.
type Library struct {
	LibraryID string    `json:"library_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Document tracks one source PDF through the pipeline.
type Document struct {
	DocumentID string    `json:"document_id"`
	LibraryID  string    `json:"library_id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title,omitempty"`
	Author     string    `json:"author,omitempty"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentContent is the final structured result. All list fields may be
// empty; consumers must handle partial results.
type DocumentContent struct {
	Metadata   DocumentMetadata `json:"metadata"`
	Chapters   []Chapter        `json:"chapters"`
	Paragraphs []Paragraph      `json:"paragraphs"`
	Images     []ImageRecord    `json:"images"`
	Citations  []Citation       `json:"citations"`
	TOC        []TOCEntry       `json:"table_of_contents,omitempty"`
	Report     ProcessingReport `json:"processing_report"`
}
