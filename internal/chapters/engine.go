package chapters

import (
	"sort"

	"docstruct/internal/models"
)

const (
	// DefaultMinConfidence is the consensus floor below which a cluster
	// is discarded.
	DefaultMinConfidence = 0.7
	// DefaultMinWords is the smallest word count a validated chapter may
	// have; shorter chapters are treated as mis-detections.
	DefaultMinWords = 100
	// wordCountLookahead is the fixed page window used to approximate a
	// chapter's extent when summing word counts. It deliberately ignores
	// the actual next-chapter boundary for compatibility with the
	// distribution penalty tuned against it.
	wordCountLookahead = 10
)

// Engine runs an explicit list of detectors over the span set and merges
// their votes into one validated chapter list. Detectors never abort the
// run: one that panics simply contributes no candidates.
type Engine struct {
	detectors     []Detector
	minConfidence float64
	minWords      int
}

// Option tweaks engine thresholds.
type Option func(*Engine)

func WithMinConfidence(c float64) Option { return func(e *Engine) { e.minConfidence = c } }
func WithMinWords(n int) Option          { return func(e *Engine) { e.minWords = n } }
func WithDetectors(ds []Detector) Option { return func(e *Engine) { e.detectors = ds } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		detectors:     DefaultDetectors(),
		minConfidence: DefaultMinConfidence,
		minWords:      DefaultMinWords,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect returns the validated, confidence-scored chapter list. An empty
// list is a valid outcome, not an error.
func (e *Engine) Detect(spans []models.TextSpan, toc []models.TOCEntry) []models.Chapter {
	var votes []Vote
	for _, d := range e.detectors {
		for _, c := range runDetector(d, spans, toc) {
			votes = append(votes, Vote{Candidate: c, Algorithm: d.Name(), Weight: d.Weight()})
		}
	}
	consensus := BuildConsensus(votes, e.minConfidence)
	return e.validate(consensus, spans)
}

// runDetector isolates detector failures: a panic yields zero candidates.
func runDetector(d Detector, spans []models.TextSpan, toc []models.TOCEntry) (out []Candidate) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	return d.Detect(spans, toc)
}

// validate sorts chapters by page, renumbers them 1..N, computes word
// counts over the lookahead window, drops chapters below the word floor and
// applies the length-distribution penalty.
func (e *Engine) validate(chapters []models.Chapter, spans []models.TextSpan) []models.Chapter {
	if len(chapters) == 0 {
		return []models.Chapter{}
	}
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Page < chapters[j].Page })

	kept := make([]models.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		ch.WordCount = wordCountInWindow(spans, ch.Page, ch.Page+wordCountLookahead)
		if ch.WordCount < e.minWords {
			continue
		}
		kept = append(kept, ch)
	}
	for i := range kept {
		kept[i].Number = i + 1
	}
	applyDistributionPenalty(kept)
	return kept
}

func wordCountInWindow(spans []models.TextSpan, fromPage, beforePage int) int {
	total := 0
	for _, s := range spans {
		if s.Page >= fromPage && s.Page < beforePage {
			total += s.WordCount()
		}
	}
	return total
}

// applyDistributionPenalty demotes chapters whose length deviates wildly
// from the document average: a likely mis-detected boundary.
func applyDistributionPenalty(chapters []models.Chapter) {
	total, n := 0, 0
	for _, ch := range chapters {
		if ch.WordCount > 0 {
			total += ch.WordCount
			n++
		}
	}
	if n == 0 {
		return
	}
	avg := float64(total) / float64(n)
	for i := range chapters {
		if chapters[i].WordCount == 0 {
			continue
		}
		ratio := float64(chapters[i].WordCount) / avg
		if ratio < 0.3 || ratio > 3.0 {
			chapters[i].Confidence *= 0.8
		}
	}
}

// IsLengthOutlier reports whether a chapter deviates from the average word
// count by the same bounds the distribution penalty uses. Exposed for the
// quality assessment.
func IsLengthOutlier(wordCount int, avg float64) bool {
	if wordCount <= 0 || avg <= 0 {
		return false
	}
	ratio := float64(wordCount) / avg
	return ratio < 0.3 || ratio > 3.0
}
