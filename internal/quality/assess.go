package quality

import (
	"strings"

	"docstruct/internal/chapters"
	"docstruct/internal/models"
)

// Blend weights for the overall confidence.
const (
	structureWeight = 0.3
	contentWeight   = 0.4
	imageWeight     = 0.2
	citationWeight  = 0.1
)

// Report is the metrics plus the human-facing issue/recommendation lists.
type Report struct {
	Metrics         models.QualityMetrics
	Issues          []string
	Recommendations []string
}

// Assess recomputes the weighted confidence blend for the given content.
// Call it again whenever content changes.
func Assess(content models.DocumentContent) Report {
	m := models.QualityMetrics{
		Structure: assessStructure(content.Chapters),
		Content:   assessContent(content.Paragraphs),
		Image:     assessImages(content.Images),
		Citation:  assessCitations(content.Citations),
	}
	m.Overall = structureWeight*m.Structure + contentWeight*m.Content +
		imageWeight*m.Image + citationWeight*m.Citation

	r := Report{Metrics: m}
	if m.Structure < 0.8 {
		r.Issues = append(r.Issues, "low structure confidence - chapters may need validation")
		r.Recommendations = append(r.Recommendations, "review chapter boundaries and hierarchy")
	}
	if m.Content < 0.8 {
		r.Issues = append(r.Issues, "low content confidence - text extraction may have issues")
		r.Recommendations = append(r.Recommendations, "verify text quality and paragraph classification")
	}
	if m.Image < 0.7 {
		r.Issues = append(r.Issues, "low image confidence - image descriptions may be generic")
		r.Recommendations = append(r.Recommendations, "enhance image descriptions with context")
	}
	return r
}

func assessStructure(chs []models.Chapter) float64 {
	confidence := 0.8
	if len(chs) == 0 {
		return clamp01(confidence - 0.3)
	}

	sequential := true
	for i, ch := range chs {
		if ch.Number != i+1 {
			sequential = false
			break
		}
	}
	if sequential {
		confidence += 0.1
	} else {
		confidence -= 0.1
	}

	total, n := 0, 0
	for _, ch := range chs {
		if ch.WordCount > 0 {
			total += ch.WordCount
			n++
		}
	}
	if n > 0 {
		avg := float64(total) / float64(n)
		outliers := 0
		for _, ch := range chs {
			if chapters.IsLengthOutlier(ch.WordCount, avg) {
				outliers++
			}
		}
		if float64(outliers)/float64(n) > 0.2 {
			confidence -= 0.1
		}
	}
	return clamp01(confidence)
}

func assessContent(paras []models.Paragraph) float64 {
	confidence := 0.8
	if len(paras) == 0 {
		return clamp01(confidence - 0.4)
	}

	extreme := 0
	confidenceSum := 0.0
	for _, p := range paras {
		if p.WordCount < 5 || p.WordCount > 500 {
			extreme++
		}
		confidenceSum += p.Confidence
	}
	if float64(extreme)/float64(len(paras)) > 0.3 {
		confidence -= 0.2
	}
	confidence *= confidenceSum / float64(len(paras))
	return clamp01(confidence)
}

func assessImages(imgs []models.ImageRecord) float64 {
	if len(imgs) == 0 {
		return 0.7
	}
	confidence := 0.8

	generic := 0
	for _, img := range imgs {
		desc := strings.ToLower(img.Description)
		short := len(strings.Fields(desc)) < 5
		if short && (strings.Contains(desc, "image") || strings.Contains(desc, "chart") || strings.Contains(desc, "diagram")) {
			generic++
		}
	}
	if generic > 0 {
		penalty := float64(generic) / float64(len(imgs))
		if penalty > 0.3 {
			penalty = 0.3
		}
		confidence -= penalty
	}

	withContext := 0
	for _, img := range imgs {
		if len(img.ReferenceMentions) > 0 || img.RelevanceScore > 7 {
			withContext++
		}
	}
	contextRatio := float64(withContext) / float64(len(imgs))
	confidence *= 0.7 + 0.3*contextRatio

	return clamp01(confidence)
}

func assessCitations(cits []models.Citation) float64 {
	if len(cits) == 0 {
		return 0.8
	}
	confidence := 0.8
	substantive := 0
	for _, c := range cits {
		if len(strings.TrimSpace(c.Content)) > 10 {
			substantive++
		}
	}
	confidence *= float64(substantive) / float64(len(cits))
	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
