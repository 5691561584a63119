package chapters

import (
	"sort"

	"docstruct/internal/models"
)

// Candidate is one chapter boundary proposed by a detector.
type Candidate struct {
	ID         string
	Title      string
	Page       int
	Confidence float64
}

// Detector is one independent boundary-detection strategy. Implementations
// must be pure over their inputs; a panicking detector is treated as having
// produced zero candidates.
type Detector interface {
	Name() string
	Weight() float64
	Detect(spans []models.TextSpan, toc []models.TOCEntry) []Candidate
}

// Vote pairs a candidate with the algorithm that produced it. Votes only
// exist while consensus is being built.
type Vote struct {
	Candidate Candidate
	Algorithm string
	Weight    float64
}

// WeightedConfidence is the candidate's confidence scaled by the
// algorithm's trust weight.
func (v Vote) WeightedConfidence() float64 {
	return v.Candidate.Confidence * v.Weight
}

// proximityWindow is the page distance within which two independently
// detected boundaries are assumed to be the same real chapter start.
const proximityWindow = 2

// BuildConsensus merges votes from all algorithms into one chapter list.
// It is a pure function and insensitive to vote order: votes are grouped by
// page proximity, each group elects the vote with the highest weighted
// confidence, the winner's title may be overridden by the group's most
// frequent title, and its confidence is boosted by corroboration. Groups
// whose boosted confidence stays below minConfidence are discarded.
func BuildConsensus(votes []Vote, minConfidence float64) []models.Chapter {
	if len(votes) == 0 {
		return []models.Chapter{}
	}

	sorted := append([]Vote(nil), votes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Candidate.Page != b.Candidate.Page {
			return a.Candidate.Page < b.Candidate.Page
		}
		if a.WeightedConfidence() != b.WeightedConfidence() {
			return a.WeightedConfidence() > b.WeightedConfidence()
		}
		if a.Algorithm != b.Algorithm {
			return a.Algorithm < b.Algorithm
		}
		return a.Candidate.Title < b.Candidate.Title
	})

	var chapters []models.Chapter
	for _, group := range groupByProximity(sorted) {
		rep := electRepresentative(group)

		ch := models.Chapter{
			ID:         rep.Candidate.ID,
			Title:      dominantTitle(group, rep.Candidate.Title),
			Page:       rep.Candidate.Page,
			Confidence: boostConfidence(rep.Candidate.Confidence, group),
		}
		if ch.Confidence >= minConfidence {
			chapters = append(chapters, ch)
		}
	}
	if chapters == nil {
		return []models.Chapter{}
	}
	return chapters
}

// groupByProximity chains page-sorted votes into clusters where consecutive
// pages differ by at most proximityWindow.
func groupByProximity(sorted []Vote) [][]Vote {
	var groups [][]Vote
	current := []Vote{sorted[0]}
	for _, v := range sorted[1:] {
		if v.Candidate.Page-current[len(current)-1].Candidate.Page <= proximityWindow {
			current = append(current, v)
		} else {
			groups = append(groups, current)
			current = []Vote{v}
		}
	}
	return append(groups, current)
}

func electRepresentative(group []Vote) Vote {
	best := group[0]
	for _, v := range group[1:] {
		if v.WeightedConfidence() > best.WeightedConfidence() {
			best = v
		}
	}
	return best
}

// dominantTitle returns the most frequent title in the group; the
// representative's title wins ties.
func dominantTitle(group []Vote, repTitle string) string {
	counts := map[string]int{}
	for _, v := range group {
		counts[v.Candidate.Title]++
	}
	best, bestCount := repTitle, counts[repTitle]
	titles := make([]string, 0, len(counts))
	for t := range counts {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	for _, t := range titles {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best
}

// boostConfidence rewards corroboration: more votes and more distinct
// algorithms raise trust, capped so a single cluster can gain at most 0.3.
func boostConfidence(confidence float64, group []Vote) float64 {
	algorithms := map[string]struct{}{}
	for _, v := range group {
		algorithms[v.Algorithm] = struct{}{}
	}
	boost := float64(len(group))*0.05 + float64(len(algorithms))*0.05
	if boost > 0.3 {
		boost = 0.3
	}
	c := confidence + boost
	if c > 1.0 {
		c = 1.0
	}
	return c
}
