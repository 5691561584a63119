package chapters

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func vote(alg string, weight float64, page int, title string, conf float64) Vote {
	return Vote{
		Candidate: Candidate{ID: alg + "-" + title, Title: title, Page: page, Confidence: conf},
		Algorithm: alg,
		Weight:    weight,
	}
}

func TestBuildConsensusMergesNearbyVotes(t *testing.T) {
	votes := []Vote{
		vote("toc", 1.0, 10, "Chapter 2", 0.95),
		vote("font", 0.8, 11, "Chapter 2", 0.7),
		vote("pattern", 0.9, 12, "Chapter Two", 0.8),
	}
	chapters := BuildConsensus(votes, 0.7)
	require.Len(t, chapters, 1)
	require.Equal(t, 10, chapters[0].Page)
	require.Equal(t, "Chapter 2", chapters[0].Title)
	// 3 votes and 3 distinct algorithms add 0.3 on top of the winner's 0.95,
	// capped at 1.0.
	require.InDelta(t, 1.0, chapters[0].Confidence, 1e-9)
}

func TestBuildConsensusSeparatesDistantVotes(t *testing.T) {
	votes := []Vote{
		vote("toc", 1.0, 1, "Introduction", 0.95),
		vote("toc", 1.0, 20, "Methods", 0.95),
	}
	chapters := BuildConsensus(votes, 0.7)
	require.Len(t, chapters, 2)
	require.Equal(t, 1, chapters[0].Page)
	require.Equal(t, 20, chapters[1].Page)
}

func TestBuildConsensusDropsLowConfidenceGroups(t *testing.T) {
	votes := []Vote{
		vote("break", 0.6, 5, "Maybe a chapter", 0.6),
	}
	// 0.6 + 0.1 boost = 0.7 weighted against the candidate's raw confidence;
	// still below the 0.75 floor.
	chapters := BuildConsensus(votes, 0.75)
	require.Empty(t, chapters)
}

func TestBuildConsensusOrderInsensitive(t *testing.T) {
	votes := []Vote{
		vote("toc", 1.0, 1, "Introduction", 0.95),
		vote("font", 0.8, 2, "INTRODUCTION", 0.75),
		vote("pattern", 0.9, 12, "The Middle", 0.85),
		vote("break", 0.6, 13, "Middle", 0.6),
		vote("context", 0.7, 30, "Chapter 3", 0.8),
	}
	want := BuildConsensus(votes, 0.7)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Vote(nil), votes...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, want, BuildConsensus(shuffled, 0.7))
	}
}

func TestDominantTitleMostFrequentWins(t *testing.T) {
	group := []Vote{
		vote("toc", 1.0, 3, "Setup", 0.95),
		vote("font", 0.8, 3, "Getting Started", 0.7),
		vote("pattern", 0.9, 4, "Getting Started", 0.8),
	}
	require.Equal(t, "Getting Started", dominantTitle(group, "Setup"))
}

func TestDominantTitleRepresentativeWinsTies(t *testing.T) {
	group := []Vote{
		vote("toc", 1.0, 3, "Setup", 0.95),
		vote("font", 0.8, 3, "Getting Started", 0.7),
	}
	require.Equal(t, "Setup", dominantTitle(group, "Setup"))
}
