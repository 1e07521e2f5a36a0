// Package match scores audio search candidates against a target artist/title
// pair and selects the best one above a threshold.
package match

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
)

const (
	// DefaultThreshold is the minimum composite score a candidate must reach.
	DefaultThreshold = 0.70

	artistWeight = 0.6
	titleWeight  = 0.4
)

// Normalize lowercases the string, strips everything that is not a letter,
// digit or whitespace, and collapses whitespace runs. Applied identically to
// both sides before any comparison.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)

	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity returns a pairwise similarity in [0,1] between two strings,
// normalizing both sides first. Both empty scores 1, exactly one empty
// scores 0, substring containment scores by length ratio, anything else by
// normalized edit distance.
func Similarity(a, b string) float64 {
	a = Normalize(a)
	b = Normalize(b)

	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)

	switch {
	case lenA == 0 && lenB == 0:
		return 1
	case lenA == 0 || lenB == 0:
		return 0
	case a == b:
		return 1
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter, longer := lenA, lenB
		if shorter > longer {
			shorter, longer = longer, shorter
		}

		return float64(shorter) / float64(longer)
	}

	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}

	dist := levenshtein.ComputeDistance(a, b)

	return 1 - float64(dist)/float64(maxLen)
}

// Score computes the weighted composite score of a candidate against the
// target artist and title.
func Score(c domain.MatchCandidate, artist, title string) float64 {
	return artistWeight*Similarity(c.Artist, artist) + titleWeight*Similarity(c.Title, title)
}

// Best returns the highest-scoring candidate at or above threshold, or nil
// when no candidate qualifies. Ties keep the first-seen candidate (stable
// sort, no extra tie-break key). The returned candidate carries its score.
func Best(candidates []domain.MatchCandidate, artist, title string, threshold float64) *domain.MatchCandidate {
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]domain.MatchCandidate, len(candidates))
	copy(scored, candidates)

	for i := range scored {
		scored[i].Score = Score(scored[i], artist, title)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if scored[0].Score < threshold {
		return nil
	}

	best := scored[0]

	return &best
}
