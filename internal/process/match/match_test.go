package match

import (
	"math"
	"testing"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
)

const epsilon = 1e-9

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase and punctuation stripped",
			input: "Daft Punk!",
			want:  "daft punk",
		},
		{
			name:  "whitespace collapsed",
			input: "  One\t Two \n Three ",
			want:  "one two three",
		},
		{
			name:  "cyrillic preserved",
			input: "Кино - Группа крови",
			want:  "кино группа крови",
		},
		{
			name:  "digits preserved",
			input: "Blink-182",
			want:  "blink182",
		},
		{
			name:  "only punctuation",
			input: "***",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical",
			a:    "Nirvana",
			b:    "Nirvana",
			want: 1,
		},
		{
			name: "identical after normalization",
			a:    "Daft Punk",
			b:    "daft punk!",
			want: 1,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 1,
		},
		{
			name: "one empty",
			a:    "x",
			b:    "",
			want: 0,
		},
		{
			name: "empty after normalization",
			a:    "***",
			b:    "abc",
			want: 0,
		},
		{
			name: "containment scores by length ratio",
			a:    "daft",
			b:    "daft punk",
			want: 4.0 / 9.0,
		},
		{
			name: "edit distance",
			a:    "kitten",
			b:    "sitten",
			want: 1 - 1.0/6.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"daft", "daft punk"},
		{"kitten", "sitting"},
		{"Кино", "кино группа крови"},
		{"", "anything"},
	}

	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])

		if math.Abs(ab-ba) > epsilon {
			t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestScoreWeights(t *testing.T) {
	// Exact artist, completely different title: only the artist weight remains.
	c := domain.MatchCandidate{Artist: "Nirvana", Title: "zzzz"}

	got := Score(c, "Nirvana", "qqqq")
	if math.Abs(got-artistWeight) > epsilon {
		t.Errorf("Score() = %v, want artist weight %v", got, artistWeight)
	}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []domain.MatchCandidate
		artist     string
		title      string
		threshold  float64
		wantURL    string
		wantNil    bool
	}{
		{
			name:    "no candidates",
			artist:  "A",
			title:   "B",
			wantNil: true,
		},
		{
			name: "exact match wins",
			candidates: []domain.MatchCandidate{
				{Artist: "Nirvana", Title: "Milk It", URL: "u1"},
				{Artist: "Nirvana", Title: "Come As You Are", URL: "u2"},
			},
			artist:    "Nirvana",
			title:     "Come As You Are",
			threshold: DefaultThreshold,
			wantURL:   "u2",
		},
		{
			name: "all below threshold",
			candidates: []domain.MatchCandidate{
				{Artist: "Someone Else", Title: "Unrelated Song", URL: "u1"},
			},
			artist:    "Nirvana",
			title:     "Come As You Are",
			threshold: DefaultThreshold,
			wantNil:   true,
		},
		{
			name: "tie keeps first seen",
			candidates: []domain.MatchCandidate{
				{Artist: "Nirvana", Title: "Come As You Are", URL: "first"},
				{Artist: "Nirvana", Title: "Come As You Are", URL: "second"},
			},
			artist:    "Nirvana",
			title:     "Come As You Are",
			threshold: DefaultThreshold,
			wantURL:   "first",
		},
		{
			name: "score exactly at threshold qualifies",
			candidates: []domain.MatchCandidate{
				{Artist: "Nirvana", Title: "Come As You Are", URL: "u1"},
			},
			artist:    "Nirvana",
			title:     "Come As You Are",
			threshold: 1.0,
			wantURL:   "u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Best(tt.candidates, tt.artist, tt.title, tt.threshold)

			if tt.wantNil {
				if got != nil {
					t.Errorf("Best() = %+v, want nil", got)
				}

				return
			}

			if got == nil {
				t.Fatalf("Best() = nil, want URL %q", tt.wantURL)
			}

			if got.URL != tt.wantURL {
				t.Errorf("Best().URL = %q, want %q", got.URL, tt.wantURL)
			}

			if got.Score < tt.threshold {
				t.Errorf("Best().Score = %v, below threshold %v", got.Score, tt.threshold)
			}
		})
	}
}

func TestBestDoesNotMutateInput(t *testing.T) {
	candidates := []domain.MatchCandidate{
		{Artist: "B Artist", Title: "B Title", URL: "u1"},
		{Artist: "Nirvana", Title: "Come As You Are", URL: "u2"},
	}

	_ = Best(candidates, "Nirvana", "Come As You Are", DefaultThreshold)

	if candidates[0].URL != "u1" || candidates[1].URL != "u2" {
		t.Errorf("Best() reordered the input slice: %+v", candidates)
	}

	if candidates[0].Score != 0 || candidates[1].Score != 0 {
		t.Errorf("Best() wrote scores into the input slice: %+v", candidates)
	}
}
