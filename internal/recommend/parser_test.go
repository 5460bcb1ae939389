package recommend

import (
	"testing"

	"github.com/assesskit/assessrec/internal/catalog"
)

func rankedCandidates() []catalog.Candidate {
	return []catalog.Candidate{
		{Assessment: catalog.Assessment{Name: "A", URL: "https://example.com/a"}, Score: 0.90},
		{Assessment: catalog.Assessment{Name: "B", URL: "https://example.com/b"}, Score: 0.80},
		{Assessment: catalog.Assessment{Name: "C", URL: "https://example.com/c"}, Score: 0.70},
	}
}

func names(items []catalog.Assessment) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func assertNames(t *testing.T, items []catalog.Assessment, expected ...string) {
	t.Helper()
	got := names(items)
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestParseSelectionMapsIndices(t *testing.T) {
	result := ParseSelection(`{"selected": [3, 1]}`, rankedCandidates(), 10)
	assertNames(t, result, "C", "A")
}

func TestParseSelectionDeduplicatesAndDropsOutOfRange(t *testing.T) {
	// Duplicate picks keep the first occurrence; index 99 is silently dropped.
	result := ParseSelection(`{"selected": [2, 2, 99]}`, rankedCandidates(), 10)
	assertNames(t, result, "B")
}

func TestParseSelectionEmptyRawFallsBack(t *testing.T) {
	result := ParseSelection("", rankedCandidates(), 2)
	assertNames(t, result, "A", "B")
}

func TestParseSelectionMalformedJSONFallsBack(t *testing.T) {
	result := ParseSelection("I would recommend the Java test.", rankedCandidates(), 2)
	assertNames(t, result, "A", "B")
}

func TestParseSelectionMissingArrayFallsBack(t *testing.T) {
	result := ParseSelection(`{"picks": [1]}`, rankedCandidates(), 2)
	assertNames(t, result, "A", "B")
}

func TestParseSelectionAllInvalidIndicesFallsBack(t *testing.T) {
	result := ParseSelection(`{"selected": [0, 99, -3]}`, rankedCandidates(), 2)
	assertNames(t, result, "A", "B")
}

func TestParseSelectionTruncatesOverSelection(t *testing.T) {
	result := ParseSelection(`{"selected": [1, 2, 3]}`, rankedCandidates(), 2)
	assertNames(t, result, "A", "B")
}

func TestParseSelectionAcceptsUnderSelection(t *testing.T) {
	result := ParseSelection(`{"selected": [2]}`, rankedCandidates(), 5)
	assertNames(t, result, "B")
}

func TestParseSelectionStripsFences(t *testing.T) {
	result := ParseSelection("```json\n{\"selected\":[1]}\n```", rankedCandidates(), 5)
	assertNames(t, result, "A")
}

func TestParseSelectionStripsBareFences(t *testing.T) {
	result := ParseSelection("```\n{\"selected\":[2]}\n```", rankedCandidates(), 5)
	assertNames(t, result, "B")
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object untouched",
			input:    `{"selected":[1]}`,
			expected: `{"selected":[1]}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"selected\":[1]}\n```",
			expected: `{"selected":[1]}`,
		},
		{
			name:     "anonymous fence",
			input:    "```\n{\"selected\":[1]}\n```",
			expected: `{"selected":[1]}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"selected\":[1]}\n ",
			expected: `{"selected":[1]}`,
		},
		{
			name:     "stray backticks",
			input:    "`{\"selected\":[1]}`",
			expected: `{"selected":[1]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
