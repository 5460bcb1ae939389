package recommend

import (
	"encoding/json"
	"strings"

	"github.com/assesskit/assessrec/internal/catalog"
)

type selectionPayload struct {
	Selected []int `json:"selected"`
}

// ParseSelection maps a provider's selection response onto the candidate
// set. The response must be a JSON object with a "selected" array of 1-based
// positions into the prompt listing, optionally wrapped in a fenced code
// block. Every failure mode degrades to the top-ranked candidates truncated
// to maxResults: empty input, malformed JSON, a missing array, or an array
// whose indices were all out of range. Out-of-range indices are dropped
// silently, duplicates (by url) keep their first occurrence, and the
// provider's ordering is preserved.
func ParseSelection(raw string, candidates []catalog.Candidate, maxResults int) []catalog.Assessment {
	if strings.TrimSpace(raw) == "" {
		return topRanked(candidates, maxResults)
	}

	var payload selectionPayload
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &payload); err != nil || payload.Selected == nil {
		return topRanked(candidates, maxResults)
	}

	seen := make(map[string]bool)
	selected := make([]catalog.Assessment, 0, len(payload.Selected))
	for _, idx := range payload.Selected {
		if idx < 1 || idx > len(candidates) {
			continue
		}
		item := candidates[idx-1].Assessment
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		selected = append(selected, item)
	}

	if len(selected) == 0 {
		return topRanked(candidates, maxResults)
	}
	if len(selected) > maxResults {
		selected = selected[:maxResults]
	}
	return selected
}

// topRanked is the truncate-only fallback: the first maxResults candidates
// in their original rank order, scores stripped.
func topRanked(candidates []catalog.Candidate, maxResults int) []catalog.Assessment {
	n := len(candidates)
	if n > maxResults {
		n = maxResults
	}
	out := make([]catalog.Assessment, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.Assessment)
	}
	return out
}

// ExtractJSON strips an optional leading fenced-code marker (with or
// without a language tag) and the matching trailing fence, leaving the bare
// JSON payload.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
