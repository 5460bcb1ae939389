package recommend

import (
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/assesskit/assessrec/internal/catalog"
)

//go:embed prompt.md
var promptTemplate string

const (
	// maxPromptCandidates bounds the numbered listing shown to the provider.
	maxPromptCandidates = 35
	maxPromptQueryLen   = 2000
	maxPromptDescLen    = 120
)

// BuildPrompt renders the selection prompt: the requested result count, the
// type-code legend, the (truncated) job requirement and a 1-based numbered
// candidate listing. The response contract at the bottom of the template is
// what ParseSelection expects; the key name and indexing base must not
// change independently.
func BuildPrompt(query string, candidates []catalog.Candidate, maxResults int) string {
	listed := candidates
	if len(listed) > maxPromptCandidates {
		listed = listed[:maxPromptCandidates]
	}

	var listing strings.Builder
	for i, c := range listed {
		if i > 0 {
			listing.WriteString("\n")
		}
		fmt.Fprintf(&listing, "%d. %s [Types: %s] - %s",
			i+1, c.Name, strings.Join(c.TestTypes, ","), truncateRunes(c.Description, maxPromptDescLen))
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{MAX_RESULTS}}", strconv.Itoa(maxResults))
	prompt = strings.ReplaceAll(prompt, "{{QUERY}}", truncateRunes(query, maxPromptQueryLen))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES}}", listing.String())
	return prompt
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
