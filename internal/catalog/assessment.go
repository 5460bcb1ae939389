package catalog

import (
	"errors"
	"strings"
)

// Known test type codes from the product catalog.
const (
	TypeKnowledge   = "K"
	TypePersonality = "P"
	TypeSimulation  = "S"
)

const maxDescriptionLen = 500

// Assessment is a single catalog entry. The URL acts as the unique
// identifier within a response.
type Assessment struct {
	Name            string   `json:"name"`
	URL             string   `json:"url"`
	TestTypes       []string `json:"test_types"`
	Duration        string   `json:"duration"`
	RemoteSupport   string   `json:"remote_support"`
	AdaptiveSupport string   `json:"adaptive_support"`
	Description     string   `json:"description"`
}

// Candidate pairs an assessment with its retrieval similarity score. The
// score stays inside the recommendation pipeline and has no place in
// boundary responses.
type Candidate struct {
	Assessment
	Score float64
}

// Normalize fills defaulted optional fields and bounds the description so
// records coming from collaborators are safe to use downstream.
func (a *Assessment) Normalize() {
	if a.TestTypes == nil {
		a.TestTypes = []string{}
	}
	a.Name = strings.TrimSpace(a.Name)
	a.URL = strings.TrimSpace(a.URL)
	if runes := []rune(a.Description); len(runes) > maxDescriptionLen {
		a.Description = string(runes[:maxDescriptionLen])
	}
}

// Validate reports whether the record carries the required identity fields.
func (a *Assessment) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("assessment name is required")
	}
	if strings.TrimSpace(a.URL) == "" {
		return errors.New("assessment url is required")
	}
	return nil
}

// DocumentText builds the searchable text indexed for this assessment. Test
// type codes are expanded to keyword phrases so queries about soft skills or
// simulations land on the right entries.
func (a *Assessment) DocumentText() string {
	parts := []string{a.Name}

	if a.Description != "" {
		parts = append(parts, a.Description)
	}

	for _, code := range a.TestTypes {
		switch code {
		case TypeKnowledge:
			parts = append(parts, "Knowledge Skills Technical Aptitude Test")
		case TypePersonality:
			parts = append(parts, "Personality Behavioral Assessment OPQ")
		case TypeSimulation:
			parts = append(parts, "Simulation Practical Hands-on Test")
		}
	}

	return strings.Join(parts, " | ")
}
