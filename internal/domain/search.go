package domain

import "strings"

// SearchRequest is what a caller submits. Query must be non-empty after
// trimming; everything else is optional.
type SearchRequest struct {
	Query           string `json:"query"`
	Location        string `json:"location,omitempty"`
	JobType         string `json:"jobType,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	MaxPages        int    `json:"maxPages,omitempty"`
	ResultsPerPage  int    `json:"resultsPerPage,omitempty"`
}

// Key derives the identity used for caching, budget accounting and
// background-task ownership. Page counts deliberately don't participate.
func (r SearchRequest) Key() string {
	parts := []string{r.Query, r.Location, r.JobType, r.ExperienceLevel}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// SearchResult is the synchronous answer to a search.
type SearchResult struct {
	Jobs            []Job `json:"jobs"`
	Total           int   `json:"total"`
	HasMore         bool  `json:"hasMore"`
	BudgetExhausted bool  `json:"budgetExhausted"`
}

// SearchProgress is streamed while background pages accumulate. The set in
// JobsSoFar only ever grows; Final marks the last emission for a search.
type SearchProgress struct {
	JobsSoFar []Job `json:"jobsSoFar"`
	Final     bool  `json:"final"`
}
