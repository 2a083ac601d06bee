package normalize

import (
	"sort"
	"strings"

	"jobsearch-engine/internal/upstream"
)

const maxRequirements = 5

// Technology keywords scanned for in descriptions, in priority order.
var requirementVocab = []string{
	"JavaScript", "TypeScript", "Python", "Java", "Golang",
	"React", "Angular", "Vue", "Node.js", "Django", "Flask", "Spring",
	"Kubernetes", "Docker", "Terraform", "AWS", "Azure", "GCP",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "GraphQL",
	"gRPC", "CI/CD", "Linux", "Git", "SQL", "Rust", "C++", "C#",
	"Swift", "Kotlin", "Ruby", "Scala", "Machine Learning",
}

var fallbackRequirements = []string{
	"See job description for requirements",
	"Relevant experience in the field",
}

// extractRequirements scans the description against the fixed vocabulary,
// case-insensitive, keeping at most maxRequirements ordered by where each
// keyword first appears in the text. Same-position ties keep vocab order.
func extractRequirements(desc string) []string {
	low := strings.ToLower(desc)

	type hit struct {
		keyword string
		pos     int
	}
	var hits []hit
	for _, kw := range requirementVocab {
		if pos := strings.Index(low, strings.ToLower(kw)); pos >= 0 {
			hits = append(hits, hit{keyword: kw, pos: pos})
		}
	}
	if len(hits) == 0 {
		return append([]string(nil), fallbackRequirements...)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	if len(hits) > maxRequirements {
		hits = hits[:maxRequirements]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.keyword)
	}
	return out
}

// Match-score heuristic: 60-point base plus fixed bonuses for signals that
// a posting is complete, capped at 95.
const (
	scoreBase         = 60
	scoreCap          = 95
	longDescThreshold = 300 // chars
)

func matchScore(r upstream.Record, desc string) int {
	score := scoreBase
	if len(desc) >= longDescThreshold {
		score += 8
	}
	if strings.TrimSpace(r.ApplyLink) != "" {
		score += 7
	}
	if strings.TrimSpace(r.Salary) != "" || r.SalaryMin > 0 || r.SalaryMax > 0 {
		score += 8
	}
	if strings.TrimSpace(r.EmployerLogo) != "" {
		score += 6
	}
	if len(r.Highlights.Benefits) > 0 {
		score += 6
	}
	if score > scoreCap {
		score = scoreCap
	}
	return score
}
