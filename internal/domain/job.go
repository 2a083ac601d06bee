package domain

import "time"

// Experience levels inferred from job titles.
const (
	LevelEntry     = "entry"
	LevelMid       = "mid"
	LevelSenior    = "senior"
	LevelExecutive = "executive"
)

// Job is the canonical, display-ready posting. Title and Company are never
// empty; records that can't produce both are dropped during normalization.
type Job struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Salary          string    `json:"salary"`
	SalaryMin       float64   `json:"salaryMin,omitempty"`
	SalaryMax       float64   `json:"salaryMax,omitempty"`
	SalaryCurrency  string    `json:"salaryCurrency,omitempty"`
	PostedDate      string    `json:"postedDate"` // "3 days ago"
	PostedAt        time.Time `json:"postedAt"`   // absolute, used for sorting
	Description     string    `json:"description"`
	Requirements    []string  `json:"requirements"`
	JobType         string    `json:"jobType"`
	ExperienceLevel string    `json:"experienceLevel"`
	Remote          bool      `json:"remote"`
	ApplyURL        string    `json:"applyUrl,omitempty"`
	MatchScore      int       `json:"matchScore"`
}
