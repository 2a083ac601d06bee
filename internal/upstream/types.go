package upstream

// Record is one raw posting as the provider returns it. Field names follow
// the provider's JSON; nothing here is trusted until normalization.
type Record struct {
	JobID          string  `json:"job_id"`
	Title          string  `json:"job_title"`
	Employer       string  `json:"employer_name"`
	EmployerLogo   string  `json:"employer_logo"`
	City           string  `json:"job_city"`
	State          string  `json:"job_state"`
	Country        string  `json:"job_country"`
	IsRemote       bool    `json:"job_is_remote"`
	EmploymentType string  `json:"job_employment_type"`
	Description    string  `json:"job_description"`
	Salary         string  `json:"job_salary"`
	SalaryMin      float64 `json:"job_min_salary"`
	SalaryMax      float64 `json:"job_max_salary"`
	SalaryCurrency string  `json:"job_salary_currency"`
	SalaryPeriod   string  `json:"job_salary_period"`
	PostedAt       string  `json:"job_posted_at_datetime_utc"`
	ApplyLink      string  `json:"job_apply_link"`
	Highlights     struct {
		Qualifications []string `json:"Qualifications"`
		Benefits       []string `json:"Benefits"`
	} `json:"job_highlights"`
}

// Query is one page request against the provider.
type Query struct {
	Query    string
	Location string
	Page     int
}
