package normalize

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/upstream"

	"github.com/PuerkitoBio/goquery"
)

// Normalize maps raw provider records into canonical Jobs. Records without
// a usable title or company are dropped, not errored. The mapping is pure:
// same records in, same jobs out.
func Normalize(records []upstream.Record) []domain.Job {
	return normalizeAt(records, time.Now().UTC())
}

func normalizeAt(records []upstream.Record, now time.Time) []domain.Job {
	out := make([]domain.Job, 0, len(records))
	for _, r := range records {
		title := CleanText(r.Title)
		company := CleanText(r.Employer)
		if title == "" || company == "" {
			continue
		}

		desc := htmlToText(r.Description)
		postedAt := parsePostedAt(r.PostedAt, now)

		j := domain.Job{
			ID:              recordID(r, title, company),
			Title:           title,
			Company:         company,
			Location:        formatLocation(r),
			Salary:          formatSalary(r),
			SalaryMin:       r.SalaryMin,
			SalaryMax:       r.SalaryMax,
			SalaryCurrency:  r.SalaryCurrency,
			PostedDate:      relativeDate(postedAt, now),
			PostedAt:        postedAt,
			Description:     desc,
			Requirements:    extractRequirements(desc),
			JobType:         formatJobType(r.EmploymentType),
			ExperienceLevel: inferExperience(title),
			Remote:          r.IsRemote || strings.Contains(strings.ToLower(title), "remote"),
			ApplyURL:        strings.TrimSpace(r.ApplyLink),
		}
		j.MatchScore = matchScore(r, desc)
		out = append(out, j)
	}
	return out
}

// CleanText collapses whitespace and strips non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Provider descriptions frequently arrive as HTML fragments.
func htmlToText(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	return CleanText(doc.Text())
}

func recordID(r upstream.Record, title, company string) string {
	if id := strings.TrimSpace(r.JobID); id != "" {
		return id
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(title + "|" + company + "|" + r.ApplyLink)))
	return fmt.Sprintf("synth-%x", h.Sum64())
}

func formatLocation(r upstream.Record) string {
	city := CleanText(r.City)
	state := CleanText(r.State)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	case state != "":
		return state
	}
	if country := CleanText(r.Country); country != "" {
		return country
	}
	return "Location not specified"
}

func formatSalary(r upstream.Record) string {
	if s := CleanText(r.Salary); s != "" {
		return s
	}
	if r.SalaryMin > 0 || r.SalaryMax > 0 {
		cur := r.SalaryCurrency
		if cur == "" {
			cur = "USD"
		}
		period := strings.ToLower(CleanText(r.SalaryPeriod))
		if period == "" {
			period = "year"
		}
		switch {
		case r.SalaryMin > 0 && r.SalaryMax > 0:
			return fmt.Sprintf("%s %.0f-%.0f per %s", cur, r.SalaryMin, r.SalaryMax, period)
		case r.SalaryMin > 0:
			return fmt.Sprintf("%s %.0f+ per %s", cur, r.SalaryMin, period)
		default:
			return fmt.Sprintf("up to %s %.0f per %s", cur, r.SalaryMax, period)
		}
	}
	return "Salary not specified"
}

func formatJobType(t string) string {
	t = CleanText(t)
	if t == "" {
		return "Not specified"
	}
	// providers shout these: FULLTIME, CONTRACTOR, ...
	low := strings.ToLower(t)
	switch low {
	case "fulltime", "full-time", "full_time":
		return "Full-time"
	case "parttime", "part-time", "part_time":
		return "Part-time"
	case "contractor", "contract":
		return "Contract"
	case "intern", "internship":
		return "Internship"
	}
	return strings.ToUpper(low[:1]) + low[1:]
}

func inferExperience(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "executive") || strings.Contains(t, "director"):
		return domain.LevelExecutive
	case strings.Contains(t, "senior") || strings.Contains(t, "lead"):
		return domain.LevelSenior
	case strings.Contains(t, "junior") || strings.Contains(t, "entry"):
		return domain.LevelEntry
	default:
		return domain.LevelMid
	}
}

func parsePostedAt(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return now
}

func relativeDate(postedAt, now time.Time) string {
	days := int(now.Sub(postedAt).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		weeks := days / 7
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}
