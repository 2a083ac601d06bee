package match

import (
	"strings"

	"jobsearch-engine/internal/domain"
)

// State name <-> abbreviation pairs expanded into search terms. Best-effort,
// US-centric, like the upstream data.
var statePairs = [][2]string{
	{"alabama", "al"}, {"arizona", "az"}, {"california", "ca"},
	{"colorado", "co"}, {"florida", "fl"}, {"georgia", "ga"},
	{"illinois", "il"}, {"indiana", "in"}, {"massachusetts", "ma"},
	{"michigan", "mi"}, {"minnesota", "mn"}, {"missouri", "mo"},
	{"new jersey", "nj"}, {"new york", "ny"}, {"north carolina", "nc"},
	{"ohio", "oh"}, {"oregon", "or"}, {"pennsylvania", "pa"},
	{"tennessee", "tn"}, {"texas", "tx"}, {"utah", "ut"},
	{"virginia", "va"}, {"washington", "wa"}, {"wisconsin", "wi"},
}

var stopWords = []string{"greater", "metro", "area", "county", "city of", "region"}

// Filter narrows jobs to ones whose location plausibly matches the request.
// Empty request means no filtering. This is a best-effort containment check,
// not a geocoder.
func Filter(jobs []domain.Job, requested string) []domain.Job {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		return jobs
	}

	terms := searchTerms(requested)

	out := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		loc := strings.ToLower(j.Location)
		for _, t := range terms {
			if strings.Contains(loc, t) {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

func searchTerms(requested string) []string {
	seen := map[string]bool{}
	var terms []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		terms = append(terms, t)
	}

	add(requested)
	parts := strings.Split(requested, ",")
	for _, p := range parts {
		add(p)
	}

	// expand state names and abbreviations both ways
	for _, base := range append([]string{requested}, parts...) {
		base = strings.TrimSpace(base)
		for _, pair := range statePairs {
			name, abbr := pair[0], pair[1]
			if base == name || strings.Contains(base, name) {
				add(abbr)
				add(name)
			}
			if base == abbr {
				add(name)
			}
		}
	}

	// stop-word-stripped variants; too-short remnants would false-positive
	// on abbreviations, so they need >= 3 chars
	for _, t := range append([]string(nil), terms...) {
		stripped := t
		for _, sw := range stopWords {
			stripped = strings.ReplaceAll(stripped, sw, " ")
		}
		stripped = strings.Join(strings.Fields(stripped), " ")
		if stripped != t && len(stripped) >= 3 {
			add(stripped)
		}
	}

	return terms
}
