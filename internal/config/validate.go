package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills gaps from defaults and checks ranges. The
// returned copy is what should be saved and stored.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	def := Default()
	var res Validation

	if out.App.Port == 0 {
		out.App.Port = def.App.Port
	}
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Search.MaxPages == 0 {
		out.Search.MaxPages = def.Search.MaxPages
	}
	if out.Search.MaxPages < 1 {
		res.addErr("search.max_pages must be >= 1")
	} else if out.Search.MaxPages > 20 {
		res.addWarn("search.max_pages is high (%d); each page costs budget.", out.Search.MaxPages)
	}

	if out.Search.ResultsPerPage == 0 {
		out.Search.ResultsPerPage = def.Search.ResultsPerPage
	}
	if out.Search.ResultsPerPage < 1 {
		res.addErr("search.results_per_page must be >= 1")
	}

	if out.Search.FirstPageTimeoutSeconds == 0 {
		out.Search.FirstPageTimeoutSeconds = def.Search.FirstPageTimeoutSeconds
	}
	if out.Search.PageTimeoutSeconds == 0 {
		out.Search.PageTimeoutSeconds = def.Search.PageTimeoutSeconds
	}
	if out.Search.FirstPageTimeoutSeconds < 1 || out.Search.PageTimeoutSeconds < 1 {
		res.addErr("search timeouts must be >= 1 second")
	}
	if out.Search.PageDelayMillis == 0 {
		out.Search.PageDelayMillis = def.Search.PageDelayMillis
	}
	if out.Search.RetryDelayMillis == 0 {
		out.Search.RetryDelayMillis = def.Search.RetryDelayMillis
	}
	if out.Search.PageDelayMillis < 0 || out.Search.RetryDelayMillis < 0 {
		res.addErr("search delays must be >= 0")
	}

	if out.Budget.MonthlyCeiling == 0 {
		out.Budget.MonthlyCeiling = def.Budget.MonthlyCeiling
	}
	if out.Budget.MonthlyCeiling < 1 {
		res.addErr("budget.monthly_ceiling must be >= 1")
	} else if out.Budget.MonthlyCeiling < out.Search.MaxPages {
		res.addWarn("budget.monthly_ceiling (%d) is below search.max_pages (%d); one search can exhaust the month.",
			out.Budget.MonthlyCeiling, out.Search.MaxPages)
	}

	if out.Cache.TTLHours == 0 {
		out.Cache.TTLHours = def.Cache.TTLHours
	}
	if out.Cache.MaxEntries == 0 {
		out.Cache.MaxEntries = def.Cache.MaxEntries
	}
	if out.Cache.TTLHours < 1 {
		res.addErr("cache.ttl_hours must be >= 1")
	}
	if out.Cache.MaxEntries < 1 {
		res.addErr("cache.max_entries must be >= 1")
	}

	out.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(out.Upstream.BaseURL), "/")
	if out.Upstream.BaseURL == "" {
		out.Upstream.BaseURL = def.Upstream.BaseURL
	}
	if !strings.HasPrefix(out.Upstream.BaseURL, "http://") && !strings.HasPrefix(out.Upstream.BaseURL, "https://") {
		res.addErr("upstream.base_url must be an http(s) URL")
	}
	if out.Upstream.RequestsPerSecond == 0 {
		out.Upstream.RequestsPerSecond = def.Upstream.RequestsPerSecond
	}
	if out.Upstream.RequestsPerSecond < 0 {
		res.addErr("upstream.requests_per_second must be > 0")
	}
	if out.Upstream.Burst == 0 {
		out.Upstream.Burst = def.Upstream.Burst
	}

	return out, res
}
