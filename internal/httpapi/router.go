package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Search
	sh := SearchHandler{Searcher: d.Searcher, Hub: d.Hub}
	mux.HandleFunc("/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Run,
	}))
	mux.HandleFunc("/search/cancel", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Cancel,
	}))
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Stats,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		ClearCache:  d.ClearCache,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sech := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/upstream", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sech.SetUpstreamKey,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
