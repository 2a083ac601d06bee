package httpapi

import (
	"context"
	"sync/atomic"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/search"
)

// Searcher is the orchestrator surface the handlers need.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest, onProgress search.ProgressFunc) (domain.SearchResult, error)
	Cancel(key string)
	Stats() search.Stats
}

type Deps struct {
	Searcher Searcher

	Hub *events.Hub

	// Atomic store of config.Config, swapped on PUT /config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Cache invalidation for PUT /config (request parameters changed)
	ClearCache func()
}
