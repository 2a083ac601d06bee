package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"jobsearch-engine/internal/budget"
	"jobsearch-engine/internal/cache"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/match"
	"jobsearch-engine/internal/normalize"
	"jobsearch-engine/internal/upstream"
)

var (
	// ErrInvalidRequest means the query was empty after trimming. Rejected
	// before any network or budget cost.
	ErrInvalidRequest = errors.New("invalid request: empty query")

	// ErrUpstreamTimeout is a first-page deadline failure, surfaced to the
	// caller as a user-visible timeout.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	errBudgetExhausted = errors.New("budget exhausted")
)

// Fetcher is the paged upstream dependency.
type Fetcher interface {
	FetchPage(ctx context.Context, q upstream.Query) ([]upstream.Record, error)
}

// ProgressFunc receives growing result sets from the background loop. Calls
// for one search come from a single goroutine, in accumulation order.
type ProgressFunc func(domain.SearchProgress)

// Options carries the two timeout classes and pacing knobs.
type Options struct {
	FirstPageTimeout time.Duration // user-facing latency budget
	PageTimeout      time.Duration // background pages
	PageDelay        time.Duration // fixed inter-page delay
	RetryDelay       time.Duration // wait before the single same-page retry
	DefaultMaxPages  int
	PageSize         int // fixed by the upstream
}

func (o Options) withDefaults() Options {
	if o.FirstPageTimeout <= 0 {
		o.FirstPageTimeout = 10 * time.Second
	}
	if o.PageTimeout <= 0 {
		o.PageTimeout = 8 * time.Second
	}
	if o.PageDelay <= 0 {
		o.PageDelay = 300 * time.Millisecond
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.DefaultMaxPages <= 0 {
		o.DefaultMaxPages = 5
	}
	if o.PageSize <= 0 {
		o.PageSize = 10
	}
	return o
}

// Orchestrator turns a search request into a bounded sequence of upstream
// calls: cache first, then budget, then page 1 synchronously, then a
// cancellable background loop for the rest.
type Orchestrator struct {
	fetcher Fetcher
	budget  *budget.Budget
	cache   *cache.Cache
	opts    Options

	mu     sync.Mutex
	active map[string]*task
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func New(fetcher Fetcher, b *budget.Budget, c *cache.Cache, opts Options) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		budget:  b,
		cache:   c,
		opts:    opts.withDefaults(),
		active:  make(map[string]*task),
	}
}

// Stats is the operator/debug snapshot.
type Stats struct {
	Budget budget.Stats `json:"budget"`
	Cache  cache.Stats  `json:"cache"`
}

func (o *Orchestrator) Stats() Stats {
	return Stats{Budget: o.budget.Stats(), Cache: o.cache.Stats()}
}

// Search returns the first page synchronously. When page 1 suggests more
// data, it keeps fetching in the background and streams enlarged sets
// through onProgress until done or cancelled.
func (o *Orchestrator) Search(ctx context.Context, req domain.SearchRequest, onProgress ProgressFunc) (domain.SearchResult, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return domain.SearchResult{}, ErrInvalidRequest
	}
	if req.MaxPages < 1 {
		req.MaxPages = o.opts.DefaultMaxPages
	}
	if req.ResultsPerPage < 1 {
		req.ResultsPerPage = o.opts.PageSize
	}

	key := req.Key()

	if jobs, ok := o.cache.Get(key); ok {
		log.Printf("[search] cache hit key=%q jobs=%d", key, len(jobs))
		return domain.SearchResult{Jobs: jobs, Total: len(jobs)}, nil
	}

	allowed, remaining := o.budget.TryConsume()
	if !allowed {
		log.Printf("[search] budget exhausted key=%q", key)
		return domain.SearchResult{Jobs: []domain.Job{}, BudgetExhausted: true}, nil
	}

	fctx, cancel := context.WithTimeout(ctx, o.opts.FirstPageTimeout)
	page, err := o.fetcher.FetchPage(fctx, upstream.Query{Query: req.Query, Location: req.Location, Page: 1})
	cancel()
	if err != nil {
		if upstream.IsTimeout(err) {
			return domain.SearchResult{}, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return domain.SearchResult{}, fmt.Errorf("first page: %w", err)
	}

	jobs := match.Filter(normalize.Normalize(page), req.Location)
	log.Printf("[search] page=1 key=%q raw=%d kept=%d budget_remaining=%d", key, len(page), len(jobs), remaining)

	hasMore := len(page) >= req.ResultsPerPage && req.MaxPages > 1
	if !hasMore {
		if len(page) > 0 {
			o.cache.Put(key, jobs)
		}
		return domain.SearchResult{Jobs: jobs, Total: len(jobs)}, nil
	}

	o.spawn(key, req, page, onProgress)
	return domain.SearchResult{Jobs: jobs, Total: len(jobs), HasMore: true}, nil
}

// Cancel stops the in-flight background task for a request key, if any. The
// loop notices between pages; a cancelled task never writes the cache.
func (o *Orchestrator) Cancel(key string) {
	o.mu.Lock()
	t := o.active[key]
	o.mu.Unlock()
	if t != nil {
		t.cancel()
	}
}

// CancelAll stops every background task and waits for them to unwind. Used
// at shutdown.
func (o *Orchestrator) CancelAll() {
	o.mu.Lock()
	tasks := make([]*task, 0, len(o.active))
	for _, t := range o.active {
		tasks = append(tasks, t)
	}
	o.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
	for _, t := range tasks {
		<-t.done
	}
}

func (o *Orchestrator) spawn(key string, req domain.SearchRequest, firstPage []upstream.Record, onProgress ProgressFunc) {
	bctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}

	o.mu.Lock()
	prev := o.active[key]
	o.active[key] = t
	o.mu.Unlock()
	if prev != nil {
		// never two loops racing on one cache key
		prev.cancel()
	}

	go o.backgroundFetch(bctx, t, key, req, firstPage, onProgress)
}

func (o *Orchestrator) backgroundFetch(ctx context.Context, t *task, key string, req domain.SearchRequest, firstPage []upstream.Record, onProgress ProgressFunc) {
	defer close(t.done)
	defer func() {
		o.mu.Lock()
		if o.active[key] == t {
			delete(o.active, key)
		}
		o.mu.Unlock()
		t.cancel()
	}()

	raws := firstPage
	jobs := match.Filter(normalize.Normalize(raws), req.Location)

	emit := func(final bool) {
		if onProgress != nil {
			onProgress(domain.SearchProgress{JobsSoFar: jobs, Final: final})
		}
	}

	for page := 2; page <= req.MaxPages; page++ {
		if !sleep(ctx, o.opts.PageDelay) {
			break
		}

		records, err := o.fetchBackgroundPage(ctx, req, page)
		if err != nil {
			// absorbed: whatever accumulated so far stands
			log.Printf("[search] background stop key=%q page=%d err=%v", key, page, err)
			break
		}
		if len(records) == 0 {
			break
		}

		raws = append(raws, records...)
		jobs = match.Filter(normalize.Normalize(raws), req.Location)
		log.Printf("[search] page=%d key=%q raw=%d kept=%d", page, key, len(raws), len(jobs))

		if len(records) < req.ResultsPerPage || page == req.MaxPages {
			break
		}
		emit(false)
	}

	if ctx.Err() != nil {
		log.Printf("[search] cancelled key=%q", key)
		return
	}

	emit(true)
	if len(raws) > 0 {
		o.cache.Put(key, jobs)
	}
}

// fetchBackgroundPage charges the budget per attempt and retries a timed-out
// page once after a longer wait. A budget refusal is final.
func (o *Orchestrator) fetchBackgroundPage(ctx context.Context, req domain.SearchRequest, page int) ([]upstream.Record, error) {
	q := upstream.Query{Query: req.Query, Location: req.Location, Page: page}

	attempt := func() ([]upstream.Record, error) {
		if allowed, _ := o.budget.TryConsume(); !allowed {
			return nil, errBudgetExhausted
		}
		fctx, cancel := context.WithTimeout(ctx, o.opts.PageTimeout)
		defer cancel()
		return o.fetcher.FetchPage(fctx, q)
	}

	records, err := attempt()
	if err == nil || errors.Is(err, errBudgetExhausted) {
		return records, err
	}
	if !upstream.IsTimeout(err) || ctx.Err() != nil {
		return nil, err
	}

	log.Printf("[search] page=%d timeout, retrying once: %v", page, err)
	if !sleep(ctx, o.opts.RetryDelay) {
		return nil, ctx.Err()
	}
	return attempt()
}

// sleep waits d or until ctx is done; false means the wait was cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
