package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrStatus wraps non-2xx answers so callers can tell a hard upstream
// failure from a timeout.
var ErrStatus = errors.New("upstream status")

// Client talks to the paged job-search endpoint. Per-request deadlines are
// the caller's business (the orchestrator owns the two timeout classes);
// the client only paces requests so we never hammer the provider.
type Client struct {
	baseURL   string
	apiKey    func() (string, error)
	hc        *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func New(baseURL string, apiKey func() (string, error), reqPerSec float64, burst int) *Client {
	if reqPerSec <= 0 {
		reqPerSec = 1.0
	}
	if burst <= 0 {
		burst = 2
	}
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		hc:        &http.Client{Timeout: 20 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(reqPerSec), burst),
		userAgent: "JobSearchEngine/1.0 (+local)",
	}
}

type envelope struct {
	Status string   `json:"status"`
	Data   []Record `json:"data"`
}

// FetchPage returns one page of raw records. A response without a usable
// data array is zero results, not an error.
func (c *Client) FetchPage(ctx context.Context, q Query) ([]Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", q.Query)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	params.Set("page", strconv.Itoa(q.Page))

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != nil {
		key, kerr := c.apiKey()
		if kerr != nil {
			return nil, fmt.Errorf("upstream api key: %w", kerr)
		}
		req.Header.Set("X-Api-Key", key)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w %d", ErrStatus, res.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		log.Printf("[upstream] malformed page=%d query=%q: %v", q.Page, q.Query, err)
		return nil, nil
	}
	return env.Data, nil
}

// IsTimeout reports whether err is a deadline-class failure (retryable on
// background pages) rather than a hard upstream error.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
