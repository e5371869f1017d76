package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"pricelens/config"

	"github.com/PuerkitoBio/goquery"
)

// ErrFetchFailed wraps any page fetch problem: non-2xx status, network
// failure or timeout. Callers treat it as "this candidate is unusable",
// never as fatal to the overall search.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher performs page downloads with rotating request headers and a
// fixed timeout. The HTTP client is injected so tests can swap transports.
type Fetcher struct {
	client *http.Client
	cfg    *config.ScraperConfig

	mu      sync.Mutex // guards lastReq; one fetcher is shared across workers
	lastReq time.Time
}

// NewFetcher creates a fetcher around the provided client. A nil client
// gets a default one with the configured fetch timeout.
func NewFetcher(client *http.Client, cfg *config.ScraperConfig) *Fetcher {
	if cfg == nil {
		cfg = config.DefaultScraperConfig()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}
	return &Fetcher{client: client, cfg: cfg}
}

// userAgent picks a random entry from the configured pool.
func (f *Fetcher) userAgent() string {
	if len(f.cfg.UserAgents) == 0 {
		return "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	}
	return f.cfg.UserAgents[rand.Intn(len(f.cfg.UserAgents))]
}

// politenessDelay sleeps a random duration inside the configured jitter
// bounds. Keeps per-host request pacing low to avoid uniform blocking.
func (f *Fetcher) politenessDelay(ctx context.Context) {
	if f.cfg.DelayMax <= 0 {
		return
	}
	delay := f.cfg.DelayMin
	if span := f.cfg.DelayMax - f.cfg.DelayMin; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastReq.IsZero() || time.Since(f.lastReq) > delay {
		f.lastReq = time.Now()
		return
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
	f.lastReq = time.Now()
}

// Fetch downloads a URL and parses it into a document. It returns an
// error wrapping ErrFetchFailed on any status, network or parse problem.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	f.politenessDelay(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d for %s", ErrFetchFailed, resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return doc, nil
}

// Head issues a lightweight reachability check. Any response with a
// status below 400 counts as reachable; errors mean "not reachable".
func (f *Fetcher) Head(ctx context.Context, pageURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, f.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, pageURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", f.userAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}
