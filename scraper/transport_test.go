package scraper

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"pricelens/config"
)

// stubResponse is one canned HTTP answer for the stub transport.
type stubResponse struct {
	status int
	body   string
}

// stubTransport answers requests from a fixed URL table. URLs not in the
// table behave like unreachable hosts.
type stubTransport struct {
	responses map[string]stubResponse
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, ok := t.responses[req.URL.String()]
	if !ok {
		return nil, errors.New("host unreachable: " + req.URL.String())
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newStubFetcher(responses map[string]stubResponse) (*Fetcher, *config.ScraperConfig) {
	cfg := testConfig()
	client := &http.Client{Transport: &stubTransport{responses: responses}}
	return NewFetcher(client, cfg), cfg
}

// testConfig disables politeness delays so tests run fast.
func testConfig() *config.ScraperConfig {
	return &config.ScraperConfig{
		ProbeTimeout:       time.Second,
		FetchTimeout:       time.Second,
		SearchTimeout:      time.Minute,
		MaxSitesPerRegion:  5,
		MaxProductsPerSite: 10,
		MinCardThreshold:   3,
		MaxCategoryPages:   2,
		SearchEngineURL:    "https://search.test/search",
	}
}
