package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RenderFetcher loads pages through a headless browser so sites that
// build their product grids with JavaScript can still be scraped. It is
// off by default; the plain HTTP fetcher handles most storefronts.
type RenderFetcher struct {
	browser *rod.Browser
}

// NewRenderFetcher launches a headless browser. Uses system Chromium
// when present (the Docker image ships one), auto-detects otherwise.
func NewRenderFetcher() (*RenderFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("RenderFetcher: using system Chromium")
	} else {
		log.Printf("RenderFetcher: using auto-detected Chromium")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RenderFetcher{browser: browser}, nil
}

// Fetch renders a page and returns its settled DOM as a goquery document.
func (rf *RenderFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	page, err := rf.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, pageURL, err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(30 * time.Second)

	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, pageURL, err)
	}
	// Give late JS one beat to populate product grids.
	page.WaitRequestIdle(2*time.Second, nil, nil, nil)()

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, pageURL, err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Close shuts down the browser.
func (rf *RenderFetcher) Close() error {
	if rf.browser == nil {
		return nil
	}
	return rf.browser.Close()
}
