// Package fetch retrieves pages from the listing site, rendering JavaScript
// through a Splash instance when one is configured.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaskovKonstantin/EstateFinder/platform/apperr"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

// Fetcher renders pages through Splash with a direct-GET fallback. All
// requests share one politeness limiter so catalog and offer fetches do not
// hammer the upstream.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	log       *logger.Logger
	splashURL string
	wait      float64
	threshold time.Duration
	userAgent string
}

func New(cfg config.FetcherConfig, log *logger.Logger) *Fetcher {
	perSec := cfg.GetFetchRatePerSec()
	if perSec <= 0 {
		perSec = 1
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.GetFetchTimeout()},
		limiter:   rate.NewLimiter(rate.Limit(perSec), 1),
		log:       log,
		splashURL: cfg.GetSplashURL(),
		wait:      cfg.GetSplashWait(),
		threshold: cfg.GetSplashFallbackThreshold(),
		userAgent: cfg.GetFetchUserAgent(),
	}
}

// Get returns the HTML of pageURL. With Splash configured it tries the
// rendered version first; if rendering errors out or exceeds the fallback
// threshold, it degrades to a plain GET.
func (f *Fetcher) Get(ctx context.Context, pageURL string) (string, error) {
	const op = "fetch.Get"

	if err := f.limiter.Wait(ctx); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "fetch cancelled", err).WithOp(op)
	}

	if f.splashURL != "" {
		started := time.Now()
		html, err := f.renderWithSplash(ctx, pageURL)
		elapsed := time.Since(started)
		if err == nil && elapsed <= f.threshold {
			f.log.CrawlPage("splash", pageURL, true, float64(elapsed.Milliseconds()))
			return html, nil
		}
		if err != nil {
			f.log.UpstreamError("splash", err)
		}
		f.log.CrawlPage("splash", pageURL, false, float64(elapsed.Milliseconds()))
	}

	started := time.Now()
	html, err := f.directGet(ctx, pageURL)
	elapsed := time.Since(started)
	f.log.CrawlPage("direct", pageURL, err == nil, float64(elapsed.Milliseconds()))
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "page fetch failed", err).WithOp(op)
	}
	return html, nil
}

func (f *Fetcher) renderWithSplash(ctx context.Context, pageURL string) (string, error) {
	// Cap the render request itself a little above the fallback threshold so
	// a stuck Splash cannot stall the whole pipeline.
	ctx, cancel := context.WithTimeout(ctx, f.threshold+time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("wait", strconv.FormatFloat(f.wait, 'f', -1, 64))
	params.Set("images", "0")
	params.Set("resource_timeout", "5")
	params.Set("timeout", strconv.FormatFloat((f.threshold + time.Second).Seconds(), 'f', 0, 64))

	renderURL := fmt.Sprintf("%s/render.html?%s", f.splashURL, params.Encode())
	return f.do(ctx, renderURL)
}

func (f *Fetcher) directGet(ctx context.Context, pageURL string) (string, error) {
	return f.do(ctx, pageURL)
}

func (f *Fetcher) do(ctx context.Context, reqURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "ru")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
