package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/helpers"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
	perrors "github.com/guilhermeLira011/monitor-preco-samsung-a05s/pkg/errors"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/cache"
)

// BaseScraper provides common functionality for all store scrapers
type BaseScraper struct {
	Store     Store
	Origin    string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Fetcher   Fetcher
	log       *logger.Logger
}

// fetchWithCache fetches a URL unless the store is blocked after a rate limit
func (c *BaseScraper) fetchWithCache(ctx context.Context, target string) (io.Reader, error) {
	// Check if the store is rate limited
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, perrors.NewRateLimit(c.Store.String(), c.BlockTime)
		}
	}

	body, err := c.Fetcher.Fetch(ctx, target)
	if err != nil {
		var rateErr *helpers.RateLimitedError
		if errors.As(err, &rateErr) {
			if blockErr := c.block(); blockErr != nil && c.log != nil {
				c.log.Warn().Err(blockErr).Msg("Failed to store rate-limit block")
			}
			return nil, fmt.Errorf("%w: %v", perrors.NewRateLimit(c.Store.String(), c.BlockTime), err)
		}
		return nil, perrors.NewNetwork(c.Store.String(), "fetch "+target, err)
	}

	return body, nil
}

// block records the rate-limit block so later fetches are refused locally
func (c *BaseScraper) block() error {
	if c.CacheSvc == nil || c.CacheKey == "" || c.BlockTime <= 0 {
		return nil
	}
	value := []byte(fmt.Sprintf("%d", c.BlockTime/time.Second))
	if err := c.CacheSvc.Set(c.CacheKey, value, c.BlockTime); err != nil {
		return perrors.NewCache(c.Store.String(), "store rate-limit block", err)
	}
	return nil
}

// createDocument creates a goquery document from a reader
func (c *BaseScraper) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, perrors.NewParsing(c.Store.String(), "HTML parse error", err)
	}
	return doc, nil
}

// GetName returns the scraper's name for logging
func (c *BaseScraper) GetName() string {
	return strings.ReplaceAll(c.Store.String(), " ", "") + "Scraper"
}

// GetStore returns the monitored store
func (c *BaseScraper) GetStore() Store {
	return c.Store
}

// ResolveURL makes href absolute against the store origin. Absolute hrefs
// pass through, protocol-relative ones get https, and a path without a
// leading slash gets one.
func ResolveURL(origin, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	origin = strings.TrimRight(origin, "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return origin + href
}

// NormalizeLink returns the key used to deduplicate listings: fragment and
// trailing slash dropped, scheme and host lower-cased.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return strings.TrimRight(u.String(), "/")
}
