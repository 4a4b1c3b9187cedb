package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/cache"
)

// StoreScraper runs Locator → Extractor → Matcher → dedup over a store's
// search pages, one search term at a time.
type StoreScraper struct {
	BaseScraper
	config  StoreConfig
	limiter *rate.Limiter
	now     func() time.Time
}

// NewStoreScraper creates a scraper for one store. interval is the minimum
// delay between two page fetches; zero disables it.
func NewStoreScraper(config StoreConfig, fetcher Fetcher, cacheSvc cache.CacheService, interval time.Duration) *StoreScraper {
	log := logger.ForStore(config.Store.String())

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	s := &StoreScraper{
		BaseScraper: BaseScraper{
			Store:     config.Store,
			Origin:    config.Origin,
			CacheKey:  config.CacheKey,
			CacheSvc:  cacheSvc,
			BlockTime: config.BlockTime,
			Fetcher:   fetcher,
			log:       log,
		},
		config:  config,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
	if s.config.Locator != nil {
		s.config.Locator.log = log
	}
	if s.config.Extractor != nil {
		s.config.Extractor.log = log
	}
	return s
}

// Config returns the store configuration
func (s *StoreScraper) Config() StoreConfig {
	return s.config
}

// Run tries the configured search terms
func (s *StoreScraper) Run(ctx context.Context) Result {
	return s.RunTerms(ctx, s.config.Terms)
}

// RunTerms tries each term in order and stops at the first one that yields at
// least one listing; later terms are not tried. Fetch and parse failures skip
// to the next term. A cancelled context ends the run with what was found.
func (s *StoreScraper) RunTerms(ctx context.Context, terms []string) Result {
	result := Result{Store: s.Store, Tagged: s.config.Tagged, State: Empty}
	acc := NewAccumulator()

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			s.log.Warn().Err(err).Msg("Run cancelled")
			break
		}

		s.log.Info().Str("term", term).Msg("Trying search term")
		candidates := s.fetchTerm(ctx, term)
		acc.Add(s.processCandidates(candidates)...)
		result.Listings = acc.Listings()

		if len(result.Listings) > 0 {
			result.Term = term
			result.State = Found
			break
		}
		s.log.Info().Str("term", term).Msg("No matching product for term")
	}

	s.log.Info().
		Str("state", result.State.String()).
		Int("listings", len(result.Listings)).
		Msg("Store run finished")
	return result
}

// Process runs the pipeline over one parsed search page
func (s *StoreScraper) Process(doc *goquery.Document) []Listing {
	return s.processCandidates(s.config.Locator.Locate(doc))
}

func (s *StoreScraper) processCandidates(candidates []*goquery.Selection) []Listing {
	var listings []Listing
	for _, candidate := range candidates {
		fields := s.config.Extractor.Extract(candidate)
		tier := s.config.Matcher.Match(fields.Title)
		if tier == NoMatch {
			continue
		}
		if tier == RelaxedMatch {
			s.log.Debug().Str("title", fields.Title).Msg("Accepted by relaxed match")
		}
		listings = append(listings, Listing{
			Title:      fields.Title,
			Price:      fields.Price,
			Link:       fields.Link,
			Store:      s.Store,
			Tagged:     s.config.Tagged,
			Tier:       tier,
			CapturedAt: s.now().Truncate(time.Second),
		})
	}
	return listings
}

// ProcessHTML parses html and runs the pipeline over it
func (s *StoreScraper) ProcessHTML(html string) ([]Listing, error) {
	doc, err := s.createDocument(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return s.Process(doc), nil
}

// SearchURLs expands the store's URL templates for a term
func (s *StoreScraper) SearchURLs(term string) []string {
	encode := s.config.Encode
	if encode == nil {
		encode = QueryEscape
	}
	q := encode(term)
	urls := make([]string, 0, len(s.config.SearchURLs))
	for _, tmpl := range s.config.SearchURLs {
		urls = append(urls, strings.ReplaceAll(tmpl, "{q}", q))
	}
	return urls
}

// fetchTerm returns the containers located on the first search page for term
// that has any. Failed fetches move on to the next search URL.
func (s *StoreScraper) fetchTerm(ctx context.Context, term string) []*goquery.Selection {
	for _, target := range s.SearchURLs(term) {
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Polite delay interrupted")
			return nil
		}

		body, err := s.fetchWithCache(ctx, target)
		if err != nil {
			s.log.Error().Err(err).Str("term", term).Str("url", target).Msg("Fetch failed")
			continue
		}

		doc, err := s.createDocument(body)
		if err != nil {
			s.log.Error().Err(err).Str("term", term).Str("url", target).Msg("Parse failed")
			continue
		}

		if candidates := s.config.Locator.Locate(doc); len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

// Accumulator collects listings across search terms, keeping the first
// listing seen for each normalized link.
type Accumulator struct {
	seen     map[string]struct{}
	listings []Listing
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// Add appends the listings whose link was not seen yet and returns how many
// were added
func (a *Accumulator) Add(listings ...Listing) int {
	added := 0
	for _, l := range listings {
		key := NormalizeLink(l.Link)
		if _, dup := a.seen[key]; dup {
			continue
		}
		a.seen[key] = struct{}{}
		a.listings = append(a.listings, l)
		added++
	}
	return added
}

// Listings returns the accumulated listings in insertion order
func (a *Accumulator) Listings() []Listing {
	return a.listings
}
