package crawler

import (
	"context"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Store identifies a known e-commerce store
type Store int

const (
	MercadoLivre Store = iota
	MagazineLuiza
	Kabum
)

// String returns the store's display name
func (s Store) String() string {
	switch s {
	case MercadoLivre:
		return "Mercado Livre"
	case MagazineLuiza:
		return "Magazine Luiza"
	case Kabum:
		return "Kabum"
	default:
		return "Unknown"
	}
}

// Fields holds what the extractor pulled out of one candidate.
// An empty string means the field was not found.
type Fields struct {
	Title string
	Price string
	Link  string
}

// HasTitle reports whether a title was found
func (f Fields) HasTitle() bool { return f.Title != "" }

// HasPrice reports whether a price was found
func (f Fields) HasPrice() bool { return f.Price != "" }

// HasLink reports whether a link was found
func (f Fields) HasLink() bool { return f.Link != "" }

// MatchTier is the outcome of the variant matcher
type MatchTier int

const (
	NoMatch MatchTier = iota
	StrictMatch
	RelaxedMatch
)

func (t MatchTier) String() string {
	switch t {
	case StrictMatch:
		return "strict"
	case RelaxedMatch:
		return "relaxed"
	default:
		return "none"
	}
}

// Listing is a matched product found on a search page.
// Price and Link may be empty when the extractor could not find them.
type Listing struct {
	Title      string
	Price      string
	Link       string
	Store      Store
	Tagged     bool // whether output artifacts carry the store column
	Tier       MatchTier
	CapturedAt time.Time
}

// State is the terminal state of a pipeline run
type State int

const (
	Empty State = iota
	Found
)

func (s State) String() string {
	if s == Found {
		return "found"
	}
	return "empty"
}

// Result is the outcome of one store run
type Result struct {
	Store    Store
	Tagged   bool
	Term     string // term that produced the listings, empty when none did
	Listings []Listing
	State    State
}

// Fetcher retrieves the raw HTML of a search page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.Reader, error)
}

// Scraper runs the extraction pipeline for one store
type Scraper interface {
	// Run tries each search term in order until one yields listings
	Run(ctx context.Context) Result

	// GetName returns the scraper's name for logging and identification
	GetName() string

	// GetStore returns the store the scraper monitors
	GetStore() Store
}

// Rule is a structural query that selects nodes below a root selection
type Rule interface {
	Name() string
	Select(root *goquery.Selection) *goquery.Selection
}

// Strategy attempts to extract one field from a candidate container
type Strategy interface {
	Name() string
	Attempt(candidate *goquery.Selection) (string, bool)
}

// QueryEncoder turns a search term into the form a store's search URL expects
type QueryEncoder func(term string) string

// StoreConfig contains configuration for a store scraper
type StoreConfig struct {
	Store      Store
	Origin     string
	SearchURLs []string // templates, "{q}" is replaced by the encoded term
	Encode     QueryEncoder
	Terms      []string
	Tagged     bool
	CacheKey   string
	BlockTime  time.Duration
	Locator    *Locator
	Extractor  *Extractor
	Matcher    *Matcher
}
