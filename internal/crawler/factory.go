package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/config"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/cache"
)

const (
	// minTitleLength rejects short fragments such as icon labels
	minTitleLength = 5
	// minScannedTitleLength applies to titles found by scanning descendants
	minScannedTitleLength = 10
)

var (
	titleTags = []string{"h1", "h2", "h3", "h4", "h5", "h6", "a", "div", "span"}

	mlItemPattern      = regexp.MustCompile(`ui-search-layout__item|search-item|results-item`)
	mlTitlePattern     = regexp.MustCompile(`title|main-title|item-title`)
	mlFractionPattern  = regexp.MustCompile(`price__fraction|andes-money-amount__fraction`)
	productCardPattern = regexp.MustCompile(`product|card`)
)

// QueryEscape encodes a term as a query-string value
func QueryEscape(term string) string {
	return url.QueryEscape(term)
}

// PathEscape encodes a term with %20 for spaces
func PathEscape(term string) string {
	return url.PathEscape(term)
}

// PlusJoin joins the words of a term with "+" ("samsung+galaxy+a05s")
func PlusJoin(term string) string {
	return joinWords(term, "+")
}

// DashJoin joins the words of a term with "-" ("samsung-galaxy-a05s")
func DashJoin(term string) string {
	return joinWords(term, "-")
}

func joinWords(term, sep string) string {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = url.PathEscape(w)
	}
	return strings.Join(words, sep)
}

// CreateScrapers creates the scrapers of the configured stores, in order
func CreateScrapers(cfg *config.Config, cacheSvc cache.CacheService, fetcher Fetcher) []Scraper {
	var scrapers []Scraper
	for _, name := range cfg.Stores {
		storeConfig, ok := StoreConfigFor(name, cfg)
		if !ok {
			logger.Warn("Skipping unknown store %q", name)
			continue
		}
		scrapers = append(scrapers, NewStoreScraper(storeConfig, fetcher, cacheSvc, cfg.RequestInterval))
	}
	return scrapers
}

// StoreConfigFor returns the scraper configuration of a store identifier
func StoreConfigFor(name string, cfg *config.Config) (StoreConfig, bool) {
	relaxed := cfg.IsRelaxed(name)
	switch name {
	case config.StoreKabum:
		return kabumConfig(cfg, relaxed), true
	case config.StoreMagazineLuiza:
		return magazineLuizaConfig(cfg, relaxed), true
	case config.StoreMercadoLivre:
		return mercadoLivreConfig(cfg, relaxed), true
	default:
		return StoreConfig{}, false
	}
}

func textRules(minLen int, selectors ...string) []Strategy {
	out := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		out = append(out, FirstText(CSS(sel), minLen))
	}
	return out
}

func priceRules(scanAll bool, selectors ...string) []Strategy {
	out := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		out = append(out, PriceIn(CSS(sel), scanAll))
	}
	return out
}

func cssRules(selectors ...string) []Rule {
	out := make([]Rule, 0, len(selectors))
	for _, sel := range selectors {
		out = append(out, CSS(sel))
	}
	return out
}

func kabumConfig(cfg *config.Config, relaxed bool) StoreConfig {
	origin := strings.TrimRight(cfg.KabumURL, "/")
	title := append(
		textRules(minTitleLength,
			`[data-testid*="title"]`,
			`[class*="name"]`,
			`[class*="title"]`,
			".nameCard",
			".productName",
			".product-name",
			"h2",
			"h3",
			"a",
		),
		KeywordScan(titleTags, minScannedTitleLength, "galaxy", "a05s"),
	)

	return StoreConfig{
		Store:  Kabum,
		Origin: origin,
		SearchURLs: []string{
			origin + "/cgi-local/site/listagem/listagem.cgi?string={q}&btnG=",
			origin + "/busca?s={q}",
		},
		Encode:    PathEscape,
		Terms:     []string{"samsung galaxy a05s", "samsung a05s", "galaxy a05s", "celular samsung a05s"},
		Tagged:    true,
		CacheKey:  "kabum_rate_limited",
		BlockTime: cfg.RateLimitBlock,
		Locator: NewLocator(
			cssRules(
				`[data-testid="product-card"]`,
				".product-card",
				".card",
				`[class*="product"]`,
				".listagem-container .item",
				"article",
				".item",
				`[data-cy="product-card"]`,
			),
			GenericFallbacks(),
		),
		Extractor: NewExtractor(origin,
			title,
			append(priceRules(false, `[data-testid*="price"]`, ".priceCard", `[class*="price"]`, ".money"), PriceScan()),
			[]Strategy{MarkedLink("produto", "/p/", "product"), FirstLink()},
		),
		Matcher: NewMatcher(relaxed),
	}
}

func magazineLuizaConfig(cfg *config.Config, relaxed bool) StoreConfig {
	origin := strings.TrimRight(cfg.MagaluURL, "/")
	title := append(
		textRules(minTitleLength,
			"h2",
			"h3",
			"h4",
			"a",
			`[data-testid="title"]`,
			".product-title",
			".productDescription",
		),
		KeywordScan(titleTags, minScannedTitleLength, "galaxy", "a05s"),
		LineScan(minScannedTitleLength),
	)

	return StoreConfig{
		Store:      MagazineLuiza,
		Origin:     origin,
		SearchURLs: []string{origin + "/busca/{q}/"},
		Encode:     PlusJoin,
		Terms:      []string{"samsung galaxy a05s", "samsung a05s", "galaxy a05s"},
		Tagged:     true,
		CacheKey:   "magalu_rate_limited",
		BlockTime:  cfg.RateLimitBlock,
		Locator: NewLocator(
			cssRules(
				`[data-testid="product-card-container"]`,
				`[data-testid="product-card-content"]`,
				`[data-testid="product-card"]`,
				`[data-testid="product-list"] [class*="product"]`,
				`article[data-testid*="product"]`,
				`div[data-testid*="product"]`,
				`li[data-testid*="product"]`,
				`div[data-testid="mod-productlist"]`,
				`div[data-testid="product-list"]`,
			),
			append([]Rule{AttrMatches("data-testid", productCardPattern, "article", "div", "li")}, GenericFallbacks()...),
		),
		Extractor: NewExtractor(origin,
			title,
			append(priceRules(true, `[data-testid="price-value"]`, ".price__sales", ".price__listing", ".sc-kpDqfm", "span", "p"), PriceScan()),
			[]Strategy{MarkedLink("/produto/", "/p/", "produto", "/pp/", "/product/"), FirstLink()},
		),
		Matcher: NewMatcher(relaxed),
	}
}

func mercadoLivreConfig(cfg *config.Config, relaxed bool) StoreConfig {
	origin := strings.TrimRight(cfg.MercadoLivreURL, "/")
	searchOrigin := strings.TrimRight(cfg.MercadoLivreSearchURL, "/")

	return StoreConfig{
		Store:      MercadoLivre,
		Origin:     origin,
		SearchURLs: []string{searchOrigin + "/{q}"},
		Encode:     DashJoin,
		Terms:      []string{"samsung galaxy a05s", "galaxy a05s", "samsung a05s", "celular samsung galaxy a05s"},
		Tagged:     false,
		CacheKey:   "mercadolivre_rate_limited",
		BlockTime:  cfg.RateLimitBlock,
		Locator: NewLocator(
			[]Rule{
				ClassMatches(mlItemPattern, "li"),
				AttrPresent("data-unit-shopping-card", "div"),
				ParentOf(`span[class*="price__currency-symbol"], span[class*="andes-money-amount__currency-symbol"]`, 5),
			},
			GenericFallbacks(),
		),
		Extractor: NewExtractor(origin,
			[]Strategy{
				FirstText(ClassMatches(mlTitlePattern, "h2"), minTitleLength),
				FirstText(ClassMatches(mlTitlePattern, "a"), minTitleLength),
				FirstText(ClassMatches(mlTitlePattern, "span"), minTitleLength),
				KeywordScan(titleTags, minScannedTitleLength, "galaxy", "a05s"),
				PrecedingText(minTitleLength, "h2", "a"),
			},
			[]Strategy{
				FractionPrice(ClassMatches(mlFractionPattern, "span")),
				FractionPrice(ClassMatches(mlFractionPattern, "div")),
				PriceIn(CSS(`[class*="price"]`), true),
				PriceScan(),
			},
			[]Strategy{ClassLink(mlTitlePattern), FirstLink(), AncestorLink(), PrecedingLink()},
		),
		Matcher: NewMatcher(relaxed, "desbloqueado"),
	}
}
