package crawler

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
)

// genericContainerPattern is the broad class pattern of the last-resort fallback
var genericContainerPattern = regexp.MustCompile(`product|card|item`)

// GenericFallbacks are tried when no store-specific rule finds a container:
// any component-looking node carrying a data-testid, then any node with a
// product/card/item class.
func GenericFallbacks() []Rule {
	return []Rule{
		AttrPresent("data-testid", "div", "article", "li"),
		ClassMatches(genericContainerPattern, "div", "article", "li"),
	}
}

// Locator finds the product cards of a search page
type Locator struct {
	Rules     []Rule
	Fallbacks []Rule
	log       *logger.Logger
}

// NewLocator creates a locator with store rules tried before the fallbacks
func NewLocator(rules []Rule, fallbacks []Rule) *Locator {
	return &Locator{Rules: rules, Fallbacks: fallbacks}
}

// Locate returns the candidates selected by the first rule that matches
// anything. An empty result is not an error, the caller moves on to the next
// search term.
func (l *Locator) Locate(doc *goquery.Document) []*goquery.Selection {
	return l.LocateIn(doc.Selection)
}

// LocateIn is Locate over an arbitrary root selection
func (l *Locator) LocateIn(root *goquery.Selection) []*goquery.Selection {
	for _, group := range [][]Rule{l.Rules, l.Fallbacks} {
		for _, rule := range group {
			found := rule.Select(root)
			if found.Length() == 0 {
				continue
			}
			if l.log != nil {
				l.log.Debug().
					Str("rule", rule.Name()).
					Int("candidates", found.Length()).
					Msg("Located product containers")
			}
			return splitSelection(found)
		}
	}
	return nil
}

func splitSelection(s *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, s.Length())
	s.Each(func(_ int, node *goquery.Selection) {
		out = append(out, node)
	})
	return out
}
