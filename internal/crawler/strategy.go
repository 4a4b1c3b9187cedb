package crawler

import (
	"bufio"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/helpers"
)

// textOf returns the whitespace-collapsed text of a selection
func textOf(s *goquery.Selection) string {
	return helpers.CollapseSpace(s.Text())
}

// firstText accepts the first node of a rule when its text is longer than minLen
type firstText struct {
	rule   Rule
	minLen int
}

// FirstText takes the text of the first node matched by rule. The text is
// rejected, and the next strategy tried, unless it is longer than minLen.
func FirstText(rule Rule, minLen int) Strategy {
	return firstText{rule: rule, minLen: minLen}
}

func (s firstText) Name() string { return "text:" + s.rule.Name() }

func (s firstText) Attempt(c *goquery.Selection) (string, bool) {
	node := s.rule.Select(c).First()
	if node.Length() == 0 {
		return "", false
	}
	text := textOf(node)
	if text == "" || utf8.RuneCountInString(text) <= s.minLen {
		return "", false
	}
	return text, true
}

// keywordScan walks every text-bearing descendant looking for a product name
type keywordScan struct {
	tags     string
	minLen   int
	keywords []string
}

// KeywordScan accepts the first descendant among tags whose text is longer
// than minLen and contains one of the keywords (case and accent insensitive).
func KeywordScan(tags []string, minLen int, keywords ...string) Strategy {
	folded := make([]string, len(keywords))
	for i, k := range keywords {
		folded[i] = helpers.FoldText(k)
	}
	return keywordScan{tags: strings.Join(tags, ","), minLen: minLen, keywords: folded}
}

func (s keywordScan) Name() string { return "keyword-scan" }

func (s keywordScan) Attempt(c *goquery.Selection) (string, bool) {
	var title string
	c.Find(s.tags).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		text := textOf(node)
		if utf8.RuneCountInString(text) <= s.minLen {
			return true
		}
		folded := helpers.FoldText(text)
		for _, k := range s.keywords {
			if strings.Contains(folded, k) {
				title = text
				return false
			}
		}
		return true
	})
	return title, title != ""
}

// lineScan takes the first line of the container text longer than minLen
type lineScan struct {
	minLen int
}

// LineScan is the last-resort title strategy: the container's first text
// line longer than minLen.
func LineScan(minLen int) Strategy {
	return lineScan{minLen: minLen}
}

func (s lineScan) Name() string { return "line-scan" }

func (s lineScan) Attempt(c *goquery.Selection) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(c.Text()))
	for scanner.Scan() {
		line := helpers.CollapseSpace(scanner.Text())
		if utf8.RuneCountInString(line) > s.minLen {
			return line, true
		}
	}
	return "", false
}

// priceIn looks for a currency amount inside the nodes of a rule
type priceIn struct {
	rule    Rule
	scanAll bool
}

// PriceIn returns the first currency amount found in the text of the first
// node matched by rule, or in any matched node when scanAll is set.
func PriceIn(rule Rule, scanAll bool) Strategy {
	return priceIn{rule: rule, scanAll: scanAll}
}

func (s priceIn) Name() string { return "price:" + s.rule.Name() }

func (s priceIn) Attempt(c *goquery.Selection) (string, bool) {
	nodes := s.rule.Select(c)
	if !s.scanAll {
		nodes = nodes.First()
	}
	var price string
	nodes.EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if p, ok := FindPrice(node.Text()); ok {
			price = p
			return false
		}
		return true
	})
	return price, price != ""
}

// priceScan searches the whole container text
type priceScan struct{}

// PriceScan returns the first currency amount anywhere in the container
func PriceScan() Strategy {
	return priceScan{}
}

func (priceScan) Name() string { return "price-scan" }

func (priceScan) Attempt(c *goquery.Selection) (string, bool) {
	return FindPrice(c.Text())
}

// fractionPrice reads a bare amount and prefixes the currency symbol
type fractionPrice struct {
	rule Rule
}

// FractionPrice reads the first node of rule as a bare amount ("1.299") and
// reports it as "R$ 1.299".
func FractionPrice(rule Rule) Strategy {
	return fractionPrice{rule: rule}
}

func (s fractionPrice) Name() string { return "fraction:" + s.rule.Name() }

func (s fractionPrice) Attempt(c *goquery.Selection) (string, bool) {
	node := s.rule.Select(c).First()
	if node.Length() == 0 {
		return "", false
	}
	return PriceFromFraction(node.Text())
}

// anchorHrefs returns the non-empty hrefs of anchors in c, in document order
func anchorHrefs(anchors *goquery.Selection) []string {
	var hrefs []string
	anchors.Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			if href = strings.TrimSpace(href); href != "" {
				hrefs = append(hrefs, href)
			}
		}
	})
	return hrefs
}

// markedLink prefers anchors pointing at a product page
type markedLink struct {
	markers []string
}

// MarkedLink returns the first href containing one of the product-path markers
func MarkedLink(markers ...string) Strategy {
	return markedLink{markers: markers}
}

func (s markedLink) Name() string { return "marked-link" }

func (s markedLink) Attempt(c *goquery.Selection) (string, bool) {
	for _, href := range anchorHrefs(c.Find("a[href]")) {
		lower := strings.ToLower(href)
		for _, m := range s.markers {
			if strings.Contains(lower, m) {
				return href, true
			}
		}
	}
	return "", false
}

// classLink takes the anchor whose class matches a pattern
type classLink struct {
	pattern *regexp.Regexp
}

// ClassLink returns the href of the first anchor whose class matches pattern
func ClassLink(pattern *regexp.Regexp) Strategy {
	return classLink{pattern: pattern}
}

func (s classLink) Name() string { return "class-link" }

func (s classLink) Attempt(c *goquery.Selection) (string, bool) {
	hrefs := anchorHrefs(ClassMatches(s.pattern, "a").Select(c))
	if len(hrefs) == 0 {
		return "", false
	}
	return hrefs[0], true
}

// firstLink takes whatever anchor comes first
type firstLink struct{}

// FirstLink returns the first non-empty href of the container
func FirstLink() Strategy {
	return firstLink{}
}

func (firstLink) Name() string { return "first-link" }

func (firstLink) Attempt(c *goquery.Selection) (string, bool) {
	hrefs := anchorHrefs(c.Find("a[href]"))
	if len(hrefs) == 0 {
		return "", false
	}
	return hrefs[0], true
}

// precedingDepth bounds how many ancestors of a bare price block are searched
// for the product heading or link placed before it
const precedingDepth = 3

// isBarePriceBlock reports whether c holds no link of its own, as when the
// container was located from its price alone
func isBarePriceBlock(c *goquery.Selection) bool {
	return c.Find("a[href]").Length() == 0
}

// preceding returns the nearest node matching selector that comes before c,
// looking at the previous siblings of c and of its first ancestors.
func preceding(c *goquery.Selection, selector string) *goquery.Selection {
	chain := []*goquery.Selection{c}
	c.Parents().EachWithBreak(func(i int, p *goquery.Selection) bool {
		chain = append(chain, p)
		return i+1 < precedingDepth
	})

	for _, cur := range chain {
		for sib := cur.Prev(); sib.Length() > 0; sib = sib.Prev() {
			if sib.Is(selector) {
				return sib
			}
			if found := sib.Find(selector).Last(); found.Length() > 0 {
				return found
			}
		}
	}
	return nil
}

// precedingText reads the heading placed before a bare price block
type precedingText struct {
	tags   []string
	minLen int
}

// PrecedingText takes the text of the nearest node among tags placed before
// the container, trying tags in order. It only applies to bare price blocks.
func PrecedingText(minLen int, tags ...string) Strategy {
	return precedingText{tags: tags, minLen: minLen}
}

func (s precedingText) Name() string { return "preceding-text" }

func (s precedingText) Attempt(c *goquery.Selection) (string, bool) {
	if !isBarePriceBlock(c) {
		return "", false
	}
	for _, tag := range s.tags {
		node := preceding(c, tag)
		if node == nil {
			continue
		}
		if text := textOf(node); utf8.RuneCountInString(text) > s.minLen {
			return text, true
		}
	}
	return "", false
}

// ancestorLink takes the anchor wrapping the container
type ancestorLink struct{}

// AncestorLink returns the href of the closest anchor enclosing the container
func AncestorLink() Strategy {
	return ancestorLink{}
}

func (ancestorLink) Name() string { return "ancestor-link" }

func (ancestorLink) Attempt(c *goquery.Selection) (string, bool) {
	hrefs := anchorHrefs(c.Closest("a[href]"))
	if len(hrefs) == 0 {
		return "", false
	}
	return hrefs[0], true
}

// precedingLink takes the anchor placed before a bare price block
type precedingLink struct{}

// PrecedingLink returns the href of the nearest anchor placed before the
// container. It only applies to bare price blocks.
func PrecedingLink() Strategy {
	return precedingLink{}
}

func (precedingLink) Name() string { return "preceding-link" }

func (precedingLink) Attempt(c *goquery.Selection) (string, bool) {
	if !isBarePriceBlock(c) {
		return "", false
	}
	node := preceding(c, "a[href]")
	if node == nil {
		return "", false
	}
	hrefs := anchorHrefs(node)
	if len(hrefs) == 0 {
		return "", false
	}
	return hrefs[0], true
}
