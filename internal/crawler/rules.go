package crawler

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cssRule selects nodes with a CSS selector
type cssRule struct {
	selector string
}

// CSS returns a rule matching a CSS selector
func CSS(selector string) Rule {
	return cssRule{selector: selector}
}

func (r cssRule) Name() string { return r.selector }

func (r cssRule) Select(root *goquery.Selection) *goquery.Selection {
	return root.Find(r.selector)
}

// filterRule selects tags and keeps those accepted by a predicate
type filterRule struct {
	name   string
	tags   string
	accept func(*goquery.Selection) bool
}

func (r filterRule) Name() string { return r.name }

func (r filterRule) Select(root *goquery.Selection) *goquery.Selection {
	return root.Find(r.tags).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return r.accept(s)
	})
}

// AttrPresent matches tags carrying attr, whatever its value
func AttrPresent(attr string, tags ...string) Rule {
	return filterRule{
		name: strings.Join(tags, ",") + "[" + attr + "]",
		tags: strings.Join(tags, ","),
		accept: func(s *goquery.Selection) bool {
			_, ok := s.Attr(attr)
			return ok
		},
	}
}

// AttrMatches matches tags whose attr value matches re
func AttrMatches(attr string, re *regexp.Regexp, tags ...string) Rule {
	return filterRule{
		name: strings.Join(tags, ",") + "[" + attr + "~/" + re.String() + "/]",
		tags: strings.Join(tags, ","),
		accept: func(s *goquery.Selection) bool {
			v, ok := s.Attr(attr)
			return ok && re.MatchString(v)
		},
	}
}

// ClassMatches matches tags whose class attribute matches re
func ClassMatches(re *regexp.Regexp, tags ...string) Rule {
	return AttrMatches("class", re, tags...)
}

// parentRule selects the parents of the first limit nodes matching selector
type parentRule struct {
	selector string
	limit    int
}

// ParentOf returns a rule selecting the parents of anchor nodes, e.g. the
// container around a currency symbol. limit <= 0 means no limit.
func ParentOf(selector string, limit int) Rule {
	return parentRule{selector: selector, limit: limit}
}

func (r parentRule) Name() string { return "parent(" + r.selector + ")" }

func (r parentRule) Select(root *goquery.Selection) *goquery.Selection {
	anchors := root.Find(r.selector)
	if r.limit > 0 && anchors.Length() > r.limit {
		anchors = anchors.Slice(0, r.limit)
	}
	return anchors.Parent()
}
