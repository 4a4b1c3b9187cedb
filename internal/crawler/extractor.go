package crawler

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
)

// Extractor pulls title, price and link out of one product container using
// ordered strategy cascades; the first strategy that succeeds wins.
type Extractor struct {
	Origin string
	Title  []Strategy
	Price  []Strategy
	Link   []Strategy
	log    *logger.Logger
}

// NewExtractor creates an extractor resolving relative links against origin
func NewExtractor(origin string, title, price, link []Strategy) *Extractor {
	return &Extractor{Origin: origin, Title: title, Price: price, Link: link}
}

// Extract never fails: a field no strategy finds stays empty, and a malformed
// node that makes a strategy panic degrades the whole candidate to empty
// fields without aborting the batch.
func (e *Extractor) Extract(candidate *goquery.Selection) (fields Fields) {
	defer func() {
		if r := recover(); r != nil {
			if e.log != nil {
				e.log.Warn().
					Str("panic", fmt.Sprint(r)).
					Msg("Malformed product container, fields degraded to not found")
			}
			fields = Fields{}
		}
	}()

	fields.Title = e.apply(candidate, "title", e.Title)
	fields.Price = e.apply(candidate, "price", e.Price)
	if href := e.apply(candidate, "link", e.Link); href != "" {
		fields.Link = ResolveURL(e.Origin, href)
	}
	return fields
}

// apply runs a strategy cascade and returns the first value found
func (e *Extractor) apply(candidate *goquery.Selection, field string, strategies []Strategy) string {
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		if value, ok := strategy.Attempt(candidate); ok {
			if e.log != nil && logger.IsDebugEnabled() {
				e.log.Debug().
					Str("field", field).
					Str("strategy", strategy.Name()).
					Msg("Field extracted")
			}
			return value
		}
	}
	return ""
}
