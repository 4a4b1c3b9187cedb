package crawler

import (
	"regexp"
	"strings"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/helpers"
)

// Target variant tokens. Matching runs on folded text (lower case, no accents).
var (
	// ModelTokens must all be present
	ModelTokens = []string{"galaxy", "a05s"}
	// StorageTokens, any of which denotes the 128GB variant
	StorageTokens = []string{"128"}
	// RAMTokens, any of which denotes the 6GB RAM variant
	RAMTokens = []string{"6gb", "6 gb"}
	// ExcludedTokens mark refurbished or used listings
	ExcludedTokens = []string{"recondicionado", "recond", "usado", "seminovo", "segunda mao"}
	// Capacities lists the gigabyte figures the target variant can carry
	Capacities = []string{"128", "6"}
)

var capacityPattern = regexp.MustCompile(`\b(\d+)\s?gb\b`)

// Matcher decides whether a title denotes the target product variant
type Matcher struct {
	Required []string
	Storage  []string
	RAM      []string
	Excluded []string
	// Capacities are the only gigabyte figures the relaxed tier tolerates
	Capacities []string
	// Relaxed enables the lower-priority tier that accepts titles with the
	// model tokens but without storage or RAM details.
	Relaxed bool
}

// NewMatcher returns a matcher for the target variant. extraExcluded adds
// store-specific disqualifying tokens.
func NewMatcher(relaxed bool, extraExcluded ...string) *Matcher {
	excluded := append(append([]string{}, ExcludedTokens...), extraExcluded...)
	return &Matcher{
		Required:   fold(ModelTokens),
		Storage:    fold(StorageTokens),
		RAM:        fold(RAMTokens),
		Excluded:   fold(excluded),
		Capacities: Capacities,
		Relaxed:    relaxed,
	}
}

// Match classifies a title. Exclusions always win over positive tokens.
func (m *Matcher) Match(title string) MatchTier {
	t := helpers.FoldText(title)
	if t == "" || containsAny(t, m.Excluded) || !containsAll(t, m.Required) {
		return NoMatch
	}
	if (len(m.Storage) == 0 || containsAny(t, m.Storage)) && (len(m.RAM) == 0 || containsAny(t, m.RAM)) {
		return StrictMatch
	}
	if m.Relaxed && !m.conflicts(t) {
		return RelaxedMatch
	}
	return NoMatch
}

// conflicts reports whether the title names a capacity the target variant
// does not have, such as the 64GB or 4GB RAM models.
func (m *Matcher) conflicts(t string) bool {
	for _, match := range capacityPattern.FindAllStringSubmatch(t, -1) {
		if !containsToken(m.Capacities, match[1]) {
			return true
		}
	}
	return false
}

// Matches reports whether the title is accepted by any enabled tier
func (m *Matcher) Matches(title string) bool {
	return m.Match(title) != NoMatch
}

func fold(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = helpers.FoldText(t)
	}
	return out
}

func containsAll(s string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
