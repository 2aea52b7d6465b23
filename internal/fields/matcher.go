package fields

import "regexp"

// Parser turns one raw pattern match into its canonical detail. It returns
// false when the candidate has the right shape but cannot be interpreted.
type Parser func(candidate string) (string, bool)

// Tier pairs a pattern with the parser used for its matches
type Tier struct {
	Name    string
	Pattern *regexp.Regexp
	Parse   Parser
	// FirstOnly restricts parsing to the leftmost match of Pattern.
	FirstOnly bool
}

// Matcher evaluates tiers in priority order and yields at most one detail
// per line.
//
// The first tier whose pattern matches anything decides the outcome. When
// none of its candidates parse, the matcher gives up on the line unless
// fallThrough is set, in which case the next tier is tried.
type Matcher struct {
	tiers       []Tier
	fallThrough bool
}

// NewMatcher builds a matcher over the given tiers
func NewMatcher(fallThrough bool, tiers ...Tier) *Matcher {
	return &Matcher{tiers: tiers, fallThrough: fallThrough}
}

// Match runs the matcher against a single normalized line
func (m *Matcher) Match(line string) (string, bool) {
	for _, tier := range m.tiers {
		limit := -1
		if tier.FirstOnly {
			limit = 1
		}

		candidates := tier.Pattern.FindAllString(line, limit)
		if len(candidates) == 0 {
			continue
		}

		for _, candidate := range candidates {
			if detail, ok := tier.Parse(candidate); ok {
				return detail, true
			}
		}

		if !m.fallThrough {
			return "", false
		}
	}
	return "", false
}

// Tiers returns the tier names in evaluation order
func (m *Matcher) Tiers() []string {
	names := make([]string, 0, len(m.tiers))
	for _, tier := range m.tiers {
		names = append(names, tier.Name)
	}
	return names
}
