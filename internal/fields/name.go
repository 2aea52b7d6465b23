package fields

import (
	"regexp"
	"strings"
)

var (
	capitalizedPair  = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+`)
	capitalizedExtra = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:\s+[A-Z][a-z]+)`)
	capitalizedTail  = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:\s+[A-Z][a-z]+)(?:\s+[A-Z][a-z]+)*`)

	honorific = regexp.MustCompile(`(?i)\b(?:Mr|Mrs|Ms|Dr|Prof|Sir|Madam)\b`)
)

// NewNameMatcher recognizes runs of capitalized words as personal names.
//
// Only the leftmost run of each tier is considered. A run that shrinks below
// two words once honorifics are removed is rejected, and later tiers are not
// consulted unless fallThrough is set.
func NewNameMatcher(fallThrough bool) *Matcher {
	return NewMatcher(fallThrough,
		Tier{Name: "pair", Pattern: capitalizedPair, Parse: parseName, FirstOnly: true},
		Tier{Name: "extra", Pattern: capitalizedExtra, Parse: parseName, FirstOnly: true},
		Tier{Name: "tail", Pattern: capitalizedTail, Parse: parseName, FirstOnly: true},
	)
}

func parseName(candidate string) (string, bool) {
	name := Normalize(honorific.ReplaceAllString(candidate, ""))
	if len(strings.Fields(name)) < 2 {
		return "", false
	}
	return name, true
}
