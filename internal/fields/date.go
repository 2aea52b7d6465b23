package fields

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical output form of every recognized date
const DateLayout = "02/01/2006"

var (
	dayFirstSlash  = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	dayFirstDash   = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
	yearFirstSlash = regexp.MustCompile(`\d{4}/\d{2}/\d{2}`)
	yearFirstDash  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dayMonthName   = regexp.MustCompile(`(?i)(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)([a-z]*)\s+(\d{4})`)
)

// NewDateMatcher recognizes numeric and month-name dates and renders them as
// DD/MM/YYYY
func NewDateMatcher(fallThrough bool) *Matcher {
	return NewMatcher(fallThrough,
		Tier{Name: "DD/MM/YYYY", Pattern: dayFirstSlash, Parse: layoutParser("02/01/2006")},
		Tier{Name: "DD-MM-YYYY", Pattern: dayFirstDash, Parse: layoutParser("02-01-2006")},
		Tier{Name: "YYYY/MM/DD", Pattern: yearFirstSlash, Parse: layoutParser("2006/01/02")},
		Tier{Name: "YYYY-MM-DD", Pattern: yearFirstDash, Parse: layoutParser("2006-01-02")},
		Tier{Name: "D Month YYYY", Pattern: dayMonthName, Parse: parseDayMonthName},
	)
}

func layoutParser(layout string) Parser {
	return func(candidate string) (string, bool) {
		// time.Parse rejects out-of-range days, including 30 February
		t, err := time.Parse(layout, candidate)
		if err != nil {
			return "", false
		}
		return t.Format(DateLayout), true
	}
}

func parseDayMonthName(candidate string) (string, bool) {
	parts := dayMonthName.FindStringSubmatch(candidate)
	if parts == nil {
		return "", false
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", false
	}
	year, err := strconv.Atoi(parts[4])
	if err != nil {
		return "", false
	}

	month, ok := lookupMonth(parts[2] + parts[3])
	if !ok {
		return "", false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return "", false
	}
	return t.Format(DateLayout), true
}

// lookupMonth accepts the three letter abbreviation or any longer prefix of
// the full English month name ("Sept", "Janu", "january")
func lookupMonth(word string) (time.Month, bool) {
	word = strings.ToLower(word)
	if len(word) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if full[:3] == word[:3] {
			return m, strings.HasPrefix(full, word)
		}
	}
	return 0, false
}
