package fields

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// number accepts grouped thousands ("1,250") or a plain digit run, with an
// optional two digit fraction
const number = `(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?`

var (
	leadingDollar  = regexp.MustCompile(`\$\s*` + number)
	trailingDollar = regexp.MustCompile(number + `\s*\$`)
	leadingUSD     = regexp.MustCompile(`USD\s*` + number)
	trailingUSD    = regexp.MustCompile(number + `\s*USD`)

	currencyMarks = strings.NewReplacer("$", "", "USD", "", ",", "", " ", "")
)

// NewAmountMatcher recognizes dollar amounts and renders them as $#,###.##
func NewAmountMatcher(fallThrough bool) *Matcher {
	return NewMatcher(fallThrough,
		Tier{Name: "$N", Pattern: leadingDollar, Parse: parseAmount},
		Tier{Name: "N$", Pattern: trailingDollar, Parse: parseAmount},
		Tier{Name: "USD N", Pattern: leadingUSD, Parse: parseAmount},
		Tier{Name: "N USD", Pattern: trailingUSD, Parse: parseAmount},
	)
}

func parseAmount(candidate string) (string, bool) {
	raw := currencyMarks.Replace(strings.TrimSpace(candidate))
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	return FormatAmount(value), true
}

// FormatAmount renders value as dollars with thousands separators and two
// decimals. The integer part is grouped as a big.Int so values beyond the
// int64 range keep their digits.
func FormatAmount(value float64) string {
	whole, frac, _ := strings.Cut(strconv.FormatFloat(value, 'f', 2, 64), ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return "$" + whole + "." + frac
	}
	return "$" + humanize.BigComma(n) + "." + frac
}
