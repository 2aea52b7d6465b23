package fields

import "strings"

// Normalize collapses every run of whitespace (including Unicode spaces) into a
// single space and trims the result. It is idempotent.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
