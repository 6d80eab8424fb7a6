// Package match implements the layered rule-based classification engine for
// bank-statement transaction descriptions.
package match

import "strings"

// Normalize canonicalizes a raw transaction description for comparison:
// upper-cased, trimmed, with internal whitespace runs collapsed to a single
// space. Punctuation is preserved. Whitespace-only input normalizes to "".
func Normalize(description string) string {
	return strings.Join(strings.Fields(strings.ToUpper(description)), " ")
}
