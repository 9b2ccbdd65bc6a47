package match

import (
	"strings"
	"unicode"
)

// Levenshtein returns the edit distance between a and b counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	// row[j] is the distance between the consumed prefix of ra and rb[:j]
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for _, ca := range ra {
		diag := row[0]
		row[0]++

		for j, cb := range rb {
			next := diag
			if ca != cb {
				next = 1 + min(diag, row[j], row[j+1])
			}

			diag, row[j+1] = row[j+1], next
		}
	}

	return row[len(rb)]
}

// Similarity is 1 minus the edit distance of the normalized identifiers
// relative to the longer one. Equal identifiers score 1.
func Similarity(a, b string) float64 {
	na, nb := NormalizeIdent(a), NormalizeIdent(b)

	longest := max(len([]rune(na)), len([]rune(nb)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(na, nb))/float64(longest)
}

// NormalizeIdent reduces an identifier to its lower-case words without
// separators: customerID, customer_id and Customer-Id all become customerid.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// TokenizeIdent splits an identifier into lower-case words at separators
// (_ - . and space), at lower-to-upper case changes and before the last
// capital of an acronym, so XMLParser yields xml and parser.
func TokenizeIdent(s string) []string {
	var words []string

	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune("_-. ", r) }) {
		runes := []rune(field)
		start := 0

		for i := 1; i < len(runes); i++ {
			if !unicode.IsUpper(runes[i]) {
				continue
			}

			acronymEnd := unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(runes[i-1]) || acronymEnd {
				words = append(words, strings.ToLower(string(runes[start:i])))
				start = i
			}
		}

		words = append(words, strings.ToLower(string(runes[start:])))
	}

	return words
}
