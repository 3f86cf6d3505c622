package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize reduces header text to a comparison key: lowercase, diacritics
// removed (NFD decomposition then combining marks dropped), and every
// character outside [a-z0-9] removed.
//
//	Normalize(" RÉSIDENCE ") == "residence"
//	Normalize("N° NPC")      == "nnpc"
//
// Normalize is idempotent.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		stripped = strings.ToLower(text)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// headerDelimiters separate several column titles pasted into one cell.
const headerDelimiters = ",;|\t"

// hasDelimiter reports whether a header cell holds more than one title.
func hasDelimiter(s string) bool {
	return strings.ContainsAny(s, headerDelimiters)
}

// splitHeaderCell splits a cell on header delimiters. Positions are kept,
// so blank parts are returned as empty strings.
func splitHeaderCell(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(headerDelimiters, r) {
			parts = append(parts, s[start:i])
			start = i + len(string(r))
		}
	}
	return append(parts, s[start:])
}

// isBlank reports whether a cell holds no visible text.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
