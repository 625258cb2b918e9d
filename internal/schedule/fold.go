package schedule

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AllSentinel is the filter value that disables a filter
const AllSentinel = "all"

// fold reduces s to a comparison key: accents stripped, case folded, and underscores,
// hyphens and runs of spaces collapsed to a single space. "Vôlei de Praia" and
// "volei_de_praia" share a key.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = cases.Fold().String(stripped)
	stripped = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, stripped)
	return strings.Join(strings.Fields(stripped), " ")
}

func isAll(filter string) bool {
	f := fold(filter)
	return f == "" || f == AllSentinel
}

// nameMatches reports whether filter selects name: their folded forms must be equal,
// so "futebol_de_campo" selects "Futebol de Campo" but "futebol" does not.
func nameMatches(name, filter string) bool {
	n := fold(name)
	return n != "" && n == fold(filter)
}
