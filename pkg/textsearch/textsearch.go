// Package textsearch normaliza texto para búsquedas sin distinguir mayúsculas ni tildes
// ("Pastilla Freno" coincide con "pastílla", "FRENO", etc.).
package textsearch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize quita diacríticos, pasa a minúsculas y colapsa espacios.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Matcher compara campos contra un término de búsqueda ya normalizado.
type Matcher struct {
	term string
}

// NewMatcher prepara el término. Un término vacío coincide con todo.
func NewMatcher(term string) Matcher {
	return Matcher{term: Normalize(term)}
}

// Empty indica si no hay término de búsqueda.
func (m Matcher) Empty() bool { return m.term == "" }

// Match devuelve true si algún campo contiene el término.
func (m Matcher) Match(fields ...string) bool {
	if m.term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Normalize(f), m.term) {
			return true
		}
	}
	return false
}
