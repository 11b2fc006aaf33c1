package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks from a string (e.g. "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName normalizes a display name for comparison (lowercase, no
// diacritics, spaces for dashes).
func NormalizeName(name string) string {
	name = removeDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// FindByName returns the users whose normalized name contains the
// normalized query, in enrollment order.
func (r *Registry) FindByName(query string) ([]UserRecord, error) {
	users, err := r.Load()
	if err != nil {
		return nil, err
	}
	needle := NormalizeName(query)
	var out []UserRecord
	for _, u := range users {
		if strings.Contains(NormalizeName(u.Name), needle) {
			out = append(out, u)
		}
	}
	return out, nil
}
