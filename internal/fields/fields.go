package fields

import (
	"sort"
	"strings"
	"unicode"

	"backend/pkg/normalize"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes runes and drops the combining marks, so that
// "Líquido" and "Liquido" canonicalize identically.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalKey lowercases, strips accents and removes every non-alphanumeric
// character. "Valor Líquido", "valor_liquido" and "vlLiquido"-style variants of
// the same column collapse to one comparable token.
func CanonicalKey(key string) string {
	stripped, _, err := transform.String(accentStripper, key)
	if err != nil {
		stripped = key
	}

	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AliasSet holds the canonicalized aliases of one logical field.
type AliasSet map[string]struct{}

// NewAliasSet canonicalizes every alias into a lookup set.
func NewAliasSet(aliases ...string) AliasSet {
	set := make(AliasSet, len(aliases))
	for _, alias := range aliases {
		if key := CanonicalKey(alias); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the canonical form of key is in the set.
func (s AliasSet) Contains(key string) bool {
	_, ok := s[CanonicalKey(key)]
	return ok
}

// Resolve returns the first non-empty value in row whose canonicalized key
// matches the alias set. Row keys are scanned in sorted order so resolution is
// independent of map insertion order; nil when nothing matches.
func Resolve(row map[string]any, set AliasSet) any {
	if len(row) == 0 || len(set) == 0 {
		return nil
	}

	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !set.Contains(key) {
			continue
		}
		value := row[key]
		if value == nil {
			continue
		}
		if text, ok := value.(string); ok && strings.TrimSpace(text) == "" {
			continue
		}
		return value
	}
	return nil
}

// ResolveString resolves and trims a textual field; "" when absent.
func ResolveString(row map[string]any, set AliasSet) string {
	return normalize.CleanText(Resolve(row, set))
}

// ResolveNumber resolves a numeric field through the value normalizer.
func ResolveNumber(row map[string]any, set AliasSet) float64 {
	return normalize.ToNumber(Resolve(row, set))
}

// ResolveDate resolves a field to an ISO date when any date pattern matches.
func ResolveDate(row map[string]any, set AliasSet) (string, bool) {
	return normalize.ToISODate(Resolve(row, set))
}
