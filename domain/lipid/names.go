package lipid

import (
	"regexp"
	"strings"
)

var (
	suffixPattern       = regexp.MustCompile(` \([a-z]+\)$`)
	hydroxylSuffix      = regexp.MustCompile(`;(\d+)O$`)
	rawNameHeaderTokens = map[string]struct{}{"original name": {}}
)

// DisambiguateNames suffixes repeated names with a lowercase letter in order
// of occurrence: the first occurrence is left as is, the second becomes
// "X (b)", the third "X (c)" and so on ("(aa)" after "(z)").
func DisambiguateNames(names []string) []string {
	counts := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		n := counts[name]
		counts[name] = n + 1
		if n == 0 {
			out[i] = name
			continue
		}
		out[i] = name + " (" + letterSuffix(n) + ")"
	}
	return out
}

// letterSuffix maps 0 -> a, 25 -> z, 26 -> aa.
func letterSuffix(n int) string {
	var b []byte
	for {
		b = append([]byte{byte('a' + n%26)}, b...)
		n = n/26 - 1
		if n < 0 {
			return string(b)
		}
	}
}

// StripSuffix removes a disambiguation suffix added by DisambiguateNames.
func StripSuffix(name string) string {
	return suffixPattern.ReplaceAllString(name, "")
}

// ExchangeCharacters rewrites a trailing hydroxyl count written before the
// element (";2O") into the shorthand order (";O2").
func ExchangeCharacters(name string) string {
	return hydroxylSuffix.ReplaceAllString(name, ";O$1")
}

// PrepareRawNames cleans user supplied names before normalization: blank
// lines and header rows are dropped, "A|B" alternatives keep the second
// name, hydroxyl notation is exchanged and exact duplicates are removed
// keeping first occurrence order.
func PrepareRawNames(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(strings.ReplaceAll(name, `"`, ""))
		if name == "" {
			continue
		}
		if _, header := rawNameHeaderTokens[strings.ToLower(name)]; header {
			continue
		}
		if parts := strings.Split(name, "|"); len(parts) > 1 {
			name = strings.TrimSpace(parts[1])
		}
		name = ExchangeCharacters(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// IsEther reports whether a normalized name carries an O- or P- ether prefix.
func IsEther(name string) bool {
	return plasmanylPattern.MatchString(name) || plasmenylPattern.MatchString(name)
}
