package knowledge

import "strings"

// NormalizeText lowercases s and strips every rune that is not a lowercase
// letter, digit, or whitespace. All keyword and token matching goes through
// this one function so scoring behavior stays centrally verifiable.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize returns the set of normalized words in s longer than two runes.
func Tokenize(s string) map[string]struct{} {
	words := strings.Fields(NormalizeText(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

// NormalizeVitalName maps a vital field name to its canonical context key:
// lowercase with underscores and the letter "c" removed. Temp_C, temp_c and
// TempC all collapse to "temp"; SpO2 and spo2 collapse to "spo2".
func NormalizeVitalName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "")
	return strings.ReplaceAll(name, "c", "")
}
