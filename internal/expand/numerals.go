package expand

import (
	"strconv"
	"strings"
)

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// toRoman converts n to a lowercase roman numeral. Returns "" outside the
// range sequels realistically occupy.
func toRoman(n int) string {
	if n <= 0 || n > 50 {
		return ""
	}
	var b strings.Builder
	for _, rn := range romanNumerals {
		for n >= rn.value {
			b.WriteString(rn.symbol)
			n -= rn.value
		}
	}
	return b.String()
}

// fromRoman parses a lowercase roman numeral, reporting failure for
// anything that is not a well-formed numeral.
func fromRoman(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total := 0
	rest := s
	for _, rn := range romanNumerals {
		for strings.HasPrefix(rest, rn.symbol) {
			total += rn.value
			rest = rest[len(rn.symbol):]
		}
	}
	if rest != "" || total == 0 {
		return 0, false
	}
	// Round-trip check rejects malformed forms like "iiii".
	if toRoman(total) != s {
		return 0, false
	}
	return total, true
}

// numeralVariants detects a trailing roman or arabic number and generates
// sibling queries for adjacent sequence entries, in both numeral systems.
// A query without a trailing number yields nil.
func numeralVariants(q string, window int) []string {
	idx := strings.LastIndex(q, " ")
	if idx < 0 {
		return nil
	}
	base, last := q[:idx], q[idx+1:]

	n, ok := trailingNumber(last)
	if !ok {
		return nil
	}

	var variants []string
	for offset := -window; offset <= window; offset++ {
		sibling := n + offset
		if sibling < 1 {
			continue
		}
		variants = append(variants, base+" "+strconv.Itoa(sibling))
		if roman := toRoman(sibling); roman != "" {
			variants = append(variants, base+" "+roman)
		}
	}
	return variants
}

// trailingNumber parses the final token as an arabic or roman number.
func trailingNumber(tok string) (int, bool) {
	if n, err := strconv.Atoi(tok); err == nil && n > 0 && n <= 100 {
		return n, true
	}
	// Single "i" and "x" are too ambiguous as sequel markers ("x" is
	// commonly a title word, as in "mega man x").
	if n, ok := fromRoman(tok); ok && tok != "i" && tok != "x" {
		return n, true
	}
	return 0, false
}
