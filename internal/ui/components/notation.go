package components

import "strings"

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋',
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻',
}

var arrows = strings.NewReplacer(
	"<=>", "⇌",
	"->", "→",
	`\rightarrow`, "→",
	`\to`, "→",
	"$", "",
)

// Formula renders lightweight chemical notation for the terminal:
// "H_2O" becomes "H₂O", "SO_4^{2-}" becomes "SO₄²⁻" and "->" an arrow.
// Characters without a sub- or superscript form are kept with their
// marker.
func Formula(s string) string {
	s = arrows.Replace(s)
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if (r != '_' && r != '^') || i+1 >= len(rs) {
			b.WriteRune(r)
			continue
		}
		table := subscripts
		if r == '^' {
			table = superscripts
		}
		// Either a braced group or a single character.
		group, end := rs[i+1:i+2], i+1
		if rs[i+1] == '{' {
			if j := indexRune(rs, '}', i+2); j > 0 {
				group, end = rs[i+2:j], j
			}
		}
		converted, ok := convert(group, table)
		if !ok {
			b.WriteRune(r)
			continue
		}
		b.WriteString(converted)
		i = end
	}
	return b.String()
}

func convert(group []rune, table map[rune]rune) (string, bool) {
	if len(group) == 0 {
		return "", false
	}
	out := make([]rune, len(group))
	for i, r := range group {
		c, ok := table[r]
		if !ok {
			return "", false
		}
		out[i] = c
	}
	return string(out), true
}

func indexRune(rs []rune, r rune, from int) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
