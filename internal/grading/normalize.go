// Package grading decides whether a learner's answer matches a question's
// canonical answer. It is shared by quiz sessions and mistake retries.
package grading

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/abhisek/chemquest/internal/curriculum"
)

// markup lists notation fragments dropped before comparison. Longer
// fragments come first so a command is removed whole.
var markup = strings.NewReplacer(
	`\uparrow`, "",
	`\downarrow`, "",
	`\u2191`, "",
	`\u2193`, "",
	"&uarr;", "",
	"&darr;", "",
	"â†‘", "",
	"â†“", "",
	"↑", "",
	"↓", "",
	"$", "",
	"{", "",
	"}", "",
	"_", "",
	"^", "",
)

// Normalize reduces an answer to its comparable core: lowercase, no
// chemical markup, no arrow markers, no whitespace. Alphanumeric content
// is never altered. Normalize is idempotent.
func Normalize(s string) string {
	for {
		next := normalizeOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strings.ToLower(s)
	s = markup.Replace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var descriptors = map[string]bool{
	"gas": true, "g": true,
	"precipitate": true, "s": true, "solid": true,
	"solution": true, "aq": true,
	"l": true, "liquid": true,
	"color": true, "colour": true,
	"气体": true, "沉淀": true, "溶液": true, "颜色": true, "固体": true, "液体": true,
}

var brackets = [][2]string{{"(", ")"}, {"（", "）"}}

// StripTrailingDescriptor drops one trailing state descriptor such as
// "(gas)" or "（沉淀）" from a normalized answer. Unknown parenthesised
// suffixes, e.g. the "(oh)" of a hydroxide, are kept.
func StripTrailingDescriptor(s string) string {
	for _, b := range brackets {
		if !strings.HasSuffix(s, b[1]) {
			continue
		}
		i := strings.LastIndex(s, b[0])
		if i <= 0 {
			continue
		}
		inner := s[i+len(b[0]) : len(s)-len(b[1])]
		if descriptors[inner] {
			return s[:i]
		}
	}
	return s
}

// SplitAlternates splits a canonical free-text answer into its accepted
// alternates.
func SplitAlternates(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '/', '|', ';', '／', '｜', '；':
			return true
		}
		return false
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// separatorPattern matches reaction arrows and equals signs. Alternation
// is leftmost-first, so the compound forms are listed before "=".
var separatorPattern = regexp.MustCompile(`<=+>|=+>|-+>|→|⟶|⇌|⇋|⇄|↔|=+`)

// EquivalentSequences reports whether the learner's slot contents match
// the canonical sequence. A positional match always wins. Otherwise, when
// the template has exactly one separator, each side is compared as a
// multiset so reactants (or products) may be placed in any order.
func EquivalentSequences(user, correct []string, template string) bool {
	if len(user) != len(correct) {
		return false
	}

	strict := true
	for i := range user {
		if Normalize(user[i]) != Normalize(correct[i]) {
			strict = false
			break
		}
	}
	if strict {
		return true
	}

	tpl, err := curriculum.ParseTemplate(template)
	if err != nil || tpl.Slots != len(correct) {
		return false
	}
	left, ok := leftSlots(tpl)
	if !ok {
		return false
	}

	var userL, userR, wantL, wantR []string
	for i := range user {
		if left[i] {
			userL = append(userL, Normalize(user[i]))
			wantL = append(wantL, Normalize(correct[i]))
		} else {
			userR = append(userR, Normalize(user[i]))
			wantR = append(wantR, Normalize(correct[i]))
		}
	}
	return sameMultiset(userL, wantL) && sameMultiset(userR, wantR)
}

// leftSlots returns the slots whose first reference precedes the
// template's separator. ok is false unless there is exactly one
// separator.
func leftSlots(tpl curriculum.Template) (map[int]bool, bool) {
	separators := 0
	for _, seg := range tpl.Segments {
		if !seg.IsSlot() {
			separators += len(separatorPattern.FindAllStringIndex(seg.Literal, -1))
		}
	}
	if separators != 1 {
		return nil, false
	}

	left := make(map[int]bool, tpl.Slots)
	placed := make(map[int]bool, tpl.Slots)
	onLeft := true
	for _, seg := range tpl.Segments {
		if !seg.IsSlot() {
			if separatorPattern.MatchString(seg.Literal) {
				onLeft = false
			}
			continue
		}
		if !placed[seg.Slot] {
			placed[seg.Slot] = true
			left[seg.Slot] = onLeft
		}
	}
	return left, true
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a = append([]string(nil), a...)
	b = append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
