package curriculum

import (
	"fmt"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{(\d+)\}`)

// Segment is one piece of a parsed slot template: either literal text
// or a reference to a slot.
type Segment struct {
	Literal string
	Slot    int // -1 for literal segments
}

// IsSlot reports whether the segment references a slot.
func (s Segment) IsSlot() bool { return s.Slot >= 0 }

// Template is a parsed ordering template such as "{0} + {1} -> {2}".
// A slot may be referenced more than once.
type Template struct {
	Segments []Segment
	Slots    int
}

// ParseTemplate parses a slot template. Slot indices must be dense,
// starting at zero.
func ParseTemplate(tpl string) (Template, error) {
	var t Template
	seen := map[int]bool{}
	maxSlot := -1

	last := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(tpl, -1) {
		if m[0] > last {
			t.Segments = append(t.Segments, Segment{Literal: tpl[last:m[0]], Slot: -1})
		}
		n, err := strconv.Atoi(tpl[m[2]:m[3]])
		if err != nil {
			return Template{}, fmt.Errorf("parse slot %q: %w", tpl[m[0]:m[1]], err)
		}
		t.Segments = append(t.Segments, Segment{Slot: n})
		seen[n] = true
		maxSlot = max(maxSlot, n)
		last = m[1]
	}
	if last < len(tpl) {
		t.Segments = append(t.Segments, Segment{Literal: tpl[last:], Slot: -1})
	}

	if maxSlot < 0 {
		return Template{}, fmt.Errorf("template %q has no slots", tpl)
	}
	for i := 0; i <= maxSlot; i++ {
		if !seen[i] {
			return Template{}, fmt.Errorf("template %q skips slot {%d}", tpl, i)
		}
	}
	t.Slots = maxSlot + 1
	return t, nil
}

// Render fills the template, substituting fill(i) for slot i.
func (t Template) Render(fill func(slot int) string) string {
	var out []byte
	for _, seg := range t.Segments {
		if seg.IsSlot() {
			out = append(out, fill(seg.Slot)...)
			continue
		}
		out = append(out, seg.Literal...)
	}
	return string(out)
}
