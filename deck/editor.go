package deck

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Editor applies structural operations to a committed deck. Every operation
// is all-or-nothing: the input deck is never mutated, and on any failure the
// returned deck is nil so the caller keeps its previously committed model.
// On success the new deck is returned together with the advisory violations
// the validator surfaced for it.
type Editor struct {
	builder *Builder
	policy  Policy
}

// NewEditor creates an Editor. A nil builder selects the default
// goquery-backed one.
func NewEditor(b *Builder, p Policy) *Editor {
	if b == nil {
		b = NewBuilder(nil)
	}
	return &Editor{builder: b, policy: p}
}

// Policy returns the validation policy this editor commits against.
func (e *Editor) Policy() Policy {
	return e.policy
}

// commit runs the validator over a candidate deck. Fatal violations reject
// the edit with a ValidationError carrying the full list.
func (e *Editor) commit(candidate *SlideDeck) (*SlideDeck, []Violation, error) {
	vs := Validate(candidate, e.policy)
	if HasFatal(vs, e.policy) {
		return nil, nil, &ValidationError{Violations: vs}
	}
	return candidate, Advisories(vs, e.policy), nil
}

// Insert parses slideHTML as a single slide fragment and splices it at
// index, shifting subsequent slides. Chart identifiers colliding with the
// rest of the deck are remapped inside the new slide.
func (e *Editor) Insert(d *SlideDeck, index int, slideHTML string) (*SlideDeck, []Violation, error) {
	if index < 0 || index > len(d.Slides) {
		return nil, nil, &InvalidRangeError{Start: index, End: index, Len: len(d.Slides)}
	}
	units, err := e.builder.ParseFragment(slideHTML)
	if err != nil {
		return nil, nil, err
	}
	if len(units) != 1 {
		return nil, nil, &ParseError{Reason: fmt.Sprintf("expected exactly one slide section, got %d", len(units))}
	}

	used := d.chartIDSet(nil)
	unit, err := e.remapCollidingCharts(units[0], used)
	if err != nil {
		return nil, nil, err
	}

	candidate := d.Clone()
	candidate.Slides = append(candidate.Slides[:index], append([]Slide{unit}, candidate.Slides[index:]...)...)
	return e.commit(candidate)
}

// Remove deletes the slide at index. Emptying the deck is rejected unless
// the policy allows it.
func (e *Editor) Remove(d *SlideDeck, index int) (*SlideDeck, []Violation, error) {
	if index < 0 || index >= len(d.Slides) {
		return nil, nil, &InvalidRangeError{Start: index, End: index, Len: len(d.Slides)}
	}
	candidate := d.Clone()
	candidate.Slides = append(candidate.Slides[:index], candidate.Slides[index+1:]...)
	return e.commit(candidate)
}

// Duplicate clones the slide at index and places the copy right after it.
// Every chart identifier inside the clone is rewritten to a fresh
// deck-unique one so the two slides never share a chart id; the original
// slide stays byte-identical.
func (e *Editor) Duplicate(d *SlideDeck, index int) (*SlideDeck, []Violation, error) {
	if index < 0 || index >= len(d.Slides) {
		return nil, nil, &InvalidRangeError{Start: index, End: index, Len: len(d.Slides)}
	}

	clone := d.Slides[index]
	clone.ID = newSlideID()
	used := d.chartIDSet(nil)
	clone, err := e.remapAllCharts(clone, used)
	if err != nil {
		return nil, nil, err
	}

	candidate := d.Clone()
	candidate.Slides = append(candidate.Slides[:index+1], append([]Slide{clone}, candidate.Slides[index+1:]...)...)
	return e.commit(candidate)
}

// Move reorders the slide at from to position to (its index in the
// resulting deck). Slide ids and contents are untouched.
func (e *Editor) Move(d *SlideDeck, from, to int) (*SlideDeck, []Violation, error) {
	if from < 0 || from >= len(d.Slides) || to < 0 || to >= len(d.Slides) {
		return nil, nil, &InvalidRangeError{Start: from, End: to, Len: len(d.Slides)}
	}
	candidate := d.Clone()
	s := candidate.Slides[from]
	candidate.Slides = append(candidate.Slides[:from], candidate.Slides[from+1:]...)
	candidate.Slides = append(candidate.Slides[:to], append([]Slide{s}, candidate.Slides[to:]...)...)
	return e.commit(candidate)
}

// ReplaceRange swaps the contiguous slide range [start, end] (inclusive)
// for the slides parsed from fragmentHTML. The fragment may expand into
// more slides than it replaces or collapse several into fewer. Replacement
// slides get fresh ids; chart identifiers colliding with slides outside the
// replaced range are remapped (ids used only inside the discarded range are
// free to reuse). Any failure leaves the input deck untouched.
func (e *Editor) ReplaceRange(d *SlideDeck, start, end int, fragmentHTML string) (*SlideDeck, []Violation, error) {
	if start < 0 || end < start || end >= len(d.Slides) {
		return nil, nil, &InvalidRangeError{Start: start, End: end, Len: len(d.Slides)}
	}

	units, err := e.builder.ParseFragment(fragmentHTML)
	if err != nil {
		return nil, nil, err
	}

	skip := make(map[int]bool, end-start+1)
	for i := start; i <= end; i++ {
		skip[i] = true
	}
	used := d.chartIDSet(skip)
	for i := range units {
		units[i], err = e.remapCollidingCharts(units[i], used)
		if err != nil {
			return nil, nil, err
		}
	}

	candidate := d.Clone()
	tail := make([]Slide, len(candidate.Slides)-end-1)
	copy(tail, candidate.Slides[end+1:])
	candidate.Slides = append(candidate.Slides[:start], append(units, tail...)...)
	return e.commit(candidate)
}

// slideChartIDs returns every chart identifier a slide touches, placeholder
// ids first, then script-only ids.
func slideChartIDs(s Slide) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range s.Charts {
		if !seen[c.CanvasID] {
			seen[c.CanvasID] = true
			ids = append(ids, c.CanvasID)
		}
	}
	for _, id := range s.OrphanScripts {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// remapCollidingCharts rewrites only the chart ids of s that collide with
// the used set, marking every id it keeps or creates as used.
func (e *Editor) remapCollidingCharts(s Slide, used map[string]bool) (Slide, error) {
	return e.remapCharts(s, used, false)
}

// remapAllCharts unconditionally rewrites every chart id of s to a fresh
// one, as Duplicate requires.
func (e *Editor) remapAllCharts(s Slide, used map[string]bool) (Slide, error) {
	return e.remapCharts(s, used, true)
}

func (e *Editor) remapCharts(s Slide, used map[string]bool, always bool) (Slide, error) {
	html := s.HTML
	changed := false
	for _, id := range slideChartIDs(s) {
		if !always && !used[id] {
			used[id] = true
			continue
		}
		fresh := freshChartID(id, used)
		html = rewriteChartID(html, id, fresh)
		used[fresh] = true
		changed = true
	}
	if !changed {
		return s, nil
	}
	rebuilt, err := e.builder.buildSlide(html)
	if err != nil {
		return Slide{}, err
	}
	rebuilt.ID = s.ID
	return rebuilt, nil
}

// freshChartID derives a collision-free identifier from base by appending a
// short random suffix.
func freshChartID(base string, used map[string]bool) string {
	for {
		id := fmt.Sprintf("%s_%s", base, uuid.NewString()[:8])
		if !used[id] {
			return id
		}
	}
}

// rewriteChartID replaces old at the positions a chart id can syntactically
// occupy: a quoted attribute value or a quoted script argument, with an
// optional selector '#' prefix. Anchoring on the quotes covers the
// placeholder id attribute and every script reference form the builder
// recognizes, while tokens that merely embed the id ("chart-container",
// "rev_chart_total") stay untouched.
func rewriteChartID(fragment, old, fresh string) string {
	re := regexp.MustCompile("(['\"`]#?)" + regexp.QuoteMeta(old) + "(['\"`])")
	return re.ReplaceAllStringFunc(fragment, func(m string) string {
		head := 1
		if m[1] == '#' {
			head = 2
		}
		return m[:head] + fresh + m[len(m)-1:]
	})
}
