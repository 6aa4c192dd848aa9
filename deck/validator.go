package deck

import (
	"fmt"
	"sort"
)

// ViolationKind classifies a structural violation found by Validate.
type ViolationKind string

const (
	// DuplicateSlideID: two slides share an id. Fatal.
	DuplicateSlideID ViolationKind = "duplicate_slide_id"
	// NonContiguousIndex: the model's ordering/identity is internally
	// corrupt (a slide without an id). Structurally impossible through the
	// public API; kept as an internal consistency check. Fatal.
	NonContiguousIndex ViolationKind = "non_contiguous_index"
	// DanglingChartPlaceholder: a chart placeholder with no init script in
	// its slide. Advisory unless Policy.StrictCharts.
	DanglingChartPlaceholder ViolationKind = "dangling_chart_placeholder"
	// OrphanChartScript: a script references a chart id with no placeholder
	// in its slide. Advisory unless Policy.StrictCharts.
	OrphanChartScript ViolationKind = "orphan_chart_script"
	// DeckTooLarge: slide count exceeds Policy.MaxSlides. Fatal.
	DeckTooLarge ViolationKind = "deck_too_large"
	// EmptyDeck: the deck has no slides and Policy.AllowEmptyDeck is off.
	// Fatal.
	EmptyDeck ViolationKind = "empty_deck"
)

// Violation describes one structural problem. SlideIndex is -1 for
// deck-level violations.
type Violation struct {
	Kind       ViolationKind `json:"kind"`
	SlideIndex int           `json:"slide_index"`
	Detail     string        `json:"detail"`
}

func (v Violation) String() string {
	if v.SlideIndex < 0 {
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("%s at slide %d: %s", v.Kind, v.SlideIndex, v.Detail)
}

// Policy configures validation limits and the advisory-vs-fatal treatment
// of chart wiring mismatches.
type Policy struct {
	// MaxSlides caps the deck size. Zero or negative means unlimited.
	MaxSlides int `json:"max_slides"`
	// StrictCharts promotes dangling placeholders and orphan scripts from
	// advisory to fatal.
	StrictCharts bool `json:"strict_charts"`
	// AllowEmptyDeck permits committing a deck with zero slides.
	AllowEmptyDeck bool `json:"allow_empty_deck"`
}

// DefaultPolicy mirrors the shipped deployment defaults.
func DefaultPolicy() Policy {
	return Policy{MaxSlides: 50}
}

// Fatal reports whether a violation of this kind blocks a commit under the
// given policy.
func (v Violation) Fatal(p Policy) bool {
	switch v.Kind {
	case DuplicateSlideID, NonContiguousIndex, DeckTooLarge, EmptyDeck:
		return true
	case DanglingChartPlaceholder, OrphanChartScript:
		return p.StrictCharts
	default:
		return true
	}
}

// HasFatal reports whether any violation in the list is fatal under p.
func HasFatal(vs []Violation, p Policy) bool {
	for _, v := range vs {
		if v.Fatal(p) {
			return true
		}
	}
	return false
}

// Advisories returns the non-fatal subset of vs under p.
func Advisories(vs []Violation, p Policy) []Violation {
	var out []Violation
	for _, v := range vs {
		if !v.Fatal(p) {
			out = append(out, v)
		}
	}
	return out
}

// Validate inspects a deck and reports every violation. It is pure and
// deterministic: it never mutates the deck and two calls on the same model
// return the same list in the same order.
func Validate(d *SlideDeck, p Policy) []Violation {
	var vs []Violation

	if len(d.Slides) == 0 && !p.AllowEmptyDeck {
		vs = append(vs, Violation{
			Kind:       EmptyDeck,
			SlideIndex: -1,
			Detail:     "deck has no slides",
		})
	}
	if p.MaxSlides > 0 && len(d.Slides) > p.MaxSlides {
		vs = append(vs, Violation{
			Kind:       DeckTooLarge,
			SlideIndex: -1,
			Detail:     fmt.Sprintf("%d slides exceed the configured maximum of %d", len(d.Slides), p.MaxSlides),
		})
	}

	seen := make(map[string]int, len(d.Slides))
	for i, s := range d.Slides {
		if s.ID == "" {
			vs = append(vs, Violation{
				Kind:       NonContiguousIndex,
				SlideIndex: i,
				Detail:     "slide has no identity; model ordering is corrupt",
			})
			continue
		}
		if first, dup := seen[s.ID]; dup {
			vs = append(vs, Violation{
				Kind:       DuplicateSlideID,
				SlideIndex: i,
				Detail:     fmt.Sprintf("id %q already used by slide %d", s.ID, first),
			})
		} else {
			seen[s.ID] = i
		}
	}

	for i, s := range d.Slides {
		for _, c := range s.Charts {
			if !c.HasScript {
				vs = append(vs, Violation{
					Kind:       DanglingChartPlaceholder,
					SlideIndex: i,
					Detail:     fmt.Sprintf("chart placeholder %q has no init script", c.CanvasID),
				})
			}
		}
		for _, id := range s.OrphanScripts {
			vs = append(vs, Violation{
				Kind:       OrphanChartScript,
				SlideIndex: i,
				Detail:     fmt.Sprintf("script references chart id %q with no placeholder", id),
			})
		}
	}

	sort.SliceStable(vs, func(a, b int) bool {
		if vs[a].SlideIndex != vs[b].SlideIndex {
			return vs[a].SlideIndex < vs[b].SlideIndex
		}
		if vs[a].Kind != vs[b].Kind {
			return vs[a].Kind < vs[b].Kind
		}
		return vs[a].Detail < vs[b].Detail
	})
	return vs
}
