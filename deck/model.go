package deck

import (
	"github.com/google/uuid"
)

// ChartRef describes one chart placeholder found inside a slide fragment.
type ChartRef struct {
	CanvasID  string `json:"canvas_id"`
	HasScript bool   `json:"has_script"` // true if an init script in the same fragment references CanvasID
}

// Slide is one presentation slide. HTML holds the exact fragment bytes as
// they appeared in the source document, including the boundary element
// itself; unedited slides round-trip byte-identically.
type Slide struct {
	ID            string     `json:"id"`
	HTML          string     `json:"html"`
	Charts        []ChartRef `json:"charts"`
	OrphanScripts []string   `json:"orphan_scripts,omitempty"` // chart ids referenced by scripts with no placeholder
}

// SlideDeck is the in-memory model of a full presentation document.
// Slide position is the slice index; it is never stored on the slide.
type SlideDeck struct {
	Title    string  `json:"title"`
	Prologue string  `json:"prologue"` // document bytes before the first slide (head, styles, global scripts)
	Epilogue string  `json:"epilogue"` // document bytes after the last slide
	Slides   []Slide `json:"slides"`
}

// newSlideID returns a fresh slide identifier. UUIDs guarantee ids are
// never reused within (or across) process lifetimes.
func newSlideID() string {
	return uuid.NewString()
}

// Len returns the slide count.
func (d *SlideDeck) Len() int {
	return len(d.Slides)
}

// Clone returns a copy of the deck whose slide slice can be mutated without
// affecting the original. Slide fragments are immutable strings and chart
// slices are rebuilt whenever a fragment changes, so a per-slide shallow
// copy is sufficient.
func (d *SlideDeck) Clone() *SlideDeck {
	out := &SlideDeck{
		Title:    d.Title,
		Prologue: d.Prologue,
		Epilogue: d.Epilogue,
		Slides:   make([]Slide, len(d.Slides)),
	}
	copy(out.Slides, d.Slides)
	return out
}

// SlideIDs returns the ids of all slides in order.
func (d *SlideDeck) SlideIDs() []string {
	ids := make([]string, len(d.Slides))
	for i, s := range d.Slides {
		ids[i] = s.ID
	}
	return ids
}

// chartIDSet collects every chart identifier used by slides whose index is
// not in the skip set. Both placeholder ids and script-referenced ids count:
// a remapped id must not collide with either.
func (d *SlideDeck) chartIDSet(skip map[int]bool) map[string]bool {
	used := make(map[string]bool)
	for i, s := range d.Slides {
		if skip[i] {
			continue
		}
		for _, c := range s.Charts {
			used[c.CanvasID] = true
		}
		for _, id := range s.OrphanScripts {
			used[id] = true
		}
	}
	return used
}
