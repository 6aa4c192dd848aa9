package deck

import (
	"strings"
)

// ToHTML reconstructs the canonical full-document HTML: prologue, each
// slide fragment in order, epilogue, joined by single newlines.
//
// Whitespace rule: whitespace between slides (and between the shell and the
// first/last slide) is not semantically meaningful and normalizes to one
// newline; bytes inside a slide fragment are emitted verbatim. Under that
// rule Parse(ToHTML(d)) reconstructs a deck equal to d.
func ToHTML(d *SlideDeck) string {
	var sb strings.Builder
	if d.Prologue != "" {
		sb.WriteString(d.Prologue)
		sb.WriteString("\n")
	}
	for i, s := range d.Slides {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.HTML)
	}
	if d.Epilogue != "" {
		sb.WriteString("\n")
		sb.WriteString(d.Epilogue)
	}
	return sb.String()
}

// SlideProjection is the per-slide view handed to the editing UI.
type SlideProjection struct {
	Index    int      `json:"index"`
	ID       string   `json:"id"`
	HTML     string   `json:"html"`
	ChartIDs []string `json:"chart_ids"`
}

// ToProject returns the structured projection of the deck for API/UI
// consumption.
func ToProject(d *SlideDeck) []SlideProjection {
	out := make([]SlideProjection, len(d.Slides))
	for i, s := range d.Slides {
		ids := make([]string, 0, len(s.Charts))
		for _, c := range s.Charts {
			ids = append(ids, c.CanvasID)
		}
		out[i] = SlideProjection{
			Index:    i,
			ID:       s.ID,
			HTML:     s.HTML,
			ChartIDs: ids,
		}
	}
	return out
}
