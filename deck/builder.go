package deck

import (
	"fmt"
	"regexp"
	"strings"
)

// Boundary convention: a slide is a top-level <section> element whose class
// attribute contains the token "slide" (or that carries a data-slide-id
// attribute). Everything before the first slide is the document prologue
// (head, shared styles, global scripts) and everything after the last slide
// is the epilogue. Slide fragments are raw byte slices of the input, so a
// slide that is not edited round-trips byte-identically.
//
// Non-whitespace content between two slides cannot be attributed to either
// the shell or a slide and is rejected as a ParseError, as are unbalanced
// section tags.

// Builder segments raw HTML into a SlideDeck and extracts chart references.
type Builder struct {
	tree TreeAdapter
}

// NewBuilder creates a Builder. A nil adapter selects the goquery-backed
// default.
func NewBuilder(tree TreeAdapter) *Builder {
	if tree == nil {
		tree = NewGoqueryAdapter()
	}
	return &Builder{tree: tree}
}

// Parse builds a SlideDeck from a full presentation document. It fails only
// when the input cannot be segmented into shell + ordered slides at all;
// chart placeholder/script mismatches are recorded on the slides and left
// for the validator.
func (b *Builder) Parse(html string) (*SlideDeck, error) {
	frags, first, last, err := b.segment(html)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, &ParseError{Reason: "no slide sections found in document"}
	}

	d := &SlideDeck{
		Title:    b.tree.Title(html),
		Prologue: strings.TrimRight(html[:first], " \t\r\n"),
		Epilogue: strings.TrimLeft(html[last:], " \t\r\n"),
		Slides:   make([]Slide, 0, len(frags)),
	}
	for _, f := range frags {
		s, err := b.buildSlide(f)
		if err != nil {
			return nil, err
		}
		d.Slides = append(d.Slides, s)
	}
	return d, nil
}

// ParseFragment parses an edit fragment into zero or more slide units. The
// fragment may be a bare sequence of slide sections or a full document, in
// which case its shell is discarded. A non-empty fragment with no slide
// sections at all is a ParseError.
func (b *Builder) ParseFragment(html string) ([]Slide, error) {
	frags, _, _, err := b.segment(html)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		if strings.TrimSpace(html) == "" {
			return nil, nil
		}
		return nil, &ParseError{Reason: "fragment contains no slide sections"}
	}
	slides := make([]Slide, 0, len(frags))
	for _, f := range frags {
		s, err := b.buildSlide(f)
		if err != nil {
			return nil, err
		}
		slides = append(slides, s)
	}
	return slides, nil
}

// buildSlide wraps a raw fragment into a Slide with a fresh id and derived
// chart references.
func (b *Builder) buildSlide(fragment string) (Slide, error) {
	charts, orphans, err := b.extractCharts(fragment)
	if err != nil {
		return Slide{}, &ParseError{Reason: fmt.Sprintf("inspect slide fragment: %v", err)}
	}
	return Slide{
		ID:            newSlideID(),
		HTML:          fragment,
		Charts:        charts,
		OrphanScripts: orphans,
	}, nil
}

// sectionToken is one <section ...> or </section> occurrence in the raw text.
type sectionToken struct {
	start     int // index of '<'
	end       int // index just past '>'
	open      bool
	selfClose bool
	tag       string // full tag text for open tokens
}

var (
	classAttrRe = regexp.MustCompile(`(?i)class\s*=\s*["']([^"']*)["']`)
	dataSlideRe = regexp.MustCompile(`(?i)\bdata-slide-id\s*=`)
)

// isSlideTag reports whether an opening section tag marks a slide boundary.
func isSlideTag(tag string) bool {
	if dataSlideRe.MatchString(tag) {
		return true
	}
	if m := classAttrRe.FindStringSubmatch(tag); m != nil {
		for _, cls := range strings.Fields(m[1]) {
			if strings.EqualFold(cls, "slide") {
				return true
			}
		}
	}
	return false
}

// scanSectionTokens finds every section open/close tag in raw text order.
func scanSectionTokens(raw string) ([]sectionToken, error) {
	lower := strings.ToLower(raw)
	var toks []sectionToken
	for i := 0; i < len(lower); {
		openIdx := strings.Index(lower[i:], "<section")
		closeIdx := strings.Index(lower[i:], "</section")
		if openIdx == -1 && closeIdx == -1 {
			break
		}
		if closeIdx != -1 && (openIdx == -1 || closeIdx < openIdx) {
			pos := i + closeIdx
			gt := strings.IndexByte(raw[pos:], '>')
			if gt == -1 {
				return nil, &ParseError{Reason: "unterminated </section> tag"}
			}
			toks = append(toks, sectionToken{start: pos, end: pos + gt + 1, open: false})
			i = pos + gt + 1
			continue
		}
		pos := i + openIdx
		after := pos + len("<section")
		// Reject prefixes of longer tag names ("<sections", custom elements).
		if after < len(raw) {
			c := raw[after]
			if c != '>' && c != '/' && c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				i = after
				continue
			}
		}
		gt := strings.IndexByte(raw[pos:], '>')
		if gt == -1 {
			return nil, &ParseError{Reason: "unterminated <section> tag"}
		}
		tag := raw[pos : pos+gt+1]
		toks = append(toks, sectionToken{
			start:     pos,
			end:       pos + gt + 1,
			open:      true,
			selfClose: strings.HasSuffix(tag, "/>"),
			tag:       tag,
		})
		i = pos + gt + 1
	}
	return toks, nil
}

// segment returns the raw fragments of all top-level slide sections plus the
// byte offsets of the first fragment start and last fragment end.
func (b *Builder) segment(raw string) ([]string, int, int, error) {
	toks, err := scanSectionTokens(raw)
	if err != nil {
		return nil, 0, 0, err
	}

	var frags []string
	var spans [][2]int
	depth := 0
	curStart := 0
	curIsSlide := false
	for _, t := range toks {
		if t.open {
			if depth == 0 {
				curStart = t.start
				curIsSlide = isSlideTag(t.tag)
			}
			if t.selfClose {
				if depth == 0 && curIsSlide {
					frags = append(frags, raw[t.start:t.end])
					spans = append(spans, [2]int{t.start, t.end})
				}
				continue
			}
			depth++
			continue
		}
		depth--
		if depth < 0 {
			return nil, 0, 0, &ParseError{Reason: "closing </section> without matching open tag"}
		}
		if depth == 0 && curIsSlide {
			frags = append(frags, raw[curStart:t.end])
			spans = append(spans, [2]int{curStart, t.end})
		}
	}
	if depth != 0 {
		return nil, 0, 0, &ParseError{Reason: fmt.Sprintf("unbalanced slide boundaries: %d unclosed section tag(s)", depth)}
	}

	for k := 1; k < len(spans); k++ {
		gap := raw[spans[k-1][1]:spans[k][0]]
		if strings.TrimSpace(gap) != "" {
			return nil, 0, 0, &ParseError{Reason: fmt.Sprintf("non-whitespace content between slides %d and %d", k-1, k)}
		}
	}

	if len(spans) == 0 {
		return nil, 0, 0, nil
	}
	return frags, spans[0][0], spans[len(spans)-1][1], nil
}

// scriptIDPatterns match the ways a chart init script targets its
// placeholder: getElementById, Chart.js string shorthand, querySelector.
var scriptIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`getElementById\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`new\s+Chart\(\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`querySelector\(\s*['"]#([^'"]+)['"]\s*\)`),
}

// extractCharts scans one slide fragment for chart placeholders and the
// script-referenced identifiers, pairing them up. A placeholder with no
// script keeps HasScript=false; script ids with no placeholder are returned
// as orphans. Neither is an error here.
func (b *Builder) extractCharts(fragment string) ([]ChartRef, []string, error) {
	canvases, err := b.tree.CanvasIDs(fragment)
	if err != nil {
		return nil, nil, err
	}
	scripts, err := b.tree.ScriptTexts(fragment)
	if err != nil {
		return nil, nil, err
	}

	referenced := make(map[string]bool)
	var refOrder []string
	for _, txt := range scripts {
		for _, re := range scriptIDPatterns {
			for _, m := range re.FindAllStringSubmatch(txt, -1) {
				if id := m[1]; id != "" && !referenced[id] {
					referenced[id] = true
					refOrder = append(refOrder, id)
				}
			}
		}
	}

	var charts []ChartRef
	placed := make(map[string]bool)
	for _, id := range canvases {
		charts = append(charts, ChartRef{CanvasID: id, HasScript: referenced[id]})
		placed[id] = true
	}
	var orphans []string
	for _, id := range refOrder {
		if !placed[id] {
			orphans = append(orphans, id)
		}
	}
	return charts, orphans, nil
}
