package deck

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = `<!DOCTYPE html>
<html>
<head>
<title>Q3 Review</title>
<style>.slide{width:1280px;height:720px}</style>
</head>
<body>
<section class="slide" data-slide-id="s1">
  <h1>Revenue</h1>
  <canvas id="rev_chart"></canvas>
  <script>new Chart(document.getElementById('rev_chart'), {type:'bar'});</script>
</section>
<section class="slide" data-slide-id="s2">
  <h2>Costs</h2>
  <canvas id="cost_chart"></canvas>
  <script>new Chart(document.getElementById('cost_chart'), {type:'line'});</script>
</section>
<section class="slide" data-slide-id="s3">
  <h2>Summary</h2>
</section>
<script>console.log('deck ready');</script>
</body>
</html>`

func mustParse(t *testing.T, html string) *SlideDeck {
	t.Helper()
	d, err := NewBuilder(nil).Parse(html)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return d
}

func TestBuilder_ParseSegmentsShellAndSlides(t *testing.T) {
	d := mustParse(t, sampleDoc)

	if d.Title != "Q3 Review" {
		t.Errorf("title = %q, want %q", d.Title, "Q3 Review")
	}
	if len(d.Slides) != 3 {
		t.Fatalf("slide count = %d, want 3", len(d.Slides))
	}
	if !strings.Contains(d.Prologue, "<style>") || strings.Contains(d.Prologue, "<section") {
		t.Errorf("prologue should contain the style block and no slides: %q", d.Prologue)
	}
	if !strings.Contains(d.Epilogue, "deck ready") {
		t.Errorf("epilogue should contain the trailing global script: %q", d.Epilogue)
	}
}

func TestBuilder_SlideFragmentsAreVerbatim(t *testing.T) {
	d := mustParse(t, sampleDoc)

	for i, s := range d.Slides {
		if !strings.Contains(sampleDoc, s.HTML) {
			t.Errorf("slide %d fragment is not a byte slice of the source", i)
		}
		if !strings.HasPrefix(s.HTML, "<section") || !strings.HasSuffix(s.HTML, "</section>") {
			t.Errorf("slide %d fragment lost its boundary element: %q", i, s.HTML)
		}
	}
}

func TestBuilder_ChartExtraction(t *testing.T) {
	d := mustParse(t, sampleDoc)

	if len(d.Slides[0].Charts) != 1 {
		t.Fatalf("slide 0 charts = %d, want 1", len(d.Slides[0].Charts))
	}
	c := d.Slides[0].Charts[0]
	if c.CanvasID != "rev_chart" || !c.HasScript {
		t.Errorf("slide 0 chart = %+v, want rev_chart with script", c)
	}
	if len(d.Slides[2].Charts) != 0 {
		t.Errorf("slide 2 should have no charts, got %+v", d.Slides[2].Charts)
	}
}

func TestBuilder_DanglingAndOrphanRecordedNotFatal(t *testing.T) {
	doc := `<html><body>
<section class="slide">
  <canvas id="c1"></canvas>
</section>
<section class="slide">
  <script>new Chart(document.getElementById('ghost'), {});</script>
</section>
</body></html>`
	d := mustParse(t, doc)

	if got := d.Slides[0].Charts; len(got) != 1 || got[0].HasScript {
		t.Errorf("slide 0 charts = %+v, want one dangling placeholder", got)
	}
	if got := d.Slides[1].OrphanScripts; len(got) != 1 || got[0] != "ghost" {
		t.Errorf("slide 1 orphan scripts = %v, want [ghost]", got)
	}
}

func TestBuilder_ParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no slides", `<html><body><p>hello</p></body></html>`},
		{"unclosed section", `<html><body><section class="slide"><h1>a</h1></body></html>`},
		{"stray close", `<html><body></section></body></html>`},
		{"content between slides", `<section class="slide">a</section><p>stray</p><section class="slide">b</section>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuilder(nil).Parse(tc.doc)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%s) error = %v, want ParseError", tc.name, err)
			}
		})
	}
}

func TestBuilder_ParseFragment(t *testing.T) {
	b := NewBuilder(nil)

	units, err := b.ParseFragment(`<section class="slide">one</section>
<section class="slide">two</section>`)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("units = %d, want 2", len(units))
	}
	if units[0].ID == units[1].ID {
		t.Error("fragment slides must get distinct ids")
	}

	// A full document is accepted; its shell is discarded.
	units, err = b.ParseFragment(sampleDoc)
	if err != nil {
		t.Fatalf("ParseFragment(full doc) failed: %v", err)
	}
	if len(units) != 3 {
		t.Errorf("full doc fragment units = %d, want 3", len(units))
	}

	// Whitespace-only fragments collapse to zero units.
	units, err = b.ParseFragment("  \n\t ")
	if err != nil || len(units) != 0 {
		t.Errorf("whitespace fragment = (%d units, %v), want (0, nil)", len(units), err)
	}

	// Non-empty content with no slide sections is a parse failure.
	if _, err = b.ParseFragment("<p>not a slide</p>"); err == nil {
		t.Error("fragment without sections should fail")
	}
}

func TestBuilder_NestedSectionsStayInsideSlide(t *testing.T) {
	doc := `<html><body>
<section class="slide">
  <section class="column"><p>left</p></section>
  <section class="column"><p>right</p></section>
</section>
</body></html>`
	d := mustParse(t, doc)
	if len(d.Slides) != 1 {
		t.Fatalf("slide count = %d, want 1 (nested sections are slide content)", len(d.Slides))
	}
	if !strings.Contains(d.Slides[0].HTML, "right") {
		t.Error("nested sections must stay inside the slide fragment")
	}
}

// syntheticTree exercises the builder against a fake tree adapter, keeping
// it independent of goquery.
type syntheticTree struct {
	canvases map[string][]string
	scripts  map[string][]string
}

func (s *syntheticTree) CanvasIDs(fragment string) ([]string, error) {
	return s.canvases[fragment], nil
}

func (s *syntheticTree) ScriptTexts(fragment string) ([]string, error) {
	return s.scripts[fragment], nil
}

func (s *syntheticTree) Title(string) string { return "synthetic" }

func TestBuilder_SyntheticTreeAdapter(t *testing.T) {
	frag := `<section class="slide">x</section>`
	tree := &syntheticTree{
		canvases: map[string][]string{frag: {"k1"}},
		scripts:  map[string][]string{frag: {"document.getElementById('k1')"}},
	}
	d, err := NewBuilder(tree).Parse(frag)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Title != "synthetic" {
		t.Errorf("title = %q", d.Title)
	}
	if len(d.Slides[0].Charts) != 1 || !d.Slides[0].Charts[0].HasScript {
		t.Errorf("charts = %+v, want wired k1", d.Slides[0].Charts)
	}
}
