package deck

import (
	"reflect"
	"testing"
)

func slideWithChart(id, canvasID string, wired bool) Slide {
	return Slide{
		ID:     id,
		HTML:   `<section class="slide"><canvas id="` + canvasID + `"></canvas></section>`,
		Charts: []ChartRef{{CanvasID: canvasID, HasScript: wired}},
	}
}

func TestValidate_CleanDeck(t *testing.T) {
	d := &SlideDeck{Slides: []Slide{
		slideWithChart("a", "c1", true),
		{ID: "b", HTML: `<section class="slide">text</section>`},
	}}
	if vs := Validate(d, DefaultPolicy()); len(vs) != 0 {
		t.Errorf("violations = %v, want none", vs)
	}
}

func TestValidate_DuplicateSlideID(t *testing.T) {
	d := &SlideDeck{Slides: []Slide{
		{ID: "a", HTML: "<section class=\"slide\">1</section>"},
		{ID: "a", HTML: "<section class=\"slide\">2</section>"},
	}}
	vs := Validate(d, DefaultPolicy())
	if len(vs) != 1 || vs[0].Kind != DuplicateSlideID || vs[0].SlideIndex != 1 {
		t.Fatalf("violations = %v, want one DuplicateSlideID at slide 1", vs)
	}
	if !vs[0].Fatal(DefaultPolicy()) {
		t.Error("DuplicateSlideID must be fatal")
	}
}

func TestValidate_InternalConsistency(t *testing.T) {
	d := &SlideDeck{Slides: []Slide{{HTML: "<section class=\"slide\">no id</section>"}}}
	vs := Validate(d, DefaultPolicy())
	if len(vs) != 1 || vs[0].Kind != NonContiguousIndex {
		t.Fatalf("violations = %v, want NonContiguousIndex", vs)
	}
}

func TestValidate_DeckTooLarge(t *testing.T) {
	p := Policy{MaxSlides: 2}
	d := &SlideDeck{Slides: []Slide{
		{ID: "a", HTML: "<section class=\"slide\">1</section>"},
		{ID: "b", HTML: "<section class=\"slide\">2</section>"},
		{ID: "c", HTML: "<section class=\"slide\">3</section>"},
	}}
	vs := Validate(d, p)
	if len(vs) != 1 || vs[0].Kind != DeckTooLarge || vs[0].SlideIndex != -1 {
		t.Fatalf("violations = %v, want deck-level DeckTooLarge", vs)
	}
}

func TestValidate_EmptyDeckPolicy(t *testing.T) {
	d := &SlideDeck{}
	if vs := Validate(d, DefaultPolicy()); len(vs) != 1 || vs[0].Kind != EmptyDeck {
		t.Errorf("default policy: violations = %v, want EmptyDeck", vs)
	}
	if vs := Validate(d, Policy{AllowEmptyDeck: true}); len(vs) != 0 {
		t.Errorf("AllowEmptyDeck: violations = %v, want none", vs)
	}
}

func TestValidate_ChartMismatchesAdvisoryByDefault(t *testing.T) {
	d := &SlideDeck{Slides: []Slide{
		slideWithChart("a", "c1", false),
		{ID: "b", HTML: "<section class=\"slide\"></section>", OrphanScripts: []string{"ghost"}},
	}}

	vs := Validate(d, DefaultPolicy())
	if len(vs) != 2 {
		t.Fatalf("violations = %v, want 2", vs)
	}
	if vs[0].Kind != DanglingChartPlaceholder || vs[0].SlideIndex != 0 {
		t.Errorf("vs[0] = %v, want DanglingChartPlaceholder at 0", vs[0])
	}
	if vs[1].Kind != OrphanChartScript || vs[1].SlideIndex != 1 {
		t.Errorf("vs[1] = %v, want OrphanChartScript at 1", vs[1])
	}

	lax := DefaultPolicy()
	if HasFatal(vs, lax) {
		t.Error("chart mismatches must be advisory under the default policy")
	}
	strict := Policy{MaxSlides: 50, StrictCharts: true}
	if !HasFatal(vs, strict) {
		t.Error("chart mismatches must be fatal under StrictCharts")
	}
	if adv := Advisories(vs, strict); len(adv) != 0 {
		t.Errorf("strict advisories = %v, want none", adv)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	d := &SlideDeck{Slides: []Slide{
		slideWithChart("a", "c1", false),
		{ID: "a", HTML: "<section class=\"slide\">dup</section>", OrphanScripts: []string{"z", "y"}},
	}}
	first := Validate(d, DefaultPolicy())
	second := Validate(d, DefaultPolicy())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("validator not idempotent:\nfirst  = %v\nsecond = %v", first, second)
	}
}
