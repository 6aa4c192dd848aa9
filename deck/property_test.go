package deck

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// genDeckDoc produces a random but well-formed presentation document with a
// mix of plain slides, wired charts, and dangling placeholders.
func genDeckDoc(t *rapid.T) string {
	n := rapid.IntRange(1, 8).Draw(t, "slideCount")
	var sb strings.Builder
	sb.WriteString("<html><head><title>Generated</title><style>.slide{}</style></head><body>\n")
	for i := 0; i < n; i++ {
		kind := rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("slideKind%d", i))
		switch kind {
		case 0:
			fmt.Fprintf(&sb, "<section class=\"slide\"><p>slide %d body</p></section>\n", i)
		case 1:
			fmt.Fprintf(&sb, "<section class=\"slide\"><canvas id=\"chart_%d\"></canvas><script>new Chart(document.getElementById('chart_%d'), {});</script></section>\n", i, i)
		default:
			fmt.Fprintf(&sb, "<section class=\"slide\"><canvas id=\"chart_%d\"></canvas></section>\n", i)
		}
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func genDeck(t *rapid.T) *SlideDeck {
	d, err := NewBuilder(nil).Parse(genDeckDoc(t))
	if err != nil {
		t.Fatalf("generated document failed to parse: %v", err)
	}
	return d
}

// Property 1: serializing any deck and reparsing it reconstructs the same
// structure, modulo the inter-slide whitespace rule and freshly assigned
// slide ids.
func TestProperty1_SerializeParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDeck(t)
		again, err := NewBuilder(nil).Parse(ToHTML(d))
		if err != nil {
			t.Fatalf("reparse failed: %v", err)
		}
		if !decksEquivalent(d, again) {
			t.Fatal("round trip changed deck structure")
		}
	})
}

// Property 2: the validator is pure; two runs over the same model return
// identical violation lists.
func TestProperty2_ValidatorIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDeck(t)
		first := Validate(d, DefaultPolicy())
		second := Validate(d, DefaultPolicy())
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("violation lists differ: %v vs %v", first, second)
		}
	})
}

// Property 3: moving a slide preserves the slide count and the id multiset;
// only the order changes.
func TestProperty3_MovePreservesIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDeck(t)
		from := rapid.IntRange(0, d.Len()-1).Draw(t, "from")
		to := rapid.IntRange(0, d.Len()-1).Draw(t, "to")

		nd, _, err := newTestEditor(DefaultPolicy()).Move(d, from, to)
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if nd.Len() != d.Len() {
			t.Fatal("move changed the slide count")
		}
		count := func(ids []string) map[string]int {
			m := make(map[string]int)
			for _, id := range ids {
				m[id]++
			}
			return m
		}
		if !reflect.DeepEqual(count(d.SlideIDs()), count(nd.SlideIDs())) {
			t.Fatal("move changed the slide id multiset")
		}
		if nd.Slides[to].ID != d.Slides[from].ID {
			t.Fatal("moved slide is not at the target position")
		}
	})
}

// Property 4: after duplicating any slide, no two slides share a chart id
// and the original slide is byte-identical to before.
func TestProperty4_DuplicateIsolation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDeck(t)
		i := rapid.IntRange(0, d.Len()-1).Draw(t, "index")
		beforeHTML := d.Slides[i].HTML

		nd, _, err := newTestEditor(DefaultPolicy()).Duplicate(d, i)
		if err != nil {
			t.Fatalf("Duplicate failed: %v", err)
		}
		if nd.Slides[i].HTML != beforeHTML {
			t.Fatal("original slide changed")
		}
		seen := make(map[string]bool)
		for _, s := range nd.Slides {
			for _, c := range s.Charts {
				if seen[c.CanvasID] {
					t.Fatalf("chart id %q shared between slides", c.CanvasID)
				}
				seen[c.CanvasID] = true
			}
		}
	})
}

// Property 5: a replace_range rejected for any reason leaves the committed
// deck completely untouched.
func TestProperty5_ReplaceRangeAtomicity(t *testing.T) {
	badFragments := []string{
		`<section class="slide">unclosed`,
		`</section>`,
		`<p>no slide sections here</p>`,
	}
	rapid.Check(t, func(t *rapid.T) {
		d := genDeck(t)
		start := rapid.IntRange(0, d.Len()-1).Draw(t, "start")
		end := rapid.IntRange(start, d.Len()-1).Draw(t, "end")
		before := d.Clone()

		frag := rapid.SampledFrom(badFragments).Draw(t, "fragment")
		_, _, err := newTestEditor(DefaultPolicy()).ReplaceRange(d, start, end, frag)
		if err == nil {
			t.Fatal("malformed fragment committed")
		}
		if !reflect.DeepEqual(d, before) {
			t.Fatal("rejected edit mutated the deck")
		}

		// Same guarantee when the rejection comes from fatal validation.
		strict := newTestEditor(Policy{MaxSlides: 50, StrictCharts: true})
		_, _, err = strict.ReplaceRange(d, start, end, `<section class="slide"><canvas id="lone"></canvas></section>`)
		if err == nil {
			t.Fatal("strict policy committed a dangling placeholder")
		}
		if !reflect.DeepEqual(d, before) {
			t.Fatal("fatally invalid edit mutated the deck")
		}
	})
}

// Property 6: replace_range reindexes correctly for any net growth or
// shrinkage, and slides outside the range keep their ids in order.
func TestProperty6_ReplaceRangeReindexes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genDeck(t)
		start := rapid.IntRange(0, d.Len()-1).Draw(t, "start")
		end := rapid.IntRange(start, d.Len()-1).Draw(t, "end")
		k := rapid.IntRange(0, 4).Draw(t, "replacementCount")
		if k == 0 && end-start+1 == d.Len() {
			// Emptying the whole deck is a policy rejection, covered elsewhere.
			k = 1
		}

		var sb strings.Builder
		for i := 0; i < k; i++ {
			fmt.Fprintf(&sb, "<section class=\"slide\"><p>replacement %d</p></section>\n", i)
		}

		nd, _, err := newTestEditor(DefaultPolicy()).ReplaceRange(d, start, end, sb.String())
		if err != nil {
			t.Fatalf("ReplaceRange failed: %v", err)
		}
		wantLen := d.Len() - (end - start + 1) + k
		if nd.Len() != wantLen {
			t.Fatalf("len = %d, want %d", nd.Len(), wantLen)
		}

		var wantOutside []string
		wantOutside = append(wantOutside, d.SlideIDs()[:start]...)
		wantOutside = append(wantOutside, d.SlideIDs()[end+1:]...)
		var gotOutside []string
		gotOutside = append(gotOutside, nd.SlideIDs()[:start]...)
		gotOutside = append(gotOutside, nd.SlideIDs()[start+k:]...)
		if !reflect.DeepEqual(wantOutside, gotOutside) {
			t.Fatalf("outside ids changed: %v vs %v", wantOutside, gotOutside)
		}
	})
}
