package deck

import (
	"encoding/json"
	"strings"
	"testing"
)

// decksEquivalent compares two decks structurally, ignoring slide ids
// (which are assigned at creation and intentionally differ across parses).
func decksEquivalent(a, b *SlideDeck) bool {
	if a.Title != b.Title || a.Prologue != b.Prologue || a.Epilogue != b.Epilogue || len(a.Slides) != len(b.Slides) {
		return false
	}
	for i := range a.Slides {
		as, bs := a.Slides[i], b.Slides[i]
		if as.HTML != bs.HTML || len(as.Charts) != len(bs.Charts) || len(as.OrphanScripts) != len(bs.OrphanScripts) {
			return false
		}
		for j := range as.Charts {
			if as.Charts[j] != bs.Charts[j] {
				return false
			}
		}
		for j := range as.OrphanScripts {
			if as.OrphanScripts[j] != bs.OrphanScripts[j] {
				return false
			}
		}
	}
	return true
}

func TestSerializer_RoundTrip(t *testing.T) {
	d := mustParse(t, sampleDoc)
	html := ToHTML(d)

	again, err := NewBuilder(nil).Parse(html)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if !decksEquivalent(d, again) {
		t.Errorf("round trip lost structure:\nfirst  = %#v\nsecond = %#v", d, again)
	}

	// Serialization is a pure function of the model.
	if ToHTML(d) != html {
		t.Error("ToHTML is not deterministic")
	}
}

func TestSerializer_RoundTripPreservesIntraSlideWhitespace(t *testing.T) {
	doc := "<html><body>\n<section class=\"slide\">\n  <pre>  spaced\n\tout  </pre>\n</section>\n</body></html>"
	d := mustParse(t, doc)
	again := mustParse(t, ToHTML(d))
	if d.Slides[0].HTML != again.Slides[0].HTML {
		t.Errorf("intra-slide whitespace changed:\n%q\n%q", d.Slides[0].HTML, again.Slides[0].HTML)
	}
}

func TestSerializer_ToProject(t *testing.T) {
	d := mustParse(t, sampleDoc)
	proj := ToProject(d)

	if len(proj) != 3 {
		t.Fatalf("projection len = %d, want 3", len(proj))
	}
	for i, p := range proj {
		if p.Index != i {
			t.Errorf("projection %d has index %d", i, p.Index)
		}
		if p.ID != d.Slides[i].ID || p.HTML != d.Slides[i].HTML {
			t.Errorf("projection %d does not mirror the slide", i)
		}
	}
	if len(proj[0].ChartIDs) != 1 || proj[0].ChartIDs[0] != "rev_chart" {
		t.Errorf("projection chart ids = %v, want [rev_chart]", proj[0].ChartIDs)
	}

	// The projection is handed straight to the webview; it must be
	// JSON-serializable.
	raw, err := json.Marshal(proj)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"chart_ids"`) {
		t.Error("projection JSON missing chart_ids")
	}
}

func TestSerializer_NoShell(t *testing.T) {
	d := mustParse(t, `<section class="slide">a</section>
<section class="slide">b</section>`)
	html := ToHTML(d)
	if strings.HasPrefix(html, "\n") || strings.HasSuffix(html, "\n") {
		t.Errorf("shell-less deck should not gain padding: %q", html)
	}
	again := mustParse(t, html)
	if !decksEquivalent(d, again) {
		t.Error("shell-less round trip lost structure")
	}
}
