package deck

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TreeAdapter is the narrow boundary to the external HTML tree library.
// The builder only uses the tree for inspection (placeholder ids, script
// texts, document title); it never serializes a tree back to text, so
// round-trip byte fidelity stays with the raw-text scanner in builder.go.
// Tests can substitute a synthetic implementation.
type TreeAdapter interface {
	// CanvasIDs returns the id attributes of chart placeholder elements
	// (canvas tags carrying an id) in document order.
	CanvasIDs(fragment string) ([]string, error)
	// ScriptTexts returns the text content of every script element in the
	// fragment, in document order.
	ScriptTexts(fragment string) ([]string, error)
	// Title returns the document title, or "" if none.
	Title(doc string) string
}

// GoqueryAdapter implements TreeAdapter on top of goquery.
type GoqueryAdapter struct{}

// NewGoqueryAdapter returns the default tree adapter.
func NewGoqueryAdapter() *GoqueryAdapter {
	return &GoqueryAdapter{}
}

func (a *GoqueryAdapter) CanvasIDs(fragment string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}
	var ids []string
	doc.Find("canvas[id]").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := sel.Attr("id"); ok && id != "" {
			ids = append(ids, id)
		}
	})
	return ids, nil
}

func (a *GoqueryAdapter) ScriptTexts(fragment string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}
	var texts []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if t := sel.Text(); strings.TrimSpace(t) != "" {
			texts = append(texts, t)
		}
	})
	return texts, nil
}

func (a *GoqueryAdapter) Title(docHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(docHTML))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
