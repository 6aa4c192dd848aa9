package agent

import (
	"regexp"
	"strings"
)

var fencedHTMLRe = regexp.MustCompile("(?s)```(?:html)?\\s*\n(.*?)```")

// ExtractHTML pulls the HTML payload out of an LLM reply. Models routinely
// wrap their output in markdown fences or add commentary before and after;
// the deck builder expects bare markup.
func ExtractHTML(reply string) string {
	if m := fencedHTMLRe.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}

	// No fence: cut from the first markup the builder understands to the
	// last closing angle bracket.
	lower := strings.ToLower(reply)
	start := -1
	for _, marker := range []string{"<!doctype", "<html", "<section"} {
		if idx := strings.Index(lower, marker); idx != -1 && (start == -1 || idx < start) {
			start = idx
		}
	}
	if start == -1 {
		return strings.TrimSpace(reply)
	}
	end := strings.LastIndex(reply, ">")
	if end == -1 || end < start {
		return strings.TrimSpace(reply[start:])
	}
	return strings.TrimSpace(reply[start : end+1])
}
