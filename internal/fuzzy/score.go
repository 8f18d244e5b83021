package fuzzy

import (
	"strings"

	"golang.org/x/net/html"
)

// Score tiers. A candidate's score is the best tier it reaches, never a sum.
const (
	ScoreImmediateExact     = 1000
	ScoreImmediateSubstring = 800
	ScoreAttributeExact     = 600
	ScoreAttributeSubstring = 400
	ScoreFullTextExact      = 200
	ScoreFullTextSubstring  = 100
	// ScoreEmpty separates an element with no text at all from one whose
	// text is unrelated to the label.
	ScoreEmpty = 1
)

// substringWeight is the trim floor: when the best candidate scores above it,
// candidates below it are treated as noise.
const substringWeight = ScoreAttributeSubstring

var scoredAttributes = []struct {
	name   string
	weight int
}{
	{name: "aria-label", weight: 30},
	{name: "id", weight: 20},
	{name: "class", weight: 10},
	{name: "title"},
	{name: "placeholder"},
	{name: "value"},
}

// score rates how strongly n is labeled by query. immediate is the text to
// treat as n's own (its direct text children, or a label's text).
func score(n *html.Node, query, immediate, full string) int {
	best := tier(immediate, query, ScoreImmediateExact, ScoreImmediateSubstring)

	for _, a := range scoredAttributes {
		v, ok := attr(n, a.name)
		if !ok {
			continue
		}

		if s := tier(v, query, ScoreAttributeExact+a.weight, ScoreAttributeSubstring+a.weight); s > best {
			best = s
		}
	}

	if best > 0 {
		return best
	}

	// Full text equal to the label with nothing richer to go on is as good as
	// the element's own text.
	switch tier(full, query, ScoreFullTextExact, ScoreFullTextSubstring) {
	case ScoreFullTextExact:
		return ScoreImmediateExact
	case ScoreFullTextSubstring:
		return ScoreFullTextSubstring
	}

	if strings.TrimSpace(full) == "" {
		return ScoreEmpty
	}

	return 0
}

func tier(text, query string, exact, substring int) int {
	switch {
	case text == "" || query == "":
		return 0
	case matchExact.matches(text, query):
		return exact
	case matchSubstring.matches(text, query):
		return substring
	default:
		return 0
	}
}

// scoreCandidate scores a deduplicated candidate, taking the best of its own
// immediate text and every override its duplicates carried.
func (d *document) scoreCandidate(c Candidate, query string) int {
	full := d.fullText(c.Node)
	best := score(c.Node, query, immediateText(c.Node), full)

	for _, o := range c.overrides {
		if s := score(c.Node, query, o, full); s > best {
			best = s
		}
	}

	return best
}
