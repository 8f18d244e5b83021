package fuzzy

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// inspectedAttributes are the attributes a label may be carried in.
var inspectedAttributes = []string{"aria-label", "title", "placeholder", "value"}

type pattern struct {
	raw string
	sel cascadia.Selector
}

// collector runs the discovery rules for one label against one document.
// Every rule returns its own candidates; collect concatenates them.
type collector struct {
	doc      *document
	label    string
	patterns []pattern
	settings settings
	logger   *zap.Logger
}

type rule struct {
	strategy  Strategy
	exactOnly bool
	run       func(c *collector, mode matchMode, p pattern) []Candidate
}

var (
	contentRules = []rule{
		{strategy: StrategyOwnText, run: (*collector).ownText},
		{strategy: StrategyAttribute, run: (*collector).attribute},
		{strategy: StrategyLiveValue, run: (*collector).liveValue},
		{strategy: StrategyLabelFor, run: (*collector).labelFor},
		{strategy: StrategyNestedText, run: (*collector).nestedText},
		{strategy: StrategyNestedAttribute, exactOnly: true, run: (*collector).nestedAttribute},
	}

	proximityRules = []rule{
		{strategy: StrategyAdjacentSibling, run: (*collector).adjacentSibling},
		{strategy: StrategyTextSibling, exactOnly: true, run: (*collector).textSibling},
	}

	fallbackRules = []rule{
		{strategy: StrategyAnySibling, run: (*collector).anySibling},
		{strategy: StrategyCommonAncestor, run: (*collector).commonAncestor},
	}
)

func newCollector(doc *document, label string, patterns []string, s settings, logger *zap.Logger) *collector {
	c := &collector{
		doc:      doc,
		label:    label,
		settings: s,
		logger:   logger,
	}

	for _, raw := range patterns {
		sel, err := NewQuery(raw).Compile()
		if err != nil {
			logger.Debug("skipping pattern", zap.String("pattern", raw), zap.Error(err))
		}
		c.patterns = append(c.patterns, pattern{raw: strings.TrimSpace(raw), sel: sel})
	}

	return c
}

func (c *collector) collect() []Candidate {
	var out []Candidate

	for _, mode := range matchModes {
		out = append(out, c.apply(contentRules, mode)...)
		if !c.settings.restrict {
			out = append(out, c.apply(proximityRules, mode)...)
		}
	}

	if !c.settings.restrict {
		for _, mode := range matchModes {
			out = append(out, c.apply(fallbackRules, mode)...)
		}
	}

	for i := range out {
		out[i].Order = i
	}

	return out
}

func (c *collector) apply(rules []rule, mode matchMode) []Candidate {
	var out []Candidate

	for _, r := range rules {
		if c.settings.disabled[r.strategy] {
			continue
		}

		m := mode
		if r.exactOnly {
			m = matchExact
		}

		for _, p := range c.patterns {
			found := r.run(c, m, p)
			if len(found) > 0 {
				c.logger.Debug("rule matched",
					zap.String("strategy", string(r.strategy)),
					zap.String("mode", m.String()),
					zap.String("pattern", p.raw),
					zap.Int("count", len(found)))
			}
			out = append(out, found...)
		}
	}

	return out
}

func (c *collector) candidate(n *html.Node, s Strategy, label string) Candidate {
	return Candidate{Node: n, Strategy: s, Label: label}
}

// <p>label</p>
func (c *collector) ownText(mode matchMode, p pattern) []Candidate {
	var out []Candidate
	desc := fmt.Sprintf("<%s>%s</%s>", p.raw, mode.quoted(c.label), p.raw)

	for _, n := range c.doc.find(p.sel) {
		if c.doc.isVisible(n) && mode.matches(c.doc.fullText(n), c.label) {
			out = append(out, c.candidate(n, StrategyOwnText, desc))
		}
	}

	return out
}

// <p attribute="label">
func (c *collector) attribute(mode matchMode, p pattern) []Candidate {
	var out []Candidate

	for _, name := range inspectedAttributes {
		q := NewQuery(p.raw)
		op := "="
		if mode == matchExact {
			q = q.AttrEquals(name, strings.TrimSpace(c.label))
		} else {
			q = q.AttrContains(name, c.label)
			op = "*="
		}

		sel, err := q.Compile()
		if err != nil {
			continue
		}

		desc := fmt.Sprintf("<%s %s%s%q>", p.raw, name, op, c.label)
		for _, n := range c.doc.find(sel) {
			if c.doc.isVisible(n) {
				out = append(out, c.candidate(n, StrategyAttribute, desc))
			}
		}
	}

	return out
}

// <p> whose value property holds the label
func (c *collector) liveValue(mode matchMode, p pattern) []Candidate {
	var out []Candidate
	desc := fmt.Sprintf("<%s .value=%q>", p.raw, mode.quoted(c.label))

	for _, n := range c.doc.find(p.sel) {
		if !c.doc.isVisible(n) {
			continue
		}

		if v, ok := c.doc.liveValue(n); ok && mode.matches(v, c.label) {
			out = append(out, c.candidate(n, StrategyLiveValue, desc))
		}
	}

	return out
}

// <* for="id">label</*> ... <p id="id">
func (c *collector) labelFor(mode matchMode, p pattern) []Candidate {
	sel, err := NewQuery("*").AttrPresent("for").Compile()
	if err != nil {
		return nil
	}

	var out []Candidate
	for _, l := range c.doc.find(sel) {
		if !c.doc.isVisible(l) || !mode.matches(c.doc.fullText(l), c.label) {
			continue
		}

		id, _ := attr(l, "for")
		target, err := NewQuery(p.raw).AttrEquals("id", id).Compile()
		if err != nil {
			continue
		}

		override := strings.TrimSpace(immediateText(l))
		desc := fmt.Sprintf("<%s for=%q>%s</%s>...<%s id=%q>", l.Data, id, mode.quoted(c.label), l.Data, p.raw, id)
		for _, n := range c.doc.find(target) {
			if c.doc.isVisible(n) {
				cand := c.candidate(n, StrategyLabelFor, desc)
				cand.TextOverride = &override
				out = append(out, cand)
			}
		}
	}

	return out
}

// <p><*>label</*></p>
func (c *collector) nestedText(mode matchMode, p pattern) []Candidate {
	desc := fmt.Sprintf("<%s><*>%s</*></%s>", p.raw, mode.quoted(c.label), p.raw)

	return c.ancestorsOf(c.doc.textMatches(mode, c.label), p, StrategyNestedText, desc)
}

// <p><* attribute="label"></p>
func (c *collector) nestedAttribute(_ matchMode, p pattern) []Candidate {
	var out []Candidate

	for _, name := range inspectedAttributes {
		sel, err := NewQuery("*").AttrEquals(name, strings.TrimSpace(c.label)).Compile()
		if err != nil {
			continue
		}

		var inner []*html.Node
		for _, n := range c.doc.find(sel) {
			if c.doc.isVisible(n) {
				inner = append(inner, n)
			}
		}

		desc := fmt.Sprintf("<%s><* %s=%q></%s>", p.raw, name, c.label, p.raw)
		out = append(out, c.ancestorsOf(inner, p, StrategyNestedAttribute, desc)...)
	}

	return out
}

// ancestorsOf returns, nearest first, the visible ancestors of nodes inside
// the search root that match p.
func (c *collector) ancestorsOf(nodes []*html.Node, p pattern, s Strategy, desc string) []Candidate {
	if p.sel == nil {
		return nil
	}

	var out []Candidate
	seen := make(map[*html.Node]bool)

	for _, n := range nodes {
		for anc := n.Parent; anc != nil && anc != c.doc.root && anc.Type == html.ElementNode; anc = anc.Parent {
			if seen[anc] || !p.sel.Match(anc) || !c.doc.isVisible(anc) {
				continue
			}
			seen[anc] = true
			out = append(out, c.candidate(anc, s, desc))
		}
	}

	return out
}

// <*>label</*><p> for left-to-right, <p><*>label</*> for right-to-left
func (c *collector) adjacentSibling(mode matchMode, p pattern) []Candidate {
	if p.sel == nil {
		return nil
	}

	step, desc := nextElement, fmt.Sprintf("<*>%s</*><%s>", mode.quoted(c.label), p.raw)
	if c.settings.direction == RightToLeft {
		step, desc = prevElement, fmt.Sprintf("<%s><*>%s</*>", p.raw, mode.quoted(c.label))
	}

	var out []Candidate
	for _, n := range c.doc.textMatches(mode, c.label) {
		if s := step(n); s != nil && p.sel.Match(s) && c.doc.isVisible(s) {
			out = append(out, c.candidate(s, StrategyAdjacentSibling, desc))
		}
	}

	return out
}

// <*><p></p>label</*>
func (c *collector) textSibling(mode matchMode, p pattern) []Candidate {
	if p.sel == nil {
		return nil
	}

	var out []Candidate
	desc := fmt.Sprintf("<*><%s>%s</*>", p.raw, mode.quoted(c.label))

	for _, n := range c.doc.textMatches(mode, c.label) {
		for _, child := range children(n) {
			if p.sel.Match(child) && c.doc.isVisible(child) {
				out = append(out, c.candidate(child, StrategyTextSibling, desc))
			}
		}
	}

	return out
}

// <*>label</*> ... <p>
func (c *collector) anySibling(mode matchMode, p pattern) []Candidate {
	if p.sel == nil {
		return nil
	}

	desc := fmt.Sprintf("<*>%s</*>...<%s>", mode.quoted(c.label), p.raw)
	if c.settings.direction == RightToLeft {
		desc = fmt.Sprintf("<%s>...<*>%s</*>", p.raw, mode.quoted(c.label))
	}

	var out []Candidate
	for _, n := range c.doc.textMatches(mode, c.label) {
		for _, s := range siblings(n, c.settings.direction) {
			if p.sel.Match(s) && c.doc.isVisible(s) {
				out = append(out, c.candidate(s, StrategyAnySibling, desc))
			}
		}
	}

	return out
}

// <*>label</*> ... <*><p></*>
func (c *collector) commonAncestor(mode matchMode, p pattern) []Candidate {
	if p.sel == nil {
		return nil
	}

	desc := fmt.Sprintf("<*>%s</*>...<*><%s></*>", mode.quoted(c.label), p.raw)
	if c.settings.direction == RightToLeft {
		desc = fmt.Sprintf("<*><%s></*>...<*>%s</*>", p.raw, mode.quoted(c.label))
	}

	var out []Candidate
	for _, n := range c.doc.textMatches(mode, c.label) {
		for _, s := range siblings(n, c.settings.direction) {
			for _, d := range descendants(s) {
				if p.sel.Match(d) && c.doc.isVisible(d) {
					out = append(out, c.candidate(d, StrategyCommonAncestor, desc))
				}
			}
		}
	}

	return out
}
