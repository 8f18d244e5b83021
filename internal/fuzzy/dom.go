package fuzzy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Attributes written by the browser snapshot to carry live state that plain
// HTML cannot express.
//
// AttrLiveHidden marks an element whose computed display is none, which hides
// its whole subtree. AttrLiveInvisible marks computed visibility hidden or
// collapse, which is already resolved per element and is not inherited.
const (
	AttrNodeID        = "data-fuzzy-node"
	AttrLiveValue     = "data-fuzzy-value"
	AttrLiveHidden    = "data-fuzzy-hidden"
	AttrLiveInvisible = "data-fuzzy-invisible"
	AttrLiveChecked   = "data-fuzzy-checked"
	AttrLiveX         = "data-fuzzy-x"
	AttrLiveY         = "data-fuzzy-y"
	AttrLiveWidth     = "data-fuzzy-width"
	AttrLiveHeight    = "data-fuzzy-height"
)

var nonRendered = map[string]bool{
	"head":     true,
	"title":    true,
	"meta":     true,
	"link":     true,
	"base":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// document is the per-resolution view of one parsed page. Its memo tables
// live exactly as long as one call.
type document struct {
	body      *goquery.Selection
	root      *html.Node
	elements  []*html.Node
	visible   map[*html.Node]bool
	displayed map[*html.Node]bool
	invisible map[*html.Node]bool
	text      map[*html.Node]string
	matching  map[matchMode][]*html.Node
}

func newDocument(doc *goquery.Document) *document {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}

	d := &document{
		body:      body,
		visible:   make(map[*html.Node]bool),
		displayed: make(map[*html.Node]bool),
		invisible: make(map[*html.Node]bool),
		text:      make(map[*html.Node]string),
		matching:  make(map[matchMode][]*html.Node),
	}
	if body.Length() > 0 {
		d.root = body.Nodes[0]
	}
	d.elements = body.Find("*").Nodes

	return d
}

// find returns the descendants of the search root matched by sel, in
// document order. A nil selector finds nothing.
func (d *document) find(sel cascadia.Selector) []*html.Node {
	if sel == nil {
		return nil
	}

	return d.body.FindMatcher(sel).Nodes
}

// textMatches returns the visible elements whose full text matches label.
func (d *document) textMatches(mode matchMode, label string) []*html.Node {
	if nodes, ok := d.matching[mode]; ok {
		return nodes
	}

	var nodes []*html.Node
	for _, n := range d.elements {
		if d.isVisible(n) && mode.matches(d.fullText(n), label) {
			nodes = append(nodes, n)
		}
	}
	d.matching[mode] = nodes

	return nodes
}

// isVisible reports whether n is rendered and shows itself. Display state
// hides whole subtrees; visibility can be set back by a descendant; a zero
// box only hides the element that has it.
func (d *document) isVisible(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return true
	}

	if v, ok := d.visible[n]; ok {
		return v
	}

	v := d.isDisplayed(n) && !d.isInvisible(n) && !zeroSize(n, AttrLiveWidth) && !zeroSize(n, AttrLiveHeight)
	d.visible[n] = v

	return v
}

// isDisplayed reports whether neither n nor an ancestor removes its subtree
// from rendering.
func (d *document) isDisplayed(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return true
	}

	if v, ok := d.displayed[n]; ok {
		return v
	}

	v := !undisplayed(n) && d.isDisplayed(n.Parent)
	d.displayed[n] = v

	return v
}

// isInvisible resolves the visibility property. Snapshot elements carry
// their computed value; plain markup falls back to the inline style of the
// closest element that sets one.
func (d *document) isInvisible(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}

	if v, ok := d.invisible[n]; ok {
		return v
	}

	flag, flagged := attr(n, AttrLiveInvisible)
	_, annotated := attr(n, AttrNodeID)
	_, visibility := styleValues(n)

	var v bool
	switch {
	case flagged:
		v = flag == "true"
	case annotated:
		v = false
	case visibility != "":
		v = visibility == "hidden" || visibility == "collapse"
	default:
		v = d.isInvisible(n.Parent)
	}
	d.invisible[n] = v

	return v
}

func (d *document) fullText(n *html.Node) string {
	if t, ok := d.text[n]; ok {
		return t
	}

	var b strings.Builder
	collectText(n, &b)
	t := b.String()
	d.text[n] = t

	return t
}

func collectText(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			collectText(c, b)
		}
	}
}

// immediateText is the text of n's direct text-node children only.
func immediateText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}

	return b.String()
}

// undisplayed covers the states that hide an element together with all of
// its descendants.
func undisplayed(n *html.Node) bool {
	if nonRendered[n.Data] {
		return true
	}

	if _, ok := attr(n, "hidden"); ok {
		return true
	}

	if n.Data == "input" {
		if t, _ := attr(n, "type"); strings.EqualFold(strings.TrimSpace(t), "hidden") {
			return true
		}
	}

	if v, ok := attr(n, AttrLiveHidden); ok && v == "true" {
		return true
	}

	display, _ := styleValues(n)

	return display == "none"
}

// styleValues reads display and visibility from the inline style; the last
// declaration of each wins.
func styleValues(n *html.Node) (display, visibility string) {
	style, ok := attr(n, "style")
	if !ok {
		return "", ""
	}

	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}

		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))

		switch prop {
		case "display":
			display = value
		case "visibility":
			visibility = value
		}
	}

	return display, visibility
}

func zeroSize(n *html.Node, name string) bool {
	v, ok := attr(n, name)
	if !ok {
		return false
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)

	return err == nil && f <= 0
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}

	return "", false
}

// liveValue returns what the element's value property would hold. A snapshot
// taken from a live page carries it explicitly, since typing into an input
// does not update its value attribute.
func (d *document) liveValue(n *html.Node) (string, bool) {
	if v, ok := attr(n, AttrLiveValue); ok {
		return v, true
	}

	switch n.Data {
	case "input", "button":
		v, _ := attr(n, "value")
		return v, true
	case "textarea":
		return d.fullText(n), true
	case "option":
		return d.optionValue(n), true
	case "select":
		var first, selected *html.Node
		for _, o := range descendants(n) {
			if o.Data != "option" {
				continue
			}
			if first == nil {
				first = o
			}
			if _, ok := attr(o, "selected"); ok && selected == nil {
				selected = o
			}
		}
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return "", true
		}
		return d.optionValue(selected), true
	}

	return "", false
}

func (d *document) optionValue(n *html.Node) string {
	if v, ok := attr(n, "value"); ok {
		return v
	}

	return strings.Join(strings.Fields(d.fullText(n)), " ")
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}

	return nil
}

func prevElement(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}

	return nil
}

// siblings lists the element siblings of n on one side, nearest first.
func siblings(n *html.Node, dir Direction) []*html.Node {
	step := nextElement
	if dir == RightToLeft {
		step = prevElement
	}

	var out []*html.Node
	for s := step(n); s != nil; s = step(s) {
		out = append(out, s)
	}

	return out
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}

	return out
}

func descendants(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
				walk(c)
			}
		}
	}
	walk(n)

	return out
}

func describeNode(n *html.Node) string {
	var b strings.Builder

	b.WriteString("<")
	b.WriteString(n.Data)
	for _, name := range []string{"id", "class", "name", "type", "role", "for"} {
		if v, ok := attr(n, name); ok && v != "" {
			fmt.Fprintf(&b, " %s=%q", name, v)
		}
	}
	b.WriteString(">")

	return b.String()
}

// nodePosition reports the snapshot geometry when present and falls back to
// the element's path from the search root.
func nodePosition(n *html.Node, root *html.Node) string {
	x, okX := attr(n, AttrLiveX)
	y, okY := attr(n, AttrLiveY)
	if okX && okY {
		w, _ := attr(n, AttrLiveWidth)
		h, _ := attr(n, AttrLiveHeight)
		return fmt.Sprintf("%s,%s %sx%s", x, y, w, h)
	}

	var parts []string
	for p := n; p != nil && p != root && p.Type == html.ElementNode; p = p.Parent {
		idx := 1
		for s := p.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == p.Data {
				idx++
			}
		}
		parts = append(parts, fmt.Sprintf("%s[%d]", p.Data, idx))
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, "/")
}

// Value returns the live value of a snapshot element, false for elements
// without one.
func Value(n *html.Node) (string, bool) {
	d := &document{text: make(map[*html.Node]string)}

	return d.liveValue(n)
}

// Checked reports the checked state of a checkbox or radio, native or ARIA.
func Checked(n *html.Node) bool {
	if v, ok := attr(n, AttrLiveChecked); ok {
		return v == "true"
	}

	if v, ok := attr(n, "aria-checked"); ok {
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}

	_, ok := attr(n, "checked")

	return ok
}
