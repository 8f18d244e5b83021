package fuzzy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/net/html"
)

const traceTextWidth = 40

// Trace renders the ranking as a table: kept rows first, then a separator
// and the trimmed rows.
func (r *Ranking) Trace() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("fuzzy find %q: %d kept, %d trimmed", r.Label, len(r.Kept), len(r.Trimmed)))
	t.AppendHeader(table.Row{"Rank", "Score", "Order", "Strategy", "Position", "Text", "Node"})

	for i, c := range r.Kept {
		t.AppendRow(r.traceRow(strconv.Itoa(i), c))
	}

	if len(r.Trimmed) > 0 {
		t.AppendSeparator()
		for _, c := range r.Trimmed {
			t.AppendRow(r.traceRow("trimmed", c))
		}
	}

	return t.Render()
}

func (r *Ranking) traceRow(rank string, c Candidate) table.Row {
	return table.Row{
		rank,
		c.Score,
		c.Order,
		string(c.Strategy),
		nodePosition(c.Node, r.root),
		visibleText(c.Node),
		describeNode(c.Node),
	}
}

func visibleText(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b)

	text := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(text); len(runes) > traceTextWidth {
		text = string(runes[:traceTextWidth-3]) + "..."
	}

	return text
}
