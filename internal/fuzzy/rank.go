package fuzzy

import (
	"sort"

	"golang.org/x/net/html"
)

// Ranking is the ordered outcome of one resolution. Kept holds the rows that
// can be addressed by index, Trimmed the low-confidence rows cut from them.
type Ranking struct {
	Label   string
	Kept    []Candidate
	Trimmed []Candidate

	root *html.Node
}

// Len is the number of addressable rows.
func (r *Ranking) Len() int {
	return len(r.Kept)
}

// At returns the kept candidate at index, or false when index is out of
// range.
func (r *Ranking) At(index int) (Candidate, bool) {
	if index < 0 || index >= len(r.Kept) {
		return Candidate{}, false
	}

	return r.Kept[index], true
}

func rank(doc *document, label string, found []Candidate, index int) *Ranking {
	rows := dedupe(found)

	for i := range rows {
		rows[i].Score = doc.scoreCandidate(rows[i], label)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Order < rows[j].Order
	})

	cut := trimPoint(rows, index)

	return &Ranking{
		Label:   label,
		Kept:    rows[:cut:cut],
		Trimmed: rows[cut:],
		root:    doc.root,
	}
}

// dedupe merges candidates that point at the same element. The first one
// discovered survives with its strategy and order; overrides carried by
// later duplicates are kept for scoring.
func dedupe(found []Candidate) []Candidate {
	pos := make(map[*html.Node]int, len(found))
	rows := make([]Candidate, 0, len(found))

	for _, c := range found {
		i, seen := pos[c.Node]
		if !seen {
			i = len(rows)
			pos[c.Node] = i
			rows = append(rows, c)
		}

		if c.TextOverride != nil {
			rows[i].overrides = append(rows[i].overrides, *c.TextOverride)
		}
	}

	return rows
}

// trimPoint returns how many leading rows are kept. Nothing is trimmed
// unless the best row clears the substring weight; rows up to the requested
// index are always kept.
func trimPoint(rows []Candidate, index int) int {
	if len(rows) == 0 || rows[0].Score <= substringWeight {
		return len(rows)
	}

	cut := 0
	for cut < len(rows) && rows[cut].Score >= substringWeight {
		cut++
	}

	if index >= cut {
		cut = min(index+1, len(rows))
	}

	return cut
}
