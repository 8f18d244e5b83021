package fuzzy_test

import (
	"labelfind/internal/fuzzy"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_String(t *testing.T) {
	tests := []struct {
		name  string
		query fuzzy.Query
		want  string
	}{
		{
			name:  "bare pattern",
			query: fuzzy.NewQuery(" button "),
			want:  "button",
		},
		{
			name:  "empty pattern",
			query: fuzzy.NewQuery("").AttrPresent("for"),
			want:  "*[for]",
		},
		{
			name:  "escapes quotes and backslashes",
			query: fuzzy.NewQuery(`input[type="text"]`).AttrEquals("aria-label", `a"b\c`),
			want:  `input[type="text"][aria-label="a\"b\\c"]`,
		},
		{
			name:  "contains",
			query: fuzzy.NewQuery("*").AttrContains("title", "Name"),
			want:  `*[title*="Name"]`,
		},
		{
			name:  "newline",
			query: fuzzy.NewQuery("a").AttrEquals("title", "x\ny"),
			want:  `a[title="x\a y"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.String())
		})
	}
}

func TestQuery_IsImmutable(t *testing.T) {
	base := fuzzy.NewQuery("button")
	a := base.AttrEquals("id", "a")
	b := base.AttrEquals("id", "b")

	assert.Equal(t, "button", base.String())
	assert.Equal(t, `button[id="a"]`, a.String())
	assert.Equal(t, `button[id="b"]`, b.String())
}

func TestQuery_Compile(t *testing.T) {
	doc := parse(t, `<button aria-label='He said "no"'>x</button>`)

	sel, err := fuzzy.NewQuery("button").AttrEquals("aria-label", `He said "no"`).Compile()
	require.NoError(t, err)
	assert.Len(t, doc.FindMatcher(sel).Nodes, 1)

	_, err = fuzzy.NewQuery("button").AttrEquals(`x"]`, "v").Compile()
	assert.Error(t, err)

	_, err = fuzzy.NewQuery("button[").Compile()
	assert.Error(t, err)

	_, err = fuzzy.NewQuery("a, button").AttrEquals("id", "x").Compile()
	assert.Error(t, err)
}
