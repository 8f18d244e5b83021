package usecase_test

import (
	"labelfind/internal/fuzzy"
	"labelfind/internal/usecase"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKind(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		direction fuzzy.Direction
	}{
		{name: "canonical", input: "button", want: "button", direction: fuzzy.LeftToRight},
		{name: "case and blanks", input: "  CheckBox ", want: "checkbox", direction: fuzzy.RightToLeft},
		{name: "alias", input: "dropdown option", want: "option", direction: fuzzy.LeftToRight},
		{name: "alias with extra spaces", input: "menu   item", want: "menuitem", direction: fuzzy.LeftToRight},
		{name: "radio button", input: "radio button", want: "radio", direction: fuzzy.RightToLeft},
		{name: "text", input: "text", want: "text", direction: fuzzy.RightToLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := usecase.LookupKind(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.want, kind.Name)
			assert.Equal(t, tt.direction, kind.Direction)
			assert.NotEmpty(t, kind.Patterns)
		})
	}
}

func TestLookupKind_Unknown(t *testing.T) {
	_, err := usecase.LookupKind("spaceship")
	assert.ErrorContains(t, err, "spaceship")
}

func TestKindNames(t *testing.T) {
	names := usecase.KindNames()

	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "button")
	assert.Contains(t, names, "file")
	assert.NotContains(t, names, "menu item")
}

func TestKinds_PatternsCompile(t *testing.T) {
	for _, name := range usecase.KindNames() {
		kind, err := usecase.LookupKind(name)
		require.NoError(t, err)

		for _, p := range kind.Patterns {
			_, err := fuzzy.NewQuery(p).Compile()
			assert.NoError(t, err, "kind %s pattern %s", name, p)
		}
	}
}

func TestKinds_CheckboxPatterns(t *testing.T) {
	kind, err := usecase.LookupKind("checkbox")
	require.NoError(t, err)

	assert.Equal(t, []string{`input[type="checkbox"]`, `*[role="checkbox"]`}, kind.Patterns)
}
