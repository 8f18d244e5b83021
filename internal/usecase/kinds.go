package usecase

import (
	"fmt"
	"labelfind/internal/fuzzy"
	"sort"
	"strings"
)

// Kind is a family of elements a person can refer to by name, such as "the
// button Save". Patterns are the element shapes it covers, Direction says on
// which side of its label such an element usually sits.
type Kind struct {
	Name      string
	Patterns  []string
	Direction fuzzy.Direction
}

func role(name string) string {
	return fuzzy.NewQuery("*").AttrEquals("role", name).String()
}

func inputType(name string) string {
	return fuzzy.NewQuery("input").AttrEquals("type", name).String()
}

var kinds = map[string]Kind{
	"button": {
		Name: "button",
		Patterns: []string{
			"button",
			inputType("button"),
			inputType("submit"),
			"a",
			role("button"),
			role("link"),
			role("menuitem"),
			role("option"),
		},
		Direction: fuzzy.LeftToRight,
	},
	"checkbox": {
		Name:      "checkbox",
		Patterns:  []string{inputType("checkbox"), role("checkbox")},
		Direction: fuzzy.RightToLeft,
	},
	"dropdown": {
		Name:      "dropdown",
		Patterns:  []string{"select", role("combobox"), role("listbox")},
		Direction: fuzzy.LeftToRight,
	},
	"option": {
		Name:      "option",
		Patterns:  []string{"option", role("option")},
		Direction: fuzzy.LeftToRight,
	},
	"input": {
		Name:      "input",
		Patterns:  []string{"input", "textarea"},
		Direction: fuzzy.LeftToRight,
	},
	"link": {
		Name:      "link",
		Patterns:  []string{"a", role("link")},
		Direction: fuzzy.LeftToRight,
	},
	"radio": {
		Name:      "radio",
		Patterns:  []string{inputType("radio"), role("radio")},
		Direction: fuzzy.RightToLeft,
	},
	"tab": {
		Name:      "tab",
		Patterns:  []string{role("tab")},
		Direction: fuzzy.LeftToRight,
	},
	"text": {
		Name:      "text",
		Patterns:  []string{"*"},
		Direction: fuzzy.RightToLeft,
	},
	"menuitem": {
		Name:      "menuitem",
		Patterns:  []string{role("menuitem")},
		Direction: fuzzy.LeftToRight,
	},
	"draggable": {
		Name:      "draggable",
		Patterns:  []string{fuzzy.NewQuery("*").AttrEquals("draggable", "true").String()},
		Direction: fuzzy.LeftToRight,
	},
	"file": {
		Name:      "file",
		Patterns:  []string{inputType("file")},
		Direction: fuzzy.LeftToRight,
	},
}

var kindAliases = map[string]string{
	"dropdown option": "option",
	"menu item":       "menuitem",
	"file input":      "file",
	"radio button":    "radio",
	"textarea":        "input",
}

// LookupKind resolves a kind by name or alias, ignoring case and
// surrounding blanks.
func LookupKind(name string) (Kind, error) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if alias, ok := kindAliases[key]; ok {
		key = alias
	}

	kind, ok := kinds[key]
	if !ok {
		return Kind{}, fmt.Errorf("unknown element kind %q", name)
	}

	return kind, nil
}

// KindNames lists the canonical kind names in alphabetical order.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
