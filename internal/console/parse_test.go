package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []token
	}{
		{
			name: "plain words",
			line: "find  button\tSave",
			want: []token{{text: "find"}, {text: "button"}, {text: "Save"}},
		},
		{
			name: "double quotes keep blanks",
			line: `find button "Save draft"`,
			want: []token{{text: "find"}, {text: "button"}, {text: "Save draft", quoted: true}},
		},
		{
			name: "single quotes and escapes",
			line: `find text 'It\'s "here"'`,
			want: []token{{text: "find"}, {text: "text"}, {text: `It's "here"`, quoted: true}},
		},
		{
			name: "empty quoted token",
			line: `write "" into "Name"`,
			want: []token{{text: "write"}, {text: "", quoted: true}, {text: "into"}, {text: "Name", quoted: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tokenize(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_Unterminated(t *testing.T) {
	_, err := tokenize(`find button "Save`)
	assert.ErrorIs(t, err, errUnterminatedQuote)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want command
	}{
		{
			name: "find",
			line: `find button "Save"`,
			want: command{name: "find", kind: "button", label: "Save"},
		},
		{
			name: "multi-word kind with ordinal",
			line: `click menu item "Open recent" 2nd`,
			want: command{name: "click", kind: "menu item", label: "Open recent", index: 1},
		},
		{
			name: "numeric ordinal",
			line: `find link "Docs" 3`,
			want: command{name: "find", kind: "link", label: "Docs", index: 2},
		},
		{
			name: "write",
			line: `write "jo@example.com" into "Email" first`,
			want: command{name: "write", value: "jo@example.com", label: "Email"},
		},
		{
			name: "wait",
			line: `wait button "Save" 2`,
			want: command{name: "wait", kind: "button", label: "Save", index: 1},
		},
		{
			name: "absent",
			line: `absent dropdown option "Red"`,
			want: command{name: "absent", kind: "dropdown option", label: "Red"},
		},
		{
			name: "uncheck",
			line: `uncheck "Remember me" 2nd`,
			want: command{name: "uncheck", label: "Remember me", index: 1},
		},
		{
			name: "select",
			line: `select "Blue" from "Color"`,
			want: command{name: "select", value: "Blue", label: "Color"},
		},
		{
			name: "expect",
			line: `EXPECT "" in "Email"`,
			want: command{name: "expect", label: "Email"},
		},
		{
			name: "open",
			line: "open https://example.com",
			want: command{name: "open", url: "https://example.com"},
		},
		{
			name: "debug on",
			line: "DEBUG on",
			want: command{name: "debug", on: true},
		},
		{
			name: "help",
			line: "help",
			want: command{name: "help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "unknown command", line: "jump"},
		{name: "missing name", line: "find button"},
		{name: "unquoted name", line: "find button Save"},
		{name: "missing kind", line: `find "Save"`},
		{name: "bad ordinal", line: `find button "Save" zeroth`},
		{name: "zero ordinal", line: `find button "Save" 0`},
		{name: "extra args", line: `find button "Save" 1 2`},
		{name: "write without into", line: `write "x" "Email"`},
		{name: "select with wrong keyword", line: `select "Blue" into "Color"`},
		{name: "check without name", line: "check"},
		{name: "check unquoted name", line: "check Remember"},
		{name: "debug value", line: "debug maybe"},
		{name: "open without url", line: "open"},
		{name: "help with args", line: "help me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCommand(tt.line)
			assert.ErrorIs(t, err, errUsage)
		})
	}
}
