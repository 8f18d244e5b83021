package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errUnterminatedQuote = errors.New("unterminated quote")
	errUsage             = errors.New("invalid usage")
)

type token struct {
	text   string
	quoted bool
}

// tokenize splits a command line on blanks. Single or double quotes group
// words into one token; inside quotes a backslash escapes the next rune.
func tokenize(line string) ([]token, error) {
	var (
		tokens  []token
		current strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)

	flush := func(quoted bool) {
		if inToken || quoted {
			tokens = append(tokens, token{text: current.String(), quoted: quoted})
		}
		current.Reset()
		inToken = false
	}

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			flush(true)
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			flush(false)
			quote = r
		case r == ' ' || r == '\t':
			flush(false)
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	flush(false)

	return tokens, nil
}

type command struct {
	name  string
	kind  string
	label string
	value string
	url   string
	index int
	on    bool
}

// pairCommands take a quoted value, a keyword and a quoted name.
var pairCommands = map[string]string{
	"write":  "into",
	"select": "from",
	"expect": "in",
}

// parseCommand turns a console line into a command. Element references are
// written as a kind, a quoted name and an optional 1-based ordinal:
//
//	click button "Save" 2nd
//	write "jo@example.com" into "Email"
//	select "Blue" from "Color"
//	check "Remember me"
func parseCommand(line string) (command, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return command{}, err
	}

	if len(tokens) == 0 {
		return command{}, errUsage
	}

	cmd := command{name: strings.ToLower(tokens[0].text)}
	args := tokens[1:]

	switch cmd.name {
	case "help", "h", "exit", "quit", "q", "kinds", "state":
		if len(args) != 0 {
			return command{}, fmt.Errorf("%w: %s takes no arguments", errUsage, cmd.name)
		}
	case "open":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%w: open <url>", errUsage)
		}
		cmd.url = args[0].text
	case "debug":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%w: debug on|off", errUsage)
		}
		switch strings.ToLower(args[0].text) {
		case "on":
			cmd.on = true
		case "off":
			cmd.on = false
		default:
			return command{}, fmt.Errorf("%w: debug on|off", errUsage)
		}
	case "find", "click", "wait", "absent":
		if err := parseReference(&cmd, args); err != nil {
			return command{}, err
		}
	case "check", "uncheck", "checked", "unchecked":
		if len(args) < 1 || !args[0].quoted {
			return command{}, fmt.Errorf("%w: %s \"<name>\" [nth]", errUsage, cmd.name)
		}
		cmd.label = args[0].text
		if cmd.index, err = parseOrdinal(args[1:]); err != nil {
			return command{}, err
		}
	case "write", "select", "expect":
		keyword := pairCommands[cmd.name]
		if len(args) < 3 || !args[0].quoted || strings.ToLower(args[1].text) != keyword || args[1].quoted || !args[2].quoted {
			return command{}, fmt.Errorf("%w: %s \"<value>\" %s \"<name>\" [nth]", errUsage, cmd.name, keyword)
		}
		cmd.value = args[0].text
		cmd.label = args[2].text
		if cmd.index, err = parseOrdinal(args[3:]); err != nil {
			return command{}, err
		}
	default:
		return command{}, fmt.Errorf("%w: unknown command %q", errUsage, cmd.name)
	}

	return cmd, nil
}

// parseReference reads `<kind words> "<name>" [nth]`.
func parseReference(cmd *command, args []token) error {
	usage := fmt.Errorf("%w: %s <kind> \"<name>\" [nth]", errUsage, cmd.name)

	var kind []string
	for len(args) > 0 && !args[0].quoted {
		kind = append(kind, args[0].text)
		args = args[1:]
	}

	if len(kind) == 0 || len(args) == 0 {
		return usage
	}

	cmd.kind = strings.Join(kind, " ")
	cmd.label = args[0].text

	index, err := parseOrdinal(args[1:])
	if err != nil {
		return err
	}
	cmd.index = index

	return nil
}

// parseOrdinal converts an optional "3", "3rd" or "first" into a 0-based
// index.
func parseOrdinal(args []token) (int, error) {
	switch len(args) {
	case 0:
		return 0, nil
	case 1:
	default:
		return 0, fmt.Errorf("%w: unexpected %q", errUsage, args[1].text)
	}

	raw := strings.ToLower(args[0].text)
	if raw == "first" {
		return 0, nil
	}

	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		raw = strings.TrimSuffix(raw, suffix)
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not an ordinal", errUsage, args[0].text)
	}

	return n - 1, nil
}
