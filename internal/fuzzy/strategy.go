package fuzzy

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Direction says on which side of the labeling text the wanted element is
// expected to sit.
type Direction int

const (
	LeftToRight Direction = 1
	RightToLeft Direction = 2
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "left-to-right"
	case RightToLeft:
		return "right-to-left"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "ltr"/"rtl" as well as the long forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ltr", "left-to-right", "left_to_right":
		return LeftToRight, nil
	case "rtl", "right-to-left", "right_to_left":
		return RightToLeft, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Strategy names one rule that associates label text with an element.
type Strategy string

const (
	StrategyOwnText         Strategy = "own_text"
	StrategyAttribute       Strategy = "attribute"
	StrategyLiveValue       Strategy = "live_value"
	StrategyLabelFor        Strategy = "label_for"
	StrategyNestedText      Strategy = "nested_text"
	StrategyNestedAttribute Strategy = "nested_attribute"
	StrategyAdjacentSibling Strategy = "adjacent_sibling"
	StrategyTextSibling     Strategy = "text_sibling"
	StrategyAnySibling      Strategy = "any_sibling"
	// StrategyCommonAncestor is the least reliable rule: an element nested
	// inside any sibling of the labeling text.
	StrategyCommonAncestor Strategy = "common_ancestor"
)

// Strategies lists every rule in the order the collector applies them.
var Strategies = []Strategy{
	StrategyOwnText,
	StrategyAttribute,
	StrategyLiveValue,
	StrategyLabelFor,
	StrategyNestedText,
	StrategyNestedAttribute,
	StrategyAdjacentSibling,
	StrategyTextSibling,
	StrategyAnySibling,
	StrategyCommonAncestor,
}

func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if string(st) == strings.TrimSpace(s) {
			return st, nil
		}
	}

	return "", fmt.Errorf("unknown strategy %q", s)
}

type matchMode int

const (
	matchExact matchMode = iota
	matchSubstring
)

var matchModes = []matchMode{matchExact, matchSubstring}

func (m matchMode) String() string {
	if m == matchExact {
		return "exact"
	}

	return "substring"
}

func (m matchMode) matches(text, label string) bool {
	if m == matchExact {
		return strings.TrimSpace(text) == strings.TrimSpace(label)
	}

	return strings.Contains(text, label)
}

// quoted renders the label the way provenance strings show it: bare for an
// exact match, surrounded by ellipses for a substring match.
func (m matchMode) quoted(label string) string {
	if m == matchExact {
		return strings.TrimSpace(label)
	}

	return "..." + label + "..."
}

// Candidate is one element proposed by one strategy. Node points into the
// parsed snapshot and is not owned by the candidate.
type Candidate struct {
	Node     *html.Node
	Strategy Strategy
	// Label is the provenance: which rule produced the element and how.
	Label string
	// TextOverride, when set, replaces the element's immediate text during
	// scoring. A label/for association uses the label's text here.
	TextOverride *string
	Order        int
	Score        int

	overrides []string
}
