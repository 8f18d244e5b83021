// Package fuzzy resolves a human-readable label ("Submit", "Pick a color") to
// the element on a page a person would associate with it.
//
// Resolution runs in three steps over a parsed snapshot of the page: a set
// of discovery rules proposes candidates for each element shape the caller
// allows, every distinct candidate is scored by where the label matched, and
// the ranked list is trimmed and indexed.
package fuzzy

import (
	"errors"
	"labelfind/pkg/logg"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/html"
)

// ErrNotFound is returned when no element sits at the requested rank.
var ErrNotFound = errors.New("fuzzy: element not found")

// Scroller brings a resolved element into view on the live page.
type Scroller interface {
	ScrollIntoView(n *html.Node) error
}

type ScrollerFunc func(n *html.Node) error

func (f ScrollerFunc) ScrollIntoView(n *html.Node) error {
	return f(n)
}

type settings struct {
	index      int
	direction  Direction
	restrict   bool
	provenance bool
	debug      bool
	disabled   map[Strategy]bool
	scroller   Scroller
}

func (s settings) clone() settings {
	disabled := make(map[Strategy]bool, len(s.disabled))
	for k, v := range s.disabled {
		disabled[k] = v
	}
	s.disabled = disabled

	return s
}

type Option func(*settings)

// WithIndex selects the n-th ranked element (0 is the best).
func WithIndex(index int) Option {
	return func(s *settings) {
		s.index = index
	}
}

func WithDirection(d Direction) Option {
	return func(s *settings) {
		s.direction = d
	}
}

// RestrictToContent limits discovery to rules where the label is inside the
// element itself; sibling and proximity rules are skipped.
func RestrictToContent(restrict bool) Option {
	return func(s *settings) {
		s.restrict = restrict
	}
}

// WithProvenance fills Match.Provenance with the rule that produced the
// element.
func WithProvenance(provenance bool) Option {
	return func(s *settings) {
		s.provenance = provenance
	}
}

// WithDebug writes the ranking table to the logger at info level instead of
// debug level.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		s.debug = debug
	}
}

func WithoutStrategy(strategies ...Strategy) Option {
	return func(s *settings) {
		for _, st := range strategies {
			s.disabled[st] = true
		}
	}
}

func WithScroller(scroller Scroller) Option {
	return func(s *settings) {
		s.scroller = scroller
	}
}

// Finder holds the defaults every resolution starts from. It keeps no state
// between calls and is safe for concurrent use.
type Finder struct {
	logger   *zap.Logger
	defaults settings
}

func New(logger *zap.Logger, opts ...Option) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := settings{
		direction: LeftToRight,
		disabled:  make(map[Strategy]bool),
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Finder{
		logger:   logger,
		defaults: s,
	}
}

func (f *Finder) resolveSettings(opts []Option) settings {
	s := f.defaults.clone()
	for _, opt := range opts {
		opt(&s)
	}

	if s.direction != RightToLeft {
		s.direction = LeftToRight
	}

	return s
}

// Match is a resolved element.
type Match struct {
	Node       *html.Node
	Strategy   Strategy
	Provenance string
	Score      int
	Rank       int
}

// Rank runs discovery and scoring and returns every candidate, kept and
// trimmed, without selecting one.
func (f *Finder) Rank(doc *goquery.Document, label string, patterns []string, opts ...Option) *Ranking {
	return f.rank(doc, label, patterns, f.resolveSettings(opts))
}

func (f *Finder) rank(doc *goquery.Document, label string, patterns []string, s settings) *Ranking {
	if doc == nil || strings.TrimSpace(label) == "" || len(patterns) == 0 {
		return &Ranking{Label: label}
	}

	d := newDocument(doc)
	found := newCollector(d, label, patterns, s, f.logger).collect()

	return rank(d, label, found, s.index)
}

// Find returns the element at the requested rank for label among elements
// shaped like one of patterns. It returns ErrNotFound when the rank is not
// reachable.
func (f *Finder) Find(doc *goquery.Document, label string, patterns []string, opts ...Option) (*Match, error) {
	s := f.resolveSettings(opts)
	r := f.rank(doc, label, patterns, s)

	f.trace(r, s)

	c, ok := r.At(s.index)
	if !ok {
		return nil, ErrNotFound
	}

	if s.scroller != nil {
		if err := s.scroller.ScrollIntoView(c.Node); err != nil {
			f.logger.Debug("scroll into view failed", zap.Error(err))
		}
	}

	m := &Match{
		Node:     c.Node,
		Strategy: c.Strategy,
		Score:    c.Score,
		Rank:     s.index,
	}
	if s.provenance {
		m.Provenance = c.Label
	}

	return m, nil
}

func (f *Finder) trace(r *Ranking, s settings) {
	level := zapcore.DebugLevel
	if s.debug {
		level = zapcore.InfoLevel
	}

	ce := f.logger.Check(level, "fuzzy ranking")
	if ce == nil {
		return
	}

	ce.Write(
		zap.String(logg.Label, r.Label),
		zap.Int(logg.Index, s.index),
		zap.Stringer("direction", s.direction),
		zap.Int("kept", len(r.Kept)),
		zap.Int("trimmed", len(r.Trimmed)),
		zap.String("table", "\n"+r.Trace()),
	)
}
