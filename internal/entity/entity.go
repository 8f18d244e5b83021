package entity

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// FrameSnapshot is the parsed state of one frame at one moment. Index 0 is
// the main frame; child frames follow in document order. All frames of one
// snapshot share its Generation.
type FrameSnapshot struct {
	Index      int
	Generation uint64
	Name       string
	URL        string
	Document   *goquery.Document
	TakenAt    time.Time
}

// ElementRef addresses an element of a snapshot on the live page.
type ElementRef struct {
	Frame  int
	NodeID string
}

type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ResolvedElement is the outcome of resolving a label on the live page.
type ResolvedElement struct {
	ResolutionID uuid.UUID
	Ref          ElementRef
	Kind         string
	Label        string
	Index        int
	Tag          string
	Text         string
	Strategy     string
	Provenance   string
	Score        int
	Box          *BoundingBox
	FrameURL     string

	// State read from the snapshot the element was resolved in.
	Value    string
	Checked  bool
	Expanded bool
}

type PageState struct {
	URL       string
	Title     string
	Frames    int
	Timestamp time.Time
}
