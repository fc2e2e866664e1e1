// Package export lays a parsed meal plan out on fixed-size pages and writes
// the result as a PDF.
//
// Layout is a pure function: the same plan, geometry and measurer always
// produce the same runs, which keeps exported files reproducible.
package export

import (
	"strings"

	"gourmet-guide/internal/mealplan"
)

// Style constants, in points for sizes and millimetres for distances.
const (
	TitleSize   = 18.0
	DaySize     = 14.0
	BodySize    = 12.0
	DaySpacing  = 5.0
	LabelIndent = 5.0
	TextIndent  = 10.0

	// lineFactor converts a font size into the vertical advance per line.
	lineFactor = 0.7
)

// Font selects size and weight; the family is fixed by the writer.
type Font struct {
	Size float64 `json:"size"`
	Bold bool    `json:"bold,omitempty"`
}

// LineHeight is the cursor advance for one line set in f.
func (f Font) LineHeight() float64 {
	return f.Size * lineFactor
}

// Measurer reports the rendered width of text, in the geometry's unit.
type Measurer interface {
	StringWidth(text string, f Font) float64
}

// Margins are distances from the page edges.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Geometry describes the page, in millimetres.
type Geometry struct {
	PageWidth  float64 `json:"pageWidth"`
	PageHeight float64 `json:"pageHeight"`
	Margins    Margins `json:"margins"`
}

// A4 is a portrait A4 page whose last baseline sits at 280mm.
func A4() Geometry {
	return Geometry{
		PageWidth:  210,
		PageHeight: 297,
		Margins:    Margins{Top: 15, Right: 15, Bottom: 17, Left: 15},
	}
}

// Run is one line of text placed on a page. Y is the top of the line.
type Run struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Font Font    `json:"font"`
	Text string  `json:"text"`
}

// Document is the paginated result of Layout. Pages is at least 1.
type Document struct {
	Title string `json:"title,omitempty"`
	Pages int    `json:"pages"`
	Runs  []Run  `json:"runs"`
}

type layouter struct {
	geo  Geometry
	m    Measurer
	page int
	y    float64
	runs []Run

	// filled is set once the current page holds a line.
	filled bool
}

// Layout walks the plan blocks in order and places every wrapped line.
func Layout(doc mealplan.Document, geo Geometry, m Measurer) Document {
	l := &layouter{geo: geo, m: m, y: geo.Margins.Top}

	for _, b := range doc.Blocks {
		switch b.Kind {
		case mealplan.BlockTitle:
			l.write(b.Text, Font{Size: TitleSize, Bold: true}, 0)
		case mealplan.BlockDayHeading:
			l.y += DaySpacing
			l.write(b.Text, Font{Size: DaySize, Bold: true}, 0)
		case mealplan.BlockItemList:
			for _, it := range b.Items {
				if it.Label != "" {
					l.write(it.Label+":", Font{Size: BodySize, Bold: true}, LabelIndent)
				}
				l.write(it.Text, Font{Size: BodySize}, TextIndent)
			}
		case mealplan.BlockParagraph:
			l.write(b.Text, Font{Size: BodySize}, 0)
		}
	}

	return Document{Title: doc.Title(), Pages: l.page + 1, Runs: l.runs}
}

func (l *layouter) write(text string, f Font, indent float64) {
	mg := l.geo.Margins
	width := l.geo.PageWidth - mg.Left - mg.Right - indent
	limit := l.geo.PageHeight - mg.Bottom
	lh := f.LineHeight()

	for _, line := range Wrap(text, width, f, l.m) {
		// A line taller than the printable area still goes on a fresh page.
		if l.y+lh > limit && l.filled {
			l.page++
			l.y = mg.Top
		}
		l.runs = append(l.runs, Run{Page: l.page, X: mg.Left + indent, Y: l.y, Font: f, Text: line})
		l.y += lh
		l.filled = true
	}
}

// Wrap splits text into lines no wider than width, breaking at spaces and,
// for words wider than a whole line, between runes.
func Wrap(text string, width float64, f Font, m Measurer) []string {
	var (
		lines []string
		cur   string
	)
	for _, w := range strings.Fields(text) {
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if m.StringWidth(candidate, f) <= width {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		if m.StringWidth(w, f) <= width {
			cur = w
			continue
		}
		pieces := breakWord(w, width, f, m)
		lines = append(lines, pieces[:len(pieces)-1]...)
		cur = pieces[len(pieces)-1]
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func breakWord(w string, width float64, f Font, m Measurer) []string {
	var (
		pieces []string
		cur    []rune
	)
	for _, r := range w {
		if len(cur) > 0 && m.StringWidth(string(cur)+string(r), f) > width {
			pieces = append(pieces, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	return append(pieces, string(cur))
}
