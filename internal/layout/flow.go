package layout

import (
	"time"
)

// Align is a horizontal alignment inside a box.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Box is an axis-aligned rectangle in page coordinates (mm, origin top-left).
type Box struct {
	X, Y, W, H float64
}

// Bounds returns the box itself; every element embeds a Box.
func (b Box) Bounds() Box { return b }

// Bottom is the y coordinate of the lower edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Overlaps reports whether two boxes share interior area.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// Element is anything drawn on a page.
type Element interface {
	Bounds() Box
}

// Text is a single line of text set inside its box.
type Text struct {
	Box
	Value string
	Font  Font
	Color Color
	Align Align
}

// Fill is a solid rectangle drawn behind text.
type Fill struct {
	Box
	Color Color
}

// Rule is a horizontal line from X to X+W at Y.
type Rule struct {
	Box
	Color Color
	Width float64
}

// Image places a registered raster image.
type Image struct {
	Box
	Name string
}

// Page is one finished page.
type Page struct {
	Number   int
	Elements []Element
}

// Meta carries document information for the emitter.
type Meta struct {
	Title   string
	Subject string
	Author  string
	Created time.Time
}

// Document is the laid-out invoice, ready for emission.
type Document struct {
	Geometry Geometry
	Meta     Meta
	Pages    []Page
}

// ---------------------------------------------------------------------------
// Cursor
// ---------------------------------------------------------------------------

// Cursor is the position where the next element will be drawn. Sections
// receive a cursor and return the next one; it never moves backwards.
type Cursor struct {
	Page int
	Y    float64
}

// Down advances the cursor by dy on the same page.
func (c Cursor) Down(dy float64) Cursor {
	return Cursor{Page: c.Page, Y: c.Y + dy}
}

// Before reports whether c lies above o in reading order.
func (c Cursor) Before(o Cursor) bool {
	if c.Page != o.Page {
		return c.Page < o.Page
	}
	return c.Y < o.Y
}

// Placement is an element bound to a page.
type Placement struct {
	Page    int
	Element Element
}

// Drawing is the output of a section: the elements it placed, in order.
type Drawing []Placement

func (d Drawing) add(c Cursor, e Element) Drawing {
	return append(d, Placement{Page: c.Page, Element: e})
}

// Section lays out one part of the document starting at a cursor.
type Section func(c Cursor) (Drawing, Cursor, error)

// epsilon absorbs float error when comparing positions to the bottom margin.
const epsilon = 1e-6

// Fits reports whether a block of height h starting at c stays above the
// bottom margin.
func (g Geometry) Fits(c Cursor, h float64) bool {
	return c.Y+h <= g.Bottom()+epsilon
}

// NextPage returns the top of the page after c.
func (g Geometry) NextPage(c Cursor) Cursor {
	return Cursor{Page: c.Page + 1, Y: g.MarginTop}
}

// AtTop reports whether c sits at the top of its page.
func (g Geometry) AtTop(c Cursor) bool {
	return c.Y <= g.MarginTop+epsilon
}

// Reserve keeps a block of height h together: if it does not fit below c,
// the block moves to the next page. A block taller than a whole page stays
// at c and has to be broken by the caller.
func (g Geometry) Reserve(c Cursor, h float64) Cursor {
	if g.Fits(c, h) || g.AtTop(c) || h > g.Bottom()-g.MarginTop+epsilon {
		return c
	}
	return g.NextPage(c)
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// line is one unbreakable strip of a block.
type line struct {
	height float64
	draw   func(y float64) []Element
}

// block is a run of lines kept on one page when possible and broken between
// lines otherwise.
type block []line

func (b block) height() float64 {
	var h float64
	for _, l := range b {
		h += l.height
	}
	return h
}

// place lays the block out from c and returns the cursor below it.
func (b block) place(g Geometry, c Cursor) (Drawing, Cursor) {
	if len(b) == 0 {
		return nil, c
	}

	c = g.Reserve(c, b.height())
	var d Drawing
	for _, l := range b {
		if !g.Fits(c, l.height) && !g.AtTop(c) {
			c = g.NextPage(c)
		}
		for _, e := range l.draw(c.Y) {
			d = d.add(c, e)
		}
		c = c.Down(l.height)
	}
	return d, c
}
