package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Color is an RGB colour with 0-255 components.
type Color struct {
	R, G, B int
}

// Hex parses a "#rrggbb" colour string.
func Hex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	var c Color
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// Font selects a face and size. Style is "", "B", "I" or "BI".
type Font struct {
	Family string
	Style  string
	Size   float64 // points
}

// Geometry is the fixed page frame, in millimetres.
type Geometry struct {
	Width        float64
	Height       float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
	// FooterOffset is the distance from the page bottom to the top of the
	// footer band. The footer never takes part in the cursor flow.
	FooterOffset float64
}

// A4 returns a portrait A4 frame.
func A4() Geometry {
	return Geometry{
		Width:        210,
		Height:       297,
		MarginLeft:   15,
		MarginRight:  15,
		MarginTop:    15,
		MarginBottom: 28,
		FooterOffset: 18,
	}
}

// Letter returns a portrait US Letter frame.
func Letter() Geometry {
	g := A4()
	g.Width = 215.9
	g.Height = 279.4
	return g
}

// ContentWidth is the printable width between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.MarginLeft - g.MarginRight
}

// Right is the x coordinate of the right margin.
func (g Geometry) Right() float64 {
	return g.Width - g.MarginRight
}

// Bottom is the lowest y any flowing content may reach.
func (g Geometry) Bottom() float64 {
	return g.Height - g.MarginBottom
}

// FooterTop is the y coordinate of the footer band.
func (g Geometry) FooterTop() float64 {
	return g.Height - g.FooterOffset
}

// Theme centralizes every colour, font size, spacing and margin used by the
// sections.
type Theme struct {
	Geometry Geometry

	FontFamily  string
	TitleSize   float64
	HeadingSize float64
	BodySize    float64
	SmallSize   float64

	// Leading converts a font size in points to a line height in millimetres.
	Leading     float64
	SectionGap  float64
	CellPadding float64

	LogoMaxWidth  float64
	LogoMaxHeight float64

	Text       Color
	Muted      Color
	Accent     Color
	HeaderText Color
	Stripe     Color
	Rule       Color
	RuleWidth  float64
}

// DefaultTheme is the stock invoice look.
func DefaultTheme() Theme {
	return Theme{
		Geometry:      A4(),
		FontFamily:    "Helvetica",
		TitleSize:     20,
		HeadingSize:   12,
		BodySize:      10,
		SmallSize:     8,
		Leading:       0.5,
		SectionGap:    8,
		CellPadding:   1.5,
		LogoMaxWidth:  50,
		LogoMaxHeight: 25,
		Text:          Color{33, 37, 41},
		Muted:         Color{108, 117, 125},
		Accent:        Color{31, 78, 121},
		HeaderText:    Color{255, 255, 255},
		Stripe:        Color{242, 245, 248},
		Rule:          Color{173, 181, 189},
		RuleWidth:     0.2,
	}
}

// ErrLayout reports a violated layout invariant. Exports that hit it abort.
var ErrLayout = errors.New("layout invariant violated")

// Validate checks that the frame leaves room for content and a footer.
func (t Theme) Validate() error {
	g := t.Geometry
	switch {
	case g.ContentWidth() <= 0:
		return fmt.Errorf("%w: content width %.2f", ErrLayout, g.ContentWidth())
	case g.Bottom() <= g.MarginTop:
		return fmt.Errorf("%w: content height %.2f", ErrLayout, g.Bottom()-g.MarginTop)
	case g.FooterTop() < g.Bottom():
		return fmt.Errorf("%w: footer at %.2f overlaps content ending at %.2f", ErrLayout, g.FooterTop(), g.Bottom())
	case g.FooterTop()+1+2*t.LineHeight(t.Small()) > g.Height:
		return fmt.Errorf("%w: footer does not fit below %.2f", ErrLayout, g.FooterTop())
	case t.Leading <= 0 || t.BodySize <= 0:
		return fmt.Errorf("%w: non-positive line height", ErrLayout)
	}
	return nil
}

// LineHeight is the vertical advance for one line set in f.
func (t Theme) LineHeight(f Font) float64 {
	return f.Size * t.Leading
}

func (t Theme) font(style string, size float64) Font {
	return Font{Family: t.FontFamily, Style: style, Size: size}
}

// Body is the regular text face.
func (t Theme) Body() Font { return t.font("", t.BodySize) }

// Bold is the emphasized body face.
func (t Theme) Bold() Font { return t.font("B", t.BodySize) }

// Heading is used for section labels and the total line.
func (t Theme) Heading() Font { return t.font("B", t.HeadingSize) }

// Title is the document title face.
func (t Theme) Title() Font { return t.font("B", t.TitleSize) }

// Small is used in the footer.
func (t Theme) Small() Font { return t.font("", t.SmallSize) }
