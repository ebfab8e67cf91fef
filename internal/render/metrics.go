package render

import (
	"github.com/go-pdf/fpdf"

	"invoicer/internal/layout"
)

// Metrics measures text with the glyph widths of the PDF core fonts, exactly
// as the emitter will set it. A Metrics value is not safe for concurrent use.
type Metrics struct {
	pdf     *fpdf.Fpdf
	current layout.Font
}

// NewMetrics creates a measuring instance in millimetres.
func NewMetrics() *Metrics {
	return &Metrics{pdf: fpdf.New("P", "mm", "A4", "")}
}

// Width implements layout.Metrics.
func (m *Metrics) Width(f layout.Font, s string) float64 {
	if f != m.current {
		m.pdf.SetFont(f.Family, f.Style, f.Size)
		m.current = f
	}
	return m.pdf.GetStringWidth(encodeText(s))
}
