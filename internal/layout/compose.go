// Package layout computes the positioned page content of an invoice: text
// wrapping, the line-item table and the top-to-bottom section flow with
// pagination. It draws nothing itself; the render package emits the result.
package layout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"invoicer/internal/invoice"
)

// Business is the issuer shown in the header and footer.
type Business struct {
	Name    string
	Address string
	Email   string
	Phone   string
	Website string
}

// contactLine joins the footer contact details.
func (b Business) contactLine() string {
	var parts []string
	for _, p := range []string{b.Name, b.Email, b.Phone, b.Website} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "  |  ")
}

// Logo references an image registered with the emitter under Name.
type Logo struct {
	Name   string
	Width  int // pixels
	Height int // pixels
}

// Input is everything one composition needs.
type Input struct {
	Invoice  invoice.Document
	Business Business
	Logo     *Logo
	Currency string
}

// Composer sequences the invoice sections down the page.
type Composer struct {
	Theme   Theme
	Metrics Metrics
}

// Compose lays out the whole invoice. Sections run in order, each starting
// at the cursor the previous one returned plus the section gap; the footer
// is added to every page afterwards at its fixed position.
func (cp Composer) Compose(in Input) (*Document, error) {
	if err := cp.Theme.Validate(); err != nil {
		return nil, err
	}
	if cp.Metrics == nil {
		return nil, errors.New("composer has no font metrics")
	}

	doc := in.Invoice
	sections := []struct {
		name string
		run  Section
	}{
		{"header", cp.header(in.Business, in.Logo)},
		{"metadata", cp.metadata(doc)},
		{"bill to", cp.billTo(doc.BillTo)},
		{"items", cp.items(doc.Items)},
		{"totals", cp.totals(doc.Totals(), in.Currency)},
		{"notes", cp.notes(doc)},
	}

	g := cp.Theme.Geometry
	c := Cursor{Y: g.MarginTop}
	var all Drawing
	for _, s := range sections {
		d, next, err := s.run(c)
		if err != nil {
			return nil, fmt.Errorf("failed to lay out %s: %w", s.name, err)
		}
		if next.Before(c) {
			return nil, fmt.Errorf("%w: %s moved the cursor backwards", ErrLayout, s.name)
		}
		if len(d) == 0 {
			continue
		}
		all = append(all, d...)
		c = next.Down(cp.Theme.SectionGap)
	}

	count := 1
	for _, p := range all {
		count = max(count, p.Page+1)
	}

	out := &Document{
		Geometry: g,
		Meta: Meta{
			Title:   "Invoice " + doc.Number,
			Subject: strings.TrimSpace("Invoice " + doc.Number + " " + doc.BillTo.Name),
			Author:  in.Business.Name,
			Created: pinned(doc.IssueDate),
		},
		Pages: make([]Page, count),
	}
	for i := range out.Pages {
		out.Pages[i].Number = i + 1
	}
	for _, p := range all {
		out.Pages[p.Page].Elements = append(out.Pages[p.Page].Elements, p.Element)
	}
	for i := range out.Pages {
		out.Pages[i].Elements = append(out.Pages[i].Elements, cp.footer(in.Business, i+1, count)...)
	}
	return out, nil
}

// text builds a single-line text element.
func (cp Composer) text(x, y, w float64, value string, f Font, color Color, align Align) Text {
	return Text{
		Box:   Box{X: x, Y: y, W: w, H: cp.Theme.LineHeight(f)},
		Value: value,
		Font:  f,
		Color: color,
		Align: align,
	}
}

// textLine is a block line holding one text element.
func (cp Composer) textLine(x, w float64, value string, f Font, color Color, align Align) line {
	return line{
		height: cp.Theme.LineHeight(f),
		draw: func(y float64) []Element {
			if value == "" {
				return nil
			}
			return []Element{cp.text(x, y, w, value, f, color, align)}
		},
	}
}

// wrapped turns free text into block lines of the given width.
func (cp Composer) wrapped(x, w float64, value string, f Font, color Color, align Align) block {
	var b block
	for _, l := range Wrap(value, w, f, cp.Metrics) {
		b = append(b, cp.textLine(x, w, l, f, color, align))
	}
	return b
}

// fitBox scales w x h into maxW x maxH, preserving the aspect ratio.
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	scale := min(maxW/w, maxH/h)
	return w * scale, h * scale
}

// pinned keeps the creation date fixed so identical input yields identical output.
func pinned(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return t
}
