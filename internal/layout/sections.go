package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicer/internal/format"
	"invoicer/internal/invoice"
)

// ---------------------------------------------------------------------------
// Line Item Columns
// ---------------------------------------------------------------------------

func plain(s string) string { return s }

// lineItemColumns is the fixed column order of the item table.
var lineItemColumns = []Column[invoice.LineItem]{
	Field("Service", 14, AlignLeft, func(li invoice.LineItem) string { return li.Service }, plain),
	Field("Date", 14, AlignLeft, func(li invoice.LineItem) time.Time { return li.Date }, format.Date),
	Field("Description", 40, AlignLeft, func(li invoice.LineItem) string { return li.Description }, plain).Wrapped(),
	Field("Hours", 10, AlignRight, func(li invoice.LineItem) decimal.Decimal { return li.Hours }, format.Quantity),
	Field("Rate", 11, AlignRight, func(li invoice.LineItem) decimal.Decimal { return li.Rate }, format.Amount),
	Field("Amount", 13, AlignRight, invoice.LineItem.Cost, format.Amount),
}

// LineItemColumns returns a copy of the item table columns.
func LineItemColumns() []Column[invoice.LineItem] {
	cols := make([]Column[invoice.LineItem], len(lineItemColumns))
	copy(cols, lineItemColumns)
	return cols
}

// ---------------------------------------------------------------------------
// Sections
// ---------------------------------------------------------------------------

// header draws the optional logo on the left and the business contact block
// right-aligned beside it.
func (cp Composer) header(b Business, logo *Logo) Section {
	return func(c Cursor) (Drawing, Cursor, error) {
		t := cp.Theme
		g := t.Geometry
		half := g.ContentWidth() / 2

		var d Drawing
		var height float64
		if logo != nil && logo.Width > 0 && logo.Height > 0 {
			w, h := fitBox(float64(logo.Width), float64(logo.Height), min(t.LogoMaxWidth, half), t.LogoMaxHeight)
			d = d.add(c, Image{Box: Box{X: g.MarginLeft, Y: c.Y, W: w, H: h}, Name: logo.Name})
			height = h
		}

		x := g.MarginLeft + half
		var contact block
		if name := strings.TrimSpace(b.Name); name != "" {
			contact = append(contact, cp.textLine(x, half, name, t.Heading(), t.Accent, AlignRight))
		}
		if addr := strings.TrimSpace(b.Address); addr != "" {
			contact = append(contact, cp.wrapped(x, half, addr, t.Body(), t.Muted, AlignRight)...)
		}
		for _, v := range []string{b.Email, b.Phone, b.Website} {
			if v = strings.TrimSpace(v); v != "" {
				contact = append(contact, cp.textLine(x, half, v, t.Body(), t.Muted, AlignRight))
			}
		}

		y := c.Y
		for _, l := range contact {
			for _, e := range l.draw(y) {
				d = d.add(c, e)
			}
			y += l.height
		}
		height = max(height, contact.height())

		if height > g.Bottom()-c.Y+epsilon {
			return nil, c, fmt.Errorf("%w: header (%.2f mm) does not fit on a page", ErrLayout, height)
		}
		return d, c.Down(height), nil
	}
}

// metadata draws the title on the left and invoice number, issue and due
// date right-aligned.
func (cp Composer) metadata(doc invoice.Document) Section {
	return func(c Cursor) (Drawing, Cursor, error) {
		t := cp.Theme
		g := t.Geometry

		rows := [][2]string{
			{"Invoice No.", doc.Number},
			{"Issue Date", format.Date(doc.IssueDate)},
			{"Due Date", format.Date(doc.DueDate)},
		}
		lh := t.LineHeight(t.Body())
		title := t.Title()
		height := max(t.LineHeight(title), float64(len(rows))*lh)

		c = g.Reserve(c, height)
		var d Drawing
		d = d.add(c, cp.text(g.MarginLeft, c.Y, g.ContentWidth()/2, "INVOICE", title, t.Accent, AlignLeft))

		const valueW, labelW = 50.0, 30.0
		for i, r := range rows {
			y := c.Y + float64(i)*lh
			d = d.add(c, cp.text(g.Right()-valueW-labelW, y, labelW, r[0]+":", t.Bold(), t.Muted, AlignRight))
			if r[1] != "" {
				d = d.add(c, cp.text(g.Right()-valueW, y, valueW, r[1], t.Body(), t.Text, AlignRight))
			}
		}
		return d, c.Down(height), nil
	}
}

// billTo draws the client block: label, bold name, address and client id.
func (cp Composer) billTo(p invoice.Party) Section {
	return func(c Cursor) (Drawing, Cursor, error) {
		t := cp.Theme
		g := t.Geometry
		x, w := g.MarginLeft, g.ContentWidth()/2

		b := block{
			cp.textLine(x, w, "BILL TO", t.font("B", t.SmallSize), t.Muted, AlignLeft),
			cp.textLine(x, w, strings.TrimSpace(p.Name), t.Bold(), t.Text, AlignLeft),
		}
		if addr := strings.TrimSpace(p.Address); addr != "" {
			b = append(b, cp.wrapped(x, w, addr, t.Body(), t.Text, AlignLeft)...)
		}
		if id := strings.TrimSpace(p.ClientID); id != "" {
			b = append(b, cp.textLine(x, w, "Client ID: "+id, t.Body(), t.Muted, AlignLeft))
		}

		d, next := b.place(g, c)
		return d, next, nil
	}
}

// items draws the line item table.
func (cp Composer) items(items []invoice.LineItem) Section {
	return func(c Cursor) (Drawing, Cursor, error) {
		table := Table[invoice.LineItem]{Columns: lineItemColumns, Theme: cp.Theme, Metrics: cp.Metrics}
		return table.Layout(items, c)
	}
}

// totals draws subtotal, adjustments and the emphasized total, right-aligned
// and kept together.
func (cp Composer) totals(tot invoice.Totals, currency string) Section {
	return func(c Cursor) (Drawing, Cursor, error) {
		t := cp.Theme
		g := t.Geometry

		const labelW, valueW = 45.0, 45.0
		labelX := g.Right() - labelW - valueW
		valueX := g.Right() - valueW
		pad := t.CellPadding

		amountLine := func(label string, amount string) line {
			f := t.Body()
			return line{
				height: t.LineHeight(f),
				draw: func(y float64) []Element {
					return []Element{
						cp.text(labelX+pad, y, labelW-pad, label, f, t.Muted, AlignLeft),
						cp.text(valueX, y, valueW-pad, amount, f, t.Text, AlignRight),
					}
				},
			}
		}

		b := block{amountLine("Subtotal", format.Money(tot.Subtotal, currency))}
		for _, a := range tot.Adjustments {
			b = append(b, amountLine(a.Label, format.Money(a.Amount, currency)))
		}

		heading := t.Heading()
		bandH := t.LineHeight(heading) + 2
		b = append(b, line{
			height: bandH,
			draw: func(y float64) []Element {
				return []Element{
					Fill{Box: Box{X: labelX, Y: y, W: labelW + valueW, H: bandH}, Color: t.Accent},
					cp.text(labelX+pad, y+1, labelW-pad, "Total", heading, t.HeaderText, AlignLeft),
					cp.text(valueX, y+1, valueW-pad, format.Money(tot.Total, currency), heading, t.HeaderText, AlignRight),
				}
			},
		})

		d, next := b.place(g, c)
		return d, next, nil
	}
}

// notes draws the optional notes, wrapped to the content width and broken
// across pages between lines. Blank notes produce nothing.
func (cp Composer) notes(doc invoice.Document) Section {
	return func(c Cursor) (Drawing, Cursor, error) {
		if !doc.HasNotes() {
			return nil, c, nil
		}

		t := cp.Theme
		g := t.Geometry
		x, w := g.MarginLeft, g.ContentWidth()

		body := cp.wrapped(x, w, strings.TrimSpace(doc.Notes), t.Body(), t.Text, AlignLeft)
		heading := cp.textLine(x, w, "Notes", t.Bold(), t.Accent, AlignLeft)

		// keep the heading with the first line
		first := body[0]
		b := block{{
			height: heading.height + first.height,
			draw: func(y float64) []Element {
				return append(heading.draw(y), first.draw(y+heading.height)...)
			},
		}}
		b = append(b, body[1:]...)

		d, next := b.place(g, c)
		return d, next, nil
	}
}

// footer draws the contact line and page number at a fixed distance from the
// page bottom.
func (cp Composer) footer(b Business, page, pages int) []Element {
	t := cp.Theme
	g := t.Geometry
	small := t.Small()
	y := g.FooterTop()

	elems := []Element{
		Rule{Box: Box{X: g.MarginLeft, Y: y, W: g.ContentWidth()}, Color: t.Rule, Width: t.RuleWidth},
	}
	y += 1
	if contact := b.contactLine(); contact != "" {
		elems = append(elems, cp.text(g.MarginLeft, y, g.ContentWidth(), contact, small, t.Muted, AlignCenter))
	}
	y += t.LineHeight(small)
	elems = append(elems, cp.text(g.MarginLeft, y, g.ContentWidth(), fmt.Sprintf("Page %d of %d", page, pages), small, t.Muted, AlignCenter))
	return elems
}
