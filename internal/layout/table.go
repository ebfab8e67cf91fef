package layout

import (
	"fmt"
	"math"
)

// Column is one table column. Cell is the column's extractor and formatter
// fused together by Field, so each column's display rule is declared once.
type Column[R any] struct {
	Name   string
	Weight float64 // share of the content width
	Align  Align
	Wrap   bool
	Cell   func(R) string
}

// Field declares a column from an extractor and a formatter.
func Field[R, V any](name string, weight float64, align Align, extract func(R) V, format func(V) string) Column[R] {
	return Column[R]{
		Name:   name,
		Weight: weight,
		Align:  align,
		Cell:   func(r R) string { return format(extract(r)) },
	}
}

// Wrapped returns the column with word wrapping enabled.
func (c Column[R]) Wrapped() Column[R] {
	c.Wrap = true
	return c
}

// Table lays rows of R out under a repeated header row.
type Table[R any] struct {
	Columns []Column[R]
	Theme   Theme
	Metrics Metrics
}

// tableRow holds the display lines of every cell of one row.
type tableRow struct {
	cells [][]string
	lines int
}

// widths splits the content width by column weight.
func (t Table[R]) widths() ([]float64, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: table has no columns", ErrLayout)
	}

	var total float64
	for _, col := range t.Columns {
		if col.Weight <= 0 {
			return nil, fmt.Errorf("%w: column %q has weight %.2f", ErrLayout, col.Name, col.Weight)
		}
		total += col.Weight
	}

	content := t.Theme.Geometry.ContentWidth()
	widths := make([]float64, len(t.Columns))
	for i, col := range t.Columns {
		w := content * col.Weight / total
		if w-2*t.Theme.CellPadding <= 0 {
			return nil, fmt.Errorf("%w: column %q has no room left (%.2f mm)", ErrLayout, col.Name, w)
		}
		widths[i] = w
	}
	return widths, nil
}

func (t Table[R]) build(values []string, widths []float64, f Font, wrap func(i int) bool) tableRow {
	row := tableRow{cells: make([][]string, len(values)), lines: 1}
	for i, v := range values {
		inner := widths[i] - 2*t.Theme.CellPadding
		switch {
		case wrap(i):
			row.cells[i] = Wrap(v, inner, f, t.Metrics)
		case t.Metrics.Width(f, v) > inner:
			// plain cells never spill into the next column
			row.cells[i] = breakRunes(v, inner, f, t.Metrics)
		default:
			row.cells[i] = []string{v}
		}
		row.lines = max(row.lines, len(row.cells[i]))
	}
	return row
}

func (t Table[R]) header(widths []float64) tableRow {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return t.build(names, widths, t.Theme.Bold(), func(int) bool { return true })
}

func (t Table[R]) row(r R, widths []float64) tableRow {
	values := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		values[i] = col.Cell(r)
	}
	return t.build(values, widths, t.Theme.Body(), func(i int) bool { return t.Columns[i].Wrap })
}

// Layout draws the header row and every row starting at start and returns
// the cursor directly below the last row. Rows that would cross the bottom
// margin move to a new page under a repeated header; a row taller than a
// page is split between its lines.
func (t Table[R]) Layout(rows []R, start Cursor) (Drawing, Cursor, error) {
	widths, err := t.widths()
	if err != nil {
		return nil, start, err
	}

	g := t.Theme.Geometry
	lh := t.Theme.LineHeight(t.Theme.Body())
	header := t.header(widths)
	headerH := float64(header.lines) * lh
	body := g.Bottom() - g.MarginTop
	if headerH+lh > body+epsilon {
		return nil, start, fmt.Errorf("%w: table header (%.2f mm) leaves no room for rows", ErrLayout, headerH)
	}

	// the header never sits alone at the bottom of a page
	c := g.Reserve(start, headerH+lh)
	var d Drawing
	d, c = t.drawHeader(d, c, header, widths)

	for i, r := range rows {
		row := t.row(r, widths)
		h := float64(row.lines) * lh
		if !g.Fits(c, h) && h <= body-headerH+epsilon {
			c = g.NextPage(c)
			d, c = t.drawHeader(d, c, header, widths)
		}

		for from := 0; from < row.lines; {
			avail := int(math.Floor((g.Bottom() - c.Y + epsilon) / lh))
			if avail <= 0 {
				c = g.NextPage(c)
				d, c = t.drawHeader(d, c, header, widths)
				continue
			}
			to := min(row.lines, from+avail)
			d = t.drawRow(d, c, row, widths, from, to, i%2 == 1)
			c = c.Down(float64(to-from) * lh)
			from = to
		}
	}

	d = d.add(c, Rule{
		Box:   Box{X: g.MarginLeft, Y: c.Y, W: g.ContentWidth()},
		Color: t.Theme.Rule,
		Width: t.Theme.RuleWidth,
	})
	return d, c, nil
}

func (t Table[R]) drawHeader(d Drawing, c Cursor, header tableRow, widths []float64) (Drawing, Cursor) {
	g := t.Theme.Geometry
	lh := t.Theme.LineHeight(t.Theme.Body())
	h := float64(header.lines) * lh

	d = d.add(c, Fill{Box: Box{X: g.MarginLeft, Y: c.Y, W: g.ContentWidth(), H: h}, Color: t.Theme.Accent})
	d = t.drawCells(d, c, header, widths, 0, header.lines, t.Theme.Bold(), t.Theme.HeaderText)
	return d, c.Down(h)
}

func (t Table[R]) drawRow(d Drawing, c Cursor, row tableRow, widths []float64, from, to int, striped bool) Drawing {
	g := t.Theme.Geometry
	lh := t.Theme.LineHeight(t.Theme.Body())

	if striped {
		d = d.add(c, Fill{
			Box:   Box{X: g.MarginLeft, Y: c.Y, W: g.ContentWidth(), H: float64(to-from) * lh},
			Color: t.Theme.Stripe,
		})
	}
	return t.drawCells(d, c, row, widths, from, to, t.Theme.Body(), t.Theme.Text)
}

// drawCells emits lines [from, to) of every cell.
func (t Table[R]) drawCells(d Drawing, c Cursor, row tableRow, widths []float64, from, to int, f Font, color Color) Drawing {
	pad := t.Theme.CellPadding
	lh := t.Theme.LineHeight(t.Theme.Body())

	x := t.Theme.Geometry.MarginLeft
	for i, cell := range row.cells {
		for k := from; k < to && k < len(cell); k++ {
			if cell[k] == "" {
				continue
			}
			d = d.add(c, Text{
				Box:   Box{X: x + pad, Y: c.Y + float64(k-from)*lh, W: widths[i] - 2*pad, H: lh},
				Value: cell[k],
				Font:  f,
				Color: color,
				Align: t.Columns[i].Align,
			})
		}
		x += widths[i]
	}
	return d
}
