package layout

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/invoice"
)

var testBusiness = Business{
	Name:    "Example Consulting",
	Address: "Main Street 1\n12345 Springfield",
	Email:   "billing@example.com",
	Phone:   "+49 711 123456",
}

func scenario() invoice.Document {
	return invoice.Document{
		Number:    "INV-007",
		IssueDate: invoice.Day(2026, 10, 16),
		DueDate:   invoice.Day(2026, 10, 30),
		BillTo: invoice.Party{
			Name:     "Acme Corp",
			Address:  "Hauptstraße 1\n70173 Stuttgart",
			ClientID: "C-42",
		},
		Items: []invoice.LineItem{{
			Service:     "DEV",
			Date:        invoice.Day(2026, 10, 1),
			Description: "Backend work",
			Hours:       decimal.NewFromInt(3),
			Rate:        decimal.RequireFromString("50.00"),
		}},
	}
}

func compose(t *testing.T, in Input) *Document {
	t.Helper()
	doc, err := Composer{Theme: DefaultTheme(), Metrics: mono}.Compose(in)
	require.NoError(t, err)
	return doc
}

func pageTexts(p Page) []Text {
	var out []Text
	for _, e := range p.Elements {
		if txt, ok := e.(Text); ok {
			out = append(out, txt)
		}
	}
	return out
}

func docCount(doc *Document, value string) int {
	n := 0
	for _, p := range doc.Pages {
		for _, txt := range pageTexts(p) {
			if txt.Value == value {
				n++
			}
		}
	}
	return n
}

func TestComposeScenario(t *testing.T) {
	doc := compose(t, Input{Invoice: scenario(), Business: testBusiness, Currency: "EUR"})

	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, 1, docCount(doc, "150.00"), "amount cell")
	assert.Equal(t, 2, docCount(doc, "150.00 EUR"), "subtotal and total")
	assert.Equal(t, 1, docCount(doc, "INV-007"))
	assert.Equal(t, 1, docCount(doc, "16.10.2026"))
	assert.Equal(t, 1, docCount(doc, "30.10.2026"))
	assert.Equal(t, 1, docCount(doc, "Acme Corp"))
	assert.Equal(t, 1, docCount(doc, "Client ID: C-42"))
	assert.Equal(t, 1, docCount(doc, "Page 1 of 1"))
	assert.Zero(t, docCount(doc, "Notes"))

	assert.Equal(t, "Invoice INV-007", doc.Meta.Title)
	assert.Equal(t, "Example Consulting", doc.Meta.Author)
	assert.Equal(t, invoice.Day(2026, 10, 16), doc.Meta.Created)
	assert.Equal(t, A4(), doc.Geometry)
}

func TestComposeSectionOrder(t *testing.T) {
	doc := compose(t, Input{Invoice: scenario(), Business: testBusiness})

	y := map[string]float64{}
	for _, txt := range pageTexts(doc.Pages[0]) {
		if _, seen := y[txt.Value]; !seen {
			y[txt.Value] = txt.Y
		}
	}

	order := []string{"Example Consulting", "INVOICE", "BILL TO", "Service", "DEV", "Subtotal", "Total", "Page 1 of 1"}
	for i := 1; i < len(order); i++ {
		assert.Less(t, y[order[i-1]], y[order[i]], "%s above %s", order[i-1], order[i])
	}
}

func TestComposeNotesOmittedKeepsFooter(t *testing.T) {
	without := compose(t, Input{Invoice: scenario(), Business: testBusiness})

	withNotes := scenario()
	withNotes.Notes = "Payable within 14 days."
	with := compose(t, Input{Invoice: withNotes, Business: testBusiness})

	require.Len(t, without.Pages, 1)
	require.Len(t, with.Pages, 1)
	assert.Zero(t, docCount(without, "Notes"))
	assert.Equal(t, 1, docCount(with, "Notes"))
	assert.Equal(t, 1, docCount(with, "Payable within 14 days."))

	footer := func(d *Document) []Element {
		els := d.Pages[0].Elements
		return els[len(els)-3:]
	}
	assert.Equal(t, footer(without), footer(with))

	blank := scenario()
	blank.Notes = "  \n "
	assert.Equal(t, without, compose(t, Input{Invoice: blank, Business: testBusiness}))
}

func TestComposeLongNotesPaginate(t *testing.T) {
	inv := scenario()
	inv.Notes = strings.Repeat("A line of notes.\n", 120)
	doc := compose(t, Input{Invoice: inv, Business: testBusiness})

	g := A4()
	require.GreaterOrEqual(t, len(doc.Pages), 3)
	assert.Equal(t, 1, docCount(doc, "Notes"))
	assert.Equal(t, 120, docCount(doc, "A line of notes."))

	for _, p := range doc.Pages {
		texts := pageTexts(p)
		last := texts[len(texts)-1]
		assert.Equal(t, fmt.Sprintf("Page %d of %d", p.Number, len(doc.Pages)), last.Value)
		for _, txt := range texts[:len(texts)-2] {
			assert.LessOrEqual(t, txt.Bottom(), g.Bottom()+1e-6, "%q on page %d", txt.Value, p.Number)
		}
	}
}

func TestComposeManyItems(t *testing.T) {
	inv := scenario()
	inv.Items = items(150, "Consulting")
	doc := compose(t, Input{Invoice: inv, Business: testBusiness, Currency: "EUR"})

	require.GreaterOrEqual(t, len(doc.Pages), 3)
	for _, p := range doc.Pages[1:] {
		assert.Equal(t, "Service", pageTexts(p)[0].Value, "page %d starts with the table header", p.Number)
	}

	last := doc.Pages[len(doc.Pages)-1]
	var values []string
	for _, txt := range pageTexts(last) {
		values = append(values, txt.Value)
	}
	assert.Contains(t, values, "Total")
	assert.Contains(t, values, "15000.00 EUR")
}

func TestComposeNoOverlap(t *testing.T) {
	inv := scenario()
	inv.Items = items(70, "A longer description that wraps over more than one line in the table")
	inv.Notes = strings.Repeat("Some words for the notes section. ", 80)
	inv.Adjustments = []invoice.Adjustment{{Label: "Discount", Amount: decimal.NewFromInt(-100)}}
	doc := compose(t, Input{
		Invoice:  inv,
		Business: testBusiness,
		Logo:     &Logo{Name: "logo", Width: 300, Height: 200},
		Currency: "EUR",
	})

	for _, p := range doc.Pages {
		texts := pageTexts(p)
		for i := range texts {
			for j := i + 1; j < len(texts); j++ {
				assert.False(t, texts[i].Overlaps(texts[j].Box),
					"page %d: %q overlaps %q", p.Number, texts[i].Value, texts[j].Value)
			}
		}
	}
	assert.Equal(t, 1, docCount(doc, "Discount"))
}

func TestComposeLogo(t *testing.T) {
	with := compose(t, Input{Invoice: scenario(), Logo: &Logo{Name: "logo", Width: 400, Height: 100}})

	var images []Image
	for _, e := range with.Pages[0].Elements {
		if img, ok := e.(Image); ok {
			images = append(images, img)
		}
	}
	require.Len(t, images, 1)
	assert.Equal(t, "logo", images[0].Name)
	assert.InDelta(t, 50, images[0].W, 1e-9)
	assert.InDelta(t, 12.5, images[0].H, 1e-9)
	assert.InDelta(t, 15, images[0].X, 1e-9)

	without := compose(t, Input{Invoice: scenario()})
	for _, e := range without.Pages[0].Elements {
		_, ok := e.(Image)
		assert.False(t, ok)
	}
}

func TestComposeErrors(t *testing.T) {
	theme := DefaultTheme()
	theme.Geometry.MarginLeft = 300
	_, err := Composer{Theme: theme, Metrics: mono}.Compose(Input{Invoice: scenario()})
	assert.True(t, errors.Is(err, ErrLayout), "got %v", err)

	_, err = Composer{Theme: DefaultTheme()}.Compose(Input{Invoice: scenario()})
	assert.Error(t, err)
}

func TestFitBox(t *testing.T) {
	w, h := fitBox(100, 100, 50, 25)
	assert.InDelta(t, 25, w, 1e-9)
	assert.InDelta(t, 25, h, 1e-9)

	w, h = fitBox(10, 5, 50, 25)
	assert.InDelta(t, 50, w, 1e-9)
	assert.InDelta(t, 25, h, 1e-9)
}

func TestContactLine(t *testing.T) {
	assert.Equal(t, "Example Consulting  |  billing@example.com  |  +49 711 123456", testBusiness.contactLine())
	assert.Empty(t, Business{}.contactLine())
}
