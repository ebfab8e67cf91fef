// Package invoice holds the invoice document model: parties, dated line
// items, totals and the snapshot taken at the start of every export.
package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Party is the billed client.
type Party struct {
	Name     string
	Address  string // free text, may span several lines
	ClientID string
}

// LineItem is one billable row. Cost is derived from Hours and Rate on every
// read and never stored.
type LineItem struct {
	Service     string
	Date        time.Time
	Description string
	Hours       decimal.Decimal
	Rate        decimal.Decimal
}

// Cost returns Hours x Rate rounded to cents.
func (li LineItem) Cost() decimal.Decimal {
	return li.Hours.Mul(li.Rate).Round(2)
}

// Adjustment is an additive, labelled correction applied after the subtotal.
type Adjustment struct {
	Label  string
	Amount decimal.Decimal
}

// Document is the invoice as captured from the form.
type Document struct {
	Number      string
	IssueDate   time.Time
	DueDate     time.Time
	BillTo      Party
	Items       []LineItem
	Notes       string
	Adjustments []Adjustment
}

// Totals summarizes a document.
type Totals struct {
	Subtotal    decimal.Decimal
	Adjustments []Adjustment
	Total       decimal.Decimal
}

// Totals computes the subtotal and total from the current line items.
func (d Document) Totals() Totals {
	subtotal := decimal.Zero
	for _, li := range d.Items {
		subtotal = subtotal.Add(li.Cost())
	}

	total := subtotal
	adjustments := make([]Adjustment, len(d.Adjustments))
	for i, a := range d.Adjustments {
		adjustments[i] = a
		total = total.Add(a.Amount)
	}

	return Totals{
		Subtotal:    subtotal,
		Adjustments: adjustments,
		Total:       total,
	}
}

// HasNotes reports whether the document carries non-blank notes.
func (d Document) HasNotes() bool {
	return strings.TrimSpace(d.Notes) != ""
}

// Snapshot returns a deep copy that shares no mutable state with d.
func (d Document) Snapshot() Document {
	s := d
	if d.Items != nil {
		s.Items = make([]LineItem, len(d.Items))
		copy(s.Items, d.Items)
	}
	if d.Adjustments != nil {
		s.Adjustments = make([]Adjustment, len(d.Adjustments))
		copy(s.Adjustments, d.Adjustments)
	}
	return s
}

// FileName returns the download name for an invoice number,
// e.g. "invoice-inv-007.pdf". Characters that are not allowed in a single
// file name become '-', so "2026/001" gives "invoice-2026-001.pdf".
func FileName(number string) string {
	name := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '-'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(number)))
	return "invoice-" + name + ".pdf"
}

// Day returns the calendar date y-m-d at UTC midnight.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// dateOnly strips the time of day, keeping the calendar date as seen in t's location.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return Day(y, m, d)
}
