// Package format renders amounts and calendar dates in the single fixed
// display format used on invoices.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the display format for calendar dates (DD.MM.YYYY).
const DateLayout = "02.01.2006"

// Amount formats a decimal with exactly two decimal places.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Quantity formats hours the same way as amounts.
func Quantity(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Money formats an amount followed by the currency code, if any.
func Money(d decimal.Decimal, currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return Amount(d)
	}
	return Amount(d) + " " + currency
}

// Date formats a calendar date. The zero time renders as an empty string.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
