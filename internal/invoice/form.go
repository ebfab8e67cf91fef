package invoice

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Form Capture
// ---------------------------------------------------------------------------

// Raw is a form field captured verbatim, whatever YAML scalar type it was
// written as.
type Raw string

// UnmarshalYAML keeps the scalar text untouched.
func (r *Raw) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", value.Line)
	}
	*r = Raw(value.Value)
	return nil
}

// FormParty is the raw client block.
type FormParty struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	ID      Raw    `yaml:"id"`
}

// FormItem is one raw line item row.
type FormItem struct {
	Service     Raw    `yaml:"service"`
	Date        Raw    `yaml:"date"`
	Description string `yaml:"description"`
	Hours       Raw    `yaml:"hours"`
	Rate        Raw    `yaml:"rate"`
}

// Form is the editable invoice state as written by the user.
type Form struct {
	Number    Raw        `yaml:"number"`
	IssueDate Raw        `yaml:"issue_date"`
	DueDate   Raw        `yaml:"due_date"`
	Client    FormParty  `yaml:"client"`
	Items     []FormItem `yaml:"items"`
	Notes     string     `yaml:"notes"`
}

// LoadForm reads an invoice form from a YAML file.
func LoadForm(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice file: %w", err)
	}
	return ParseForm(data)
}

// ParseForm decodes an invoice form from YAML.
func ParseForm(data []byte) (*Form, error) {
	var f Form
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse invoice file: %w", err)
	}
	return &f, nil
}

// Document converts the form into an invoice document. Numeric fields are
// coerced, never rejected. A missing issue date becomes today, a missing due
// date is derived from terms. Malformed dates are errors.
func (f *Form) Document(terms Terms, today time.Time) (Document, error) {
	number := strings.TrimSpace(string(f.Number))
	if number == "" {
		return Document{}, fmt.Errorf("invoice number is required")
	}

	issue, err := ParseDate(string(f.IssueDate))
	if err != nil {
		return Document{}, fmt.Errorf("invalid issue date: %w", err)
	}
	if issue.IsZero() {
		issue = dateOnly(today)
	}

	due, err := ParseDate(string(f.DueDate))
	if err != nil {
		return Document{}, fmt.Errorf("invalid due date: %w", err)
	}
	if due.IsZero() {
		due = terms.DueDate(issue)
	}

	items := make([]LineItem, 0, len(f.Items))
	for i, it := range f.Items {
		date, err := ParseDate(string(it.Date))
		if err != nil {
			return Document{}, fmt.Errorf("invalid date in item %d: %w", i+1, err)
		}
		items = append(items, LineItem{
			Service:     strings.TrimSpace(string(it.Service)),
			Date:        date,
			Description: strings.TrimSpace(it.Description),
			Hours:       ParseAmount(string(it.Hours)),
			Rate:        ParseAmount(string(it.Rate)),
		})
	}

	return Document{
		Number:    number,
		IssueDate: issue,
		DueDate:   due,
		BillTo: Party{
			Name:     strings.TrimSpace(f.Client.Name),
			Address:  strings.TrimSpace(f.Client.Address),
			ClientID: strings.TrimSpace(string(f.Client.ID)),
		},
		Items: items,
		Notes: f.Notes,
	}, nil
}

// ParseAmount coerces raw numeric input. Anything that is not a
// non-negative decimal becomes zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// dateLayouts are the accepted input formats, ISO first.
var dateLayouts = []string{"2006-01-02", "02.01.2006"}

// ParseDate parses a calendar date. Blank input yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or DD.MM.YYYY)", s)
}
