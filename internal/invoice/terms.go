package invoice

import (
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
)

// ---------------------------------------------------------------------------
// Payment Terms
// ---------------------------------------------------------------------------

// DefaultProvince is used when no or an unknown province is configured.
const DefaultProvince = "BW"

// provinceHolidays maps German state abbreviations to their holiday slices.
var provinceHolidays = map[string][]*cal.Holiday{
	"BW": de.HolidaysBW, // Baden-Württemberg
	"BY": de.HolidaysBY, // Bayern (Bavaria)
	"BE": de.HolidaysBE, // Berlin
	"BB": de.HolidaysBB, // Brandenburg
	"HB": de.HolidaysHB, // Bremen
	"HH": de.HolidaysHH, // Hamburg
	"HE": de.HolidaysHE, // Hessen (Hesse)
	"MV": de.HolidaysMV, // Mecklenburg-Vorpommern
	"NI": de.HolidaysNI, // Niedersachsen (Lower Saxony)
	"NW": de.HolidaysNW, // Nordrhein-Westfalen (North Rhine-Westphalia)
	"RP": de.HolidaysRP, // Rheinland-Pfalz (Rhineland-Palatinate)
	"SL": de.HolidaysSL, // Saarland
	"SN": de.HolidaysSN, // Sachsen (Saxony)
	"ST": de.HolidaysST, // Sachsen-Anhalt (Saxony-Anhalt)
	"SH": de.HolidaysSH, // Schleswig-Holstein
	"TH": de.HolidaysTH, // Thüringen (Thuringia)
}

// Terms describes when an invoice falls due: Days business days after the
// issue date, skipping weekends and the holidays of Province.
type Terms struct {
	Days     int
	Province string
}

// newBusinessCalendar creates a calendar with German holidays for the given province.
func newBusinessCalendar(province string) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = "Invoice payment calendar"
	c.Description = "Business days for payment terms"

	holidays, ok := provinceHolidays[strings.ToUpper(strings.TrimSpace(province))]
	if !ok {
		holidays = provinceHolidays[DefaultProvince]
	}
	c.AddHoliday(holidays...)
	return c
}

// DueDate returns the date t.Days business days after issue.
// Non-positive Days makes the invoice due on the issue date.
func (t Terms) DueDate(issue time.Time) time.Time {
	issue = dateOnly(issue)
	if t.Days <= 0 {
		return issue
	}

	c := newBusinessCalendar(t.Province)
	due := issue
	for remaining := t.Days; remaining > 0; {
		due = due.AddDate(0, 0, 1)
		if c.IsWorkday(due) {
			remaining--
		}
	}
	return due
}
