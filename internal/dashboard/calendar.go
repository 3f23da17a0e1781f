package dashboard

import (
	"fmt"
	"time"

	"github.com/jonathan/tender-intel/internal/tender"
)

const dateLayout = "2006-01-02"

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"in_month"`
	Today   bool   `json:"today"`
	Count   int    `json:"count"`
}

// CalendarMonth is a Sunday-first month grid of tender closing dates.
type CalendarMonth struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Label string        `json:"label"`
	Days  []CalendarDay `json:"days"`
}

// ParseMonth parses a YYYY-MM month. The empty string means the month of now.
func ParseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// BuildMonth lays out the given month. Leading cells from the previous month
// pad the first week so that it starts on Sunday; they carry no counts.
func BuildMonth(tenders []tender.Record, year int, month time.Month, now time.Time) CalendarMonth {
	counts := make(map[string]int)
	for _, rec := range tenders {
		if closing, ok := tender.ParseClosingDate(rec.ClosingDate); ok {
			counts[closing.Format(dateLayout)]++
		}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Format(dateLayout)

	cal := CalendarMonth{
		Year:  year,
		Month: int(month),
		Label: first.Format("January 2006"),
		Days:  make([]CalendarDay, 0, lead+daysInMonth),
	}

	for i := lead; i > 0; i-- {
		d := first.AddDate(0, 0, -i)
		cal.Days = append(cal.Days, CalendarDay{Date: d.Format(dateLayout), Day: d.Day()})
	}

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		cal.Days = append(cal.Days, CalendarDay{
			Date:    date,
			Day:     day,
			InMonth: true,
			Today:   date == today,
			Count:   counts[date],
		})
	}

	return cal
}

// TendersOn returns the tenders closing on day, in payload order.
func TendersOn(tenders []tender.Record, day time.Time) []tender.Record {
	want := day.Format(dateLayout)
	out := []tender.Record{}
	for _, rec := range tenders {
		if closing, ok := tender.ParseClosingDate(rec.ClosingDate); ok && closing.Format(dateLayout) == want {
			out = append(out, rec)
		}
	}
	return out
}
