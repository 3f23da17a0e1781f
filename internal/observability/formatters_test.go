package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/tender-intel/internal/classify"
	"github.com/jonathan/tender-intel/internal/dashboard"
	"github.com/jonathan/tender-intel/internal/tender"
	"github.com/stretchr/testify/assert"
)

func sampleRow(ref, title string) dashboard.Row {
	return dashboard.Row{
		Tender:    tender.Record{Ref: ref, Title: title},
		Decision:  classify.Decision{Label: "Bid", Confidence: 93, Reason: "Strong technical and strategic fit"},
		Countdown: dashboard.Countdown{Label: "3 days", Level: dashboard.LevelUrgent},
		Scope:     "TES",
	}
}

func TestPrintKPIs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintKPIs(dashboard.FilterTES, dashboard.KPIs{Total: 12, TES: 5, Phakathi: 4})
	output := buf.String()

	assert.Contains(t, output, "TENDER OVERVIEW")
	assert.Contains(t, output, "Filter:         TES")
	assert.Contains(t, output, "Open tenders:   12")
	assert.Contains(t, output, "Phakathi-fit:   4")
}

func TestPrintRows(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRows([]dashboard.Row{sampleRow("T-1", "Chlorine supply"), sampleRow("", "")}, 0)
	output := buf.String()

	assert.Contains(t, output, "CLASSIFIED TENDERS")
	assert.Contains(t, output, "#1  T-1  Chlorine supply")
	assert.Contains(t, output, "#2  -")
	assert.Contains(t, output, "Scope: TES  |  Closes: 3 days")
	assert.Contains(t, output, "Bid (93%): Strong technical and strategic fit")
	assert.NotContains(t, output, "more tenders")
}

func TestPrintRows_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRows(nil, 0)
	assert.Contains(t, buf.String(), "No open tenders.")
}

func TestPrintRows_Limit(t *testing.T) {
	rows := make([]dashboard.Row, 8)
	for i := range rows {
		rows[i] = sampleRow(fmt.Sprintf("R-%d", i), "Tender")
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintRows(rows, 0)
	assert.Contains(t, buf.String(), "#5  R-4")
	assert.NotContains(t, buf.String(), "#6")
	assert.Contains(t, buf.String(), "... and 3 more tenders")

	buf.Reset()
	NewPrinter(&buf).PrintRows(rows, 8)
	assert.Contains(t, buf.String(), "#8  R-7")
	assert.NotContains(t, buf.String(), "more tenders")
}

func TestPrintRows_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRows([]dashboard.Row{sampleRow("T-1", strings.Repeat("é", 200))}, 0)

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintSummary(t *testing.T) {
	suitability := 9.0
	s := dashboard.Summary{
		GeneratedAt: "2026-10-19 08:00",
		BuildID:     "2026-10-19 08:00 · abc1234",
		Counts: dashboard.SummaryCounts{
			Total:     3,
			ByCompany: dashboard.Counts{{Name: "TES", Count: 2}, {Name: "Phakathi", Count: 1}},
		},
		Top: []dashboard.TopTender{
			{Title: "Chlorine supply", Suitability: &suitability},
			{Title: "Pump repair"},
		},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(s)
	output := buf.String()

	assert.Contains(t, output, "DAILY SUMMARY")
	assert.Contains(t, output, "Build:     2026-10-19 08:00 · abc1234")
	assert.Contains(t, output, "By company:")
	assert.Contains(t, output, "• TES")
	assert.NotContains(t, output, "By priority:")
	assert.Contains(t, output, "1. Chlorine supply [9]")
	assert.Contains(t, output, "2. Pump repair [-]")
}

func TestPrintWeekly(t *testing.T) {
	w := dashboard.Weekly{
		From:       "2026-10-12",
		To:         "2026-10-19",
		Total:      6,
		ThisWeek:   2,
		ByPriority: dashboard.Counts{{Name: "HIGH", Count: 3}, {Name: "MEDIUM", Count: 1}, {Name: "LOW", Count: 0}},
		ClosingSoon: []dashboard.ClosingTender{
			{Ref: "W-2", Title: "Pump overhaul", DaysLeft: 1, Priority: "HIGH"},
		},
		HighPriority: []dashboard.PriorityTender{
			{Ref: "W-1", Title: "Cooling water chemicals", Score: 9},
			{Title: "Unreferenced", Score: 5},
		},
		TopIndustries: dashboard.Counts{{Name: "Eskom", Count: 2}},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintWeekly(w)
	output := buf.String()

	assert.Contains(t, output, "WEEKLY REPORT")
	assert.Contains(t, output, "Period:          2026-10-12 to 2026-10-19")
	assert.Contains(t, output, "Added this week: 2")
	assert.Contains(t, output, "Closing soon:    1")
	assert.Contains(t, output, "HIGH priority:   3")
	assert.Contains(t, output, "• 1d  W-2  Pump overhaul [HIGH]")
	assert.Contains(t, output, "1. W-1  Cooling water chemicals [9/10]")
	assert.Contains(t, output, "2. -  Unreferenced [5/10]")
	assert.Contains(t, output, "Top industries:")
	assert.NotContains(t, output, "By status:")
}

func TestPrintWeekly_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintWeekly(dashboard.BuildWeekly(nil, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
	output := buf.String()

	assert.Contains(t, output, "Total tenders:   0")
	assert.Equal(t, 2, strings.Count(output, "  none"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
