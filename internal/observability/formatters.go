// Package observability provides formatted text output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/tender-intel/internal/dashboard"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for text mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintKPIs outputs the headline counts for a filter.
func (p *Printer) PrintKPIs(filter dashboard.Filter, k dashboard.KPIs) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Filter:         %s\n", filter))
	sb.WriteString(fmt.Sprintf("Open tenders:   %d\n", k.Total))
	sb.WriteString(fmt.Sprintf("TES-fit:        %d\n", k.TES))
	sb.WriteString(fmt.Sprintf("Phakathi-fit:   %d", k.Phakathi))

	p.printBox("TENDER OVERVIEW", sb.String())
}

// PrintRows outputs up to limit rows (maxItemsToShow when limit <= 0) with
// their scope, decision and countdown.
func (p *Printer) PrintRows(rows []dashboard.Row, limit int) {
	if len(rows) == 0 {
		p.printBox("CLASSIFIED TENDERS", "No open tenders.")
		return
	}
	if limit <= 0 {
		limit = maxItemsToShow
	}

	var sb strings.Builder
	count := min(len(rows), limit)
	for i := 0; i < count; i++ {
		row := rows[i]
		title := row.Tender.Title
		if title == "" {
			title = "-"
		}
		if row.Tender.Ref != "" {
			title = row.Tender.Ref + "  " + title
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("    Scope: %s  |  Closes: %s\n", row.Scope, row.Countdown.Label))
		sb.WriteString(fmt.Sprintf("    %s (%d%%): %s", row.Decision.Label, row.Decision.Confidence, row.Decision.Reason))
		if i < count-1 {
			sb.WriteString("\n\n")
		}
	}

	if len(rows) > count {
		sb.WriteString(fmt.Sprintf("\n\n... and %d more tenders", len(rows)-count))
	}

	p.printBox("CLASSIFIED TENDERS", sb.String())
}

// PrintSummary outputs the summary breakdowns and the most suitable tenders.
func (p *Printer) PrintSummary(s dashboard.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated: %s\n", s.GeneratedAt))
	sb.WriteString(fmt.Sprintf("Build:     %s\n", s.BuildID))
	sb.WriteString(fmt.Sprintf("Total:     %d\n", s.Counts.Total))

	writeCounts(&sb, "By company", s.Counts.ByCompany)
	writeCounts(&sb, "By priority", s.Counts.ByPriority)
	writeCounts(&sb, "By source", s.Counts.BySource)

	if len(s.Top) > 0 {
		sb.WriteString("\nMost suitable:\n")
		n := min(len(s.Top), maxItemsToShow)
		for i, t := range s.Top[:n] {
			suitability := "-"
			if t.Suitability != nil {
				suitability = fmt.Sprintf("%g", *t.Suitability)
			}
			sb.WriteString(fmt.Sprintf("  %d. %s [%s]\n", i+1, t.Title, suitability))
		}
	}

	p.printBox("DAILY SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWeekly outputs the weekly digest.
func (p *Printer) PrintWeekly(w dashboard.Weekly) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Period:          %s to %s\n", w.From, w.To))
	sb.WriteString(fmt.Sprintf("Total tenders:   %d\n", w.Total))
	sb.WriteString(fmt.Sprintf("Added this week: %d\n", w.ThisWeek))
	sb.WriteString(fmt.Sprintf("Closing soon:    %d\n", len(w.ClosingSoon)))
	sb.WriteString(fmt.Sprintf("HIGH priority:   %d\n", w.ByPriority.Get("HIGH")))

	writeCounts(&sb, "By company", w.ByCompany)
	writeCounts(&sb, "By priority", w.ByPriority)
	writeCounts(&sb, "By status", w.ByStatus)

	sb.WriteString("\nClosing in the next 7 days:\n")
	if len(w.ClosingSoon) == 0 {
		sb.WriteString("  none\n")
	}
	for _, t := range w.ClosingSoon {
		sb.WriteString(fmt.Sprintf("  • %dd  %s  %s [%s]\n", t.DaysLeft, firstNonBlank(t.Ref, "-"), t.Title, t.Priority))
	}

	sb.WriteString("\nTop HIGH priority:\n")
	if len(w.HighPriority) == 0 {
		sb.WriteString("  none\n")
	}
	n := min(len(w.HighPriority), maxItemsToShow)
	for i, t := range w.HighPriority[:n] {
		sb.WriteString(fmt.Sprintf("  %d. %s  %s [%g/10]\n", i+1, firstNonBlank(t.Ref, "-"), t.Title, t.Score))
	}

	writeCounts(&sb, "Top industries", w.TopIndustries)

	p.printBox("WEEKLY REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// writeCounts appends up to maxItemsToShow entries of a breakdown.
func writeCounts(sb *strings.Builder, label string, counts dashboard.Counts) {
	if len(counts) == 0 {
		return
	}
	sb.WriteString("\n" + label + ":\n")
	n := min(len(counts), maxItemsToShow)
	for _, c := range counts[:n] {
		sb.WriteString(fmt.Sprintf("  • %-20s %d\n", c.Name, c.Count))
	}
	if len(counts) > n {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(counts)-n))
	}
}

func firstNonBlank(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
