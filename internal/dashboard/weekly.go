package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/jonathan/tender-intel/internal/scoring"
	"github.com/jonathan/tender-intel/internal/tender"
)

const (
	// closingSoonDays is the horizon of the weekly closing-soon list.
	closingSoonDays = 7
	// weeklyTitleLen caps titles in the weekly lists.
	weeklyTitleLen = 50
	// industryNameLen caps industry names in the weekly breakdown.
	industryNameLen = 20
	// topIndustries is the number of industries the weekly digest keeps.
	topIndustries = 5
	// defaultWeeklyScore ranks high-priority tenders that carry no score.
	defaultWeeklyScore = 5.0
	statusOpen         = "Open"
)

// ClosingTender is an open tender closing within the week.
type ClosingTender struct {
	Ref      string `json:"ref"`
	Title    string `json:"title"`
	Client   string `json:"client"`
	DaysLeft int    `json:"days_left"`
	Priority string `json:"priority"`
}

// PriorityTender is an open HIGH priority tender.
type PriorityTender struct {
	Ref     string  `json:"ref"`
	Title   string  `json:"title"`
	Client  string  `json:"client"`
	Company string  `json:"company"`
	Score   float64 `json:"score"`
}

// Weekly is the weekly digest: totals, breakdowns and the tenders that need
// attention this week.
type Weekly struct {
	From          string           `json:"from"`
	To            string           `json:"to"`
	Total         int              `json:"total"`
	ThisWeek      int              `json:"this_week"`
	ByCompany     Counts           `json:"by_company"`
	ByPriority    Counts           `json:"by_priority"`
	ByStatus      Counts           `json:"by_status"`
	ClosingSoon   []ClosingTender  `json:"closing_soon"`
	HighPriority  []PriorityTender `json:"high_priority"`
	TopIndustries Counts           `json:"top_industries"`
}

// BuildWeekly summarises the week ending on now's date. Tenders without a
// status count as open and tenders without a priority as MEDIUM; companies and
// priorities outside the fixed buckets are left out of those breakdowns.
func BuildWeekly(tenders []tender.Record, now time.Time) Weekly {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := today.AddDate(0, 0, -closingSoonDays)

	w := Weekly{
		From:         weekAgo.Format("2006-01-02"),
		To:           today.Format("2006-01-02"),
		Total:        len(tenders),
		ClosingSoon:  []ClosingTender{},
		HighPriority: []PriorityTender{},
	}

	byCompany := presetCounts(string(FilterTES), string(FilterPhakathi), string(FilterBoth), "Unknown")
	byPriority := presetCounts(tender.PriorityHigh, tender.PriorityMedium, tender.PriorityLow)
	byStatus := map[string]int{}
	industries := map[string]int{}

	for _, rec := range tenders {
		company := firstNonEmpty(strings.TrimSpace(rec.Company), "Unknown")
		priority := firstNonEmpty(rec.EffectivePriority(), tender.PriorityMedium)
		status := firstNonEmpty(strings.TrimSpace(rec.Status), statusOpen)
		open := strings.EqualFold(status, statusOpen)

		byCompany.inc(company)
		byPriority.inc(priority)
		byStatus[status]++

		text := strings.ToLower(rec.Title + " " + rec.DescriptionText() + " " + rec.Client)
		industries[truncateRunes(scoring.IndustryScore(text).Matched, industryNameLen)]++

		if added, ok := tender.ParseClosingDate(rec.DateAdded); ok && !added.Before(weekAgo) {
			w.ThisWeek++
		}

		if days, ok := rec.DaysUntil(now); ok && open && days >= 0 && days <= closingSoonDays {
			w.ClosingSoon = append(w.ClosingSoon, ClosingTender{
				Ref:      rec.Ref,
				Title:    truncateRunes(rec.Title, weeklyTitleLen),
				Client:   rec.Client,
				DaysLeft: days,
				Priority: priority,
			})
		}

		if priority == tender.PriorityHigh && open {
			score := defaultWeeklyScore
			if rec.Scores.Suitability != nil {
				score = *rec.Scores.Suitability
			}
			w.HighPriority = append(w.HighPriority, PriorityTender{
				Ref:     rec.Ref,
				Title:   truncateRunes(rec.Title, weeklyTitleLen),
				Client:  rec.Client,
				Company: company,
				Score:   score,
			})
		}
	}

	sort.SliceStable(w.ClosingSoon, func(i, j int) bool { return w.ClosingSoon[i].DaysLeft < w.ClosingSoon[j].DaysLeft })
	sort.SliceStable(w.HighPriority, func(i, j int) bool { return w.HighPriority[i].Score > w.HighPriority[j].Score })
	w.ClosingSoon = w.ClosingSoon[:min(len(w.ClosingSoon), topLimit)]
	w.HighPriority = w.HighPriority[:min(len(w.HighPriority), topLimit)]

	w.ByCompany = Counts(byCompany)
	w.ByPriority = Counts(byPriority)
	w.ByStatus = sortedCounts(byStatus)
	w.TopIndustries = sortedCounts(industries)
	w.TopIndustries = w.TopIndustries[:min(len(w.TopIndustries), topIndustries)]
	return w
}

// fixedCounts is a breakdown over a fixed, ordered set of names.
type fixedCounts Counts

func presetCounts(names ...string) fixedCounts {
	c := make(fixedCounts, len(names))
	for i, name := range names {
		c[i] = Count{Name: name}
	}
	return c
}

// inc counts name if it is one of the preset names.
func (c fixedCounts) inc(name string) {
	for i := range c {
		if c[i].Name == name {
			c[i].Count++
			return
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
