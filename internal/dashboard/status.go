package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/tender-intel/internal/classify"
	"github.com/jonathan/tender-intel/internal/fetch"
	"github.com/jonathan/tender-intel/internal/payload"
	"github.com/jonathan/tender-intel/internal/tender"
)

// Scraper card levels.
const (
	ScraperSuccess = "success"
	ScraperPartial = "partial"
	ScraperFailed  = "failed"
)

// ScraperCard is the health card of one scraper.
type ScraperCard struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	LastRun string `json:"last_run"`
	Count   *int   `json:"count"`
	Level   string `json:"level"`
	Error   string `json:"error,omitempty"`
}

// ScraperCards lists scraper health sorted by name. Anything other than a
// Success or Partial status is shown as failed; the error text is only kept for
// scrapers reported as Failed.
func ScraperCards(health map[string]payload.ScraperHealth) []ScraperCard {
	cards := make([]ScraperCard, 0, len(health))
	for name, info := range health {
		card := ScraperCard{
			Name:    name,
			Status:  firstNonEmpty(info.Status, "-"),
			LastRun: firstNonEmpty(info.LastRun, "-"),
			Count:   info.Count,
		}
		switch info.Status {
		case "Success":
			card.Level = ScraperSuccess
		case "Partial":
			card.Level = ScraperPartial
		default:
			card.Level = ScraperFailed
		}
		if info.Status == "Failed" {
			card.Error = info.Error
		}
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards
}

// NextRun returns the next daily run at hour:00 in now's location and a
// "Next run in ..." label.
func NextRun(now time.Time, hour int) (time.Time, string) {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	minutes := int(next.Sub(now) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	hours, minutes := minutes/60, minutes%60
	if hours > 0 {
		return next, fmt.Sprintf("Next run in %dh %dm", hours, minutes)
	}
	return next, fmt.Sprintf("Next run in %dm", minutes)
}

// Data status levels.
const (
	StatusOK    = "ok"
	StatusWarn  = "warn"
	StatusError = "err"
)

// seedNotice explains an empty dashboard when the seed is served without error.
const seedNotice = "No live data available yet (showing seed)."

// DataStatus describes where the current data came from.
type DataStatus struct {
	Level   string `json:"level"`
	Label   string `json:"label"`
	Source  string `json:"source"`
	Count   int    `json:"count"`
	Updated string `json:"updated"`
	Error   string `json:"error,omitempty"`
}

// StatusFor summarizes a load result for the status pill.
func StatusFor(res *fetch.LoadResult) DataStatus {
	if res == nil || res.Payload == nil {
		return DataStatus{Level: StatusError, Label: "Data: error", Source: "error", Updated: "–"}
	}

	st := DataStatus{
		Level:  StatusOK,
		Label:  "Data: live",
		Source: firstNonEmpty(res.Origin, res.Source, "unknown"),
		Count:  res.Payload.Len(),
	}
	if res.Source == fetch.SourceCache || res.Source == fetch.SourceSeed {
		st.Level = StatusWarn
		st.Label = "Data: cached"
		st.Source = res.Source
	}

	var storedAt string
	if !res.StoredAt.IsZero() {
		storedAt = res.StoredAt.Format(time.RFC3339)
	}
	st.Updated = firstNonEmpty(res.Payload.Meta.BuildID, res.Payload.Meta.LastSync, storedAt, "–")

	switch {
	case res.Err != nil:
		st.Error = res.Err.Error()
	case res.Source == fetch.SourceSeed:
		st.Error = seedNotice
	}
	return st
}

// Detail is the full view of one tender.
type Detail struct {
	Row
	Insight          string `json:"insight"`
	PlainDescription string `json:"plain_description"`
	DaysText         string `json:"days_text"`
	Recommendation   string `json:"recommendation"`
}

// BuildDetail classifies rec and adds the advisory text.
func BuildDetail(rec tender.Record, now time.Time) Detail {
	row := NewRow(rec, now)
	days, ok := rec.DaysUntil(now)

	plain, err := fetch.ExtractText(rec.DescriptionText())
	if err != nil {
		plain = rec.DescriptionText()
	}

	return Detail{
		Row:              row,
		Insight:          classify.Insight(rec),
		PlainDescription: plain,
		DaysText:         DaysText(days, ok),
		Recommendation: fmt.Sprintf("%s: %d%% confidence. %s",
			row.Decision.Label, row.Decision.Confidence, row.Decision.Reason),
	}
}

// FindTender looks a tender up by ref, case-insensitively, falling back to an
// exact title match.
func FindTender(tenders []tender.Record, key string) (tender.Record, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return tender.Record{}, false
	}
	for _, rec := range tenders {
		if rec.Ref != "" && strings.EqualFold(strings.TrimSpace(rec.Ref), key) {
			return rec, true
		}
	}
	for _, rec := range tenders {
		if strings.TrimSpace(rec.Title) == key {
			return rec, true
		}
	}
	return tender.Record{}, false
}
