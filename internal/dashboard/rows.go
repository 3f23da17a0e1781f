// Package dashboard turns a tender payload into the views the dashboard shows:
// classified rows, the closing-date calendar, the daily summary and status cards.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/tender-intel/internal/classify"
	"github.com/jonathan/tender-intel/internal/metrics"
	"github.com/jonathan/tender-intel/internal/scoring"
	"github.com/jonathan/tender-intel/internal/tender"
	"golang.org/x/sync/errgroup"
)

// Filter selects which tenders appear in the row list.
type Filter string

// Filter values. Company filters match the record's company label exactly;
// priority filters match its normalized priority.
const (
	FilterAll      Filter = "all"
	FilterTES      Filter = "TES"
	FilterPhakathi Filter = "Phakathi"
	FilterBoth     Filter = "Both"
	FilterHigh     Filter = "HIGH"
	FilterMedium   Filter = "MEDIUM"
	FilterLow      Filter = "LOW"
)

// ParseFilter validates a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterTES, FilterPhakathi, FilterBoth, FilterHigh, FilterMedium, FilterLow:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

func (f Filter) matches(rec tender.Record) bool {
	switch f {
	case FilterTES, FilterPhakathi, FilterBoth:
		return rec.Company == string(f)
	case FilterHigh, FilterMedium, FilterLow:
		return rec.EffectivePriority() == string(f)
	default:
		return true
	}
}

// unknownDays sorts tenders without a closing date after every dated one.
const unknownDays = 999

// DefaultConcurrency bounds parallel classification of a batch.
const DefaultConcurrency = 8

// RowOptions controls BuildRows. ScoreMissing rates tenders that arrive
// without scores before they are filtered and classified.
type RowOptions struct {
	Filter         Filter
	HideOutOfScope bool
	ScoreMissing   bool
	Now            time.Time
	Concurrency    int
}

// Row is one classified tender ready for display.
type Row struct {
	Tender         tender.Record     `json:"tender"`
	Classification classify.Result   `json:"classification"`
	Decision       classify.Decision `json:"decision"`
	DaysUntil      *int              `json:"days_until"`
	Countdown      Countdown         `json:"countdown"`
	Scope          string            `json:"scope"`
	Status         string            `json:"status"`
}

// BuildRows drops closed tenders, applies the filter, orders the rest by
// closing date (soonest first, undated last, ties in input order) and
// classifies them in parallel. The output order never depends on scheduling.
func BuildRows(ctx context.Context, tenders []tender.Record, opts RowOptions) ([]Row, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	type candidate struct {
		rec  tender.Record
		days int
		ok   bool
	}

	candidates := make([]candidate, 0, len(tenders))
	for _, rec := range tenders {
		days, ok := rec.DaysUntil(now)
		if ok && days < 0 {
			continue
		}
		if opts.ScoreMissing {
			rec, _ = scoring.Fill(rec, now)
		}
		if !opts.Filter.matches(rec) {
			continue
		}
		candidates = append(candidates, candidate{rec: rec, days: days, ok: ok})
	}

	sortKey := func(c candidate) int {
		if !c.ok {
			return unknownDays
		}
		return c.days
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return sortKey(candidates[i]) < sortKey(candidates[j])
	})

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	rows := make([]Row, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = newRow(c.rec, c.days, c.ok)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, row := range rows {
		metrics.TendersClassified.WithLabelValues(string(row.Classification.Relevance)).Inc()
		metrics.BidDecisions.WithLabelValues(row.Decision.Label).Inc()
		if opts.HideOutOfScope && row.Classification.Relevance == classify.RelevanceOutOfScope {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// NewRow classifies a single tender relative to now.
func NewRow(rec tender.Record, now time.Time) Row {
	days, ok := rec.DaysUntil(now)
	return newRow(rec, days, ok)
}

func newRow(rec tender.Record, days int, ok bool) Row {
	eval := classify.Evaluate(rec)
	row := Row{
		Tender:         rec,
		Classification: eval.Classification,
		Decision:       eval.Decision,
		Countdown:      CountdownFor(days, ok),
		Scope:          ScopeText(eval.Classification.Relevance),
	}
	if ok {
		d := days
		row.DaysUntil = &d
	}
	row.Status = rec.Status
	if row.Status == "" {
		row.Status = row.Countdown.Label
	}
	return row
}

// ScopeText is the short scope label shown next to a tender.
func ScopeText(r classify.Relevance) string {
	switch r {
	case classify.RelevanceOutOfScope:
		return "Not in scope"
	case classify.RelevanceTES:
		return "TES"
	case classify.RelevancePhakathi:
		return "Phakathi"
	case classify.RelevanceBoth:
		return "TES + Phakathi"
	default:
		return "Review"
	}
}

// KPIs are the headline counts of a row set.
type KPIs struct {
	Total    int `json:"total"`
	TES      int `json:"tes"`
	Phakathi int `json:"phakathi"`
}

// ComputeKPIs counts rows; a Both tender counts toward TES and Phakathi.
func ComputeKPIs(rows []Row) KPIs {
	k := KPIs{Total: len(rows)}
	for _, row := range rows {
		switch row.Classification.Relevance {
		case classify.RelevanceTES:
			k.TES++
		case classify.RelevancePhakathi:
			k.Phakathi++
		case classify.RelevanceBoth:
			k.TES++
			k.Phakathi++
		}
	}
	return k
}
