package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/tender-intel/internal/classify"
	"github.com/jonathan/tender-intel/internal/tender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func ptr(f float64) *float64 { return &f }

func sampleTenders() []tender.Record {
	return []tender.Record{
		{Ref: "T-1", Title: "Chlorine supply", Description: "Supply of chlorine and dosing", Company: "TES", Priority: "HIGH", ClosingDate: "2026-10-30",
			Scores: tender.Scores{Fit: ptr(8), Suitability: ptr(7)}},
		{Ref: "T-2", Title: "Closed pump tender", Description: "Pump refurbishment", Company: "Phakathi", ClosingDate: "2026-10-01"},
		{Ref: "T-3", Title: "Switchgear upgrade", Description: "Switchgear maintenance", Company: "Phakathi", Priority: "MEDIUM", ClosingDate: "2026-10-20"},
		{Ref: "T-4", Title: "No date", Description: "Boiler and valves", Company: "Both", Priority: "LOW"},
		{Ref: "T-5", Title: "Stormwater building", Description: "Civil construction of new building", Company: "TES", Priority: "HIGH", ClosingDate: "2026-10-19"},
		{Ref: "T-6", Title: "Bad date", Description: "Office cleaning", Company: "TES", ClosingDate: "soon"},
	}
}

func refs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Tender.Ref
	}
	return out
}

func TestBuildRows_DropsClosedAndSortsByDays(t *testing.T) {
	rows, err := BuildRows(context.Background(), sampleTenders(), RowOptions{Now: now})
	require.NoError(t, err)

	want := []string{"T-5", "T-3", "T-1", "T-4", "T-6"}
	if diff := cmp.Diff(want, refs(rows)); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}

	today := rows[0]
	require.NotNil(t, today.DaysUntil)
	assert.Equal(t, 0, *today.DaysUntil)
	assert.Equal(t, Countdown{Label: "TODAY!", Level: LevelUrgent}, today.Countdown)
	assert.Equal(t, "TODAY!", today.Status)
	assert.Equal(t, classify.RelevanceOutOfScope, today.Classification.Relevance)
	assert.Equal(t, "Not in scope", today.Scope)

	assert.Nil(t, rows[3].DaysUntil)
	assert.Equal(t, "TBC", rows[3].Countdown.Label)
}

func TestBuildRows_Filters(t *testing.T) {
	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"T-5", "T-3", "T-1", "T-4", "T-6"}},
		{FilterTES, []string{"T-5", "T-1", "T-6"}},
		{FilterPhakathi, []string{"T-3"}},
		{FilterBoth, []string{"T-4"}},
		{FilterHigh, []string{"T-5", "T-1"}},
		{FilterMedium, []string{"T-3"}},
		{FilterLow, []string{"T-4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			rows, err := BuildRows(context.Background(), sampleTenders(), RowOptions{Filter: tt.filter, Now: now})
			require.NoError(t, err)
			assert.Equal(t, tt.want, refs(rows))
		})
	}
}

func TestBuildRows_HideOutOfScope(t *testing.T) {
	rows, err := BuildRows(context.Background(), sampleTenders(), RowOptions{Now: now, HideOutOfScope: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"T-3", "T-1", "T-4", "T-6"}, refs(rows))
}

func TestBuildRows_ScoreMissing(t *testing.T) {
	tenders := []tender.Record{
		{Ref: "S-1", Title: "Supply of Cooling Water Treatment Chemicals",
			Description: "Cooling water treatment chemicals for power station condensers, scale inhibitors and biocides for 3 year period",
			Client:      "Eskom", Company: "TES", ClosingDate: "2026-11-30"},
		{Ref: "S-2", Title: "Boiler chemicals", Description: "Boiler dosing", Company: "TES", ClosingDate: "2026-11-30",
			Scores: tender.Scores{Fit: ptr(3)}},
	}

	rows, err := BuildRows(context.Background(), tenders, RowOptions{Now: now, Filter: FilterHigh})
	require.NoError(t, err)
	assert.Empty(t, rows, "unscored tenders have no priority to filter on")

	rows, err = BuildRows(context.Background(), tenders, RowOptions{Now: now, ScoreMissing: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	scored := rows[0].Tender
	assert.Equal(t, "S-1", scored.Ref)
	require.NotNil(t, scored.Scores.Fit)
	assert.Equal(t, 9.0, *scored.Scores.Fit)
	assert.Equal(t, tender.PriorityHigh, scored.Scores.Priority)
	assert.Empty(t, scored.Priority)

	assert.Equal(t, 3.0, *rows[1].Tender.Scores.Fit, "present scores are kept")
	assert.Nil(t, tenders[1].Scores.Revenue, "input is not modified")

	rows, err = BuildRows(context.Background(), tenders, RowOptions{Now: now, ScoreMissing: true, Filter: FilterHigh})
	require.NoError(t, err)
	assert.Equal(t, []string{"S-1"}, refs(rows))
}

func TestBuildRows_StatusPrefersRecordStatus(t *testing.T) {
	rows, err := BuildRows(context.Background(), []tender.Record{{Ref: "S", Status: "Awarded", ClosingDate: "2026-10-25"}}, RowOptions{Now: now})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Awarded", rows[0].Status)
	assert.Equal(t, "6 days", rows[0].Countdown.Label)
}

func TestBuildRows_PreservesOrderUnderParallelism(t *testing.T) {
	tenders := make([]tender.Record, 200)
	for i := range tenders {
		tenders[i] = tender.Record{
			Ref:         fmt.Sprintf("R-%03d", i),
			Description: []string{"chlorine dosing", "pump repair", "roadworks building", "catering"}[i%4],
			ClosingDate: now.AddDate(0, 0, i%5).Format("2006-01-02"),
		}
	}

	sequential, err := BuildRows(context.Background(), tenders, RowOptions{Now: now, Concurrency: 1})
	require.NoError(t, err)
	parallel, err := BuildRows(context.Background(), tenders, RowOptions{Now: now, Concurrency: 16})
	require.NoError(t, err)

	if diff := cmp.Diff(sequential, parallel); diff != "" {
		t.Errorf("parallel rows differ (-sequential +parallel):\n%s", diff)
	}
	for i := 1; i < len(parallel); i++ {
		assert.LessOrEqual(t, *parallel[i-1].DaysUntil, *parallel[i].DaysUntil)
	}
}

func TestBuildRows_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildRows(ctx, sampleTenders(), RowOptions{Now: now})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildRows_Empty(t *testing.T) {
	rows, err := BuildRows(context.Background(), nil, RowOptions{Now: now})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("Phakathi")
	require.NoError(t, err)
	assert.Equal(t, FilterPhakathi, f)

	_, err = ParseFilter("phakathi")
	assert.Error(t, err)
}

func TestScopeText(t *testing.T) {
	assert.Equal(t, "TES + Phakathi", ScopeText(classify.RelevanceBoth))
	assert.Equal(t, "TES", ScopeText(classify.RelevanceTES))
	assert.Equal(t, "Phakathi", ScopeText(classify.RelevancePhakathi))
	assert.Equal(t, "Not in scope", ScopeText(classify.RelevanceOutOfScope))
	assert.Equal(t, "Review", ScopeText(classify.RelevanceUnknown))
}

func TestComputeKPIs(t *testing.T) {
	rows, err := BuildRows(context.Background(), sampleTenders(), RowOptions{Now: now})
	require.NoError(t, err)

	// T-1 TES, T-3 Phakathi, T-4 Both, T-5 out of scope, T-6 unknown.
	assert.Equal(t, KPIs{Total: 5, TES: 2, Phakathi: 2}, ComputeKPIs(rows))
}

func TestCountdownFor(t *testing.T) {
	tests := []struct {
		days int
		ok   bool
		want Countdown
	}{
		{0, false, Countdown{"TBC", LevelNormal}},
		{-1, true, Countdown{"CLOSED", LevelClosed}},
		{0, true, Countdown{"TODAY!", LevelUrgent}},
		{1, true, Countdown{"TOMORROW!", LevelUrgent}},
		{3, true, Countdown{"3 days", LevelUrgent}},
		{4, true, Countdown{"4 days", LevelWarning}},
		{7, true, Countdown{"7 days", LevelWarning}},
		{8, true, Countdown{"8 days", LevelNormal}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountdownFor(tt.days, tt.ok), "days=%d ok=%v", tt.days, tt.ok)
	}
}

func TestDaysText(t *testing.T) {
	assert.Equal(t, "-", DaysText(0, false))
	assert.Equal(t, "Closed", DaysText(-2, true))
	assert.Equal(t, "0 days remaining", DaysText(0, true))
	assert.Equal(t, "1 day remaining", DaysText(1, true))
	assert.Equal(t, "12 days remaining", DaysText(12, true))
}
