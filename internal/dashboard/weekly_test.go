package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/tender-intel/internal/tender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklyTenders() []tender.Record {
	return []tender.Record{
		{Ref: "W-1", Title: "Cooling water chemicals", Client: "Eskom", Company: "TES", Priority: "HIGH",
			ClosingDate: "2026-10-22", DateAdded: "2026-10-15", Scores: tender.Scores{Suitability: ptr(9)}},
		{Ref: "W-2", Title: "Pump overhaul at Secunda", Client: "Sasol", Company: "Phakathi",
			ClosingDate: "2026-10-20", DateAdded: "2026-10-01", Scores: tender.Scores{Priority: "HIGH"}},
		{Ref: "W-3", Title: "Boiler spares for mine", Company: "Both", Priority: "LOW", Status: "Closed",
			ClosingDate: "2026-10-21", DateAdded: "2026-10-12"},
		{Ref: "W-4", Title: "Office cleaning", Company: "Other", ClosingDate: "2026-11-30"},
		{Ref: "W-5", Title: "Eskom boiler feedwater", Priority: "URGENT", ClosingDate: "2026-10-18"},
		{Ref: "W-6", Title: "Supply and delivery of water treatment chemicals to the Vaal purification plant",
			Client: "Rand Water", Company: "TES", Priority: "HIGH", Scores: tender.Scores{Suitability: ptr(8)}},
	}
}

func TestBuildWeekly(t *testing.T) {
	w := BuildWeekly(weeklyTenders(), now)

	assert.Equal(t, "2026-10-12", w.From)
	assert.Equal(t, "2026-10-19", w.To)
	assert.Equal(t, 6, w.Total)
	assert.Equal(t, 2, w.ThisWeek)

	assert.Equal(t, Counts{{"TES", 2}, {"Phakathi", 1}, {"Both", 1}, {"Unknown", 1}}, w.ByCompany)
	assert.Equal(t, Counts{{"HIGH", 3}, {"MEDIUM", 1}, {"LOW", 1}}, w.ByPriority)
	assert.Equal(t, Counts{{"Open", 5}, {"Closed", 1}}, w.ByStatus)

	assert.Equal(t, []ClosingTender{
		{Ref: "W-2", Title: "Pump overhaul at Secunda", Client: "Sasol", DaysLeft: 1, Priority: "HIGH"},
		{Ref: "W-1", Title: "Cooling water chemicals", Client: "Eskom", DaysLeft: 3, Priority: "HIGH"},
	}, w.ClosingSoon)

	require.Len(t, w.HighPriority, 3)
	assert.Equal(t, []string{"W-1", "W-6", "W-2"},
		[]string{w.HighPriority[0].Ref, w.HighPriority[1].Ref, w.HighPriority[2].Ref})
	assert.Equal(t, 5.0, w.HighPriority[2].Score, "unscored tenders rank at 5")
	assert.Equal(t, "Supply and delivery of water treatment chemicals t", w.HighPriority[1].Title)

	assert.Equal(t, Counts{{"Eskom", 2}, {"Mine", 1}, {"Office", 1}, {"Rand Water", 1}, {"Sasol", 1}}, w.TopIndustries)
}

func TestBuildWeekly_KeepsTopFiveIndustries(t *testing.T) {
	var tenders []tender.Record
	for _, title := range []string{"eskom", "eskom", "mining", "hospital", "retail", "office", "residential"} {
		tenders = append(tenders, tender.Record{Title: title})
	}

	w := BuildWeekly(tenders, now)
	assert.Equal(t, Counts{{"Eskom", 2}, {"Hospital", 1}, {"Mining", 1}, {"Office", 1}, {"Residential", 1}}, w.TopIndustries)
}

func TestBuildWeekly_ClosingSoonLimit(t *testing.T) {
	var tenders []tender.Record
	for i := 0; i < 15; i++ {
		tenders = append(tenders, tender.Record{Title: "t", ClosingDate: "2026-10-2" + string(rune('0'+i%6))})
	}

	w := BuildWeekly(tenders, now)
	require.Len(t, w.ClosingSoon, 10)
	assert.Equal(t, 1, w.ClosingSoon[0].DaysLeft)
	for i := 1; i < len(w.ClosingSoon); i++ {
		assert.LessOrEqual(t, w.ClosingSoon[i-1].DaysLeft, w.ClosingSoon[i].DaysLeft)
	}
}

func TestBuildWeekly_Empty(t *testing.T) {
	w := BuildWeekly(nil, now)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"from": "2026-10-12", "to": "2026-10-19", "total": 0, "this_week": 0,
		"by_company": {"TES": 0, "Phakathi": 0, "Both": 0, "Unknown": 0},
		"by_priority": {"HIGH": 0, "MEDIUM": 0, "LOW": 0},
		"by_status": {},
		"closing_soon": [],
		"high_priority": [],
		"top_industries": {}
	}`, string(data))
}
