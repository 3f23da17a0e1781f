package classify

import (
	"math"
	"testing"

	"github.com/jonathan/tender-intel/internal/tender"
	"github.com/stretchr/testify/assert"
)

func scored(fit, suitability float64, priority string) tender.Record {
	return tender.Record{
		Title:       "Cooling water programme",
		Description: "Chemical dosing for cooling circuits",
		Priority:    priority,
		Scores:      tender.Scores{Fit: ptr(fit), Suitability: ptr(suitability)},
	}
}

func TestDecide_Rules(t *testing.T) {
	tests := []struct {
		name       string
		rec        tender.Record
		label      string
		reason     string
		confidence int
		level      string
	}{
		{"strong fit high priority", scored(8, 7, "HIGH"), LabelBid, ReasonStrongFit, 93, LevelHigh},
		{"strong fit medium priority", scored(7, 6, "MEDIUM"), LabelBid, ReasonStrongFit, 90, LevelHigh},
		{"bid confidence capped", scored(10, 10, "HIGH"), LabelBid, ReasonStrongFit, 98, LevelHigh},
		{"weak fit", scored(2, 8, "HIGH"), LabelNoBid, ReasonWeakFit, 80, LevelMedium},
		{"weak suitability", scored(9, 3, "HIGH"), LabelNoBid, ReasonWeakFit, 75, LevelMedium},
		{"weak fit confidence capped", scored(-2, 5, "HIGH"), LabelNoBid, ReasonWeakFit, 95, LevelHigh},
		{"strong fit but low priority", scored(8, 7, "LOW"), LabelConsider, ReasonReview, 70, LevelMedium},
		{"middling scores", scored(5, 5, "HIGH"), LabelConsider, ReasonReview, 65, LevelMedium},
		{"consider rounds half up", scored(4, 4.5, "MEDIUM"), LabelConsider, ReasonReview, 64, LevelMedium},
		{"consider confidence capped", scored(6, 30, "LOW"), LabelConsider, ReasonReview, 80, LevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.rec)
			assert.Equal(t, tt.label, d.Label)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.confidence, d.Confidence)
			assert.Equal(t, tt.level, d.Level)
		})
	}
}

func TestDecide_MissingScoresDefaultToZero(t *testing.T) {
	d := Decide(tender.Record{Description: "Chlorine supply"})
	assert.Equal(t, LabelNoBid, d.Label)
	assert.Equal(t, ReasonWeakFit, d.Reason)
	assert.Equal(t, 90, d.Confidence)
	assert.Equal(t, "nobid", d.ClassName)
}

func TestDecide_MissingPriorityIsLow(t *testing.T) {
	d := Decide(scored(9, 9, ""))
	assert.Equal(t, LabelConsider, d.Label)
	assert.Equal(t, 73, d.Confidence)
}

func TestDecide_PriorityCaseInsensitive(t *testing.T) {
	assert.Equal(t, LabelBid, Decide(scored(8, 7, "high")).Label)
}

func TestDecide_OutOfScopeSignals(t *testing.T) {
	tests := []struct {
		name string
		rec  tender.Record
	}{
		{"scope label out of scope", tender.Record{Scope: "Out of Scope"}},
		{"company scope hyphenated", tender.Record{CompanyScope: "out-of-scope"}},
		{"category infrastructure", tender.Record{Category: "Infrastructure"}},
		{"insight outside our scope", tender.Record{AIInsight: "This is outside our scope."}},
		{"title mentions stormwater", tender.Record{Title: "Stormwater channel repairs"}},
		{"notes mention earthworks", tender.Record{Notes: "Bulk earthworks required"}},
		{"description mentions pumpstation", tender.Record{Description: "New pumpstation"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			rec.Priority = "HIGH"
			rec.Scores = tender.Scores{Fit: ptr(9), Suitability: ptr(9)}

			assert.True(t, IsOutOfScope(rec))
			d := Decide(rec)
			assert.Equal(t, LabelNoBid, d.Label)
			assert.Equal(t, 96, d.Confidence)
			assert.Equal(t, LevelHigh, d.Level)
		})
	}
}

func TestDecide_LongDescriptionIsNotAnOutOfScopeSignal(t *testing.T) {
	rec := scored(8, 7, "HIGH")
	rec.LongDescription = "includes building works"
	assert.False(t, IsOutOfScope(rec))
}

func TestDecide_ConfidenceAlwaysInRange(t *testing.T) {
	values := []float64{0, 1, 2.5, 3, 3.5, 5, 6, 6.5, 7, 8, 9.9, 10, 1e19, 1e300, 1e308}
	priorities := []string{"", "LOW", "MEDIUM", "HIGH"}

	for _, fit := range values {
		for _, suitability := range values {
			for _, priority := range priorities {
				d := Decide(scored(fit, suitability, priority))
				assert.GreaterOrEqual(t, d.Confidence, 0)
				assert.LessOrEqual(t, d.Confidence, 100)
				assert.Equal(t, Level(d.Confidence), d.Level)
			}
		}
	}
}

func TestDecide_ConfidenceInRangeForHugeScores(t *testing.T) {
	tests := []struct {
		name  string
		rec   tender.Record
		label string
		want  int
	}{
		{"bid with huge fit", scored(1e300, 7, "HIGH"), LabelBid, 98},
		{"bid at float max", scored(math.MaxFloat64, math.MaxFloat64, "HIGH"), LabelBid, 98},
		{"bid past int64 range", scored(1e19, 1e19, "MEDIUM"), LabelBid, 98},
		{"consider past int64 range", scored(1e19, 5, "LOW"), LabelConsider, 80},
		{"consider with huge suitability", scored(5, 1e308, "LOW"), LabelConsider, 80},
		{"no-bid with huge fit", scored(1e308, 2, "HIGH"), LabelNoBid, 80},
		{"no-bid with huge negative fit", scored(-1e300, 5, "HIGH"), LabelNoBid, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.rec)
			assert.Equal(t, tt.label, d.Label)
			assert.Equal(t, tt.want, d.Confidence)
			assert.Equal(t, Level(d.Confidence), d.Level)
		})
	}
}

func TestCapped(t *testing.T) {
	assert.Equal(t, 0, capped(-3, 98))
	assert.Equal(t, 0, capped(math.NaN(), 98))
	assert.Equal(t, 64, capped(63.5, 98))
	assert.Equal(t, 98, capped(98, 98))
	assert.Equal(t, 98, capped(math.Inf(1), 98))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, LevelHigh, Level(85))
	assert.Equal(t, LevelMedium, Level(84))
	assert.Equal(t, LevelMedium, Level(60))
	assert.Equal(t, LevelLow, Level(59))
}
