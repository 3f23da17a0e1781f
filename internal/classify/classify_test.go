package classify

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/tender-intel/internal/tender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ptr(f float64) *float64 { return &f }

func TestClassify_Relevance(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        Result
	}{
		{
			name:        "chemical dosing is TES",
			description: "Supply and dosing of chlorine and hypochlorite at water treatment plant",
			want: Result{
				Relevance:   RelevanceTES,
				Categories:  []string{CategoryChemicalWater},
				BidDecision: BidDecisionReview,
			},
		},
		{
			name:        "pump keyword beats civil keywords",
			description: "Civil construction of pump station upgrade",
			want: Result{
				Relevance:   RelevancePhakathi,
				Categories:  []string{CategoryMechanicalElectrical},
				BidDecision: BidDecisionReview,
			},
		},
		{
			name:        "mixed scope is Both",
			description: "Chlorine dosing skid and pump maintenance",
			want: Result{
				Relevance:   RelevanceBoth,
				Categories:  []string{CategoryChemicalWater, CategoryMechanicalElectrical},
				BidDecision: BidDecisionReview,
			},
		},
		{
			name:        "civil only is out of scope",
			description: "Civil construction of new building",
			want: Result{
				Relevance:   RelevanceOutOfScope,
				Categories:  []string{CategoryCivilInfrastructure},
				BidDecision: BidDecisionNoBid,
			},
		},
		{
			name:        "no signals is unknown",
			description: "Supply of office stationery",
			want: Result{
				Relevance:   RelevanceUnknown,
				Categories:  []string{},
				BidDecision: BidDecisionReview,
			},
		},
		{
			name:        "matching is case insensitive",
			description: "BOILER FEEDWATER SOFTENER",
			want: Result{
				Relevance:   RelevanceTES,
				Categories:  []string{CategoryChemicalWater},
				BidDecision: BidDecisionReview,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tender.Record{Description: tt.description})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassify_SubstringMatchIsPermissive(t *testing.T) {
	// "ro" is a TES keyword, so "roads" counts as a TES hit.
	got := Classify(tender.Record{Description: "Resurfacing of roads"})
	assert.Equal(t, RelevanceTES, got.Relevance)
}

func TestClassify_FallsBackToLongDescription(t *testing.T) {
	got := Classify(tender.Record{LongDescription: "Switchgear refurbishment"})
	assert.Equal(t, RelevancePhakathi, got.Relevance)

	got = Classify(tender.Record{Description: "Office cleaning", LongDescription: "Switchgear"})
	assert.Equal(t, RelevanceUnknown, got.Relevance)
}

func TestClassify_BidDecision(t *testing.T) {
	base := "Cooling tower chemical treatment"

	tests := []struct {
		name     string
		fit      *float64
		priority string
		want     BidDecision
	}{
		{"qualifying fit and high priority", ptr(6), "HIGH", BidDecisionBid},
		{"fit exactly five", ptr(5), "MEDIUM", BidDecisionBid},
		{"absent priority does not block", ptr(8), "", BidDecisionBid},
		{"lower case low priority blocks", ptr(9), "low", BidDecisionReview},
		{"fit below threshold", ptr(4.9), "HIGH", BidDecisionReview},
		{"absent fit", nil, "HIGH", BidDecisionReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tender.Record{
				Description: base,
				Priority:    tt.priority,
				Scores:      tender.Scores{Fit: tt.fit},
			}
			assert.Equal(t, tt.want, Classify(rec).BidDecision)
		})
	}
}

func TestClassify_ScorerPriorityDoesNotBlockBid(t *testing.T) {
	var rec tender.Record
	require.NoError(t, rec.UnmarshalJSON([]byte(
		`{"description": "Cooling tower chemical treatment", "scores": {"fit": 8, "suitability": 7, "priority": "LOW"}}`)))

	assert.Equal(t, BidDecisionBid, Classify(rec).BidDecision)
	// The confidence-scored decision does read the scorer's priority.
	assert.Equal(t, LabelConsider, Decide(rec).Label)
}

func TestClassify_UnknownNeverBids(t *testing.T) {
	rec := tender.Record{Description: "Catering services", Priority: "HIGH", Scores: tender.Scores{Fit: ptr(10)}}
	assert.Equal(t, BidDecisionReview, Classify(rec).BidDecision)
}

func TestClassify_OutOfScopeIsNoBidRegardlessOfScores(t *testing.T) {
	rec := tender.Record{
		Description: "Civil construction of new building",
		Priority:    "HIGH",
		Scores:      tender.Scores{Fit: ptr(10), Suitability: ptr(10)},
	}

	c := Classify(rec)
	assert.Equal(t, RelevanceOutOfScope, c.Relevance)
	assert.Equal(t, BidDecisionNoBid, c.BidDecision)

	d := Decide(rec)
	assert.Equal(t, LabelNoBid, d.Label)
	assert.Equal(t, 96, d.Confidence)
	assert.Equal(t, ReasonOutOfScope, d.Reason)
}

func TestClassify_BothAlwaysTagsBothCategories(t *testing.T) {
	for _, desc := range []string{
		"boiler and valves",
		"reverse osmosis plant commissioning",
		"steam trap installation and switchgear",
	} {
		c := Classify(tender.Record{Description: desc})
		assert.Equal(t, RelevanceBoth, c.Relevance, desc)
		assert.Contains(t, c.Categories, CategoryChemicalWater, desc)
		assert.Contains(t, c.Categories, CategoryMechanicalElectrical, desc)
	}
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	rec := tender.Record{Description: "Chlorine DOSING", Priority: "high", Scores: tender.Scores{Fit: ptr(7)}}
	before := rec
	_ = Evaluate(rec)
	assert.Equal(t, before, rec)
	assert.Equal(t, 7.0, *rec.Scores.Fit)
}

func TestEvaluate_DeterministicAndConcurrent(t *testing.T) {
	rec := tender.Record{
		Title:       "Boiler water treatment",
		Description: "Chemical dosing and pump maintenance",
		Priority:    "MEDIUM",
		Scores:      tender.Scores{Fit: ptr(8), Suitability: ptr(6)},
	}
	want := Evaluate(rec)

	var wg sync.WaitGroup
	results := make([]Evaluation, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Evaluate(rec)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		require.Empty(t, cmp.Diff(want, got), "evaluation %d differs", i)
	}
}
