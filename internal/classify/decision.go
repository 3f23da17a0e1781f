package classify

import (
	"math"
	"strings"

	"github.com/jonathan/tender-intel/internal/tender"
)

// Decision labels.
const (
	LabelBid      = "Bid"
	LabelNoBid    = "No-Bid"
	LabelConsider = "Consider"
)

// Confidence tiers.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// Rationale strings, one per decision rule.
const (
	ReasonOutOfScope = "Outside TES / Phakathi scope (civil / infrastructure)"
	ReasonStrongFit  = "Strong technical and strategic fit"
	ReasonWeakFit    = "Weak fit / unsuitable opportunity"
	ReasonReview     = "Needs human review (mixed or unclear scope)"
)

const (
	outOfScopeConfidence = 96
	bidConfidenceCap     = 98
	noBidConfidenceCap   = 95
	considerCap          = 80
)

// Decision is the confidence-scored bid recommendation.
type Decision struct {
	Label      string `json:"label"`
	ClassName  string `json:"class_name"`
	Reason     string `json:"reason"`
	Confidence int    `json:"confidence"`
	Level      string `json:"level"`
}

// Level maps a confidence value onto its tier.
func Level(confidence int) string {
	switch {
	case confidence >= 85:
		return LevelHigh
	case confidence < 60:
		return LevelLow
	default:
		return LevelMedium
	}
}

// Decide applies the ordered decision rules; the first matching rule wins.
func Decide(rec tender.Record) Decision {
	fit := valueOr(rec.Scores.Fit, 0)
	suitability := valueOr(rec.Scores.Suitability, 0)

	priority := strings.ToUpper(rec.EffectivePriority())
	if priority == "" {
		priority = tender.PriorityLow
	}

	avg := (fit + suitability) / 2

	switch {
	case IsOutOfScope(rec):
		return newDecision(LabelNoBid, "nobid", ReasonOutOfScope, outOfScopeConfidence)
	case fit >= 7 && suitability >= 6 && (priority == tender.PriorityHigh || priority == tender.PriorityMedium):
		return newDecision(LabelBid, "bid", ReasonStrongFit, capped(70+avg*3, bidConfidenceCap))
	case fit <= 3 || suitability <= 3:
		return newDecision(LabelNoBid, "nobid", ReasonWeakFit, capped(75+(3-math.Min(fit, suitability))*5, noBidConfidenceCap))
	default:
		return newDecision(LabelConsider, "consider", ReasonReview, capped(55+avg*2, considerCap))
	}
}

// IsOutOfScope reports whether the scope label, the insight text or the
// combined free text marks the tender as civil or infrastructure work.
func IsOutOfScope(rec tender.Record) bool {
	scopeLabel := strings.ToLower(rec.ScopeLabel())
	insight := strings.ToLower(rec.AIInsight)

	if containsAny(scopeLabel, scopeLabelOutPhrases) || containsAny(insight, insightOutPhrases) {
		return true
	}

	blob := strings.ToLower(strings.Join([]string{
		rec.Title,
		rec.Description,
		rec.Category,
		rec.Notes,
		rec.AIInsight,
	}, " "))
	return containsAny(blob, civilSignals)
}

func newDecision(label, className, reason string, confidence int) Decision {
	return Decision{
		Label:      label,
		ClassName:  className,
		Reason:     reason,
		Confidence: confidence,
		Level:      Level(confidence),
	}
}

// capped rounds half up and clamps to [0, limit]. Clamping happens before the
// int conversion, which is undefined for floats outside the int range.
func capped(v float64, limit int) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= float64(limit):
		return limit
	}
	return int(math.Floor(v + 0.5))
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
