package classify

import (
	"strings"

	"github.com/jonathan/tender-intel/internal/tender"
)

const (
	insightScoreThreshold = 5
	insightRiskThreshold  = 60
)

// Insight produces the three-line advisory shown in the tender detail view:
// a relevance line, an opportunity line and a recommended action.
func Insight(rec tender.Record) string {
	c := Classify(rec)

	if c.Relevance == RelevanceOutOfScope {
		return strings.Join([]string{
			"This tender is a civil/infrastructure upgrade. Neither TES nor Phakathi operate in this category.",
			"Opportunity evaluation: outside our scope; deprioritise unless strategy changes.",
			"Recommended action: NO BID: mark as not relevant and exclude from pursuit.",
		}, "\n")
	}

	company := strings.ToUpper(rec.Company)
	priority := strings.ToUpper(rec.Priority)

	isBoth := c.Relevance == RelevanceBoth || company == "BOTH"
	isTES := c.Relevance == RelevanceTES || company == "TES"
	isPhakathi := c.Relevance == RelevancePhakathi || company == "PHAKATHI"

	relevance := "Relevance unclear; tender should be manually reviewed."
	switch {
	case isBoth:
		relevance = "Both TES and Phakathi may participate given mixed scope indicators."
	case isTES:
		relevance = "The scope indicates strong relevance for TES due to water treatment chemicals, cooling, dosing, RO, or boiler references."
	case isPhakathi:
		relevance = "This tender aligns with Phakathi’s mechanical/electrical offering based on installation, maintenance, pumps, or fabrication scope."
	}

	var opp []string
	if priority != "" {
		opp = append(opp, "Priority: "+strings.ToLower(priority)+".")
	}
	if priority == tender.PriorityHigh {
		opp = append(opp, "Time-sensitive tender requiring urgent attention.")
	}
	if atLeast(rec.Scores.Fit, insightScoreThreshold) {
		opp = append(opp, "Strong match to internal capability scoring.")
	}
	if atLeast(rec.Scores.Revenue, insightScoreThreshold) {
		opp = append(opp, "Revenue potential appears attractive.")
	}
	if atLeast(rec.Scores.Risk, insightRiskThreshold) {
		opp = append(opp, "Potential risk due to unclear scope, competition, or contractual complexity.")
	}
	opportunity := "Opportunity signal is moderate; further validation needed."
	if len(opp) > 0 {
		opportunity = strings.Join(opp, " ")
	}

	action := "Recommended next step: review historical awards, confirm volume requirements, and prepare pricing scenarios."
	if isPhakathi {
		action = "Recommended action: request technical drawings, verify site conditions, and assess fabrication or installation lead times."
	}
	if isBoth {
		action = "Recommended action: split review between TES and Phakathi leads, confirm scope boundaries, and price jointly if feasible."
	}

	return relevance + "\n" + opportunity + "\n" + action
}

func atLeast(v *float64, threshold float64) bool {
	return v != nil && *v >= threshold
}
