// Package classify maps tender records onto business relevance, topic tags and
// bid recommendations. Every function in this package is pure: it reads only
// its arguments and never mutates them, so calls may run concurrently.
package classify

import (
	"strings"

	"github.com/jonathan/tender-intel/internal/tender"
)

// Relevance names the business unit whose scope a tender matches.
type Relevance string

// Relevance values.
const (
	RelevanceTES        Relevance = "TES"
	RelevancePhakathi   Relevance = "Phakathi"
	RelevanceBoth       Relevance = "Both"
	RelevanceOutOfScope Relevance = "OutOfScope"
	RelevanceUnknown    Relevance = "Unknown"
)

// InScope reports whether the relevance belongs to at least one business unit.
func (r Relevance) InScope() bool {
	return r == RelevanceTES || r == RelevancePhakathi || r == RelevanceBoth
}

// Category tags attached to a classification.
const (
	CategoryChemicalWater        = "Chemical/Water"
	CategoryMechanicalElectrical = "Mechanical/Electrical"
	CategoryCivilInfrastructure  = "Civil/Infrastructure"
)

// BidDecision is the coarse pursue/skip heuristic.
type BidDecision string

// BidDecision values.
const (
	BidDecisionBid    BidDecision = "BID"
	BidDecisionNoBid  BidDecision = "NO_BID"
	BidDecisionReview BidDecision = "REVIEW"
)

// Result is the outcome of keyword classification.
type Result struct {
	Relevance   Relevance   `json:"relevance"`
	Categories  []string    `json:"categories"`
	BidDecision BidDecision `json:"bidDecision"`
}

// minBidFit is the fit score at or above which an in-scope tender is a BID.
const minBidFit = 5

// Classify derives relevance and category tags from the tender description and
// applies the simple bid heuristic.
func Classify(rec tender.Record) Result {
	desc := strings.ToLower(rec.DescriptionText())

	hasCivil := containsAny(desc, civilKeywords)
	hasTES := containsAny(desc, tesKeywords)
	hasPhakathi := containsAny(desc, phakathiKeywords)

	relevance := RelevanceUnknown
	switch {
	case hasTES && hasPhakathi:
		relevance = RelevanceBoth
	case hasTES:
		relevance = RelevanceTES
	case hasPhakathi:
		relevance = RelevancePhakathi
	case hasCivil:
		relevance = RelevanceOutOfScope
	}

	categories := make([]string, 0, 2)
	if hasTES {
		categories = append(categories, CategoryChemicalWater)
	}
	if hasPhakathi {
		categories = append(categories, CategoryMechanicalElectrical)
	}
	if relevance == RelevanceOutOfScope && hasCivil {
		categories = append(categories, CategoryCivilInfrastructure)
	}

	// Only the record's own priority counts here; an absent one does not
	// block a BID.
	priority := strings.ToUpper(rec.Priority)
	fit := rec.Scores.Fit

	bid := BidDecisionReview
	switch {
	case relevance == RelevanceOutOfScope:
		bid = BidDecisionNoBid
	case relevance.InScope() && fit != nil && *fit >= minBidFit && priority != tender.PriorityLow:
		bid = BidDecisionBid
	}

	return Result{
		Relevance:   relevance,
		Categories:  categories,
		BidDecision: bid,
	}
}

// Evaluation bundles both engine outputs for one tender.
type Evaluation struct {
	Classification Result   `json:"classification"`
	Decision       Decision `json:"decision"`
}

// Evaluate runs Classify and Decide on the same record.
func Evaluate(rec tender.Record) Evaluation {
	return Evaluation{
		Classification: Classify(rec),
		Decision:       Decide(rec),
	}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
