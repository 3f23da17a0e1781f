// Package scoring rates tenders on fit, industry, risk, revenue and company
// suitability from keyword heuristics, and combines them into a priority.
package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/tender-intel/internal/tender"
)

// Weights for the composite score
const (
	fitWeight         = 0.30
	industryWeight    = 0.20
	riskWeight        = 0.15
	revenueWeight     = 0.20
	suitabilityWeight = 0.15
)

// Fit is the alignment with the TES and Phakathi offerings.
type Fit struct {
	Score   int      `json:"fit_score"`
	Reasons []string `json:"fit_reasons"`
	Grade   string   `json:"fit_grade"`
}

// Industry is the value of the client's industry.
type Industry struct {
	Score   int    `json:"industry_score"`
	Matched string `json:"industry_matched"`
	Grade   string `json:"industry_grade"`
}

// Risk rates contractual and deadline risk; 10 is the lowest risk.
type Risk struct {
	Score   int      `json:"risk_score"`
	Factors []string `json:"risk_factors"`
	Level   string   `json:"risk_level"`
}

// Revenue rates the likely contract value.
type Revenue struct {
	Score      int      `json:"revenue_score"`
	Indicators []string `json:"revenue_indicators"`
	Potential  string   `json:"revenue_potential"`
}

// Suitability rates each company's capability match separately.
type Suitability struct {
	TES         int    `json:"tes_suitability"`
	TESFit      string `json:"tes_fit"`
	Phakathi    int    `json:"phakathi_suitability"`
	PhakathiFit string `json:"phakathi_fit"`
}

// Report is the full score breakdown of one tender. Its JSON form uses the
// same keys a payload's scores object is read from.
type Report struct {
	Fit
	Industry
	Risk
	Revenue
	Suitability
	Composite      float64 `json:"composite"`
	CompositeScore float64 `json:"composite_score"`
	Priority       string  `json:"priority"`
	Recommendation string  `json:"recommendation"`
}

var rawValue = regexp.MustCompile(`r\s*(\d+)\s*(million|m\b)`)

// Score rates rec as of now.
func Score(rec tender.Record, now time.Time) Report {
	description := rec.DescriptionText()
	if description == "" {
		description = rec.Title
	}
	text := strings.ToLower(rec.Title + " " + description)

	r := Report{
		Fit:         FitScore(text, rec.Company),
		Industry:    IndustryScore(text + " " + strings.ToLower(rec.Client)),
		Risk:        RiskScore(text, rec, now),
		Revenue:     RevenueScore(text),
		Suitability: SuitabilityScores(text),
	}

	composite := float64(r.Fit.Score)*fitWeight +
		float64(r.Industry.Score)*industryWeight +
		float64(r.Risk.Score)*riskWeight +
		float64(r.Revenue.Score)*revenueWeight +
		float64(max(r.Suitability.TES, r.Suitability.Phakathi))*suitabilityWeight

	r.Composite = math.Round(composite*10) / 10
	r.CompositeScore = r.Composite
	switch {
	case composite >= 7:
		r.Priority = tender.PriorityHigh
	case composite >= 5:
		r.Priority = tender.PriorityMedium
	default:
		r.Priority = tender.PriorityLow
	}
	r.Recommendation = recommend(r, composite)
	return r
}

// Fill scores rec and copies the report into every score it lacks. A present
// score is never overwritten. Suitability takes the industry score, as the
// payload reader does for scored payloads without an explicit suitability.
func Fill(rec tender.Record, now time.Time) (tender.Record, Report) {
	r := Score(rec, now)

	set := func(dst **float64, v int) {
		if *dst == nil {
			f := float64(v)
			*dst = &f
		}
	}
	set(&rec.Scores.Fit, r.Fit.Score)
	set(&rec.Scores.Revenue, r.Revenue.Score)
	set(&rec.Scores.Risk, r.Risk.Score)
	set(&rec.Scores.Suitability, r.Industry.Score)
	if rec.Scores.Priority == "" {
		rec.Scores.Priority = r.Priority
	}
	return rec, r
}

// FitScore rates alignment from the company category and strong-fit keywords.
func FitScore(text, category string) Fit {
	score := 5
	var reasons []string

	switch category {
	case "TES":
		score += 2
		reasons = append(reasons, "TES category match")
	case "Phakathi":
		score += 2
		reasons = append(reasons, "Phakathi category match")
	case "Both":
		score += 3
		reasons = append(reasons, "Dual TES+Phakathi opportunity")
	}

	tes := hits(text, tesStrongFit)
	switch {
	case tes >= 3:
		score += 2
		reasons = append(reasons, fmt.Sprintf("Strong TES alignment (%d keywords)", tes))
	case tes >= 1:
		score++
		reasons = append(reasons, fmt.Sprintf("TES alignment (%d keywords)", tes))
	}

	phakathi := hits(text, phakathiStrongFit)
	switch {
	case phakathi >= 3:
		score += 2
		reasons = append(reasons, fmt.Sprintf("Strong Phakathi alignment (%d keywords)", phakathi))
	case phakathi >= 1:
		score++
		reasons = append(reasons, fmt.Sprintf("Phakathi alignment (%d keywords)", phakathi))
	}

	score = clamp(score)
	return Fit{Score: score, Reasons: nonNil(reasons), Grade: grade(score)}
}

// IndustryScore picks the most valuable industry mentioned in text.
func IndustryScore(text string) Industry {
	score, matched := 5, "General"
	for _, ind := range industryScores {
		if ind.score > score && strings.Contains(text, ind.keyword) {
			score, matched = ind.score, titleCase(ind.keyword)
		}
	}
	return Industry{Score: score, Matched: matched, Grade: grade(score)}
}

// RiskScore starts at 7 and moves with risk keywords and the time left to
// the closing date.
func RiskScore(text string, rec tender.Record, now time.Time) Risk {
	score := 7
	var factors []string

	switch high := hits(text, highRiskKeywords); {
	case high >= 2:
		score -= 4
		factors = append(factors, fmt.Sprintf("Multiple high-risk factors (%d)", high))
	case high == 1:
		score -= 2
		factors = append(factors, "High-risk factor detected")
	}

	switch medium := hits(text, mediumRiskKeywords); {
	case medium >= 2:
		score -= 2
		factors = append(factors, fmt.Sprintf("Medium-risk factors (%d)", medium))
	case medium == 1:
		score--
		factors = append(factors, "Medium-risk factor detected")
	}

	if hits(text, lowRiskKeywords) >= 1 {
		score++
		factors = append(factors, "Low-barrier entry indicators")
	}

	if days, ok := rec.DaysUntil(now); ok {
		switch {
		case days < 7:
			score -= 2
			factors = append(factors, fmt.Sprintf("Tight deadline (%d days)", days))
		case days < 14:
			score--
			factors = append(factors, fmt.Sprintf("Short timeline (%d days)", days))
		}
	}

	score = clamp(score)
	level := "High"
	switch {
	case score >= 7:
		level = "Low"
	case score >= 4:
		level = "Medium"
	}
	return Risk{Score: score, Factors: nonNil(factors), Level: level}
}

// RevenueScore rates contract value from an "R<n> million" mention and
// size keywords.
func RevenueScore(text string) Revenue {
	score := 5
	var indicators []string

	if m := rawValue.FindStringSubmatch(text); m != nil {
		value, err := strconv.Atoi(m[1])
		if err != nil {
			value = math.MaxInt
		}
		switch {
		case value >= 10:
			score = 10
			indicators = append(indicators, fmt.Sprintf("High value: R%dM+", value))
		case value >= 5:
			score = 8
			indicators = append(indicators, fmt.Sprintf("Good value: R%dM", value))
		case value >= 1:
			score = 6
			indicators = append(indicators, fmt.Sprintf("Moderate value: R%dM", value))
		}
	}

	if hits(text, highRevenueKeywords) >= 2 {
		score = max(score, 8)
		indicators = append(indicators, "Multi-year/framework opportunity")
	}
	if hits(text, lowRevenueKeywords) >= 2 {
		score = min(score, 4)
		indicators = append(indicators, "Small/once-off opportunity")
	}

	score = clamp(score)
	potential := "Low"
	switch {
	case score >= 7:
		potential = "High"
	case score >= 4:
		potential = "Medium"
	}
	return Revenue{Score: score, Indicators: nonNil(indicators), Potential: potential}
}

// SuitabilityScores counts strong keywords double and caps each company at 10.
func SuitabilityScores(text string) Suitability {
	tes := min(10, hits(text, tesStrongFit)*2+hits(text, tesModerateFit))
	phakathi := min(10, hits(text, phakathiStrongFit)*2+hits(text, phakathiModerateFit))
	return Suitability{
		TES:         tes,
		TESFit:      strength(tes),
		Phakathi:    phakathi,
		PhakathiFit: strength(phakathi),
	}
}

func recommend(r Report, composite float64) string {
	switch {
	case composite >= 8:
		return "PRIORITY BID - Strong fit, pursue immediately"
	case composite >= 6:
		if r.Risk.Level == "High" {
			return "REVIEW CAREFULLY - Good opportunity but high risk factors"
		}
		return "RECOMMENDED - Good opportunity, prepare bid"
	case composite >= 4:
		if r.Suitability.TES >= 6 || r.Suitability.Phakathi >= 6 {
			return "CONSIDER - Core capability match despite moderate overall score"
		}
		return "EVALUATE - May be worth pursuing if capacity allows"
	default:
		return "LOW PRIORITY - Does not align well with capabilities"
	}
}

func hits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func clamp(score int) int {
	return min(10, max(1, score))
}

func grade(score int) string {
	switch {
	case score >= 8:
		return "A"
	case score >= 6:
		return "B"
	case score >= 4:
		return "C"
	default:
		return "D"
	}
}

func strength(score int) string {
	switch {
	case score >= 6:
		return "Strong"
	case score >= 3:
		return "Moderate"
	default:
		return "Weak"
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
