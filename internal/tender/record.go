// Package tender provides the canonical tender record and the normalization step
// that maps loosely shaped JSON objects onto it.
package tender

import (
	"encoding/json"
	"strings"
)

// Priority levels recognised across the dashboard.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Scores holds the canonical numeric ratings of a tender. A nil field means the
// score was absent or not numeric in the source record. Priority is the
// scorer's priority, kept apart from the record's own.
type Scores struct {
	Fit         *float64 `json:"fit,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty"`
	Risk        *float64 `json:"risk,omitempty"`
	Suitability *float64 `json:"suitability,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}

// Record is a tender after normalization. Text fields are never nil; absent
// values are empty strings.
type Record struct {
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	LongDescription string `json:"long_description,omitempty"`
	Company         string `json:"company,omitempty"`
	Category        string `json:"category,omitempty"`
	Scope           string `json:"scope,omitempty"`
	CompanyScope    string `json:"company_scope,omitempty"`
	Priority        string `json:"priority,omitempty"`
	Notes           string `json:"notes,omitempty"`
	AIInsight       string `json:"ai_insight,omitempty"`
	ClosingDate     string `json:"closing_date,omitempty"`
	URL             string `json:"url,omitempty"`
	Ref             string `json:"ref,omitempty"`
	Source          string `json:"source,omitempty"`
	Client          string `json:"client,omitempty"`
	Status          string `json:"status,omitempty"`
	DateAdded       string `json:"date_added,omitempty"`
	Scores          Scores `json:"scores"`
}

// scoreAliases is the single lookup table for score fields. Keys prefixed with
// "scores." are read from the nested scores object, the rest from the top level.
// The first numeric value in each list wins.
var scoreAliases = []struct {
	name string
	keys []string
}{
	{"fit", []string{"scores.fit", "scores.fit_score", "fit_score", "score", "fit"}},
	{"revenue", []string{"scores.revenue", "scores.revenue_score", "revenue_score", "revenue"}},
	{"risk", []string{"scores.risk", "scores.risk_score", "risk_score", "risk"}},
	{"suitability", []string{
		"scores.suitability", "scores.industry", "scores.industry_score",
		"scores.composite", "scores.composite_score",
		"suitability_score", "suitability", "industry", "composite",
	}},
}

// Decode normalizes a raw tender object. It never fails: fields of the wrong
// type are treated as absent.
func Decode(raw map[string]any) Record {
	scores, _ := raw["scores"].(map[string]any)

	rec := Record{
		Title:           str(raw, "title"),
		Description:     str(raw, "description"),
		LongDescription: str(raw, "long_description"),
		Category:        str(raw, "category"),
		Scope:           str(raw, "scope"),
		CompanyScope:    str(raw, "company_scope"),
		Notes:           str(raw, "notes"),
		AIInsight:       firstString(raw, "ai_insight", "aiInsight"),
		ClosingDate:     strings.TrimSpace(firstString(raw, "closing_date", "close_date")),
		URL:             str(raw, "url"),
		Ref:             str(raw, "ref"),
		Source:          str(raw, "source"),
		Client:          str(raw, "client"),
		Status:          str(raw, "status"),
		DateAdded:       strings.TrimSpace(firstString(raw, "date_added", "dateAdded")),
	}

	rec.Company = strings.TrimSpace(str(raw, "company"))
	if rec.Company == "" {
		rec.Company = strings.TrimSpace(rec.Category)
	}

	rec.Priority = strings.ToUpper(strings.TrimSpace(str(raw, "priority")))
	rec.Scores.Priority = strings.ToUpper(strings.TrimSpace(str(scores, "priority")))

	for _, alias := range scoreAliases {
		v := lookupScore(raw, scores, alias.keys)
		switch alias.name {
		case "fit":
			rec.Scores.Fit = v
		case "revenue":
			rec.Scores.Revenue = v
		case "risk":
			rec.Scores.Risk = v
		case "suitability":
			rec.Scores.Suitability = v
		}
	}

	return rec
}

// UnmarshalJSON decodes any tender object shape through Decode.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Decode(raw)
	return nil
}

// EffectivePriority returns the record's priority, falling back to the
// scorer's priority.
func (r Record) EffectivePriority() string {
	if r.Priority != "" {
		return r.Priority
	}
	return r.Scores.Priority
}

// DescriptionText returns the primary description, falling back to the long form.
func (r Record) DescriptionText() string {
	if r.Description != "" {
		return r.Description
	}
	return r.LongDescription
}

// ScopeLabel returns the explicit scope annotation, falling back to the category.
func (r Record) ScopeLabel() string {
	for _, s := range []string{r.Scope, r.CompanyScope, r.Category} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Identity returns a stable key for the record: its ref, else its title.
func (r Record) Identity() string {
	if ref := strings.TrimSpace(strings.ToLower(r.Ref)); ref != "" {
		return "ref::" + ref
	}
	return "title::" + strings.TrimSpace(strings.ToLower(r.Title))
}

func lookupScore(raw, scores map[string]any, keys []string) *float64 {
	for _, key := range keys {
		src := raw
		if nested, ok := strings.CutPrefix(key, "scores."); ok {
			src, key = scores, nested
		}
		if src == nil {
			continue
		}
		if f, ok := number(src[key]); ok {
			return &f
		}
	}
	return nil
}

// number accepts JSON numbers only; strings and booleans are not scores.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m, k); s != "" {
			return s
		}
	}
	return ""
}
