package dashboard

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/tender-intel/internal/payload"
	"github.com/jonathan/tender-intel/internal/tender"
)

// topLimit is the number of tenders listed in a summary.
const topLimit = 10

// sast is South African Standard Time, the dashboard's reporting zone.
var sast = time.FixedZone("SAST", 2*60*60)

// Count is one bucket of a breakdown.
type Count struct {
	Name  string
	Count int
}

// Counts is a breakdown ordered by count descending, then name. It encodes as
// a JSON object whose keys keep that order.
type Counts []Count

// MarshalJSON writes the breakdown as an ordered object.
func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(entry.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the count for name, or 0.
func (c Counts) Get(name string) int {
	for _, entry := range c {
		if entry.Name == name {
			return entry.Count
		}
	}
	return 0
}

// SummaryCounts are the breakdowns of a summary.
type SummaryCounts struct {
	Total      int    `json:"total"`
	ByCompany  Counts `json:"by_company"`
	ByPriority Counts `json:"by_priority"`
	BySource   Counts `json:"by_source"`
}

// TopTender is one entry of the summary's top list.
type TopTender struct {
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	Company     string   `json:"company"`
	Priority    string   `json:"priority"`
	CloseDate   string   `json:"close_date"`
	Fit         *float64 `json:"fit"`
	Revenue     *float64 `json:"revenue"`
	Risk        *float64 `json:"risk"`
	Suitability *float64 `json:"suitability"`
	URL         string   `json:"url"`
}

// Summary is the daily digest written to summary.json.
type Summary struct {
	GeneratedAt string        `json:"generated_at"`
	BuildID     string        `json:"build_id"`
	BuildSHA    *string       `json:"build_sha"`
	NextRun     string        `json:"next_run"`
	Counts      SummaryCounts `json:"counts"`
	Top         []TopTender   `json:"top"`
}

// BuildSummary counts tenders by company, priority and source and lists the
// ten most suitable. buildSHA overrides meta.build_sha when set.
func BuildSummary(tenders []tender.Record, meta payload.Meta, buildSHA string, now time.Time) Summary {
	lastSync := firstNonEmpty(meta.LastSync, meta.GeneratedAt, now.In(sast).Format("2006-01-02 15:04"))
	sha := firstNonEmpty(buildSHA, meta.BuildSHA)

	buildID := meta.BuildID
	if buildID == "" {
		buildID = lastSync
		if sha != "" {
			buildID = lastSync + " · " + sha
		}
	}

	s := Summary{
		GeneratedAt: lastSync,
		BuildID:     buildID,
		NextRun:     meta.NextRunLabel(),
		Counts:      SummaryCounts{Total: len(tenders)},
		Top:         []TopTender{},
	}
	if sha != "" {
		s.BuildSHA = &sha
	}

	byCompany := map[string]int{}
	byPriority := map[string]int{}
	bySource := map[string]int{}
	type ranked struct {
		key float64
		row TopTender
	}
	scored := make([]ranked, 0, len(tenders))

	for _, rec := range tenders {
		company := firstNonEmpty(rec.Company, "Unknown")
		source := firstNonEmpty(rec.Source, "Unknown")
		priority := firstNonEmpty(rec.EffectivePriority(), "UNKNOWN")
		byCompany[company]++
		bySource[source]++
		byPriority[priority]++

		key := -1.0
		if rec.Scores.Suitability != nil {
			key = *rec.Scores.Suitability
		}
		scored = append(scored, ranked{key: key, row: TopTender{
			Title:       firstNonEmpty(rec.Title, "-"),
			Source:      source,
			Company:     company,
			Priority:    priority,
			CloseDate:   firstNonEmpty(rec.ClosingDate, "-"),
			Fit:         rec.Scores.Fit,
			Revenue:     rec.Scores.Revenue,
			Risk:        rec.Scores.Risk,
			Suitability: rec.Scores.Suitability,
			URL:         rec.URL,
		}})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].key > scored[j].key })
	for i := 0; i < len(scored) && i < topLimit; i++ {
		s.Top = append(s.Top, scored[i].row)
	}

	s.Counts.ByCompany = sortedCounts(byCompany)
	s.Counts.ByPriority = sortedCounts(byPriority)
	s.Counts.BySource = sortedCounts(bySource)
	return s
}

func sortedCounts(m map[string]int) Counts {
	out := make(Counts, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// emailSubject is the subject line of the summary email.
const emailSubject = "Tender Intelligence – Daily Summary"

// EmailLink builds a mailto link whose body lists the headline counts.
func EmailLink(k KPIs) string {
	body := strings.Join([]string{
		emailSubject,
		"",
		"Total tenders today: " + strconv.Itoa(k.Total),
		"TES-fit tenders: " + strconv.Itoa(k.TES),
		"Phakathi-fit tenders: " + strconv.Itoa(k.Phakathi),
		"",
		"Sent from the Tender Intelligence dashboard.",
	}, "\n")
	return "mailto:?subject=" + encodeComponent(emailSubject) + "&body=" + encodeComponent(body)
}

// encodeComponent percent-encodes s for a mailto header, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
