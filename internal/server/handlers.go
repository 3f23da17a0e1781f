package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/tender-intel/internal/dashboard"
	"github.com/jonathan/tender-intel/internal/fetch"
	"github.com/jonathan/tender-intel/internal/scoring"
	"go.uber.org/zap"
)

// RowsResponse is the response for /api/tenders/rows
type RowsResponse struct {
	Filter dashboard.Filter     `json:"filter"`
	Rows   []dashboard.Row      `json:"rows"`
	KPIs   dashboard.KPIs       `json:"kpis"`
	Status dashboard.DataStatus `json:"status"`
}

// DayResponse is the response for /api/calendar/{date}
type DayResponse struct {
	Date string          `json:"date"`
	Rows []dashboard.Row `json:"rows"`
}

// ScrapersResponse is the response for /api/scrapers
type ScrapersResponse struct {
	Scrapers  []dashboard.ScraperCard `json:"scrapers"`
	NextRun   string                  `json:"next_run"`
	NextRunAt time.Time               `json:"next_run_at"`
	Countdown string                  `json:"countdown"`
	Status    dashboard.DataStatus    `json:"status"`
}

// EmailExportResponse is the response for /api/export/email
type EmailExportResponse struct {
	Mailto string         `json:"mailto"`
	KPIs   dashboard.KPIs `json:"kpis"`
}

// RefreshResponse is the response for /api/refresh
type RefreshResponse struct {
	Status dashboard.DataStatus `json:"status"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "tender-intelligence",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// load reads the payload and tags the response with where it came from.
func (s *Server) load(w http.ResponseWriter, r *http.Request, force bool) *fetch.LoadResult {
	res := s.source.Load(r.Context(), force)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Data-Source", res.Source)
	if res.Err != nil {
		s.log.Warn("serving fallback payload",
			zap.String("source", res.Source),
			zap.Error(res.Err))
	}
	return res
}

func (s *Server) localNow() time.Time {
	return s.now().In(s.cfg.Location)
}

// handleTenders passes the payload through as received from its source.
func (s *Server) handleTenders(w http.ResponseWriter, r *http.Request) {
	res := s.load(w, r, false)
	if raw := res.Payload.Raw; len(raw) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(raw); err != nil {
			s.log.Error("error writing payload", zap.Error(err))
		}
		return
	}
	s.jsonResponse(w, http.StatusOK, res.Payload)
}

// ScoreResponse is the response for /api/tenders/{ref}/score
type ScoreResponse struct {
	Ref    string         `json:"ref"`
	Title  string         `json:"title"`
	Report scoring.Report `json:"report"`
}

// rowOptions reads filter, hide_out_of_scope and score_missing from the query.
func (s *Server) rowOptions(r *http.Request) (dashboard.RowOptions, error) {
	q := r.URL.Query()
	opts := dashboard.RowOptions{
		HideOutOfScope: s.cfg.HideOutOfScope,
		ScoreMissing:   s.cfg.ScoreMissing,
		Now:            s.localNow(),
		Concurrency:    s.cfg.Concurrency,
	}

	filter, err := dashboard.ParseFilter(q.Get("filter"))
	if err != nil {
		return opts, &ErrValidation{Field: "filter", Message: err.Error()}
	}
	opts.Filter = filter

	if v := q.Get("hide_out_of_scope"); v != "" {
		hide, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &ErrValidation{Field: "hide_out_of_scope", Message: "expected a boolean"}
		}
		opts.HideOutOfScope = hide
	}

	if v := q.Get("score_missing"); v != "" {
		score, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &ErrValidation{Field: "score_missing", Message: "expected a boolean"}
		}
		opts.ScoreMissing = score
	}
	return opts, nil
}

// handleRows returns classified, filtered and ordered rows with KPIs
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	opts, err := s.rowOptions(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	res := s.load(w, r, false)
	rows, err := dashboard.BuildRows(r.Context(), res.Payload.Tenders, opts)
	if err != nil {
		s.log.Error("failed to build rows", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to build rows")
		return
	}

	s.jsonResponse(w, http.StatusOK, RowsResponse{
		Filter: opts.Filter,
		Rows:   rows,
		KPIs:   dashboard.ComputeKPIs(rows),
		Status: dashboard.StatusFor(res),
	})
}

// handleTender returns the detail view of one tender by ref or title
func (s *Server) handleTender(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("ref")
	res := s.load(w, r, false)

	rec, ok := dashboard.FindTender(res.Payload.Tenders, key)
	if !ok {
		s.errorFor(w, &ErrNotFound{Resource: "tender", Key: key})
		return
	}
	now := s.localNow()
	if s.cfg.ScoreMissing {
		rec, _ = scoring.Fill(rec, now)
	}
	s.jsonResponse(w, http.StatusOK, dashboard.BuildDetail(rec, now))
}

// handleTenderScore returns the score breakdown of one tender by ref or title
func (s *Server) handleTenderScore(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("ref")
	res := s.load(w, r, false)

	rec, ok := dashboard.FindTender(res.Payload.Tenders, key)
	if !ok {
		s.errorFor(w, &ErrNotFound{Resource: "tender", Key: key})
		return
	}
	s.jsonResponse(w, http.StatusOK, ScoreResponse{
		Ref:    rec.Ref,
		Title:  rec.Title,
		Report: scoring.Score(rec, s.localNow()),
	})
}

// handleCalendar returns the month grid for ?month=YYYY-MM (default: current month)
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.localNow()
	year, month, err := dashboard.ParseMonth(r.URL.Query().Get("month"), now)
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "month", Message: "expected YYYY-MM"})
		return
	}

	res := s.load(w, r, false)
	s.jsonResponse(w, http.StatusOK, dashboard.BuildMonth(res.Payload.Tenders, year, month, now))
}

// handleCalendarDay lists the tenders closing on one day
func (s *Server) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	day, err := dashboard.ParseDay(r.PathValue("date"))
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "date", Message: "expected YYYY-MM-DD"})
		return
	}

	res := s.load(w, r, false)
	now := s.localNow()
	tenders := dashboard.TendersOn(res.Payload.Tenders, day)
	rows := make([]dashboard.Row, len(tenders))
	for i, rec := range tenders {
		rows[i] = dashboard.NewRow(rec, now)
	}

	s.jsonResponse(w, http.StatusOK, DayResponse{Date: day.Format("2006-01-02"), Rows: rows})
}

// handleSummary returns the daily summary digest
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res := s.load(w, r, false)
	s.jsonResponse(w, http.StatusOK,
		dashboard.BuildSummary(res.Payload.Tenders, res.Payload.Meta, s.cfg.BuildSHA, s.now()))
}

// handleWeekly returns the weekly digest
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	res := s.load(w, r, false)
	s.jsonResponse(w, http.StatusOK, dashboard.BuildWeekly(res.Payload.Tenders, s.localNow()))
}

// handleScrapers returns scraper health cards and the next scheduled run
func (s *Server) handleScrapers(w http.ResponseWriter, r *http.Request) {
	res := s.load(w, r, false)
	next, countdown := dashboard.NextRun(s.localNow(), s.cfg.RunHour)

	s.jsonResponse(w, http.StatusOK, ScrapersResponse{
		Scrapers:  dashboard.ScraperCards(res.Payload.Meta.ScraperHealth),
		NextRun:   res.Payload.Meta.NextRunLabel(),
		NextRunAt: next,
		Countdown: countdown,
		Status:    dashboard.StatusFor(res),
	})
}

// handleEmailExport returns a mailto link summarising the current KPIs
func (s *Server) handleEmailExport(w http.ResponseWriter, r *http.Request) {
	opts, err := s.rowOptions(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	res := s.load(w, r, false)
	rows, err := dashboard.BuildRows(r.Context(), res.Payload.Tenders, opts)
	if err != nil {
		s.log.Error("failed to build rows", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to build rows")
		return
	}

	kpis := dashboard.ComputeKPIs(rows)
	s.jsonResponse(w, http.StatusOK, EmailExportResponse{Mailto: dashboard.EmailLink(kpis), KPIs: kpis})
}

// handleRefresh drops the cached payload and reloads from the sources
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res := s.load(w, r, true)
	s.log.Info("payload refreshed",
		zap.String("source", res.Source),
		zap.Int("tenders", res.Payload.Len()))
	s.jsonResponse(w, http.StatusOK, RefreshResponse{Status: dashboard.StatusFor(res)})
}
