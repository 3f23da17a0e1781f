// Package payload parses the dashboard's tender payload: either a bare list of
// tender objects or an envelope carrying the list and sync metadata.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/tender-intel/internal/schemas"
	"github.com/jonathan/tender-intel/internal/tender"
	schemafiles "github.com/jonathan/tender-intel/schemas"
)

// DefaultNextRun is the schedule label used when the payload carries none.
const DefaultNextRun = "Daily 08:00"

// ScraperHealth is the last-run status of one scraper.
type ScraperHealth struct {
	Status  string `json:"status"`
	LastRun string `json:"lastRun,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Meta is the sync metadata attached to a payload.
type Meta struct {
	LastSync      string                   `json:"last_sync,omitempty"`
	NextRun       string                   `json:"next_run,omitempty"`
	BuildID       string                   `json:"build_id,omitempty"`
	BuildSHA      string                   `json:"build_sha,omitempty"`
	GeneratedAt   string                   `json:"generated_at,omitempty"`
	ScraperHealth map[string]ScraperHealth `json:"scraper_health,omitempty"`
}

// Payload is a parsed tender payload. Raw keeps the document exactly as it
// was received so it can be cached and served back unchanged.
type Payload struct {
	Tenders []tender.Record `json:"tenders"`
	Meta    Meta            `json:"meta"`
	Raw     json.RawMessage `json:"-"`
}

// ShapeError reports a payload that is not JSON or does not have the
// expected structure.
type ShapeError struct {
	Message string
	Cause   error
}

func (e *ShapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid payload: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid payload: %s", e.Message)
}

func (e *ShapeError) Unwrap() error {
	return e.Cause
}

// IsShapeError reports whether err is, or wraps, a ShapeError.
func IsShapeError(err error) bool {
	var shapeErr *ShapeError
	return errors.As(err, &shapeErr)
}

type envelope struct {
	Tenders []tender.Record `json:"tenders"`
	Data    []tender.Record `json:"data"`
	Meta    *Meta           `json:"meta"`
}

// Parse validates data against the tender payload schema and decodes it.
func Parse(data []byte) (*Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ShapeError{Message: "empty document"}
	}
	if !json.Valid(trimmed) {
		return nil, &ShapeError{Message: "malformed JSON"}
	}

	if err := schemas.ValidateDocument(schemafiles.Tenders, trimmed); err != nil {
		return nil, &ShapeError{Message: "payload does not match schema", Cause: err}
	}

	p := &Payload{Raw: json.RawMessage(append([]byte(nil), trimmed...))}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &p.Tenders); err != nil {
			return nil, &ShapeError{Message: "failed to decode tender list", Cause: err}
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, &ShapeError{Message: "failed to decode payload envelope", Cause: err}
		}
		p.Tenders = env.Tenders
		if len(p.Tenders) == 0 {
			p.Tenders = env.Data
		}
		if env.Meta != nil {
			p.Meta = *env.Meta
		}
	}

	if p.Tenders == nil {
		p.Tenders = []tender.Record{}
	}

	return p, nil
}

// Seed returns the empty payload shown before any live data has been loaded.
func Seed() *Payload {
	return &Payload{
		Tenders: []tender.Record{},
		Meta:    Meta{NextRun: DefaultNextRun},
		Raw:     json.RawMessage(`{"meta":{"next_run":"` + DefaultNextRun + `"},"tenders":[]}`),
	}
}

// Len returns the number of tenders in the payload.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tenders)
}

// NextRunLabel returns the payload's schedule label or the default one.
func (m Meta) NextRunLabel() string {
	if m.NextRun != "" {
		return m.NextRun
	}
	return DefaultNextRun
}
