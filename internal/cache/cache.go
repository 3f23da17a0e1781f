// Package cache keeps the last good tender payload so the dashboard can keep
// serving data when every live source is unavailable.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/tender-intel/internal/payload"
)

// DefaultKey is the key under which the payload is cached.
const DefaultKey = "ti_dashboard_payload_v1"

// DefaultTTL is how long a cached payload stays usable.
const DefaultTTL = time.Hour

// Entry is a cached payload together with the time it was stored.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"storedAt"`
	BuildID  string          `json:"buildId,omitempty"`
	BuildSHA string          `json:"buildSha,omitempty"`
}

// NewEntry builds a cache entry for p stored at now.
func NewEntry(p *payload.Payload, now time.Time) *Entry {
	return &Entry{
		Payload:  p.Raw,
		StoredAt: now.UTC(),
		BuildID:  p.Meta.BuildID,
		BuildSHA: p.Meta.BuildSHA,
	}
}

// Decode parses the cached document back into a payload.
func (e *Entry) Decode() (*payload.Payload, error) {
	p, err := payload.Parse(e.Payload)
	if err != nil {
		return nil, err
	}
	if p.Meta.BuildID == "" {
		p.Meta.BuildID = e.BuildID
	}
	if p.Meta.BuildSHA == "" {
		p.Meta.BuildSHA = e.BuildSHA
	}
	return p, nil
}

// Expired reports whether the entry is older than ttl at now.
func (e *Entry) Expired(now time.Time, ttl time.Duration) bool {
	return e.StoredAt.IsZero() || now.Sub(e.StoredAt) > ttl
}

// Store is a payload cache. Get returns a nil entry and nil error when the key
// is missing or its entry has expired.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
}

// Error represents a cache backend failure.
type Error struct {
	Key     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error for %s: %s: %v", e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error for %s: %s", e.Key, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
