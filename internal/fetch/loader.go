package fetch

import (
	"context"
	"time"

	"github.com/jonathan/tender-intel/internal/cache"
	"github.com/jonathan/tender-intel/internal/metrics"
	"github.com/jonathan/tender-intel/internal/payload"
	"go.uber.org/zap"
)

// Where a loaded payload came from.
const (
	SourceLive  = "url"
	SourceCache = "cache"
	SourceSeed  = "seed"
)

// LoadResult is the outcome of Loader.Load. Payload is never nil.
type LoadResult struct {
	Payload *payload.Payload
	// Source is SourceLive, SourceCache or SourceSeed.
	Source string
	// Origin is the URL or path that served a live payload.
	Origin   string
	StoredAt time.Time
	// Err is the last source error when no live source succeeded.
	Err error
}

// LoaderConfig holds configuration for the payload loader.
type LoaderConfig struct {
	Sources  []string
	CacheKey string
	Options  *Options
}

// Loader reads the tender payload from an ordered list of sources, falling back
// to the cache and finally to the seed payload.
type Loader struct {
	sources  []string
	store    cache.Store
	cacheKey string
	options  *Options
	log      *zap.Logger
	now      func() time.Time
}

// NewLoader creates a loader. A nil store disables caching.
func NewLoader(store cache.Store, config *LoaderConfig, log *zap.Logger) *Loader {
	if config == nil {
		config = &LoaderConfig{}
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheKey == "" {
		config.CacheKey = cache.DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		sources:  append([]string(nil), config.Sources...),
		store:    store,
		cacheKey: config.CacheKey,
		options:  config.Options,
		log:      log,
		now:      time.Now,
	}
}

// Load returns the first valid payload from the configured sources and caches
// it. When every source fails it serves a fresh cache entry, unless force is
// set, and otherwise the seed payload. force also clears the cache up front.
func (l *Loader) Load(ctx context.Context, force bool) *LoadResult {
	if force {
		if err := l.Invalidate(ctx); err != nil {
			l.log.Warn("failed to clear payload cache", zap.Error(err))
		}
	}

	var lastErr error
	for _, src := range l.sources {
		p, err := l.readSource(ctx, src)
		if err != nil {
			lastErr = err
			metrics.PayloadSourceFailures.WithLabelValues(src).Inc()
			l.log.Debug("payload source failed", zap.String("source", src), zap.Error(err))
			continue
		}

		l.writeCache(ctx, p)
		metrics.PayloadLoads.WithLabelValues(SourceLive).Inc()
		l.log.Info("loaded tender payload",
			zap.String("source", src),
			zap.Int("tenders", p.Len()))
		return &LoadResult{Payload: p, Source: SourceLive, Origin: src}
	}

	if lastErr == nil {
		lastErr = &Error{Message: "no payload sources configured"}
	}

	if !force {
		if entry, p := l.readCache(ctx); p != nil {
			metrics.PayloadLoads.WithLabelValues(SourceCache).Inc()
			l.log.Warn("serving cached tender payload",
				zap.Time("stored_at", entry.StoredAt),
				zap.Error(lastErr))
			return &LoadResult{Payload: p, Source: SourceCache, StoredAt: entry.StoredAt}
		}
	}

	metrics.PayloadLoads.WithLabelValues(SourceSeed).Inc()
	l.log.Warn("no live or cached payload, serving seed", zap.Error(lastErr))
	return &LoadResult{Payload: payload.Seed(), Source: SourceSeed, Err: lastErr}
}

// Invalidate drops the cached payload.
func (l *Loader) Invalidate(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	return l.store.Delete(ctx, l.cacheKey)
}

func (l *Loader) readSource(ctx context.Context, src string) (*payload.Payload, error) {
	result, err := Source(ctx, src, l.options)
	if err != nil {
		return nil, err
	}
	p, err := payload.Parse(result.Body)
	if err != nil {
		return nil, &Error{Source: src, Message: "unusable payload", Cause: err}
	}
	return p, nil
}

func (l *Loader) writeCache(ctx context.Context, p *payload.Payload) {
	if l.store == nil {
		return
	}
	if err := l.store.Set(ctx, l.cacheKey, cache.NewEntry(p, l.now())); err != nil {
		l.log.Warn("failed to cache tender payload", zap.Error(err))
	}
}

func (l *Loader) readCache(ctx context.Context) (*cache.Entry, *payload.Payload) {
	if l.store == nil {
		return nil, nil
	}
	entry, err := l.store.Get(ctx, l.cacheKey)
	if err != nil {
		l.log.Warn("failed to read payload cache", zap.Error(err))
		return nil, nil
	}
	if entry == nil {
		return nil, nil
	}
	p, err := entry.Decode()
	if err != nil {
		l.log.Warn("dropping unreadable cached payload", zap.Error(err))
		_ = l.store.Delete(ctx, l.cacheKey)
		return nil, nil
	}
	return entry, p
}
