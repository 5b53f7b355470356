// ==============================================================================
// SCORING CONFIGURATION HOLDER - internal/riskconfig/holder.go
// ==============================================================================
// Observable holder for the active scoring configuration. Readers get an
// atomic, immutable snapshot; a refresh swaps the snapshot wholesale and
// notifies subscribers. In-flight evaluations keep the snapshot they captured.
// ==============================================================================

package riskconfig

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"onboard/internal/domain"
	"onboard/internal/rules"
	"onboard/pkg/cache"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
)

// Store loads the active configuration from the versioned config store.
type Store interface {
	LoadActive(ctx context.Context) (*domain.ScoringConfig, error)
}

const cacheKey = "scoring:config:active"

// Holder is the engine's view of the configuration collaborator.
type Holder struct {
	store    Store
	cache    *cache.RedisCache
	cacheTTL time.Duration
	log      logger.Logger

	current atomic.Value // *rules.Config

	mu          sync.Mutex // serializes swaps and guards subscribers
	subscribers []func(*rules.Config)
}

// NewHolder builds a holder. The cache is optional; pass nil to always hit
// the store.
func NewHolder(store Store, redisCache *cache.RedisCache, cacheTTL time.Duration, log logger.Logger) *Holder {
	return &Holder{
		store:    store,
		cache:    redisCache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Current returns the active compiled configuration, loading it on first use.
// Failure to load is reported to the caller; there is no silent fallback.
func (h *Holder) Current(ctx context.Context) (*rules.Config, error) {
	if v := h.current.Load(); v != nil {
		return v.(*rules.Config), nil
	}
	return h.load(ctx, false)
}

// Refresh bypasses the cache and reloads from the store, swapping the active
// snapshot and notifying subscribers.
func (h *Holder) Refresh(ctx context.Context) (*rules.Config, error) {
	return h.load(ctx, true)
}

// OnChange registers a callback invoked with each newly activated snapshot.
func (h *Holder) OnChange(fn func(*rules.Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// Fallback returns the compiled built-in configuration. Using it is a
// deliberate, logged degradation path chosen by the caller, never automatic.
func (h *Holder) Fallback() *rules.Config {
	h.log.Warn("Fallback scoring configuration requested", map[string]interface{}{
		"version": FallbackVersion,
	})
	return rules.Compile(FallbackConfig())
}

func (h *Holder) load(ctx context.Context, bypassCache bool) (*rules.Config, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A concurrent caller may have won the race while we waited.
	if !bypassCache {
		if v := h.current.Load(); v != nil {
			return v.(*rules.Config), nil
		}
	}

	if !bypassCache && h.cache != nil {
		var cached domain.ScoringConfig
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
			return h.activate(&cached), nil
		} else if !cache.IsMiss(err) {
			h.log.Warn("Scoring config cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	raw, err := h.store.LoadActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "scoring configuration unavailable")
	}
	raw.Checksum = Checksum(raw)

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, raw, h.cacheTTL); err != nil {
			h.log.Warn("Scoring config cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return h.activate(raw), nil
}

// activate compiles, swaps and notifies. Caller holds h.mu.
func (h *Holder) activate(raw *domain.ScoringConfig) *rules.Config {
	if raw.Checksum == "" {
		raw.Checksum = Checksum(raw)
	}
	compiled := rules.Compile(raw)
	h.current.Store(compiled)

	h.log.Info("Scoring configuration activated", map[string]interface{}{
		"version":  compiled.Version,
		"checksum": compiled.Checksum,
		"rules":    len(compiled.Rules),
	})

	for _, fn := range h.subscribers {
		fn(compiled)
	}
	return compiled
}
