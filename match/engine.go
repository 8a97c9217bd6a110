package match

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
)

// Engine ranks funding opportunities against researcher profiles.
// It queries the opportunity store with the profile's embedding, normalizes
// distances into batch-relative confidences, and keeps the last result set
// per profile so explanations can be looked up by result index.
type Engine struct {
	opportunities storage.OpportunityStore
	profiles      storage.ProfileStore
	logger        *slog.Logger

	mu          sync.Mutex
	lastMatches map[core.ID][]core.MatchResult
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used by the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a matching engine over the given stores.
func NewEngine(opportunities storage.OpportunityStore, profiles storage.ProfileStore, opts ...EngineOption) *Engine {
	e := &Engine{
		opportunities: opportunities,
		profiles:      profiles,
		logger:        slog.Default().With("component", "match-engine"),
		lastMatches:   make(map[core.ID][]core.MatchResult),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match returns up to k active opportunities ranked by confidence for the
// profile. The profile must have a materialized embedding; k must be
// positive. Requesting more results than the corpus holds returns
// everything without error.
//
// Confidence is normalized against the min/max distance observed within
// the returned batch, so scores are comparable within one call only.
// Results are sorted by descending confidence, ties broken by ascending
// opportunity ID for determinism.
func (e *Engine) Match(ctx context.Context, profileId core.ID, k int) ([]core.MatchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopK, k)
	}

	profile, err := e.profiles.Get(ctx, profileId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %d: %w", profileId, storage.ErrNotFound)
	}
	if !profile.HasVector() {
		return nil, fmt.Errorf("%w: profile %d", ErrProfileNotReady, profileId)
	}

	hits, err := e.opportunities.QueryNearest(ctx, profile.Vector, k, true)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		e.rememberMatches(profileId, nil)
		return []core.MatchResult{}, nil
	}

	// Batch-relative confidence range: min/max distance within this result set
	minDist, maxDist := hits[0].Distance, hits[0].Distance
	for _, h := range hits[1:] {
		if h.Distance < minDist {
			minDist = h.Distance
		}
		if h.Distance > maxDist {
			maxDist = h.Distance
		}
	}

	results := make([]core.MatchResult, 0, len(hits))
	for _, h := range hits {
		record, err := e.opportunities.Get(ctx, h.Id)
		if err != nil {
			return nil, err
		}
		results = append(results, core.MatchResult{
			ProfileId:     profileId,
			OpportunityId: record.Id,
			Title:         record.Title,
			Agency:        record.Agency,
			Deadline:      record.Deadline,
			RawDistance:   h.Distance,
			Confidence:    Normalize(h.Distance, minDist, maxDist),
		})
	}

	slices.SortFunc(results, func(a, b core.MatchResult) int {
		if a.Confidence != b.Confidence {
			return b.Confidence - a.Confidence
		}
		if a.OpportunityId < b.OpportunityId {
			return -1
		}
		if a.OpportunityId > b.OpportunityId {
			return 1
		}
		return 0
	})

	e.logger.Debug("matched profile",
		"profile", profileId,
		"requested", k,
		"returned", len(results))

	e.rememberMatches(profileId, results)
	return results, nil
}

// LastMatches returns the most recent result set computed for the profile.
// The cache is advisory: it exists so explanation requests can reference a
// result by position, and it is overwritten on every Match call.
func (e *Engine) LastMatches(profileId core.ID) ([]core.MatchResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	results, ok := e.lastMatches[profileId]
	return results, ok
}

func (e *Engine) rememberMatches(profileId core.ID, results []core.MatchResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastMatches[profileId] = results
}
