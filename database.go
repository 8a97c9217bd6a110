// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package fundmatch

import (
	"context"
	"log/slog"

	"github.com/poiesic/fundmatch/ai"
	"github.com/poiesic/fundmatch/ai/openai"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/explain"
	"github.com/poiesic/fundmatch/ingestion"
	"github.com/poiesic/fundmatch/match"
	"github.com/poiesic/fundmatch/profile"
	"github.com/poiesic/fundmatch/storage"
	"github.com/poiesic/fundmatch/storage/badger"
)

// Database wires storage, the rate-limited AI client, and the domain
// components (tracker, engine, explainer, profile manager) into one handle.
type Database struct {
	stores    *badger.Stores
	client    *ai.Client
	tracker   *ingestion.Tracker
	engine    *match.Engine
	explainer *explain.Explainer
	profiles  *profile.Manager
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the AI client configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects an AI provider instead of the default
// OpenAI-compatible one. Used by tests and by callers with their own
// provider wiring.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all state in memory; filePath is ignored.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDatabaseLogger sets a custom logger for the database and its
// components.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens (or creates) a funding-match database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var (
		stores *badger.Stores
		err    error
	)
	if options.inMemory {
		stores, err = badger.NewMemoryStores()
	} else {
		stores, err = badger.NewStores(filePath)
	}
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			stores.Close()
			return nil, err
		}
	}

	client, err := ai.NewClient(provider, options.aiConfig, ai.WithLogger(options.logger))
	if err != nil {
		stores.Close()
		return nil, err
	}

	tracker, err := ingestion.NewTracker(stores.Opportunities, stores.Fingerprints, client,
		ingestion.WithDeadlineExtractor(client),
		ingestion.WithLogger(options.logger))
	if err != nil {
		client.Close()
		stores.Close()
		return nil, err
	}

	explainer, err := explain.NewExplainer(client, explain.WithLogger(options.logger))
	if err != nil {
		tracker.Release()
		client.Close()
		stores.Close()
		return nil, err
	}

	profiles, err := profile.NewManager(stores.Profiles, stores.Documents, client,
		profile.WithLogger(options.logger))
	if err != nil {
		tracker.Release()
		client.Close()
		stores.Close()
		return nil, err
	}

	return &Database{
		stores:    stores,
		client:    client,
		tracker:   tracker,
		engine:    match.NewEngine(stores.Opportunities, stores.Profiles, match.WithLogger(options.logger)),
		explainer: explainer,
		profiles:  profiles,
		logger:    options.logger,
	}, nil
}

// Close releases the worker pool, the AI provider, and storage, in that
// order.
func (db *Database) Close() error {
	db.tracker.Release()
	if err := db.client.Close(); err != nil {
		db.logger.Error("error closing AI client", "err", err)
	}
	return db.stores.Close()
}

// Ingest runs one deduplicating ingestion batch.
func (db *Database) Ingest(ctx context.Context, records []ingestion.RawRecord) (ingestion.Summary, error) {
	return db.tracker.Ingest(ctx, records)
}

// Sweep expires active opportunities whose deadline has passed. Returns the
// number of records expired.
func (db *Database) Sweep(ctx context.Context) (int, error) {
	return db.tracker.Sweep(ctx)
}

// CreateOrUpdateProfile creates or updates a researcher profile and
// regenerates its embedding. Any explanation cached for the profile is
// invalidated.
func (db *Database) CreateOrUpdateProfile(
	ctx context.Context,
	name string,
	interests []string,
	documents []profile.DocumentInput,
	urls []string,
) (*core.ProfileRecord, error) {
	record, err := db.profiles.CreateOrUpdate(ctx, name, interests, documents, urls)
	if err != nil {
		return nil, err
	}
	db.explainer.Invalidate(record.Id)
	return record, nil
}

// Match returns the top-k opportunities for a profile, scored with
// batch-relative confidence.
func (db *Database) Match(ctx context.Context, profileId core.ID, k int) ([]core.MatchResult, error) {
	return db.engine.Match(ctx, profileId, k)
}

// Explain generates (or returns the cached) structured explanation of why
// an opportunity matches a profile.
func (db *Database) Explain(ctx context.Context, profileId, opportunityId core.ID) (*core.Explanation, error) {
	profileRecord, err := db.profiles.Get(ctx, profileId)
	if err != nil {
		return nil, err
	}

	opportunity, err := db.stores.Opportunities.Get(ctx, opportunityId)
	if err != nil {
		return nil, err
	}
	if opportunity == nil {
		return nil, storage.ErrNotFound
	}

	documents, err := db.profiles.Documents(ctx, profileId)
	if err != nil {
		return nil, err
	}

	return db.explainer.Explain(ctx, profileRecord, opportunity, documents)
}

// Stats describes the stored corpus.
type Stats struct {
	TotalOpportunities       int
	ActiveOpportunities      int
	ExpiredOpportunities     int
	UnprocessedOpportunities int
	Profiles                 int
	Fingerprints             int
}

// Stats reports record counts per collection.
func (db *Database) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	var err error

	if stats.TotalOpportunities, err = db.stores.Opportunities.Count(ctx, 0); err != nil {
		return stats, err
	}
	if stats.ActiveOpportunities, err = db.stores.Opportunities.Count(ctx, core.StatusActive); err != nil {
		return stats, err
	}
	if stats.ExpiredOpportunities, err = db.stores.Opportunities.Count(ctx, core.StatusExpired); err != nil {
		return stats, err
	}
	if stats.UnprocessedOpportunities, err = db.stores.Opportunities.Count(ctx, core.StatusUnprocessed); err != nil {
		return stats, err
	}
	if stats.Fingerprints, err = db.stores.Fingerprints.Count(ctx); err != nil {
		return stats, err
	}

	err = db.stores.Profiles.All(ctx, func(*core.ProfileRecord) error {
		stats.Profiles++
		return nil
	})
	return stats, err
}

// Opportunities exposes the opportunity store.
func (db *Database) Opportunities() storage.OpportunityStore {
	return db.stores.Opportunities
}

// Profiles exposes the profile manager.
func (db *Database) Profiles() *profile.Manager {
	return db.profiles
}

// Engine exposes the matching engine, e.g. for LastMatches lookups.
func (db *Database) Engine() *match.Engine {
	return db.engine
}
