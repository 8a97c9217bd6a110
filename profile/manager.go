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


package profile

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/fundmatch/ai"
	"github.com/poiesic/fundmatch/core"
	"github.com/poiesic/fundmatch/storage"
)

// DocumentInput is one source document supplied to a profile operation
// before fingerprinting.
type DocumentInput struct {
	Name   string
	Text   string
	URL    string
	Source core.SourceType
}

// IDForName returns the deterministic profile id for a name. The same name
// always maps to the same profile.
func IDForName(name string) core.ID {
	return core.IDFromContent(strings.ToLower(strings.TrimSpace(name)))
}

// Manager owns profile lifecycle: creation, document and URL membership,
// and regeneration of the aggregate profile embedding after every mutation.
type Manager struct {
	profiles  storage.ProfileStore
	documents storage.DocumentStore
	embedder  ai.Embedder
	logger    *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a profile manager.
func NewManager(
	profiles storage.ProfileStore,
	documents storage.DocumentStore,
	embedder ai.Embedder,
	opts ...ManagerOption,
) (*Manager, error) {
	if profiles == nil {
		return nil, ErrProfileStoreRequired
	}
	if documents == nil {
		return nil, ErrDocumentStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	m := &Manager{
		profiles:  profiles,
		documents: documents,
		embedder:  embedder,
		logger:    slog.Default().With("component", "profile-manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// CreateOrUpdate creates a profile or replaces an existing one with the
// same name. Interests and URLs are replaced wholesale; supplied documents
// are fingerprinted, embedded, and added to the profile's document set
// (existing documents are kept). The aggregate profile embedding is
// regenerated before the profile is stored.
func (m *Manager) CreateOrUpdate(
	ctx context.Context,
	name string,
	interests []string,
	documents []DocumentInput,
	urls []string,
) (*core.ProfileRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	id := IDForName(name)
	record, err := m.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &core.ProfileRecord{Id: id, Name: name}
	}
	record.Interests = slices.Clone(interests)
	record.URLs = slices.Clone(urls)

	for _, input := range documents {
		doc, err := m.storeDocument(ctx, id, input)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(record.Documents, doc.Id) {
			record.Documents = append(record.Documents, doc.Id)
		}
	}

	if err := m.reembed(ctx, record); err != nil {
		return nil, err
	}

	stored, err := m.profiles.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}

	m.logger.Info("profile stored",
		"profile", stored.Id,
		"documents", len(stored.Documents),
		"urls", len(stored.URLs))
	return stored, nil
}

// Get retrieves a profile. Returns storage.ErrNotFound when no profile
// exists for the id.
func (m *Manager) Get(ctx context.Context, id core.ID) (*core.ProfileRecord, error) {
	record, err := m.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// Documents retrieves the profile's source documents.
func (m *Manager) Documents(ctx context.Context, id core.ID) ([]*core.Document, error) {
	return m.documents.GetByProfile(ctx, id)
}

// AddDocument attaches a source document to the profile and regenerates the
// profile embedding. Adding a document with identical text and URL twice is
// a no-op for membership.
func (m *Manager) AddDocument(ctx context.Context, profileId core.ID, input DocumentInput) (*core.ProfileRecord, error) {
	record, err := m.Get(ctx, profileId)
	if err != nil {
		return nil, err
	}

	doc, err := m.storeDocument(ctx, profileId, input)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(record.Documents, doc.Id) {
		record.Documents = append(record.Documents, doc.Id)
	}

	return m.reembedAndStore(ctx, record)
}

// RemoveDocument detaches a source document from the profile, deletes it,
// and regenerates the profile embedding.
func (m *Manager) RemoveDocument(ctx context.Context, profileId, documentId core.ID) (*core.ProfileRecord, error) {
	record, err := m.Get(ctx, profileId)
	if err != nil {
		return nil, err
	}

	idx := slices.Index(record.Documents, documentId)
	if idx < 0 {
		return nil, fmt.Errorf("document %d: %w", documentId, storage.ErrNotFound)
	}
	record.Documents = slices.Delete(record.Documents, idx, idx+1)

	if err := m.documents.Delete(ctx, documentId); err != nil {
		return nil, err
	}

	return m.reembedAndStore(ctx, record)
}

// AddURL attaches a URL to the profile and regenerates the embedding.
func (m *Manager) AddURL(ctx context.Context, profileId core.ID, url string) (*core.ProfileRecord, error) {
	record, err := m.Get(ctx, profileId)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(record.URLs, url) {
		record.URLs = append(record.URLs, url)
	}
	return m.reembedAndStore(ctx, record)
}

// RemoveURL detaches a URL from the profile and regenerates the embedding.
func (m *Manager) RemoveURL(ctx context.Context, profileId core.ID, url string) (*core.ProfileRecord, error) {
	record, err := m.Get(ctx, profileId)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(record.URLs, url)
	if idx < 0 {
		return nil, fmt.Errorf("url %q: %w", url, storage.ErrNotFound)
	}
	record.URLs = slices.Delete(record.URLs, idx, idx+1)
	return m.reembedAndStore(ctx, record)
}

// storeDocument fingerprints, embeds, and upserts one source document.
func (m *Manager) storeDocument(ctx context.Context, profileId core.ID, input DocumentInput) (*core.Document, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrDocumentTextRequired
	}

	fp := core.DocumentFingerprint(input.Text, input.URL)
	doc := &core.Document{
		Id:          fp,
		ProfileId:   profileId,
		Name:        input.Name,
		RawText:     input.Text,
		URL:         input.URL,
		Source:      input.Source,
		Fingerprint: fp,
	}

	vector, err := m.embedder.EmbedText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("embedding document %q: %w", input.Name, err)
	}
	doc.Vector = vector

	return m.documents.Upsert(ctx, doc)
}

// reembedAndStore regenerates the aggregate embedding and persists the
// profile.
func (m *Manager) reembedAndStore(ctx context.Context, record *core.ProfileRecord) (*core.ProfileRecord, error) {
	if err := m.reembed(ctx, record); err != nil {
		return nil, err
	}
	return m.profiles.Upsert(ctx, record)
}

// reembed regenerates the profile's aggregate embedding from its interests,
// URLs, and owned document texts.
func (m *Manager) reembed(ctx context.Context, record *core.ProfileRecord) error {
	text := m.aggregateText(ctx, record)
	vector, err := m.embedder.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding profile %q: %w", record.Name, err)
	}
	record.Vector = vector
	record.EmbeddedAt = time.Now().UTC().Truncate(time.Microsecond)
	return nil
}

// aggregateText builds the text the profile embedding is generated from.
// Documents that cannot be loaded are skipped with a warning; the embedding
// is regenerated from whatever is available.
func (m *Manager) aggregateText(ctx context.Context, record *core.ProfileRecord) string {
	parts := []string{record.Name}
	if len(record.Interests) > 0 {
		parts = append(parts, "Research interests: "+strings.Join(record.Interests, ", "))
	}
	if len(record.URLs) > 0 {
		parts = append(parts, "Related pages: "+strings.Join(record.URLs, ", "))
	}

	for _, docId := range record.Documents {
		doc, err := m.documents.Get(ctx, docId)
		if err != nil || doc == nil {
			m.logger.Warn("skipping unavailable document during re-embed",
				"profile", record.Id, "document", docId, "err", err)
			continue
		}
		parts = append(parts, doc.Name+"\n"+doc.RawText)
	}

	return strings.Join(parts, "\n\n")
}
