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


package explain

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/fundmatch/ai"
	"github.com/poiesic/fundmatch/core"
)

const (
	// contextTokenBudget bounds how much source-document text goes into the
	// prompt. Tokens are estimated at four characters each.
	contextTokenBudget = 3000
	charsPerToken      = 4

	maxDocumentsInPrompt = 5
)

type cacheKey struct {
	profileId     core.ID
	opportunityId core.ID
}

// Explainer generates structured explanations of why an opportunity matches
// a profile, using the profile's source documents as retrieval context.
// Explanations are cached per (profile, opportunity) pair; a sequential
// repeat of a completed request is served from the cache. Concurrent first
// requests for the same pair may each generate, with the last writer
// winning the cache slot.
type Explainer struct {
	generator ai.Generator
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey]*core.Explanation
}

// ExplainerOption configures an Explainer.
type ExplainerOption func(*Explainer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ExplainerOption {
	return func(e *Explainer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExplainer creates an explanation generator.
func NewExplainer(generator ai.Generator, opts ...ExplainerOption) (*Explainer, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	e := &Explainer{
		generator: generator,
		logger:    slog.Default().With("component", "explainer"),
		cache:     make(map[cacheKey]*core.Explanation),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Explain generates an explanation of why the opportunity matches the
// profile. Source documents are ranked by relevance to the opportunity and
// truncated to the context budget before prompting.
//
// Output that does not follow the expected section structure degrades to
// the raw text as Summary with Parsed set to false; a malformed response is
// never an error. Only generation itself (rate limiting, transport) can
// fail.
func (e *Explainer) Explain(
	ctx context.Context,
	profile *core.ProfileRecord,
	opportunity *core.OpportunityRecord,
	documents []*core.Document,
) (*core.Explanation, error) {
	if profile == nil {
		return nil, ErrProfileRequired
	}
	if opportunity == nil {
		return nil, ErrOpportunityRequired
	}

	key := cacheKey{profileId: profile.Id, opportunityId: opportunity.Id}
	e.mu.Lock()
	if cached, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	ranked := rankDocuments(opportunity, documents)
	prompt := buildPrompt(profile, opportunity, ranked)

	raw, err := e.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating explanation: %w", err)
	}

	explanation := &core.Explanation{
		ProfileId:     profile.Id,
		OpportunityId: opportunity.Id,
		GeneratedAt:   time.Now().UTC(),
	}

	result := parseExplanation(raw)
	if !result.ok {
		e.logger.Warn("explanation did not match expected structure",
			"profile", profile.Id, "opportunity", opportunity.Id)
		explanation.Summary = strings.TrimSpace(raw)
		explanation.Parsed = false
	} else {
		explanation.Summary = result.summary
		explanation.NextSteps = result.nextSteps
		explanation.Parsed = true
		for _, item := range result.reusable {
			if matched := matchDocumentName(item.Document, documents); matched != "" {
				item.Document = matched
			}
			explanation.Reusable = append(explanation.Reusable, item)
		}
	}

	e.mu.Lock()
	e.cache[key] = explanation
	e.mu.Unlock()

	return explanation, nil
}

// Invalidate drops the cached explanation for a (profile, opportunity)
// pair, forcing regeneration on the next Explain. Used after profile
// mutations.
func (e *Explainer) Invalidate(profileId core.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.cache {
		if key.profileId == profileId {
			delete(e.cache, key)
		}
	}
}

// rankDocuments orders documents by relevance to the opportunity: vector
// distance when both sides carry embeddings, keyword overlap with the
// opportunity text otherwise. Most relevant first.
func rankDocuments(opportunity *core.OpportunityRecord, documents []*core.Document) []*core.Document {
	type scored struct {
		doc   *core.Document
		score float64
	}

	ranked := make([]scored, 0, len(documents))
	for _, doc := range documents {
		ranked = append(ranked, scored{doc: doc, score: relevance(opportunity, doc)})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	out := make([]*core.Document, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.doc)
	}
	return out
}

// relevance scores a document against an opportunity in [0, 1], higher is
// more relevant.
func relevance(opportunity *core.OpportunityRecord, doc *core.Document) float64 {
	if len(opportunity.Vector) > 0 && len(doc.Vector) == len(opportunity.Vector) {
		var dot float64
		for i := range doc.Vector {
			dot += float64(doc.Vector[i]) * float64(opportunity.Vector[i])
		}
		// Cosine similarity rescaled from [-1, 1] to [0, 1]
		return (dot + 1) / 2
	}
	return keywordOverlap(opportunity, doc)
}

// keywordOverlap is the fallback relevance signal for unembedded documents:
// the fraction of the opportunity's significant words that appear in the
// document text.
func keywordOverlap(opportunity *core.OpportunityRecord, doc *core.Document) float64 {
	terms := significantWords(opportunity.Title + " " + strings.Join(opportunity.Keywords, " "))
	if len(terms) == 0 {
		return 0
	}
	docText := strings.ToLower(doc.Name + " " + doc.RawText)
	hits := 0
	for term := range terms {
		if strings.Contains(docText, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:()[]\"'")
		if len(w) > 3 {
			words[w] = true
		}
	}
	return words
}

// buildPrompt assembles the grant-consultant prompt: profile summary,
// opportunity details, and budget-truncated excerpts of the most relevant
// source documents, followed by the response format contract.
func buildPrompt(profile *core.ProfileRecord, opportunity *core.OpportunityRecord, documents []*core.Document) string {
	var b strings.Builder

	b.WriteString("You are an expert grant consultant helping researchers match with funding opportunities.\n\n")

	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "- Research Interests: %s\n", strings.Join(profile.Interests, ", "))

	b.WriteString("\nFUNDING OPPORTUNITY:\n")
	fmt.Fprintf(&b, "- Title: %s\n", opportunity.Title)
	fmt.Fprintf(&b, "- Agency: %s\n", opportunity.Agency)
	fmt.Fprintf(&b, "- Description: %s\n", opportunity.Description)
	if len(opportunity.Keywords) > 0 {
		fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(opportunity.Keywords, ", "))
	}
	if opportunity.HasDeadline() {
		fmt.Fprintf(&b, "- Deadline: %s\n", opportunity.Deadline.Format("2006-01-02"))
	}
	if opportunity.URL != "" {
		fmt.Fprintf(&b, "- URL: %s\n", opportunity.URL)
	}

	b.WriteString("\nUSER'S AVAILABLE DOCUMENTS:\n")
	if len(documents) == 0 {
		b.WriteString("(none)\n")
	}
	remaining := contextTokenBudget * charsPerToken
	for i, doc := range documents {
		if i >= maxDocumentsInPrompt || remaining <= 0 {
			break
		}
		excerpt := doc.RawText
		if len(excerpt) > remaining {
			excerpt = excerpt[:remaining]
		}
		remaining -= len(excerpt)
		fmt.Fprintf(&b, "- %s: %s\n", doc.Name, excerpt)
	}

	b.WriteString(`
Please provide:
1. A brief explanation (2-3 sentences) of why this funding opportunity is a good match for the user's profile
2. Specific documents that could be reused or adapted for this opportunity
3. Concrete next steps the user should take to apply

Format your response as:
MATCH EXPLANATION:
[Your explanation here]

REUSABLE CONTENT:
- [Document]: [How it can be reused]

NEXT STEPS:
1. [First step]
2. [Second step]
3. [Third step]
`)

	return b.String()
}
