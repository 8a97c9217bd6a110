package explain

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/fundmatch/ai/mock"
	"github.com/poiesic/fundmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *core.ProfileRecord {
	return &core.ProfileRecord{
		Id:        core.IDFromContent("ada"),
		Name:      "Ada",
		Interests: []string{"ocean sensing", "coral reefs"},
	}
}

func testOpportunity() *core.OpportunityRecord {
	title := "Ocean Observation Infrastructure"
	url := "https://grants.example/ocean"
	fp := core.Fingerprint(title, url)
	return &core.OpportunityRecord{
		Id:          fp,
		Title:       title,
		Description: "Supports development of coral reef monitoring systems.",
		Agency:      "NSF",
		Keywords:    []string{"ocean", "sensing"},
		URL:         url,
		Status:      core.StatusActive,
		Fingerprint: fp,
	}
}

func TestNewExplainer_RequiresGenerator(t *testing.T) {
	_, err := NewExplainer(nil)
	assert.Equal(t, ErrGeneratorRequired, err)
}

func TestExplainer_Explain(t *testing.T) {
	generator := mock.NewMockGenerator()
	explainer, err := NewExplainer(generator)
	require.NoError(t, err)

	explanation, err := explainer.Explain(context.Background(), testProfile(), testOpportunity(), nil)
	require.NoError(t, err)

	assert.True(t, explanation.Parsed)
	assert.NotEmpty(t, explanation.Summary)
	assert.NotEmpty(t, explanation.NextSteps)
	assert.Equal(t, testProfile().Id, explanation.ProfileId)
	assert.Equal(t, testOpportunity().Id, explanation.OpportunityId)
}

func TestExplainer_ExplainValidation(t *testing.T) {
	explainer, err := NewExplainer(mock.NewMockGenerator())
	require.NoError(t, err)

	_, err = explainer.Explain(context.Background(), nil, testOpportunity(), nil)
	assert.Equal(t, ErrProfileRequired, err)

	_, err = explainer.Explain(context.Background(), testProfile(), nil, nil)
	assert.Equal(t, ErrOpportunityRequired, err)
}

func TestExplainer_CachesPerPair(t *testing.T) {
	generator := mock.NewMockGenerator()
	explainer, err := NewExplainer(generator)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := explainer.Explain(ctx, testProfile(), testOpportunity(), nil)
	require.NoError(t, err)

	second, err := explainer.Explain(ctx, testProfile(), testOpportunity(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, generator.CallCount())
	assert.Same(t, first, second)
}

func TestExplainer_InvalidateForcesRegeneration(t *testing.T) {
	generator := mock.NewMockGenerator()
	explainer, err := NewExplainer(generator)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = explainer.Explain(ctx, testProfile(), testOpportunity(), nil)
	require.NoError(t, err)

	explainer.Invalidate(testProfile().Id)

	_, err = explainer.Explain(ctx, testProfile(), testOpportunity(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, generator.CallCount())
}

func TestExplainer_DegradesOnUnstructuredOutput(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateTextFunc = func(ctx context.Context, prompt string) (string, error) {
		return "A free-form answer with no section headers whatsoever.", nil
	}
	explainer, err := NewExplainer(generator)
	require.NoError(t, err)

	explanation, err := explainer.Explain(context.Background(), testProfile(), testOpportunity(), nil)
	require.NoError(t, err)

	assert.False(t, explanation.Parsed)
	assert.Equal(t, "A free-form answer with no section headers whatsoever.", explanation.Summary)
	assert.Empty(t, explanation.Reusable)
	assert.Empty(t, explanation.NextSteps)
}

func TestExplainer_DegradesOnMissingNextSteps(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateTextFunc = func(ctx context.Context, prompt string) (string, error) {
		return "MATCH EXPLANATION:\nGood fit for your reef work.\n", nil
	}
	explainer, err := NewExplainer(generator)
	require.NoError(t, err)

	explanation, err := explainer.Explain(context.Background(), testProfile(), testOpportunity(), nil)
	require.NoError(t, err)

	assert.True(t, explanation.Parsed)
	assert.Equal(t, "Good fit for your reef work.", explanation.Summary)
	assert.Empty(t, explanation.NextSteps)
}

func TestExplainer_RanksDocumentsIntoPrompt(t *testing.T) {
	generator := mock.NewMockGenerator()
	explainer, err := NewExplainer(generator)
	require.NoError(t, err)

	opportunity := testOpportunity()
	opportunity.Vector = []float32{1, 0}

	documents := []*core.Document{
		{Name: "Tax Filing Notes", RawText: "quarterly filings", Vector: []float32{0, 1}},
		{Name: "Reef Monitoring Proposal", RawText: "coral sensing methods", Vector: []float32{1, 0}},
	}

	_, err = explainer.Explain(context.Background(), testProfile(), opportunity, documents)
	require.NoError(t, err)

	prompts := generator.Prompts()
	require.Len(t, prompts, 1)
	reefIdx := strings.Index(prompts[0], "Reef Monitoring Proposal")
	taxIdx := strings.Index(prompts[0], "Tax Filing Notes")
	require.Positive(t, reefIdx)
	require.Positive(t, taxIdx)
	assert.Less(t, reefIdx, taxIdx)
}

func TestExplainer_MapsMentionedDocumentNames(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateTextFunc = func(ctx context.Context, prompt string) (string, error) {
		return "MATCH EXPLANATION:\nFits.\n\nREUSABLE CONTENT:\n- reef monitoring: adapt the methods\n", nil
	}
	explainer, err := NewExplainer(generator)
	require.NoError(t, err)

	documents := []*core.Document{{Name: "Reef Monitoring Proposal", RawText: "methods"}}
	explanation, err := explainer.Explain(context.Background(), testProfile(), testOpportunity(), documents)
	require.NoError(t, err)

	require.Len(t, explanation.Reusable, 1)
	assert.Equal(t, "Reef Monitoring Proposal", explanation.Reusable[0].Document)
}

func TestKeywordOverlapFallback(t *testing.T) {
	opportunity := testOpportunity() // no vector
	relevant := &core.Document{Name: "Ocean Sensing Plan", RawText: "ocean sensing fieldwork"}
	irrelevant := &core.Document{Name: "Budget Memo", RawText: "travel costs"}

	assert.Greater(t, relevance(opportunity, relevant), relevance(opportunity, irrelevant))
}
