package explain

import (
	"testing"

	"github.com/poiesic/fundmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedResponse = `MATCH EXPLANATION:
Your coral reef monitoring work aligns directly with this program's focus
on ocean observation infrastructure.

REUSABLE CONTENT:
- Reef Sensor Proposal: the methods section can be adapted nearly as-is
- Acoustic Survey Paper: provides preliminary results for the data plan

NEXT STEPS:
1. Review the full solicitation
2. Contact the program officer
3. Update the budget justification
`

func TestParseExplanation_WellFormed(t *testing.T) {
	result := parseExplanation(wellFormedResponse)

	require.True(t, result.ok)
	assert.Contains(t, result.summary, "coral reef monitoring")

	require.Len(t, result.reusable, 2)
	assert.Equal(t, "Reef Sensor Proposal", result.reusable[0].Document)
	assert.Contains(t, result.reusable[0].Rationale, "methods section")
	assert.Equal(t, "Acoustic Survey Paper", result.reusable[1].Document)

	require.Len(t, result.nextSteps, 3)
	assert.Equal(t, "Review the full solicitation", result.nextSteps[0])
	assert.Equal(t, "Update the budget justification", result.nextSteps[2])
}

func TestParseExplanation_MissingNextSteps(t *testing.T) {
	text := "MATCH EXPLANATION:\nStrong topical overlap.\n\nREUSABLE CONTENT:\n- Old Proposal: reuse the aims\n"
	result := parseExplanation(text)

	require.True(t, result.ok)
	assert.Equal(t, "Strong topical overlap.", result.summary)
	assert.Len(t, result.reusable, 1)
	assert.Empty(t, result.nextSteps)
}

func TestParseExplanation_MultiParagraphSummary(t *testing.T) {
	text := "MATCH EXPLANATION:\nFirst part.\n\nSecond part continues the explanation.\n\nNEXT STEPS:\n1. Apply\n"
	result := parseExplanation(text)

	require.True(t, result.ok)
	assert.Equal(t, "First part. Second part continues the explanation.", result.summary)
	assert.Equal(t, []string{"Apply"}, result.nextSteps)
}

func TestParseExplanation_Unstructured(t *testing.T) {
	result := parseExplanation("The model just rambled without any section headers at all.")

	assert.False(t, result.ok)
	assert.Empty(t, result.summary)
	assert.Empty(t, result.reusable)
	assert.Empty(t, result.nextSteps)
}

func TestParseExplanation_BulletedSteps(t *testing.T) {
	text := "MATCH EXPLANATION:\nFits well.\n\nNEXT STEPS:\n- Check eligibility\n- Draft a concept note\n"
	result := parseExplanation(text)

	require.True(t, result.ok)
	assert.Equal(t, []string{"Check eligibility", "Draft a concept note"}, result.nextSteps)
}

func TestParseExplanation_SkipsMalformedBullets(t *testing.T) {
	text := "MATCH EXPLANATION:\nFits.\n\nREUSABLE CONTENT:\n- no rationale separator here\n- Good Doc: usable rationale\n"
	result := parseExplanation(text)

	require.True(t, result.ok)
	require.Len(t, result.reusable, 1)
	assert.Equal(t, "Good Doc", result.reusable[0].Document)
}

func TestMatchDocumentName(t *testing.T) {
	documents := []*core.Document{
		{Name: "Reef Sensor Proposal 2024"},
		{Name: "Acoustic Survey Paper"},
	}

	t.Run("substring match", func(t *testing.T) {
		assert.Equal(t, "Reef Sensor Proposal 2024", matchDocumentName("Reef Sensor Proposal", documents))
	})

	t.Run("word match", func(t *testing.T) {
		assert.Equal(t, "Acoustic Survey Paper", matchDocumentName("the acoustic study", documents))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Equal(t, "", matchDocumentName("Unrelated Memo", documents))
	})
}
