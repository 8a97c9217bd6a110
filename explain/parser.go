package explain

import (
	"strings"

	"github.com/poiesic/fundmatch/core"
)

// parsed holds the structured pieces extracted from a generated explanation.
type parsed struct {
	summary   string
	reusable  []core.ReusableContent
	nextSteps []string
	ok        bool
}

// parseExplanation extracts the MATCH EXPLANATION, REUSABLE CONTENT, and
// NEXT STEPS sections from generated text. When the text carries no
// recognizable explanation section, ok is false and the caller should fall
// back to the raw text.
func parseExplanation(text string) parsed {
	var result parsed

	currentSection := ""
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		switch {
		case strings.HasPrefix(block, "MATCH EXPLANATION:"):
			result.summary = strings.TrimSpace(strings.TrimPrefix(block, "MATCH EXPLANATION:"))
			currentSection = "explanation"

		case strings.HasPrefix(block, "REUSABLE CONTENT:"):
			currentSection = "reusable"
			result.reusable = append(result.reusable, parseReusableLines(block)...)

		case strings.HasPrefix(block, "NEXT STEPS:"):
			currentSection = "steps"
			result.nextSteps = append(result.nextSteps, parseStepLines(block)...)

		case currentSection == "explanation":
			result.summary += " " + block

		case currentSection == "reusable":
			result.reusable = append(result.reusable, parseReusableLines(block)...)

		case currentSection == "steps":
			result.nextSteps = append(result.nextSteps, parseStepLines(block)...)
		}
	}

	result.summary = strings.TrimSpace(result.summary)
	result.ok = result.summary != ""
	return result
}

// parseReusableLines parses "- Document: rationale" bullets.
func parseReusableLines(block string) []core.ReusableContent {
	var items []core.ReusableContent
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "- "))
		name, rationale, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		rationale = strings.TrimSpace(rationale)
		if name == "" || rationale == "" {
			continue
		}
		items = append(items, core.ReusableContent{Document: name, Rationale: rationale})
	}
	return items
}

// parseStepLines parses numbered or bulleted step lines, stripping the
// list markers.
func parseStepLines(block string) []string {
	var steps []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "NEXT STEPS:") {
			continue
		}
		if line[0] != '-' && (line[0] < '0' || line[0] > '9') {
			continue
		}
		step := strings.TrimSpace(strings.TrimLeft(line, "0123456789.-) "))
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

// matchDocumentName maps a document name mentioned by the model back to one
// of the actual source documents. Falls back to word-level matching for
// paraphrased names; returns "" when nothing plausible matches.
func matchDocumentName(mentioned string, documents []*core.Document) string {
	mentionedLower := strings.ToLower(mentioned)

	for _, doc := range documents {
		nameLower := strings.ToLower(doc.Name)
		if strings.Contains(nameLower, mentionedLower) || strings.Contains(mentionedLower, nameLower) {
			return doc.Name
		}
	}

	for _, doc := range documents {
		nameLower := strings.ToLower(doc.Name)
		for _, word := range strings.Fields(mentionedLower) {
			if len(word) > 3 && strings.Contains(nameLower, word) {
				return doc.Name
			}
		}
	}

	return ""
}
