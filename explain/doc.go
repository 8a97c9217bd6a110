// Package explain generates structured match explanations with retrieval
// augmented generation.
//
// The Explainer assembles a prompt from a profile, an opportunity, and the
// profile's most relevant source documents (ranked by embedding distance,
// budget-truncated), then parses the generated text into a summary,
// reusable-content suggestions, and next steps. Output that does not follow
// the expected structure degrades to raw text rather than failing.
package explain
