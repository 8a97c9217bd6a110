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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/fundmatch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DeadlineExtractor implements ai.DeadlineExtractor using OpenAI-compatible chat APIs.
type DeadlineExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// deadlineResult is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type deadlineResult struct {
	Deadline string `json:"deadline"`
	Found    bool   `json:"found"`
}

// newDeadlineExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newDeadlineExtractor(config *ai.Config) (*DeadlineExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &DeadlineExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-deadline"),
	}, nil
}

// NewDeadlineExtractor creates a new deadline extractor using the provided configuration.
//
// Returns ai.DeadlineExtractor interface to enforce abstraction.
func NewDeadlineExtractor(config *ai.Config) (ai.DeadlineExtractor, error) {
	return newDeadlineExtractor(config)
}

// ExtractDeadline asks the LLM to locate a submission deadline in text.
// It returns the zero time with a nil error when no deadline is present.
func (e *DeadlineExtractor) ExtractDeadline(ctx context.Context, text string) (time.Time, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(deadlinePrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result deadlineResult
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return time.Time{}, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return time.Time{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing deadline response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse deadline response after retries", "err", lastErr)
		return time.Time{}, lastErr
	}

	if !result.Found || result.Deadline == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse("2006-01-02", result.Deadline)
	if err != nil {
		e.logger.Warn("model returned unparseable deadline", "deadline", result.Deadline)
		return time.Time{}, nil
	}

	return parsed, nil
}
