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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers and the rate-limited
// client that fronts them.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// GeneratorHost is the base URL for the text generation service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	GeneratorHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// GeneratorModel is the model identifier to use for text generation and
	// deadline extraction. Example: "qwen2.5:3b", "gpt-4o-mini"
	GeneratorModel string

	// RequestsPerMinute is the sliding-window request budget shared by all
	// callers of the client. Default: 60.
	RequestsPerMinute int

	// MaxBatchSize is the maximum number of texts sent in a single
	// embedding request; larger batches are chunked. Default: 50.
	MaxBatchSize int

	// MaxTextLen is the maximum length in bytes of a single input text.
	// Longer items are rejected as invalid input. Default: 32768.
	MaxTextLen int

	// QuotaMaxAttempts is the maximum number of attempts for a call that
	// keeps hitting quota errors. Default: 5.
	QuotaMaxAttempts int

	// TransientMaxAttempts is the maximum number of attempts for a call
	// that keeps failing with transport errors. Default: 3.
	TransientMaxAttempts int

	// RetryBaseDelay is the initial backoff delay; it doubles on every
	// retry. Default: 1s.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff delay. Default: 60s.
	RetryMaxDelay time.Duration

	// CallTimeout is the hard deadline applied to every individual API
	// call. A timed-out call is treated as a transient failure. Default: 90s.
	CallTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generator service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGeneratorModel sets the generator model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithRequestsPerMinute sets the sliding-window request budget.
func WithRequestsPerMinute(rpm int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = rpm
	}
}

// WithMaxBatchSize sets the embedding batch chunk size.
func WithMaxBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.MaxBatchSize = size
	}
}

// WithRetryPolicy sets the backoff parameters for quota and transient retries.
func WithRetryPolicy(quotaAttempts, transientAttempts int, baseDelay, maxDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.QuotaMaxAttempts = quotaAttempts
		c.TransientMaxAttempts = transientAttempts
		c.RetryBaseDelay = baseDelay
		c.RetryMaxDelay = maxDelay
	}
}

// WithCallTimeout sets the per-call hard timeout.
func WithCallTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.CallTimeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default, both embedding and generation use
// the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:        defaultHost,
		GeneratorHost:        defaultHost,
		EmbeddingModel:       "embeddinggemma",
		GeneratorModel:       "qwen2.5:3b",
		RequestsPerMinute:    60,
		MaxBatchSize:         50,
		MaxTextLen:           32768,
		QuotaMaxAttempts:     5,
		TransientMaxAttempts: 3,
		RetryBaseDelay:       time.Second,
		RetryMaxDelay:        60 * time.Second,
		CallTimeout:          90 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithRequestsPerMinute(30),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.GeneratorHost != "" && !strings.HasSuffix(c.GeneratorHost, "/v1") {
		c.GeneratorHost = strings.TrimSuffix(c.GeneratorHost, "/")
		c.GeneratorHost = c.GeneratorHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	if c.RequestsPerMinute < 1 {
		return errors.New("ai config: RequestsPerMinute must be positive")
	}
	if c.MaxBatchSize < 1 {
		return errors.New("ai config: MaxBatchSize must be positive")
	}
	if c.MaxTextLen < 1 {
		return errors.New("ai config: MaxTextLen must be positive")
	}
	if c.QuotaMaxAttempts < 1 || c.TransientMaxAttempts < 1 {
		return errors.New("ai config: retry attempt counts must be positive")
	}
	if c.RetryBaseDelay <= 0 || c.RetryMaxDelay < c.RetryBaseDelay {
		return errors.New("ai config: invalid retry delay bounds")
	}
	if c.CallTimeout <= 0 {
		return errors.New("ai config: CallTimeout must be positive")
	}
	return nil
}
