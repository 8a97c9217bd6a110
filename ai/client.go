package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Client fronts a Provider with the process-wide rate limiter and the retry
// policy for quota and transport failures. All embedding and generation
// traffic in the system goes through one Client so the request budget is
// enforced globally.
//
// Client itself implements Embedder, Generator, and DeadlineExtractor, so it
// can be handed to any component that needs AI services.
type Client struct {
	provider Provider
	limiter  *Limiter
	clock    Clock

	maxBatchSize         int
	maxTextLen           int
	quotaMaxAttempts     int
	transientMaxAttempts int
	retryBaseDelay       time.Duration
	retryMaxDelay        time.Duration
	callTimeout          time.Duration

	logger *slog.Logger
}

var (
	_ Embedder          = (*Client)(nil)
	_ Generator         = (*Client)(nil)
	_ DeadlineExtractor = (*Client)(nil)
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClock sets the clock used for rate limiting and backoff.
// Default is the system clock.
func WithClock(clock Clock) ClientOption {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a rate-limited client over the given provider.
// The config is validated and normalized before use.
func NewClient(provider Provider, config *Config, opts ...ClientOption) (*Client, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		provider:             provider,
		clock:                SystemClock(),
		maxBatchSize:         config.MaxBatchSize,
		maxTextLen:           config.MaxTextLen,
		quotaMaxAttempts:     config.QuotaMaxAttempts,
		transientMaxAttempts: config.TransientMaxAttempts,
		retryBaseDelay:       config.RetryBaseDelay,
		retryMaxDelay:        config.RetryMaxDelay,
		callTimeout:          config.CallTimeout,
		logger:               slog.Default().With("component", "ai-client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.limiter = NewLimiter(config.RequestsPerMinute, c.clock)
	return c, nil
}

// EmbedText generates an embedding for a single text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates embeddings for a batch of texts. The batch is chunked
// to the configured maximum request size; each chunk is one rate-limited
// call. Input is validated up front so a bad item fails fast before any
// quota is spent.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty text batch", ErrInvalidInput)
	}
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("%w: empty text at index %d", ErrInvalidInput, i)
		}
		if len(text) > c.maxTextLen {
			return nil, fmt.Errorf("%w: text at index %d exceeds %d bytes", ErrInvalidInput, i, c.maxTextLen)
		}
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.maxBatchSize {
		end := min(start+c.maxBatchSize, len(texts))
		chunk := texts[start:end]

		var chunkVectors [][]float32
		err := c.call(ctx, "embed", func(callCtx context.Context) error {
			var embedErr error
			chunkVectors, embedErr = c.provider.Embedder().EmbedTexts(callCtx, chunk)
			return embedErr
		})
		if err != nil {
			return nil, err
		}
		if len(chunkVectors) != len(chunk) {
			return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunk), len(chunkVectors))
		}
		vectors = append(vectors, chunkVectors...)
	}
	return vectors, nil
}

// GenerateText sends a prompt through the rate limiter to the generative model.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrInvalidInput)
	}
	if len(prompt) > c.maxTextLen {
		return "", fmt.Errorf("%w: prompt exceeds %d bytes", ErrInvalidInput, c.maxTextLen)
	}

	var response string
	err := c.call(ctx, "generate", func(callCtx context.Context) error {
		var genErr error
		response, genErr = c.provider.Generator().GenerateText(callCtx, prompt)
		return genErr
	})
	return response, err
}

// ExtractDeadline runs deadline extraction through the rate limiter.
func (c *Client) ExtractDeadline(ctx context.Context, text string) (time.Time, error) {
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}

	var deadline time.Time
	err := c.call(ctx, "extract-deadline", func(callCtx context.Context) error {
		var extractErr error
		deadline, extractErr = c.provider.DeadlineExtractor().ExtractDeadline(callCtx, text)
		return extractErr
	})
	return deadline, err
}

// Close releases the underlying provider.
func (c *Client) Close() error {
	return c.provider.Close()
}

// call runs one logical API operation: wait for a limiter slot, apply the
// per-call timeout, and retry per policy. Quota errors back off
// exponentially up to quotaMaxAttempts and surface as QuotaExhaustedError;
// other failures (including timeouts) retry up to transientMaxAttempts and
// surface as TransientAPIError. Work is never silently dropped.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	delay := c.retryBaseDelay
	quotaAttempts := 0
	transientAttempts := 0

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}
		// Cancellation of the parent context is not a service failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if isQuotaSignal(err) {
			quotaAttempts++
			wait := retryAfterHint(err)
			if wait == 0 {
				wait = delay
			}
			if quotaAttempts >= c.quotaMaxAttempts {
				c.logger.Error("quota retries exhausted", "op", op, "attempts", quotaAttempts, "err", err)
				return &QuotaExhaustedError{Attempts: quotaAttempts, RetryAfter: wait}
			}
			c.logger.Warn("quota exceeded, backing off", "op", op, "attempt", quotaAttempts, "wait", wait)
			if sleepErr := c.clock.Sleep(ctx, wait); sleepErr != nil {
				return sleepErr
			}
			delay = min(delay*2, c.retryMaxDelay)
			continue
		}

		transientAttempts++
		if transientAttempts >= c.transientMaxAttempts {
			c.logger.Error("transient retries exhausted", "op", op, "attempts", transientAttempts, "err", err)
			return &TransientAPIError{Attempts: transientAttempts, Err: err}
		}
		c.logger.Warn("transient API failure, retrying", "op", op, "attempt", transientAttempts, "err", err)
		if sleepErr := c.clock.Sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay = min(delay*2, c.retryMaxDelay)
	}
}
