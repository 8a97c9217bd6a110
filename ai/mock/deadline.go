package mock

import (
	"context"
	"regexp"
	"sync"
	"time"
)

// isoDatePattern matches a bare YYYY-MM-DD date anywhere in the text.
var isoDatePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// MockDeadlineExtractor is a test double for ai.DeadlineExtractor.
// It allows custom behavior injection via function fields.
// Safe for concurrent use, matching the ai.DeadlineExtractor contract.
type MockDeadlineExtractor struct {
	// ExtractDeadlineFunc is called by ExtractDeadline if set.
	// If nil, uses default ISO-date scanning behavior.
	ExtractDeadlineFunc func(ctx context.Context, text string) (time.Time, error)

	mu        sync.Mutex
	callCount int
}

// NewMockDeadlineExtractor creates a mock deadline extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockDeadlineExtractor().
func NewMockDeadlineExtractor() *MockDeadlineExtractor {
	return &MockDeadlineExtractor{}
}

// ExtractDeadline scans the text for the first ISO-formatted date.
// Returns the zero time with a nil error when no date is found, matching
// the production contract.
func (m *MockDeadlineExtractor) ExtractDeadline(ctx context.Context, text string) (time.Time, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ExtractDeadlineFunc != nil {
		return m.ExtractDeadlineFunc(ctx, text)
	}

	match := isoDatePattern.FindString(text)
	if match == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse("2006-01-02", match)
	if err != nil {
		return time.Time{}, nil
	}
	return parsed, nil
}

// CallCount returns the number of times ExtractDeadline was called.
func (m *MockDeadlineExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockDeadlineExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractDeadlineFunc = nil
}
