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
	"context"
	"sync"
	"time"
)

// Limiter enforces a sliding-window request budget: at most limit requests
// are admitted in any rolling window. The window state is the single piece
// of process-wide mutable state shared by all workers, so it is guarded by
// a mutex; the lock is never held while sleeping.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	clock  Clock
	admits []time.Time // admission timestamps within the current window
}

// NewLimiter creates a limiter admitting requestsPerMinute requests in any
// rolling 60-second window. A nil clock falls back to the system clock.
func NewLimiter(requestsPerMinute int, clock Clock) *Limiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Limiter{
		limit:  requestsPerMinute,
		window: time.Minute,
		clock:  clock,
		admits: make([]time.Time, 0, requestsPerMinute),
	}
}

// Wait blocks until the caller may issue a request, then records the
// admission. Returns the context error if the context is cancelled while
// waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.clock.Now()
		l.prune(now)

		if len(l.admits) < l.limit {
			l.admits = append(l.admits, now)
			l.mu.Unlock()
			return nil
		}

		// Window is full: the next slot opens when the oldest admission
		// ages out.
		wait := l.admits[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// InFlight returns the number of admissions currently inside the window.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return len(l.admits)
}

// prune drops admissions that have aged out of the window.
// Caller must hold the mutex.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.admits) && !l.admits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.admits = append(l.admits[:0], l.admits[i:]...)
	}
}
