// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sliding-Window Rate Limiter
// =============================================================================

// Limiter is an in-memory sliding-window rate limiter.
//
// # Description
//
// Each key owns an ordered slice of request timestamps inside the trailing
// window. Allow prunes expired timestamps, checks the count against the
// limit, and records the new request as one atomic step under the key's
// bucket lock. True sliding-window semantics: capacity frees up
// incrementally as old timestamps age out, not all at once on a window
// boundary.
//
// # Thread Safety
//
// The bucket map is guarded by a mutex used only for lookup and insertion;
// each bucket carries its own lock, so different keys never contend on the
// check-and-record step.
//
// # Memory
//
// Buckets for idle keys are reclaimed by the sweeper (StartSweeper), which
// deletes any bucket whose window has fully drained. Without the sweeper
// the key set grows without bound.
type Limiter struct {
	limit  int
	window time.Duration
	clock  Clock

	mu      sync.Mutex
	buckets map[string]*bucket
}

// bucket holds the recorded timestamps for one key.
type bucket struct {
	mu    sync.Mutex
	times []time.Time

	// gone is set under mu when the sweeper removes this bucket from the
	// map. A request that looked the bucket up before the removal must not
	// record into it.
	gone bool
}

// NewLimiter creates a Limiter allowing limit requests per window.
func NewLimiter(limit int, window time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock()
	}
	return &Limiter{
		limit:   limit,
		window:  window,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether a request for key is admitted now.
//
// # Description
//
// Expired timestamps are pruned first. A rejected request is not recorded,
// so hammering a full bucket does not extend the lockout.
//
// # Inputs
//
//   - key: Rate-limit identity. The caller's credential when authenticated,
//     otherwise a client-address fallback.
//
// # Outputs
//
//   - bool: true to admit, false to reject.
func (l *Limiter) Allow(key string) bool {
	for {
		b := l.bucket(key)

		b.mu.Lock()
		if b.gone {
			// The sweeper reclaimed this bucket between lookup and lock;
			// recording here would land in an orphan and leak budget.
			b.mu.Unlock()
			continue
		}

		now := l.clock.Now()
		windowStart := now.Add(-l.window)

		// Drop timestamps that have aged out of the window.
		i := 0
		for i < len(b.times) && b.times[i].Before(windowStart) {
			i++
		}
		if i > 0 {
			b.times = append(b.times[:0], b.times[i:]...)
		}

		if len(b.times) >= l.limit {
			b.mu.Unlock()
			return false
		}

		b.times = append(b.times, now)
		b.mu.Unlock()
		return true
	}
}

// Limit returns the configured maximum requests per window.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration { return l.window }

// bucket returns the bucket for key, creating it when absent.
func (l *Limiter) bucket(key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{}
		l.buckets[key] = b
	}
	return b
}

// Sweep removes buckets whose windows have fully drained.
//
// Called periodically by StartSweeper; exposed for tests.
func (l *Limiter) Sweep() {
	now := l.clock.Now()
	windowStart := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		drained := len(b.times) == 0 || !b.times[len(b.times)-1].After(windowStart)
		if drained {
			b.gone = true
		}
		b.mu.Unlock()
		if drained {
			delete(l.buckets, key)
		}
	}
}

// KeyCount returns the number of tracked keys. Test hook.
func (l *Limiter) KeyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
//
// Bounds limiter memory for long-running processes with churn in anonymous
// client addresses.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}
