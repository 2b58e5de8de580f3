// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package health aggregates the gateway's dependency probes.
//
// Each external dependency (LLM runtime, vector store, cache) gets a Probe;
// the Checker fans the probes out concurrently with a bounded per-probe
// timeout and classifies every result as up, degraded, or down. Liveness and
// readiness are derived predicates over the probe results, with deliberately
// different strictness:
//
//   - Healthy: no critical dependency is down. Degraded critical services
//     still count as healthy, so liveness probes don't kill a process that
//     can limp along.
//   - Ready: no dependency of any kind is down. Degraded is tolerated, down
//     is not.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"golang.org/x/sync/errgroup"
)

// Status classifies one dependency.
type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// ServiceStatus is the per-dependency result of one health sweep. Created
// fresh on every sweep and never mutated afterwards.
type ServiceStatus struct {
	Name string `json:"name"`
	// Status is up, degraded, or down.
	Status Status `json:"status"`
	// ResponseTimeMS is the probe round-trip in milliseconds, set whenever
	// the probe got far enough to measure one.
	ResponseTimeMS *float64 `json:"response_time_ms,omitempty"`
	// Error carries the failure detail for degraded and down results.
	Error *string `json:"error,omitempty"`
}

// Probe checks one dependency. Implementations must honor ctx cancellation;
// the Checker applies the per-probe timeout through it.
type Probe interface {
	Name() string
	Check(ctx context.Context) (Status, error)
}

// =============================================================================
// Probes
// =============================================================================

// HTTPProbe classifies a dependency by a single GET request.
type HTTPProbe struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPProbe creates a probe that GETs url.
//
// # Description
//
// Classification: HTTP 200 is up; any other response code is degraded with
// the code recorded as the error detail; a timeout is down with error
// "Timeout"; any other transport failure is down with the error text.
func NewHTTPProbe(name, url string) *HTTPProbe {
	return &HTTPProbe{name: name, url: url, client: &http.Client{}}
}

func (p *HTTPProbe) Name() string { return p.name }

func (p *HTTPProbe) Check(ctx context.Context) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return StatusDown, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return StatusDown, errors.New("Timeout")
		}
		return StatusDown, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return StatusUp, nil
	}
	return StatusDegraded, fmt.Errorf("HTTP %d", resp.StatusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

// WeaviateProbe checks the vector store through its readiness endpoint.
type WeaviateProbe struct {
	name   string
	client *weaviate.Client
}

// NewWeaviateProbe creates a probe over an existing Weaviate client.
func NewWeaviateProbe(name string, client *weaviate.Client) *WeaviateProbe {
	return &WeaviateProbe{name: name, client: client}
}

func (p *WeaviateProbe) Name() string { return p.name }

func (p *WeaviateProbe) Check(ctx context.Context) (Status, error) {
	ready, err := p.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		if isTimeout(err) {
			return StatusDown, errors.New("Timeout")
		}
		return StatusDown, err
	}
	if !ready {
		return StatusDegraded, errors.New("not ready")
	}
	return StatusUp, nil
}

// RedisProbe checks the cache store with a PING.
type RedisProbe struct {
	name   string
	client redis.UniversalClient
}

// NewRedisProbe creates a probe over an existing Redis client.
func NewRedisProbe(name string, client redis.UniversalClient) *RedisProbe {
	return &RedisProbe{name: name, client: client}
}

func (p *RedisProbe) Name() string { return p.name }

func (p *RedisProbe) Check(ctx context.Context) (Status, error) {
	if err := p.client.Ping(ctx).Err(); err != nil {
		if isTimeout(err) {
			return StatusDown, errors.New("Timeout")
		}
		return StatusDown, err
	}
	return StatusUp, nil
}

// =============================================================================
// Checker
// =============================================================================

// Checker fans health probes out concurrently and derives the system-wide
// liveness and readiness predicates.
//
// # Thread Safety
//
// Checker holds no mutable state after construction; all methods are safe for
// concurrent use.
type Checker struct {
	probes   []Probe
	critical map[string]bool
	timeout  time.Duration
	started  time.Time
}

// NewChecker creates a Checker over the given probes.
//
// # Inputs
//
//   - probes: Dependency probes, checked concurrently on every sweep.
//   - critical: Names of the probes whose full failure makes the process
//     unhealthy. Probes outside this set affect readiness only.
//   - timeout: Per-probe deadline. A sweep completes within roughly this
//     bound regardless of probe count.
func NewChecker(probes []Probe, critical []string, timeout time.Duration) *Checker {
	crit := make(map[string]bool, len(critical))
	for _, name := range critical {
		crit[name] = true
	}
	return &Checker{
		probes:   probes,
		critical: crit,
		timeout:  timeout,
		started:  time.Now(),
	}
}

// Statuses runs every probe concurrently and returns one ServiceStatus per
// probe, in the order the probes were registered.
//
// # Description
//
// Each probe runs under its own timeout context. A panicking probe is
// converted into a synthetic down status rather than taking the sweep (or
// the process) with it; one misbehaving dependency cannot fail the
// aggregate call.
func (c *Checker) Statuses(ctx context.Context) []ServiceStatus {
	results := make([]ServiceStatus, len(c.probes))

	g, ctx := errgroup.WithContext(ctx)
	for i, probe := range c.probes {
		g.Go(func() error {
			results[i] = c.runOne(ctx, probe)
			return nil
		})
	}
	// probes never return errors through the group; Wait is for joining only
	_ = g.Wait()

	return results
}

func (c *Checker) runOne(ctx context.Context, probe Probe) (result ServiceStatus) {
	result = ServiceStatus{Name: probe.Name()}

	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusDown
			msg := fmt.Sprintf("probe panic: %v", r)
			result.Error = &msg
		}
	}()

	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	status, err := probe.Check(probeCtx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	result.Status = status
	result.ResponseTimeMS = &elapsed
	if err != nil {
		msg := err.Error()
		result.Error = &msg
	}
	return result
}

// Healthy reports liveness: true unless a critical dependency is down.
func (c *Checker) Healthy(statuses []ServiceStatus) bool {
	for _, s := range statuses {
		if c.critical[s.Name] && s.Status == StatusDown {
			return false
		}
	}
	return true
}

// Ready reports readiness: true only when no dependency is down.
func (c *Checker) Ready(statuses []ServiceStatus) bool {
	for _, s := range statuses {
		if s.Status == StatusDown {
			return false
		}
	}
	return true
}

// Uptime returns seconds since the Checker was constructed, which tracks
// process start in practice.
func (c *Checker) Uptime() float64 {
	return time.Since(c.started).Seconds()
}
