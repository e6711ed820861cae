// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package telemetry tracks the health of external backends the service
// writes to, with exponential cooldown after repeated failures.
package telemetry

import (
	"math"
	"sort"
	"sync"
	"time"
)

type HealthState string

const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"

	degradedThreshold  = 3
	unhealthyThreshold = 5
	cooldownBase       = 5 * time.Second
	cooldownMax        = 5 * time.Minute
	latencyWindowSize  = 100
)

type BackendStats struct {
	Name            string      `json:"name"`
	State           HealthState `json:"state"`
	TotalRequests   int64       `json:"total_requests"`
	SuccessCount    int64       `json:"success_count"`
	FailureCount    int64       `json:"failure_count"`
	ConsecFailures  int         `json:"consecutive_failures"`
	LastError       string      `json:"last_error,omitempty"`
	LastErrorTime   *time.Time  `json:"last_error_time,omitempty"`
	LastSuccessTime *time.Time  `json:"last_success_time,omitempty"`
	AvgLatencyMs    float64     `json:"avg_latency_ms"`
	P95LatencyMs    float64     `json:"p95_latency_ms"`
	InCooldown      bool        `json:"in_cooldown"`
	CooldownUntil   *time.Time  `json:"cooldown_until,omitempty"`
}

type backend struct {
	mu             sync.RWMutex
	name           string
	totalRequests  int64
	successCount   int64
	failureCount   int64
	consecFailures int
	lastError      string
	lastErrorTime  time.Time
	lastSuccess    time.Time
	latencies      []float64
	latencyIdx     int
	latencyFull    bool
	cooldownUntil  time.Time
}

type Registry struct {
	mu       sync.RWMutex
	backends map[string]*backend
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]*backend),
		now:      time.Now,
	}
}

func (r *Registry) getOrCreate(name string) *backend {
	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok = r.backends[name]; ok {
		return b
	}
	b = &backend{
		name:      name,
		latencies: make([]float64, latencyWindowSize),
	}
	r.backends[name] = b
	return b
}

func (r *Registry) RecordSuccess(name string, latency time.Duration) {
	b := r.getOrCreate(name)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalRequests++
	b.successCount++
	b.consecFailures = 0
	b.lastSuccess = r.now()
	b.cooldownUntil = time.Time{}

	b.latencies[b.latencyIdx] = float64(latency.Microseconds()) / 1000.0
	b.latencyIdx++
	if b.latencyIdx >= latencyWindowSize {
		b.latencyIdx = 0
		b.latencyFull = true
	}
}

// RecordFailure counts a failed call. From the third consecutive failure on
// the backend enters a cooldown that doubles with each further failure.
func (r *Registry) RecordFailure(name, errMsg string) {
	b := r.getOrCreate(name)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := r.now()
	b.totalRequests++
	b.failureCount++
	b.consecFailures++
	b.lastError = errMsg
	b.lastErrorTime = now

	if b.consecFailures >= degradedThreshold {
		backoff := time.Duration(math.Min(
			float64(cooldownBase)*math.Pow(2, float64(b.consecFailures-degradedThreshold)),
			float64(cooldownMax),
		))
		b.cooldownUntil = now.Add(backoff)
	}
}

func (r *Registry) InCooldown(name string) bool {
	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.cooldownUntil.IsZero() && r.now().Before(b.cooldownUntil)
}

func (r *Registry) Stats(name string) BackendStats {
	b := r.getOrCreate(name)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stats(r.now())
}

func (b *backend) stats(now time.Time) BackendStats {
	s := BackendStats{
		Name:           b.name,
		TotalRequests:  b.totalRequests,
		SuccessCount:   b.successCount,
		FailureCount:   b.failureCount,
		ConsecFailures: b.consecFailures,
		LastError:      b.lastError,
	}

	if !b.lastErrorTime.IsZero() {
		t := b.lastErrorTime
		s.LastErrorTime = &t
	}
	if !b.lastSuccess.IsZero() {
		t := b.lastSuccess
		s.LastSuccessTime = &t
	}

	switch {
	case b.consecFailures >= unhealthyThreshold:
		s.State = Unhealthy
	case b.consecFailures >= degradedThreshold:
		s.State = Degraded
	default:
		s.State = Healthy
	}

	if !b.cooldownUntil.IsZero() && now.Before(b.cooldownUntil) {
		s.InCooldown = true
		t := b.cooldownUntil
		s.CooldownUntil = &t
	}

	count := b.latencyIdx
	if b.latencyFull {
		count = latencyWindowSize
	}
	if count > 0 {
		sorted := make([]float64, count)
		copy(sorted, b.latencies[:count])
		sort.Float64s(sorted)
		sum := 0.0
		for _, v := range sorted {
			sum += v
		}
		s.AvgLatencyMs = sum / float64(count)
		s.P95LatencyMs = sorted[int(float64(count-1)*0.95)]
	}

	return s
}
