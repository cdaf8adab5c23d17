// Copyright 2026 Blink Labs Software
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

// Package metrics tracks transaction and query pipeline activity, both as in-process
// counters and as Prometheus collectors.
package metrics

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "iroha_client"

	ResultCommitted = "committed"
	ResultRejected  = "rejected"
	ResultTimeout   = "timeout"
	ResultOk        = "ok"
	ResultError     = "error"
)

type Metrics struct {
	// Counters (atomic)
	txSubmitted  atomic.Uint64
	txCommitted  atomic.Uint64
	txRejected   atomic.Uint64
	txTimedOut   atomic.Uint64
	queries      atomic.Uint64
	queryErrors  atomic.Uint64
	requests     atomic.Uint64
	requestFails atomic.Uint64

	// Timing (requires mutex)
	mu             sync.RWMutex
	lastCommitTime time.Time
	startTime      time.Time

	// Prometheus collectors
	txSubmittedTotal   prometheus.Counter
	txOutcomesTotal    *prometheus.CounterVec
	commitLatency      prometheus.Histogram
	queriesTotal       *prometheus.CounterVec
	requestsTotal      *prometheus.CounterVec
	requestDurationSec *prometheus.HistogramVec
}

type Stats struct {
	TransactionsSubmitted uint64
	TransactionsCommitted uint64
	TransactionsRejected  uint64
	CommitTimeouts        uint64
	Queries               uint64
	QueryErrors           uint64
	Requests              uint64
	RequestFailures       uint64
	LastCommitTime        time.Time
	StartTime             time.Time
}

// New creates a Metrics object. The collectors are registered with the provided registerer
// when it is not nil. Collectors that are already registered are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		startTime: time.Now(),
		txSubmittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "submitted_total",
				Help:      "Total number of transactions accepted for submission.",
			},
		),
		txOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "outcomes_total",
				Help:      "Total number of awaited transactions by outcome.",
			},
			[]string{"result"},
		),
		commitLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "commit_latency_seconds",
				Help:      "Time from submission to commitment.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "requests_total",
				Help:      "Total number of queries by type and result.",
			},
			[]string{"query", "result"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests sent to the peer.",
			},
			[]string{"endpoint", "status"},
		),
		requestDurationSec: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests sent to the peer.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"endpoint"},
		),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.txSubmittedTotal, err = register(reg, m.txSubmittedTotal); err != nil {
		return nil, err
	}
	if m.txOutcomesTotal, err = register(reg, m.txOutcomesTotal); err != nil {
		return nil, err
	}
	if m.commitLatency, err = register(reg, m.commitLatency); err != nil {
		return nil, err
	}
	if m.queriesTotal, err = register(reg, m.queriesTotal); err != nil {
		return nil, err
	}
	if m.requestsTotal, err = register(reg, m.requestsTotal); err != nil {
		return nil, err
	}
	if m.requestDurationSec, err = register(reg, m.requestDurationSec); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var alreadyErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyErr) {
			if existing, ok := alreadyErr.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// All Record methods are safe to call on a nil *Metrics

func (m *Metrics) RecordSubmit() {
	if m == nil {
		return
	}
	m.txSubmitted.Add(1)
	m.txSubmittedTotal.Inc()
}

func (m *Metrics) RecordCommit(latency time.Duration) {
	if m == nil {
		return
	}
	m.txCommitted.Add(1)
	m.txOutcomesTotal.WithLabelValues(ResultCommitted).Inc()
	m.commitLatency.Observe(latency.Seconds())
	m.mu.Lock()
	m.lastCommitTime = time.Now()
	m.mu.Unlock()
}

func (m *Metrics) RecordReject() {
	if m == nil {
		return
	}
	m.txRejected.Add(1)
	m.txOutcomesTotal.WithLabelValues(ResultRejected).Inc()
}

func (m *Metrics) RecordTimeout() {
	if m == nil {
		return
	}
	m.txTimedOut.Add(1)
	m.txOutcomesTotal.WithLabelValues(ResultTimeout).Inc()
}

func (m *Metrics) RecordQuery(query string, err error) {
	if m == nil {
		return
	}
	m.queries.Add(1)
	result := ResultOk
	if err != nil {
		m.queryErrors.Add(1)
		result = ResultError
	}
	m.queriesTotal.WithLabelValues(query, result).Inc()
}

// RecordRequest records a single HTTP round trip. A status of 0 means the request failed
// before a response was received.
func (m *Metrics) RecordRequest(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.Add(1)
	statusLabel := strconv.Itoa(status)
	if status == 0 {
		statusLabel = ResultError
	}
	if status == 0 || status >= 500 {
		m.requestFails.Add(1)
	}
	m.requestsTotal.WithLabelValues(endpoint, statusLabel).Inc()
	m.requestDurationSec.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		TransactionsSubmitted: m.txSubmitted.Load(),
		TransactionsCommitted: m.txCommitted.Load(),
		TransactionsRejected:  m.txRejected.Load(),
		CommitTimeouts:        m.txTimedOut.Load(),
		Queries:               m.queries.Load(),
		QueryErrors:           m.queryErrors.Load(),
		Requests:              m.requests.Load(),
		RequestFailures:       m.requestFails.Load(),
		LastCommitTime:        m.lastCommitTime,
		StartTime:             m.startTime,
	}
}

// Reset clears the in-process counters. Prometheus collectors are not affected.
func (m *Metrics) Reset() {
	m.txSubmitted.Store(0)
	m.txCommitted.Store(0)
	m.txRejected.Store(0)
	m.txTimedOut.Store(0)
	m.queries.Store(0)
	m.queryErrors.Store(0)
	m.requests.Store(0)
	m.requestFails.Store(0)

	m.mu.Lock()
	m.lastCommitTime = time.Time{}
	m.startTime = time.Now()
	m.mu.Unlock()
}
