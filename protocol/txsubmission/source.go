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

package txsubmission

import (
	"context"
	"sync"
	"time"

	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol/events"
)

// EventStream delivers pipeline events for one transaction
type EventStream interface {
	Next(ctx context.Context) (events.PipelineEvent, error)
	Close() error
}

// EventSource opens an EventStream for a transaction hash
type EventSource interface {
	Subscribe(ctx context.Context, hash ledger.Hash) (EventStream, error)
}

type websocketSource struct {
	subscriber *events.Subscriber
}

// NewWebsocketSource returns an EventSource backed by the telemetry event stream
func NewWebsocketSource(subscriber *events.Subscriber) EventSource {
	return &websocketSource{subscriber: subscriber}
}

func (s *websocketSource) Subscribe(
	ctx context.Context,
	hash ledger.Hash,
) (EventStream, error) {
	stream, err := s.subscriber.Subscribe(ctx, events.TransactionFilter(hash))
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// StatusFunc looks up the current status of a transaction. An unknown transaction
// should be reported as TxStatusPending.
type StatusFunc func(ctx context.Context, hash ledger.Hash) (ledger.TransactionStatus, error)

type pollingSource struct {
	statusFunc StatusFunc
	interval   time.Duration
}

// NewPollingSource returns an EventSource that calls statusFunc at a fixed interval
func NewPollingSource(statusFunc StatusFunc, interval time.Duration) EventSource {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &pollingSource{
		statusFunc: statusFunc,
		interval:   interval,
	}
}

func (s *pollingSource) Subscribe(
	_ context.Context,
	hash ledger.Hash,
) (EventStream, error) {
	return &pollingStream{
		source:   s,
		hash:     hash,
		doneChan: make(chan struct{}),
	}, nil
}

type pollingStream struct {
	source    *pollingSource
	hash      ledger.Hash
	doneChan  chan struct{}
	onceClose sync.Once
	started   bool
	last      ledger.TxStatus
}

// Next returns the first status that differs from the previously returned one
func (s *pollingStream) Next(ctx context.Context) (events.PipelineEvent, error) {
	ticker := time.NewTicker(s.source.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.doneChan:
			return events.PipelineEvent{}, events.ErrStreamClosed
		default:
		}
		status, err := s.source.statusFunc(ctx, s.hash)
		if err != nil {
			return events.PipelineEvent{}, err
		}
		if !s.started || status.Status != s.last {
			s.started = true
			s.last = status.Status
			return events.PipelineEvent{
				EntityKind: events.EntityKindTransaction,
				Status:     status.Status,
				Hash:       s.hash,
				Reason:     status.Reason,
			}, nil
		}
		select {
		case <-ctx.Done():
			return events.PipelineEvent{}, ctx.Err()
		case <-s.doneChan:
			return events.PipelineEvent{}, events.ErrStreamClosed
		case <-ticker.C:
		}
	}
}

func (s *pollingStream) Close() error {
	s.onceClose.Do(func() {
		close(s.doneChan)
	})
	return nil
}
