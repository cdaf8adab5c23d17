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

package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blinklabs-io/goiroha/protocol/txsubmission"
)

var ErrNilRun = errors.New("batch item has no run function")

// RunFunc submits one transaction and waits for its outcome
type RunFunc func(ctx context.Context) (txsubmission.Outcome, error)

// Item is one transaction as it moves through a worker pool. It is safe for
// concurrent use.
type Item struct {
	name           string
	sequenceNumber uint64
	run            RunFunc

	mu       sync.RWMutex
	done     bool
	outcome  txsubmission.Outcome
	err      error
	duration time.Duration
}

func NewItem(name string, seq uint64, run RunFunc) *Item {
	return &Item{
		name:           name,
		sequenceNumber: seq,
		run:            run,
	}
}

func (i *Item) Name() string {
	return i.name
}

func (i *Item) SequenceNumber() uint64 {
	return i.sequenceNumber
}

// Done reports whether the item has been processed
func (i *Item) Done() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.done
}

func (i *Item) Outcome() txsubmission.Outcome {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.outcome
}

func (i *Item) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.err
}

func (i *Item) Duration() time.Duration {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.duration
}

func (i *Item) process(ctx context.Context) error {
	if i.run == nil {
		i.finish(txsubmission.Outcome{}, ErrNilRun, 0)
		return ErrNilRun
	}
	start := time.Now()
	outcome, err := i.run(ctx)
	i.finish(outcome, err, time.Since(start))
	return err
}

func (i *Item) finish(outcome txsubmission.Outcome, err error, duration time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.done = true
	i.outcome = outcome
	i.err = err
	i.duration = duration
}
