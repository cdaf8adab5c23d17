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
	"sync/atomic"
)

// MetricsRecorder is called after an item has been processed with the error, if any,
// returned by its run function
type MetricsRecorder func(item *Item, err error)

// WorkerPool runs items in parallel on a fixed number of workers
type WorkerPool struct {
	numWorkers    int
	input         <-chan *Item
	output        chan<- *Item
	recordMetrics MetricsRecorder
	wg            sync.WaitGroup
	started       atomic.Bool
}

type WorkerPoolConfig struct {
	// NumWorkers defaults to 1 if <= 0
	NumWorkers int
	Input      <-chan *Item
	Output     chan<- *Item
	// RecordMetrics may be nil
	RecordMetrics MetricsRecorder
}

// NewWorkerPool creates a new worker pool. Workers block if the input or output
// channel is nil.
func NewWorkerPool(config WorkerPoolConfig) *WorkerPool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &WorkerPool{
		numWorkers:    numWorkers,
		input:         config.Input,
		output:        config.Output,
		recordMetrics: config.RecordMetrics,
	}
}

// Start starts the workers. Calling it more than once has no effect
func (p *WorkerPool) Start(ctx context.Context) {
	if p.started.Swap(true) {
		return
	}
	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop waits for all workers to complete. Workers exit once the input channel is
// closed and drained, or the context is done
func (p *WorkerPool) Stop() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.input:
			if !ok {
				return
			}

			err := item.process(ctx)

			// Cancellation is not a result of the item itself
			if p.recordMetrics != nil &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded) {
				p.recordMetrics(item, err)
			}

			select {
			case p.output <- item:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Run processes items on numWorkers workers and returns once every item has been
// processed or ctx is done. Items not reached before cancellation are left undone
func Run(
	ctx context.Context,
	numWorkers int,
	items []*Item,
	recordMetrics MetricsRecorder,
) {
	input := make(chan *Item, len(items))
	output := make(chan *Item, len(items))
	for _, item := range items {
		input <- item
	}
	close(input)
	pool := NewWorkerPool(WorkerPoolConfig{
		NumWorkers:    numWorkers,
		Input:         input,
		Output:        output,
		RecordMetrics: recordMetrics,
	})
	pool.Start(ctx)
	pool.Stop()
}
