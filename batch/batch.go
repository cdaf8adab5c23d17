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

// Package batch submits plans of independent transactions concurrently. Each step of a
// plan is run on a worker pool and must be fully committed before the next step starts.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	iroha "github.com/blinklabs-io/goiroha"
)

const DefaultWorkers = 4

type Config struct {
	Workers       int
	RecordMetrics MetricsRecorder
	CallOptions   []iroha.CallOptionFunc
	Logger        *slog.Logger
}

type ConfigOptionFunc func(*Config)

func NewConfig(options ...ConfigOptionFunc) Config {
	c := Config{
		Workers: DefaultWorkers,
	}
	for _, option := range options {
		option(&c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func WithWorkers(workers int) ConfigOptionFunc {
	return func(c *Config) {
		c.Workers = workers
	}
}

func WithMetricsRecorder(recordMetrics MetricsRecorder) ConfigOptionFunc {
	return func(c *Config) {
		c.RecordMetrics = recordMetrics
	}
}

// WithCallOptions sets options applied to every operation of the plan
func WithCallOptions(options ...iroha.CallOptionFunc) ConfigOptionFunc {
	return func(c *Config) {
		c.CallOptions = options
	}
}

func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.Logger = logger
	}
}

// StepResult holds the processed items of one step in plan order
type StepResult struct {
	Step  string
	Items []*Item
}

// StepError reports a step in which at least one operation was not committed.
// Later steps are not run
type StepError struct {
	Step   string
	Failed int
	Total  int
}

func (e StepError) Error() string {
	return fmt.Sprintf(
		"step %s: %d of %d operations failed",
		e.Step,
		e.Failed,
		e.Total,
	)
}

// Execute runs plan with client. It returns the results of every step that was
// started, including the failing one
func Execute(
	ctx context.Context,
	client *iroha.Client,
	plan *Plan,
	options ...ConfigOptionFunc,
) ([]StepResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	cfg := NewConfig(options...)
	results := make([]StepResult, 0, len(plan.Steps))
	var seq uint64
	for i, step := range plan.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%d", i)
		}
		items := make([]*Item, 0, len(step.Operations))
		for _, op := range step.Operations {
			run, err := op.RunFunc(client, cfg.CallOptions...)
			if err != nil {
				return results, err
			}
			items = append(items, NewItem(op.String(), seq, run))
			seq++
		}
		cfg.Logger.Debug(
			"running batch step",
			"component", "batch",
			"step", name,
			"operations", len(items),
		)
		Run(ctx, cfg.Workers, items, cfg.RecordMetrics)
		results = append(results, StepResult{Step: name, Items: items})
		if err := ctx.Err(); err != nil {
			return results, err
		}
		failed := 0
		for _, item := range items {
			if !item.Done() || item.Err() != nil {
				failed++
			}
		}
		if failed > 0 {
			return results, StepError{Step: name, Failed: failed, Total: len(items)}
		}
	}
	return results, nil
}
