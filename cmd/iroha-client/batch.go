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

package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	iroha "github.com/blinklabs-io/goiroha"
	"github.com/blinklabs-io/goiroha/batch"
)

type batchItemJson struct {
	Operation string `json:"operation"`
	outcomeJson
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration,omitempty"`
}

type batchStepJson struct {
	Step       string          `json:"step"`
	Operations []batchItemJson `json:"operations"`
}

func runBatch(c *cli.Context) error {
	m := getMetadata(c)
	file, err := requiredString(c, "file")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return err
	}
	plan, err := batch.ParsePlan(data)
	if err != nil {
		return err
	}
	client, err := m.client()
	if err != nil {
		return err
	}
	defer client.Close()

	var callOptions []iroha.CallOptionFunc
	if c.IsSet("timeout") {
		callOptions = append(callOptions, iroha.WithCommitTimeout(c.Duration("timeout")))
	}
	results, execErr := batch.Execute(
		m.ctx,
		client,
		plan,
		batch.WithWorkers(c.Int("workers")),
		batch.WithCallOptions(callOptions...),
		batch.WithLogger(m.logger),
		batch.WithMetricsRecorder(func(item *batch.Item, err error) {
			m.logger.Debug(
				"batch operation finished",
				"component", "batch",
				"operation", item.Name(),
				"duration", item.Duration(),
				"error", err,
			)
		}),
	)
	out := make([]batchStepJson, 0, len(results))
	for _, result := range results {
		step := batchStepJson{Step: result.Step}
		for _, item := range result.Items {
			entry := batchItemJson{Operation: item.Name()}
			if item.Done() {
				outcome := item.Outcome()
				if !outcome.Hash.IsZero() {
					entry.Hash = outcome.Hash.String()
					entry.Status = outcome.Status.String()
					entry.Reason = outcome.Reason
				}
				entry.Duration = item.Duration().String()
			}
			if err := item.Err(); err != nil {
				entry.Error = err.Error()
			}
			step.Operations = append(step.Operations, entry)
		}
		out = append(out, step)
	}
	if err := printJson(m.w, out); err != nil {
		return err
	}
	return execErr
}
