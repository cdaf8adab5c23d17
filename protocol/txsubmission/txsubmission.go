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

// Package txsubmission submits signed transactions to a peer and tracks their commitment
package txsubmission

import (
	"time"
)

const ProtocolName = "tx-submission"

const (
	DefaultCommitTimeout = 10 * time.Second
	DefaultPollInterval  = 500 * time.Millisecond
)

// Config is used to configure the TxSubmission protocol instance
type Config struct {
	// Upper bound on how long Await waits for commitment when no timeout is given
	CommitTimeout time.Duration
	// Interval between status checks when commitment is tracked by polling
	PollInterval time.Duration
}

// TxSubmission protocol configuration option
type TxSubmissionOptionFunc func(*Config)

// NewConfig returns a new TxSubmission config object with the provided options
func NewConfig(options ...TxSubmissionOptionFunc) Config {
	c := Config{
		CommitTimeout: DefaultCommitTimeout,
		PollInterval:  DefaultPollInterval,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithCommitTimeout specifies the default commitment timeout
func WithCommitTimeout(timeout time.Duration) TxSubmissionOptionFunc {
	return func(c *Config) {
		c.CommitTimeout = timeout
	}
}

// WithPollInterval specifies the interval between status checks for the polling source
func WithPollInterval(interval time.Duration) TxSubmissionOptionFunc {
	return func(c *Config) {
		c.PollInterval = interval
	}
}
