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

package common

import (
	"errors"
	"log/slog"

	iroha "github.com/blinklabs-io/goiroha"
)

// NewClient creates a client from cfg. The configured account, if any, becomes the
// default authority
func NewClient(cfg *Config, logger *slog.Logger) (*iroha.Client, error) {
	options := []iroha.ClientOptionFunc{
		iroha.WithPeerUrl(cfg.PeerUrl),
		iroha.WithDefaultCommitTimeout(cfg.CommitTimeout),
		iroha.WithCallTimeout(cfg.CallTimeout),
	}
	if logger != nil {
		options = append(options, iroha.WithLogger(logger))
	}
	if cfg.TelemetryUrl != "" {
		options = append(options, iroha.WithTelemetryUrl(cfg.TelemetryUrl))
	}
	account, kp, err := cfg.Authority()
	switch {
	case err == nil:
		options = append(options, iroha.WithAdmin(account, kp))
	case errors.Is(err, ErrNoAccount):
	default:
		return nil, err
	}
	return iroha.NewClient(options...)
}
