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

package iroha

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// ClientOptionFunc is a type that represents functions that modify the Client config
type ClientOptionFunc func(*Client)

// WithPeerUrl specifies the base URL of the peer that accepts transactions and queries
func WithPeerUrl(peerUrl string) ClientOptionFunc {
	return func(c *Client) {
		c.peerUrlRaw = peerUrl
	}
}

// WithTelemetryUrl specifies the base URL of the peer's telemetry endpoint. Commitment is
// tracked over its event stream. When none is provided, commitment is tracked by polling
// the peer for the transaction status.
func WithTelemetryUrl(telemetryUrl string) ClientOptionFunc {
	return func(c *Client) {
		c.telemetryUrlRaw = telemetryUrl
	}
}

// WithAdmin specifies the account and signer used when a call does not provide its own
func WithAdmin(account ledger.AccountId, signer ledger.Signer) ClientOptionFunc {
	return func(c *Client) {
		c.admin = ledger.Authority{Account: account, Signer: signer}
	}
}

// WithDefaultCommitTimeout specifies how long calls wait for commitment when they do not
// provide their own timeout. The default is 10 seconds
func WithDefaultCommitTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.commitTimeout = timeout
	}
}

// WithCallTimeout bounds each request sent to the peer, including reading the response.
// The default is 30 seconds
func WithCallTimeout(timeout time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.callTimeout = timeout
	}
}

// WithPollInterval specifies the interval between status checks when no telemetry URL is configured
func WithPollInterval(interval time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.pollInterval = interval
	}
}

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHttpClient specifies the HTTP client to use. If none is provided, one is created
// and its idle connections are closed by Close()
func WithHttpClient(httpClient *http.Client) ClientOptionFunc {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithWebsocketDialer specifies the dialer used for event stream connections
func WithWebsocketDialer(dialer *websocket.Dialer) ClientOptionFunc {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithRateLimit limits the rate of requests sent to the peer. Requests wait for a token
// rather than fail
func WithRateLimit(limit rate.Limit, burst int) ClientOptionFunc {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithPrometheusRegistry specifies where client metrics are registered. Metrics are
// collected but not registered when none is provided
func WithPrometheusRegistry(reg prometheus.Registerer) ClientOptionFunc {
	return func(c *Client) {
		c.promRegistry = reg
	}
}
