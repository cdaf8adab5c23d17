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

// Package iroha is a client for a permissioned ledger peer. It registers domains, accounts
// and assets, moves value between accounts and queries ledger state, waiting for
// transactions to be committed.
package iroha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/metrics"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/events"
	"github.com/blinklabs-io/goiroha/protocol/query"
	"github.com/blinklabs-io/goiroha/protocol/txsubmission"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const telemetryProtocolName = "telemetry"

// The Client type represents a connection to a ledger peer
type Client struct {
	peerUrlRaw      string
	telemetryUrlRaw string
	admin           ledger.Authority
	commitTimeout   time.Duration
	callTimeout     time.Duration
	pollInterval    time.Duration
	logger          *slog.Logger
	httpClient      *http.Client
	ownHttpClient   bool
	dialer          *websocket.Dialer
	limiter         *rate.Limiter
	promRegistry    prometheus.Registerer
	// Populated by NewClient
	peerUrl      *url.URL
	telemetryUrl *url.URL
	metrics      *metrics.Metrics
	subscriber   *events.Subscriber
	query        *query.Client
	telemetry    *protocol.Protocol
	peer         *protocol.Protocol
}

// NewClient returns a new Client object with the specified options. A peer URL is required
func NewClient(options ...ClientOptionFunc) (*Client, error) {
	c := &Client{
		commitTimeout: txsubmission.DefaultCommitTimeout,
		callTimeout:   protocol.DefaultCallTimeout,
		pollInterval:  txsubmission.DefaultPollInterval,
	}
	// Apply provided options functions
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.peerUrlRaw == "" {
		return nil, protocol.ErrNoPeerUrl
	}
	peerUrl, err := parseBaseUrl(c.peerUrlRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid peer URL: %w", err)
	}
	c.peerUrl = peerUrl
	if c.telemetryUrlRaw != "" {
		telemetryUrl, err := parseBaseUrl(c.telemetryUrlRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid telemetry URL: %w", err)
		}
		c.telemetryUrl = telemetryUrl
		subscriber, err := events.NewSubscriber(
			events.Config{
				TelemetryUrl: telemetryUrl,
				Dialer:       c.dialer,
				Logger:       c.logger,
			},
		)
		if err != nil {
			return nil, err
		}
		c.subscriber = subscriber
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
		c.ownHttpClient = true
	}
	m, err := metrics.New(c.promRegistry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	c.metrics = m
	c.query = query.NewClient(c.protocolOptions())
	c.peer = protocol.New(
		protocol.ProtocolConfig{
			Name:        "peer",
			PeerUrl:     c.peerUrl,
			HttpClient:  c.httpClient,
			Logger:      c.logger,
			Limiter:     c.limiter,
			Metrics:     c.metrics,
			CallTimeout: c.callTimeout,
		},
	)
	if c.telemetryUrl != nil {
		c.telemetry = protocol.New(
			protocol.ProtocolConfig{
				Name:        telemetryProtocolName,
				PeerUrl:     c.telemetryUrl,
				HttpClient:  c.httpClient,
				Logger:      c.logger,
				Metrics:     c.metrics,
				CallTimeout: c.callTimeout,
			},
		)
	}
	c.logger.Debug("client created",
		"component", "client",
		"peer", c.peerUrl.String(),
		"telemetry", c.telemetryUrlRaw,
		"account", c.admin.Account.String(),
	)
	return c, nil
}

func parseBaseUrl(rawUrl string) (*url.URL, error) {
	ret, err := url.Parse(rawUrl)
	if err != nil {
		return nil, err
	}
	if ret.Scheme == "" || ret.Host == "" {
		return nil, fmt.Errorf("URL must be absolute: %s", rawUrl)
	}
	return ret, nil
}

func (c *Client) protocolOptions() protocol.ProtocolOptions {
	return protocol.ProtocolOptions{
		PeerUrl:     c.peerUrl,
		HttpClient:  c.httpClient,
		Logger:      c.logger,
		Limiter:     c.limiter,
		Metrics:     c.metrics,
		CallTimeout: c.callTimeout,
	}
}

// Metrics returns the client metrics
func (c *Client) Metrics() *metrics.Metrics {
	return c.metrics
}

// Query returns the query client
func (c *Client) Query() *query.Client {
	return c.query
}

// Admin returns the account used when a call does not provide its own
func (c *Client) Admin() ledger.AccountId {
	return c.admin.Account
}

// Close releases idle network connections held by the client. Handles returned by Submit
// must be closed or awaited separately
func (c *Client) Close() error {
	if c.ownHttpClient {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// txSubmission returns a TxSubmission client whose commitment source acts for the
// provided authority. Polling needs a signed query, so the source cannot be shared
// between callers with different authorities.
func (c *Client) txSubmission(authority ledger.Authority) *txsubmission.Client {
	txConfig := txsubmission.NewConfig(
		txsubmission.WithCommitTimeout(c.commitTimeout),
		txsubmission.WithPollInterval(c.pollInterval),
	)
	var source txsubmission.EventSource
	if c.subscriber != nil {
		source = txsubmission.NewWebsocketSource(c.subscriber)
	} else {
		source = txsubmission.NewPollingSource(
			c.pollingStatusFunc(authority),
			c.pollInterval,
		)
	}
	return txsubmission.NewClient(c.protocolOptions(), source, &txConfig)
}

func (c *Client) pollingStatusFunc(authority ledger.Authority) txsubmission.StatusFunc {
	return func(ctx context.Context, hash ledger.Hash) (ledger.TransactionStatus, error) {
		status, err := c.query.FindTransactionByHash(ctx, authority, hash)
		if err != nil {
			// The peer has not seen the transaction yet
			if errors.Is(err, query.ErrNotFound) {
				return ledger.TransactionStatus{
					Hash:   hash,
					Status: ledger.TxStatusPending,
				}, nil
			}
			return ledger.TransactionStatus{}, err
		}
		return status, nil
	}
}
