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
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/metrics"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/events"
)

var ErrNoEventSource = errors.New("no commitment event source configured")

// Client implements the TxSubmission client
type Client struct {
	*protocol.Protocol
	config *Config
	source EventSource
}

// NewClient returns a new TxSubmission client object
func NewClient(
	protoOptions protocol.ProtocolOptions,
	source EventSource,
	cfg *Config,
) *Client {
	if cfg == nil {
		tmpCfg := NewConfig()
		cfg = &tmpCfg
	}
	c := &Client{
		config: cfg,
		source: source,
	}
	// Configure underlying Protocol
	protoConfig := protocol.ProtocolConfig{
		Name:        ProtocolName,
		PeerUrl:     protoOptions.PeerUrl,
		HttpClient:  protoOptions.HttpClient,
		Logger:      protoOptions.Logger,
		Limiter:     protoOptions.Limiter,
		Metrics:     protoOptions.Metrics,
		CallTimeout: protoOptions.CallTimeout,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// Submit sends a signed transaction to the peer and returns a handle for awaiting its
// commitment. The commitment subscription is opened before the transaction is sent.
func (c *Client) Submit(
	ctx context.Context,
	tx *ledger.SignedTransaction,
) (*Handle, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	if c.source == nil {
		return nil, ErrNoEventSource
	}
	hash := tx.Hash()
	txCbor, err := cbor.Encode(tx)
	if err != nil {
		return nil, protocol.SerializationError{Op: "encode transaction", Err: err}
	}
	stream, err := c.source.Subscribe(ctx, hash)
	if err != nil {
		return nil, err
	}
	c.Protocol.Logger().
		Debug("submitting transaction",
			"component", "network",
			"protocol", ProtocolName,
			"hash", hash.String(),
			"size", len(txCbor),
		)
	submitTime := time.Now()
	if _, err := c.Post(ctx, protocol.EndpointTransaction, nil, txCbor); err != nil {
		_ = stream.Close()
		var statusErr *protocol.StatusError
		if errors.As(err, &statusErr) && statusErr.ClientError() {
			c.Metrics().RecordReject()
			return nil, TransactionRejectedError{
				Hash:   hash,
				Reason: statusErr.Body,
			}
		}
		return nil, err
	}
	c.Metrics().RecordSubmit()
	return &Handle{
		hash:          hash,
		stream:        stream,
		protocol:      c.Protocol,
		metrics:       c.Metrics(),
		commitTimeout: c.config.CommitTimeout,
		submitTime:    submitTime,
	}, nil
}

// Outcome is the final status of an awaited transaction
type Outcome struct {
	Hash   ledger.Hash
	Status ledger.TxStatus
	Reason string
}

// Handle tracks the commitment of one submitted transaction. It owns one subscription,
// which is released when Await returns or Close is called.
type Handle struct {
	hash          ledger.Hash
	stream        EventStream
	protocol      *protocol.Protocol
	metrics       *metrics.Metrics
	commitTimeout time.Duration
	submitTime    time.Time
	awaiting      atomic.Bool
	closed        atomic.Bool
	onceClose     sync.Once
	closeErr      error
}

func (h *Handle) Hash() ledger.Hash {
	return h.hash
}

// Await blocks until the transaction is committed or rejected, the timeout elapses, or the
// context is done. A timeout of zero uses the configured commit timeout. A timeout yields
// CommitmentTimeoutError, which does not mean the transaction failed. Await may be called once.
func (h *Handle) Await(ctx context.Context, timeout time.Duration) (Outcome, error) {
	if h.closed.Load() || !h.awaiting.CompareAndSwap(false, true) {
		return Outcome{}, ErrHandleClosed
	}
	defer h.Close()
	if timeout <= 0 {
		timeout = h.commitTimeout
	}
	awaitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		event, err := h.stream.Next(awaitCtx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}
			if errors.Is(awaitCtx.Err(), context.DeadlineExceeded) {
				h.metrics.RecordTimeout()
				h.protocol.Logger().
					Debug("transaction commitment timed out",
						"component", "network",
						"protocol", ProtocolName,
						"hash", h.hash.String(),
						"timeout", timeout.String(),
					)
				return Outcome{}, CommitmentTimeoutError{
					Hash:    h.hash,
					Timeout: timeout,
				}
			}
			if h.closed.Load() && errors.Is(err, events.ErrStreamClosed) {
				return Outcome{}, ErrHandleClosed
			}
			return Outcome{}, err
		}
		if event.Hash != h.hash {
			continue
		}
		switch event.Status {
		case ledger.TxStatusPending:
			continue
		case ledger.TxStatusCommitted:
			h.metrics.RecordCommit(time.Since(h.submitTime))
			h.protocol.Logger().
				Debug("transaction committed",
					"component", "network",
					"protocol", ProtocolName,
					"hash", h.hash.String(),
				)
			return Outcome{Hash: h.hash, Status: event.Status}, nil
		case ledger.TxStatusRejected:
			h.metrics.RecordReject()
			h.protocol.Logger().
				Debug("transaction rejected",
					"component", "network",
					"protocol", ProtocolName,
					"hash", h.hash.String(),
					"reason", event.Reason,
				)
			return Outcome{
					Hash:   h.hash,
					Status: event.Status,
					Reason: event.Reason,
				}, TransactionRejectedError{
					Hash:   h.hash,
					Reason: event.Reason,
				}
		default:
			return Outcome{}, fmt.Errorf(
				"unknown transaction status: %d",
				event.Status,
			)
		}
	}
}

// Close releases the subscription without waiting for commitment
func (h *Handle) Close() error {
	h.onceClose.Do(func() {
		h.closed.Store(true)
		h.closeErr = h.stream.Close()
	})
	return h.closeErr
}
