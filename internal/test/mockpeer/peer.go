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

// Package mockpeer provides an in-memory ledger peer for tests. It serves the transaction,
// query and health endpoints plus a telemetry endpoint with peer status and a pipeline
// event stream. Transactions are applied asynchronously after admission.
package mockpeer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/events"
	"github.com/gorilla/websocket"
)

const (
	maxRequestSize  = 1024 * 1024
	applyQueueSize  = 64
	eventBufferSize = 64
	filterTimeout   = 5 * time.Second
	writeTimeout    = 5 * time.Second
)

// PeerOptionFunc is a type that represents functions that modify the Peer config
type PeerOptionFunc func(*Peer)

// WithCommitDelay specifies how long each admitted transaction waits before it is applied
func WithCommitDelay(delay time.Duration) PeerOptionFunc {
	return func(p *Peer) {
		p.commitDelay = delay
	}
}

// WithDropEvents stops the peer from sending pipeline events. Transactions are still applied
func WithDropEvents() PeerOptionFunc {
	return func(p *Peer) {
		p.dropEvents = true
	}
}

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) PeerOptionFunc {
	return func(p *Peer) {
		p.logger = logger
	}
}

type eventSubscriber struct {
	filter    events.Filter
	eventChan chan events.PipelineEvent
}

// Peer is a mock ledger peer
type Peer struct {
	commitDelay     time.Duration
	dropEvents      bool
	logger          *slog.Logger
	mutex           sync.Mutex
	state           *State
	txs             map[ledger.Hash]ledger.TransactionStatus
	blocks          uint64
	txsAccepted     uint64
	txsRejected     uint64
	subscribers     map[*eventSubscriber]struct{}
	applyChan       chan *ledger.SignedTransaction
	doneChan        chan struct{}
	closed          bool
	onceClose       sync.Once
	waitGroup       sync.WaitGroup
	startTime       time.Time
	upgrader        websocket.Upgrader
	peerServer      *httptest.Server
	telemetryServer *httptest.Server
}

// New starts a mock peer whose genesis account is controlled by the provided key
func New(
	genesis ledger.AccountId,
	genesisKey ledger.PublicKey,
	options ...PeerOptionFunc,
) *Peer {
	p := &Peer{
		state:       NewState(genesis, genesisKey),
		txs:         map[ledger.Hash]ledger.TransactionStatus{},
		subscribers: map[*eventSubscriber]struct{}{},
		applyChan:   make(chan *ledger.SignedTransaction, applyQueueSize),
		doneChan:    make(chan struct{}),
		startTime:   time.Now(),
	}
	for _, option := range options {
		option(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	peerMux := http.NewServeMux()
	peerMux.HandleFunc("POST "+protocol.EndpointTransaction, p.handleTransaction)
	peerMux.HandleFunc("POST "+protocol.EndpointQuery, p.handleQuery)
	peerMux.HandleFunc("GET "+protocol.EndpointHealth, p.handleHealth)
	telemetryMux := http.NewServeMux()
	telemetryMux.HandleFunc("GET "+protocol.EndpointStatus, p.handleStatus)
	telemetryMux.HandleFunc("GET "+protocol.EndpointEvents, p.handleEvents)
	p.peerServer = httptest.NewServer(peerMux)
	p.telemetryServer = httptest.NewServer(telemetryMux)
	p.waitGroup.Add(1)
	go p.applyLoop()
	return p
}

// PeerUrl returns the base URL of the transaction and query endpoints
func (p *Peer) PeerUrl() string {
	return p.peerServer.URL
}

// TelemetryUrl returns the base URL of the telemetry endpoint
func (p *Peer) TelemetryUrl() string {
	return p.telemetryServer.URL
}

// TransactionStatus returns the status of a submitted transaction
func (p *Peer) TransactionStatus(hash ledger.Hash) (ledger.TransactionStatus, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	status, ok := p.txs[hash]
	return status, ok
}

// Close stops the peer. It waits for the apply loop and every event stream to finish
func (p *Peer) Close() {
	p.onceClose.Do(func() {
		p.mutex.Lock()
		p.closed = true
		p.mutex.Unlock()
		close(p.doneChan)
		p.waitGroup.Wait()
		p.peerServer.Close()
		p.telemetryServer.Close()
	})
}

func (p *Peer) applyLoop() {
	defer p.waitGroup.Done()
	for {
		select {
		case <-p.doneChan:
			return
		case tx := <-p.applyChan:
			if p.commitDelay > 0 {
				select {
				case <-p.doneChan:
					return
				case <-time.After(p.commitDelay):
				}
			}
			p.applyTransaction(tx)
		}
	}
}

func (p *Peer) applyTransaction(tx *ledger.SignedTransaction) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	hash := tx.Hash()
	next, err := p.state.Apply(tx)
	if err != nil {
		p.txsRejected++
		p.logger.Debug("transaction rejected",
			"component", "mockpeer",
			"hash", hash.String(),
			"reason", err.Error(),
		)
		p.setStatusLocked(hash, ledger.TxStatusRejected, err.Error())
		return
	}
	p.state = next
	p.blocks++
	p.txsAccepted++
	p.setStatusLocked(hash, ledger.TxStatusCommitted, "")
}

func (p *Peer) setStatusLocked(hash ledger.Hash, status ledger.TxStatus, reason string) {
	p.txs[hash] = ledger.TransactionStatus{
		Hash:   hash,
		Status: status,
		Reason: reason,
	}
	if p.dropEvents {
		return
	}
	event := events.PipelineEvent{
		EntityKind: events.EntityKindTransaction,
		Status:     status,
		Hash:       hash,
		Reason:     reason,
	}
	for sub := range p.subscribers {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.eventChan <- event:
		default:
			p.logger.Warn("dropping event for slow subscriber",
				"component", "mockpeer",
				"hash", hash.String(),
			)
		}
	}
}

func (p *Peer) handleTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tx := &ledger.SignedTransaction{}
	if _, err := cbor.Decode(body, tx); err != nil {
		http.Error(w, "decode transaction: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Verify(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hash := tx.Hash()
	p.mutex.Lock()
	if _, ok := p.txs[hash]; ok {
		p.mutex.Unlock()
		http.Error(w, "transaction already submitted", http.StatusConflict)
		return
	}
	p.setStatusLocked(hash, ledger.TxStatusPending, "")
	p.mutex.Unlock()
	select {
	case p.applyChan <- tx:
	case <-p.doneChan:
		http.Error(w, "peer is shutting down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (p *Peer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("Healthy"))
}

type statusUptime struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

type statusResponse struct {
	Peers       uint64       `json:"peers"`
	Blocks      uint64       `json:"blocks"`
	TxsAccepted uint64       `json:"txs_accepted"`
	TxsRejected uint64       `json:"txs_rejected"`
	Uptime      statusUptime `json:"uptime"`
}

func (p *Peer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	p.mutex.Lock()
	uptime := time.Since(p.startTime)
	resp := statusResponse{
		Blocks:      p.blocks,
		TxsAccepted: p.txsAccepted,
		TxsRejected: p.txsRejected,
		Uptime: statusUptime{
			Secs:  uint64(uptime / time.Second), // #nosec G115
			Nanos: uint32(uptime % time.Second), // #nosec G115
		},
	}
	p.mutex.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (p *Peer) handleEvents(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		http.Error(w, "peer is shutting down", http.StatusServiceUnavailable)
		return
	}
	p.waitGroup.Add(1)
	p.mutex.Unlock()
	defer p.waitGroup.Done()
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		return
	}
	if err := p.serveEvents(conn); err != nil {
		p.logger.Debug("event stream ended",
			"component", "mockpeer",
			"error", err.Error(),
		)
	}
}

func (p *Peer) serveEvents(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(filterTimeout))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return err
	}
	if msgType != websocket.BinaryMessage {
		conn.Close()
		return errors.New("subscription is not a binary message")
	}
	var filter events.Filter
	if _, err := cbor.Decode(data, &filter); err != nil {
		conn.Close()
		return fmt.Errorf("decode subscription: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	sub := &eventSubscriber{
		filter:    filter,
		eventChan: make(chan events.PipelineEvent, eventBufferSize),
	}
	p.mutex.Lock()
	p.subscribers[sub] = struct{}{}
	// Replay the known status so a subscriber racing its own submission sees it
	if status, ok := p.txs[filter.Hash]; ok && !p.dropEvents {
		sub.eventChan <- events.PipelineEvent{
			EntityKind: events.EntityKindTransaction,
			Status:     status.Status,
			Hash:       status.Hash,
			Reason:     status.Reason,
		}
	}
	p.mutex.Unlock()
	// Watch for the client going away
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer func() {
		p.mutex.Lock()
		delete(p.subscribers, sub)
		p.mutex.Unlock()
		conn.Close()
		<-readDone
	}()
	for {
		select {
		case <-readDone:
			return nil
		case <-p.doneChan:
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeTimeout),
			)
			return nil
		case event := <-sub.eventChan:
			eventCbor, err := cbor.Encode(&event)
			if err != nil {
				return err
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, eventCbor); err != nil {
				return err
			}
		}
	}
}
