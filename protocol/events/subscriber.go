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

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/gorilla/websocket"
)

const (
	DefaultHandshakeTimeout = 10 * time.Second

	eventBufferSize   = 16
	closeWriteTimeout = time.Second
)

var (
	ErrStreamClosed   = errors.New("event stream closed")
	ErrNoTelemetryUrl = errors.New("no telemetry URL configured")
)

type Config struct {
	TelemetryUrl *url.URL
	// Optional, a dialer with DefaultHandshakeTimeout is used when not set
	Dialer *websocket.Dialer
	Logger *slog.Logger
}

// Subscriber opens event streams against a telemetry endpoint
type Subscriber struct {
	config    Config
	eventsUrl string
}

func NewSubscriber(cfg Config) (*Subscriber, error) {
	if cfg.TelemetryUrl == nil {
		return nil, ErrNoTelemetryUrl
	}
	eventsUrl := cfg.TelemetryUrl.JoinPath(protocol.EndpointEvents)
	switch eventsUrl.Scheme {
	case "http":
		eventsUrl.Scheme = "ws"
	case "https":
		eventsUrl.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf(
			"unsupported telemetry URL scheme: %s",
			eventsUrl.Scheme,
		)
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &websocket.Dialer{
			HandshakeTimeout: DefaultHandshakeTimeout,
		}
	}
	return &Subscriber{
		config:    cfg,
		eventsUrl: eventsUrl.String(),
	}, nil
}

func (s *Subscriber) Logger() *slog.Logger {
	if s.config.Logger == nil {
		return slog.Default()
	}
	return s.config.Logger
}

// Url returns the WebSocket URL used for subscriptions
func (s *Subscriber) Url() string {
	return s.eventsUrl
}

// Subscribe opens a new connection and sends the filter. The returned stream must be closed.
func (s *Subscriber) Subscribe(
	ctx context.Context,
	filter Filter,
) (*Stream, error) {
	conn, resp, err := s.config.Dialer.DialContext(ctx, s.eventsUrl, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, protocol.NetworkError{
			Method: "GET",
			Url:    s.eventsUrl,
			Err:    fmt.Errorf("websocket dial: %w", err),
		}
	}
	filterCbor, err := cbor.Encode(&filter)
	if err != nil {
		conn.Close()
		return nil, protocol.SerializationError{Op: "encode event filter", Err: err}
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, filterCbor); err != nil {
		conn.Close()
		return nil, protocol.NetworkError{
			Method: "GET",
			Url:    s.eventsUrl,
			Err:    fmt.Errorf("send event filter: %w", err),
		}
	}
	stream := &Stream{
		conn:      conn,
		filter:    filter,
		logger:    s.Logger(),
		eventsUrl: s.eventsUrl,
		eventChan: make(chan PipelineEvent, eventBufferSize),
		doneChan:  make(chan struct{}),
	}
	stream.logger.Debug("subscribed to pipeline events",
		"component", "network",
		"protocol", ProtocolName,
		"entity_kind", filter.EntityKind.String(),
		"hash", filter.Hash.String(),
	)
	stream.waitGroup.Add(1)
	go stream.readLoop()
	return stream, nil
}

// Stream delivers the events matching a filter. It owns one connection and one reader goroutine.
type Stream struct {
	conn      *websocket.Conn
	filter    Filter
	logger    *slog.Logger
	eventsUrl string
	eventChan chan PipelineEvent
	doneChan  chan struct{}
	waitGroup sync.WaitGroup
	onceClose sync.Once
	closeErr  error
	errMutex  sync.Mutex
	err       error
}

func (s *Stream) readLoop() {
	defer s.waitGroup.Done()
	defer close(s.eventChan)
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.doneChan:
				// Closed locally
			default:
				s.setErr(
					protocol.NetworkError{
						Method: "GET",
						Url:    s.eventsUrl,
						Err:    fmt.Errorf("read event: %w", err),
					},
				)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		var event PipelineEvent
		if _, err := cbor.Decode(data, &event); err != nil {
			s.setErr(
				protocol.SerializationError{Op: "decode pipeline event", Err: err},
			)
			return
		}
		if !s.filter.Matches(event) {
			continue
		}
		s.logger.Debug("received pipeline event",
			"component", "network",
			"protocol", ProtocolName,
			"hash", event.Hash.String(),
			"status", event.Status.String(),
		)
		select {
		case s.eventChan <- event:
		case <-s.doneChan:
			return
		}
	}
}

func (s *Stream) setErr(err error) {
	s.errMutex.Lock()
	defer s.errMutex.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Err returns the error that ended the stream, if any
func (s *Stream) Err() error {
	s.errMutex.Lock()
	defer s.errMutex.Unlock()
	return s.err
}

// Next blocks until the next matching event arrives, the context is done, or the stream ends
func (s *Stream) Next(ctx context.Context) (PipelineEvent, error) {
	select {
	case <-ctx.Done():
		return PipelineEvent{}, ctx.Err()
	case event, ok := <-s.eventChan:
		if !ok {
			if err := s.Err(); err != nil {
				return PipelineEvent{}, err
			}
			return PipelineEvent{}, ErrStreamClosed
		}
		return event, nil
	}
}

// Close shuts down the connection and waits for the reader goroutine to exit
func (s *Stream) Close() error {
	s.onceClose.Do(func() {
		close(s.doneChan)
		// Let the server know we're going away
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout),
		)
		s.closeErr = s.conn.Close()
		s.waitGroup.Wait()
		s.logger.Debug("closed pipeline event stream",
			"component", "network",
			"protocol", ProtocolName,
			"hash", s.filter.Hash.String(),
		)
	})
	return s.closeErr
}
