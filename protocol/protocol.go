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

// Package protocol implements the HTTP transport shared by the transaction and query
// clients. Each request carries a unique request ID and is subject to the configured
// rate limit.
package protocol

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blinklabs-io/goiroha/metrics"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	EndpointTransaction = "/transaction"
	EndpointQuery       = "/query"
	EndpointHealth      = "/health"
	EndpointStatus      = "/status"
	EndpointEvents      = "/events"

	HeaderRequestId   = "X-Request-Id"
	HeaderContentType = "Content-Type"
	ContentTypeCbor   = "application/cbor"

	// Maximum response body we will read from a peer
	MaxResponseSize = 16 * 1024 * 1024

	// Upper bound on a single request, including reading the response
	DefaultCallTimeout = 30 * time.Second
)

// Protocol is the transport used by a single client
type Protocol struct {
	config ProtocolConfig
}

// ProtocolConfig is the configuration for a Protocol
type ProtocolConfig struct {
	Name        string
	PeerUrl     *url.URL
	HttpClient  *http.Client
	Logger      *slog.Logger
	Limiter     *rate.Limiter
	Metrics     *metrics.Metrics
	CallTimeout time.Duration // A zero value uses DefaultCallTimeout
}

// ProtocolOptions contains the options shared by every client built on a Protocol
type ProtocolOptions struct {
	PeerUrl     *url.URL
	HttpClient  *http.Client
	Logger      *slog.Logger
	Limiter     *rate.Limiter
	Metrics     *metrics.Metrics
	CallTimeout time.Duration
}

// New returns a new Protocol object
func New(config ProtocolConfig) *Protocol {
	if config.HttpClient == nil {
		config.HttpClient = http.DefaultClient
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = DefaultCallTimeout
	}
	return &Protocol{
		config: config,
	}
}

// Name returns the name of the client using the protocol
func (p *Protocol) Name() string {
	return p.config.Name
}

// Logger returns the protocol logger
func (p *Protocol) Logger() *slog.Logger {
	if p.config.Logger == nil {
		return slog.Default()
	}
	return p.config.Logger
}

// Metrics returns the metrics object for the protocol, which may be nil
func (p *Protocol) Metrics() *metrics.Metrics {
	return p.config.Metrics
}

// PeerUrl returns a copy of the peer URL
func (p *Protocol) PeerUrl() *url.URL {
	if p.config.PeerUrl == nil {
		return nil
	}
	tmpUrl := *p.config.PeerUrl
	return &tmpUrl
}

// Post sends a CBOR request body to the peer and returns the response body
func (p *Protocol) Post(
	ctx context.Context,
	endpoint string,
	params url.Values,
	body []byte,
) ([]byte, error) {
	return p.do(ctx, http.MethodPost, endpoint, params, body)
}

// Get fetches a resource from the peer and returns the response body
func (p *Protocol) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return p.do(ctx, http.MethodGet, endpoint, nil, nil)
}

func (p *Protocol) do(
	ctx context.Context,
	method string,
	endpoint string,
	params url.Values,
	body []byte,
) ([]byte, error) {
	if p.config.PeerUrl == nil {
		return nil, ErrNoPeerUrl
	}
	reqUrl := p.config.PeerUrl.JoinPath(endpoint)
	if len(params) > 0 {
		reqUrl.RawQuery = params.Encode()
	}
	callCtx, cancel := context.WithTimeout(ctx, p.config.CallTimeout)
	defer cancel()
	if p.config.Limiter != nil {
		if err := p.config.Limiter.Wait(callCtx); err != nil {
			return nil, NetworkError{
				Method: method,
				Url:    reqUrl.String(),
				Err:    err,
			}
		}
	}
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(
		callCtx,
		method,
		reqUrl.String(),
		bodyReader,
	)
	if err != nil {
		return nil, NetworkError{Method: method, Url: reqUrl.String(), Err: err}
	}
	requestId := uuid.NewString()
	req.Header.Set(HeaderRequestId, requestId)
	req.Header.Set("Accept", ContentTypeCbor)
	if body != nil {
		req.Header.Set(HeaderContentType, ContentTypeCbor)
	}
	p.Logger().
		Debug("sending request",
			"component", "network",
			"protocol", p.config.Name,
			"method", method,
			"endpoint", endpoint,
			"request_id", requestId,
		)
	startTime := time.Now()
	resp, err := p.config.HttpClient.Do(req)
	if err != nil {
		p.config.Metrics.RecordRequest(endpoint, 0, time.Since(startTime))
		return nil, NetworkError{
			Method:    method,
			Url:       reqUrl.String(),
			RequestId: requestId,
			Err:       callError(callCtx, err),
		}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	p.config.Metrics.RecordRequest(endpoint, resp.StatusCode, time.Since(startTime))
	if err != nil {
		return nil, NetworkError{
			Method:    method,
			Url:       reqUrl.String(),
			RequestId: requestId,
			Err:       callError(callCtx, err),
		}
	}
	if len(respBody) > MaxResponseSize {
		return nil, NetworkError{
			Method:    method,
			Url:       reqUrl.String(),
			RequestId: requestId,
			Err:       ErrResponseTooLarge,
		}
	}
	p.Logger().
		Debug("received response",
			"component", "network",
			"protocol", p.config.Name,
			"endpoint", endpoint,
			"request_id", requestId,
			"status", resp.StatusCode,
			"size", len(respBody),
		)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Url:        reqUrl.String(),
			RequestId:  requestId,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}

// callError makes sure an expired or canceled call can be matched with errors.Is
func callError(callCtx context.Context, err error) error {
	ctxErr := callCtx.Err()
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ctxErr, err)
}
