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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/tidwall/gjson"
)

var ErrNoTelemetry = errors.New("no telemetry URL configured")

// Status is the peer status reported by the telemetry endpoint
type Status struct {
	Peers       uint64
	Blocks      uint64
	TxsAccepted uint64
	TxsRejected uint64
	Uptime      time.Duration
}

// ParseStatus decodes a telemetry status document
func ParseStatus(data []byte) (Status, error) {
	if !gjson.ValidBytes(data) {
		return Status{}, errors.New("status is not valid JSON")
	}
	result := gjson.ParseBytes(data)
	for _, field := range []string{"peers", "blocks", "txs_accepted", "txs_rejected"} {
		if !result.Get(field).Exists() {
			return Status{}, fmt.Errorf("status is missing field %q", field)
		}
	}
	uptime := result.Get("uptime")
	ret := Status{
		Peers:       result.Get("peers").Uint(),
		Blocks:      result.Get("blocks").Uint(),
		TxsAccepted: result.Get("txs_accepted").Uint(),
		TxsRejected: result.Get("txs_rejected").Uint(),
		// Uptime is reported as {"secs": N, "nanos": N}
		Uptime: time.Duration(uptime.Get("secs").Int())*time.Second +
			time.Duration(uptime.Get("nanos").Int()),
	}
	return ret, nil
}

// Status fetches the peer status from the telemetry endpoint
func (c *Client) Status(ctx context.Context) (Status, error) {
	if c.telemetry == nil {
		return Status{}, ErrNoTelemetry
	}
	body, err := c.telemetry.Get(ctx, protocol.EndpointStatus)
	if err != nil {
		return Status{}, err
	}
	status, err := ParseStatus(body)
	if err != nil {
		return Status{}, protocol.SerializationError{Op: "decode status", Err: err}
	}
	return status, nil
}

// Health checks that the peer is accepting requests
func (c *Client) Health(ctx context.Context) error {
	_, err := c.peer.Get(ctx, protocol.EndpointHealth)
	return err
}
