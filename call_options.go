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
	"maps"
	"time"

	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/ledger/predicate"
	"github.com/blinklabs-io/goiroha/protocol/query"
)

// CallConfig holds the per-call overrides of the client defaults
type CallConfig struct {
	Authority     ledger.Authority
	CommitTimeout time.Duration
	Metadata      ledger.Metadata
	Mintable      ledger.Mintable
	ValueType     ledger.AssetValueType
	Filter        predicate.Predicate
	Pagination    query.Pagination
	Nonce         uint32
	TimeToLive    time.Duration
}

// CallOptionFunc is a type that represents functions that modify a single call
type CallOptionFunc func(*CallConfig)

func (c *Client) newCallConfig(options ...CallOptionFunc) CallConfig {
	cfg := CallConfig{
		Authority:     c.admin,
		CommitTimeout: c.commitTimeout,
		Metadata:      ledger.Metadata{},
		Mintable:      ledger.MintableInfinitely,
		ValueType:     ledger.AssetValueTypeStore,
	}
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}

func (cfg CallConfig) transactionOptions() []ledger.TransactionOptionFunc {
	var ret []ledger.TransactionOptionFunc
	if cfg.Nonce > 0 {
		ret = append(ret, ledger.WithNonce(cfg.Nonce))
	}
	if cfg.TimeToLive > 0 {
		ret = append(ret, ledger.WithTimeToLive(cfg.TimeToLive))
	}
	return ret
}

func (cfg CallConfig) requestOptions() []query.RequestOptionFunc {
	ret := []query.RequestOptionFunc{
		query.WithPagination(cfg.Pagination.Start, cfg.Pagination.Limit),
	}
	if cfg.Filter != nil {
		ret = append(ret, query.WithPredicate(cfg.Filter))
	}
	return ret
}

// WithAuthority overrides the account and signer for a single call
func WithAuthority(account ledger.AccountId, signer ledger.Signer) CallOptionFunc {
	return func(c *CallConfig) {
		c.Authority = ledger.Authority{Account: account, Signer: signer}
	}
}

// WithCommitTimeout overrides how long a single call waits for commitment
func WithCommitTimeout(timeout time.Duration) CallOptionFunc {
	return func(c *CallConfig) {
		c.CommitTimeout = timeout
	}
}

// WithMetadata attaches metadata to a registered entity
func WithMetadata(metadata ledger.Metadata) CallOptionFunc {
	return func(c *CallConfig) {
		c.Metadata = maps.Clone(metadata)
	}
}

// WithMintable specifies the mint policy of a registered asset definition
func WithMintable(mintable ledger.Mintable) CallOptionFunc {
	return func(c *CallConfig) {
		c.Mintable = mintable
	}
}

// WithValueType specifies the value type of a registered asset definition
func WithValueType(valueType ledger.AssetValueType) CallOptionFunc {
	return func(c *CallConfig) {
		c.ValueType = valueType
	}
}

// WithPredicate filters the results of a collection query on the peer
func WithPredicate(p predicate.Predicate) CallOptionFunc {
	return func(c *CallConfig) {
		c.Filter = p
	}
}

// WithPagination requests a window of the results of a collection query
func WithPagination(start uint32, limit uint32) CallOptionFunc {
	return func(c *CallConfig) {
		c.Pagination = query.Pagination{Start: start, Limit: limit}
	}
}

// WithNonce distinguishes otherwise identical transactions
func WithNonce(nonce uint32) CallOptionFunc {
	return func(c *CallConfig) {
		c.Nonce = nonce
	}
}

// WithTimeToLive specifies how long the peer may hold the transaction before discarding it
func WithTimeToLive(ttl time.Duration) CallOptionFunc {
	return func(c *CallConfig) {
		c.TimeToLive = ttl
	}
}
