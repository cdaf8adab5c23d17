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

// Package events subscribes to transaction pipeline events published by a peer's
// telemetry endpoint over a WebSocket.
package events

import (
	"fmt"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/ledger"
)

const ProtocolName = "events"

type EntityKind uint8

const (
	EntityKindTransaction EntityKind = 0
	EntityKindBlock       EntityKind = 1
)

func (k EntityKind) String() string {
	switch k {
	case EntityKindTransaction:
		return "Transaction"
	case EntityKindBlock:
		return "Block"
	default:
		return fmt.Sprintf("EntityKind(%d)", uint8(k))
	}
}

// PipelineEvent reports a status change of a transaction or block
type PipelineEvent struct {
	cbor.StructAsArray
	EntityKind EntityKind
	Status     ledger.TxStatus
	Hash       ledger.Hash
	// Set when Status is TxStatusRejected
	Reason string
}

// Filter is sent by the client to select the events it wants to receive
type Filter struct {
	cbor.StructAsArray
	EntityKind EntityKind
	// The zero hash matches every entity of the kind
	Hash ledger.Hash
}

// TransactionFilter selects the events of a single transaction
func TransactionFilter(hash ledger.Hash) Filter {
	return Filter{
		EntityKind: EntityKindTransaction,
		Hash:       hash,
	}
}

func (f Filter) Matches(event PipelineEvent) bool {
	if event.EntityKind != f.EntityKind {
		return false
	}
	return f.Hash.IsZero() || f.Hash == event.Hash
}
