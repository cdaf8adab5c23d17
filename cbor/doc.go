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

// Package cbor provides the CBOR codec used for every payload exchanged with a ledger peer.
//
// This package wraps github.com/fxamacker/cbor/v2 with a few patterns used throughout the
// rest of the library.
//
// # Key Types
//
// Embeddable types for struct encoding:
//   - StructAsArray: Embed to encode struct fields as CBOR array instead of map
//   - DecodeStoreCbor: Embed to preserve original CBOR bytes for hashing
//
// Utility types:
//   - RawMessage: Deferred decoding (like json.RawMessage)
//   - Tag: CBOR semantic tags
//
// # Tagged Variants
//
// Closed sum types (instructions, asset values, queries, predicates) are encoded as a
// CBOR array whose first item is the numeric variant ID:
//
//	type RegisterDomain struct {
//	    cbor.StructAsArray
//	    Type uint
//	    Id   DomainId
//	}
//
// DecodeIdFromList extracts the variant ID so that a wrapper type can pick the
// concrete type before decoding the rest of the data.
//
// # Determinism
//
// Encode always sorts map keys (core deterministic encoding), so that two encodings of
// the same payload hash to the same value. Signatures are computed over these bytes.
package cbor
