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

// Package ledger contains the data model shared by the transaction and query pipelines:
// identifiers, values, keys and signatures, instructions, transactions, and the entity
// records returned by queries.
//
// # Identifiers
//
// Identifiers are value types built from validated names and joined with fixed delimiters:
//
//	DomainId           wonderland
//	AccountId          alice@wonderland
//	AssetDefinitionId  rose#wonderland
//	AssetId            rose#wonderland#alice@wonderland
//
// Every identifier type has a Parse function and a String method that are exact inverses
// of each other. Identifiers encode to CBOR, JSON and YAML as their canonical string.
//
// # Tagged Variants
//
// Instructions, asset values and metadata values are closed sum types. Each variant is a
// struct encoded as a CBOR array whose first item is the variant ID, and each sum type has
// a wrapper type (e.g. InstructionWrapper) used to decode into the right variant.
package ledger
