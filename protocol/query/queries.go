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

package query

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/ledger"
)

// Query types
const (
	QueryTypeFindAllDomains          = 0
	QueryTypeFindDomainById          = 1
	QueryTypeFindAllAccounts         = 2
	QueryTypeFindAccountById         = 3
	QueryTypeFindAllAssetDefinitions = 4
	QueryTypeFindAllAssets           = 5
	QueryTypeFindAssetById           = 6
	QueryTypeFindTransactionByHash   = 7
)

var ErrNilQuery = errors.New("query is nil")

// Query is a read request understood by the peer
type Query interface {
	isQuery()
	Type() uint
}

// TypeName returns a stable name for a query type, used in logs and metrics
func TypeName(queryType uint) string {
	switch queryType {
	case QueryTypeFindAllDomains:
		return "FindAllDomains"
	case QueryTypeFindDomainById:
		return "FindDomainById"
	case QueryTypeFindAllAccounts:
		return "FindAllAccounts"
	case QueryTypeFindAccountById:
		return "FindAccountById"
	case QueryTypeFindAllAssetDefinitions:
		return "FindAllAssetDefinitions"
	case QueryTypeFindAllAssets:
		return "FindAllAssets"
	case QueryTypeFindAssetById:
		return "FindAssetById"
	case QueryTypeFindTransactionByHash:
		return "FindTransactionByHash"
	default:
		return fmt.Sprintf("Query(%d)", queryType)
	}
}

type QueryWrapper struct {
	Type  uint
	Query Query
}

func (w *QueryWrapper) UnmarshalCBOR(data []byte) error {
	queryType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpQuery Query
	switch queryType {
	case QueryTypeFindAllDomains:
		tmpQuery = &FindAllDomains{}
	case QueryTypeFindDomainById:
		tmpQuery = &FindDomainById{}
	case QueryTypeFindAllAccounts:
		tmpQuery = &FindAllAccounts{}
	case QueryTypeFindAccountById:
		tmpQuery = &FindAccountById{}
	case QueryTypeFindAllAssetDefinitions:
		tmpQuery = &FindAllAssetDefinitions{}
	case QueryTypeFindAllAssets:
		tmpQuery = &FindAllAssets{}
	case QueryTypeFindAssetById:
		tmpQuery = &FindAssetById{}
	case QueryTypeFindTransactionByHash:
		tmpQuery = &FindTransactionByHash{}
	default:
		return fmt.Errorf("unknown query type: %d", queryType)
	}
	if _, err := cbor.Decode(data, tmpQuery); err != nil {
		return err
	}
	// queryType is known within uint range
	w.Type = uint(queryType) // #nosec G115
	w.Query = tmpQuery
	return nil
}

func (w QueryWrapper) MarshalCBOR() ([]byte, error) {
	if w.Query == nil {
		return nil, ErrNilQuery
	}
	return cbor.Encode(w.Query)
}

type FindAllDomains struct {
	cbor.StructAsArray
	QueryType uint
}

func NewFindAllDomains() *FindAllDomains {
	return &FindAllDomains{QueryType: QueryTypeFindAllDomains}
}

func (*FindAllDomains) isQuery() {}

func (*FindAllDomains) Type() uint { return QueryTypeFindAllDomains }

func (q FindAllDomains) MarshalCBOR() ([]byte, error) {
	type findAllDomainsCbor FindAllDomains
	q.QueryType = QueryTypeFindAllDomains
	return cbor.Encode((*findAllDomainsCbor)(&q))
}

type FindDomainById struct {
	cbor.StructAsArray
	QueryType uint
	Id        ledger.DomainId
}

func NewFindDomainById(id ledger.DomainId) *FindDomainById {
	return &FindDomainById{QueryType: QueryTypeFindDomainById, Id: id}
}

func (*FindDomainById) isQuery() {}

func (*FindDomainById) Type() uint { return QueryTypeFindDomainById }

func (q FindDomainById) MarshalCBOR() ([]byte, error) {
	type findDomainByIdCbor FindDomainById
	q.QueryType = QueryTypeFindDomainById
	return cbor.Encode((*findDomainByIdCbor)(&q))
}

type FindAllAccounts struct {
	cbor.StructAsArray
	QueryType uint
}

func NewFindAllAccounts() *FindAllAccounts {
	return &FindAllAccounts{QueryType: QueryTypeFindAllAccounts}
}

func (*FindAllAccounts) isQuery() {}

func (*FindAllAccounts) Type() uint { return QueryTypeFindAllAccounts }

func (q FindAllAccounts) MarshalCBOR() ([]byte, error) {
	type findAllAccountsCbor FindAllAccounts
	q.QueryType = QueryTypeFindAllAccounts
	return cbor.Encode((*findAllAccountsCbor)(&q))
}

type FindAccountById struct {
	cbor.StructAsArray
	QueryType uint
	Id        ledger.AccountId
}

func NewFindAccountById(id ledger.AccountId) *FindAccountById {
	return &FindAccountById{QueryType: QueryTypeFindAccountById, Id: id}
}

func (*FindAccountById) isQuery() {}

func (*FindAccountById) Type() uint { return QueryTypeFindAccountById }

func (q FindAccountById) MarshalCBOR() ([]byte, error) {
	type findAccountByIdCbor FindAccountById
	q.QueryType = QueryTypeFindAccountById
	return cbor.Encode((*findAccountByIdCbor)(&q))
}

type FindAllAssetDefinitions struct {
	cbor.StructAsArray
	QueryType uint
}

func NewFindAllAssetDefinitions() *FindAllAssetDefinitions {
	return &FindAllAssetDefinitions{QueryType: QueryTypeFindAllAssetDefinitions}
}

func (*FindAllAssetDefinitions) isQuery() {}

func (*FindAllAssetDefinitions) Type() uint { return QueryTypeFindAllAssetDefinitions }

func (q FindAllAssetDefinitions) MarshalCBOR() ([]byte, error) {
	type findAllAssetDefinitionsCbor FindAllAssetDefinitions
	q.QueryType = QueryTypeFindAllAssetDefinitions
	return cbor.Encode((*findAllAssetDefinitionsCbor)(&q))
}

type FindAllAssets struct {
	cbor.StructAsArray
	QueryType uint
}

func NewFindAllAssets() *FindAllAssets {
	return &FindAllAssets{QueryType: QueryTypeFindAllAssets}
}

func (*FindAllAssets) isQuery() {}

func (*FindAllAssets) Type() uint { return QueryTypeFindAllAssets }

func (q FindAllAssets) MarshalCBOR() ([]byte, error) {
	type findAllAssetsCbor FindAllAssets
	q.QueryType = QueryTypeFindAllAssets
	return cbor.Encode((*findAllAssetsCbor)(&q))
}

type FindAssetById struct {
	cbor.StructAsArray
	QueryType uint
	Id        ledger.AssetId
}

func NewFindAssetById(id ledger.AssetId) *FindAssetById {
	return &FindAssetById{QueryType: QueryTypeFindAssetById, Id: id}
}

func (*FindAssetById) isQuery() {}

func (*FindAssetById) Type() uint { return QueryTypeFindAssetById }

func (q FindAssetById) MarshalCBOR() ([]byte, error) {
	type findAssetByIdCbor FindAssetById
	q.QueryType = QueryTypeFindAssetById
	return cbor.Encode((*findAssetByIdCbor)(&q))
}

// FindTransactionByHash looks up the pipeline status of a submitted transaction
type FindTransactionByHash struct {
	cbor.StructAsArray
	QueryType uint
	Hash      ledger.Hash
}

func NewFindTransactionByHash(hash ledger.Hash) *FindTransactionByHash {
	return &FindTransactionByHash{
		QueryType: QueryTypeFindTransactionByHash,
		Hash:      hash,
	}
}

func (*FindTransactionByHash) isQuery() {}

func (*FindTransactionByHash) Type() uint { return QueryTypeFindTransactionByHash }

func (q FindTransactionByHash) MarshalCBOR() ([]byte, error) {
	type findTransactionByHashCbor FindTransactionByHash
	q.QueryType = QueryTypeFindTransactionByHash
	return cbor.Encode((*findTransactionByHashCbor)(&q))
}
