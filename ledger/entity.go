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

package ledger

import (
	"fmt"
	"sort"

	"github.com/blinklabs-io/goiroha/cbor"
)

type Domain struct {
	cbor.StructAsArray
	Id       DomainId
	Logo     string
	Metadata Metadata
}

type AssetDefinition struct {
	cbor.StructAsArray
	Id        AssetDefinitionId
	ValueType AssetValueType
	Mintable  Mintable
	Metadata  Metadata
}

type Asset struct {
	Id    AssetId
	Value AssetValue
}

type assetCbor struct {
	cbor.StructAsArray
	Id    AssetId
	Value AssetValueWrapper
}

func NewAsset(id AssetId, value AssetValue) Asset {
	return Asset{Id: id, Value: value}
}

func (a *Asset) UnmarshalCBOR(data []byte) error {
	var tmp assetCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	a.Id = tmp.Id
	a.Value = tmp.Value.Value
	return nil
}

func (a Asset) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(
		&assetCbor{
			Id:    a.Id,
			Value: AssetValueWrapper{Value: a.Value},
		},
	)
}

type Account struct {
	Id          AccountId
	Signatories []PublicKey
	Assets      map[AssetId]Asset
	Metadata    Metadata
}

// Holdings are encoded as a list sorted by asset id
type accountCbor struct {
	cbor.StructAsArray
	Id          AccountId
	Signatories []PublicKey
	Assets      []Asset
	Metadata    Metadata
}

func (a *Account) UnmarshalCBOR(data []byte) error {
	var tmp accountCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	a.Id = tmp.Id
	a.Signatories = tmp.Signatories
	if a.Signatories == nil {
		a.Signatories = []PublicKey{}
	}
	a.Metadata = tmp.Metadata
	a.Assets = make(map[AssetId]Asset, len(tmp.Assets))
	for _, asset := range tmp.Assets {
		if asset.Id.Account != tmp.Id {
			return fmt.Errorf(
				"asset %s is not held by account %s",
				asset.Id.String(),
				tmp.Id.String(),
			)
		}
		a.Assets[asset.Id] = asset
	}
	return nil
}

func (a Account) MarshalCBOR() ([]byte, error) {
	tmp := accountCbor{
		Id:          a.Id,
		Signatories: a.Signatories,
		Assets:      make([]Asset, 0, len(a.Assets)),
		Metadata:    a.Metadata,
	}
	if tmp.Signatories == nil {
		tmp.Signatories = []PublicKey{}
	}
	if tmp.Metadata == nil {
		tmp.Metadata = Metadata{}
	}
	for _, asset := range a.Assets {
		tmp.Assets = append(tmp.Assets, asset)
	}
	sort.Slice(tmp.Assets, func(i, j int) bool {
		return tmp.Assets[i].Id.String() < tmp.Assets[j].Id.String()
	})
	return cbor.Encode(&tmp)
}

// Asset returns the holding for the provided asset id
func (a Account) Asset(id AssetId) (Asset, bool) {
	asset, ok := a.Assets[id]
	return asset, ok
}

// HasSignatory reports whether the provided key may sign for the account
func (a Account) HasSignatory(key PublicKey) bool {
	for _, tmpKey := range a.Signatories {
		if tmpKey.Equal(key) {
			return true
		}
	}
	return false
}

// TxStatus is the pipeline status of a transaction
type TxStatus uint8

const (
	TxStatusPending   TxStatus = 0
	TxStatusRejected  TxStatus = 1
	TxStatusCommitted TxStatus = 2
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusPending:
		return "Pending"
	case TxStatusRejected:
		return "Rejected"
	case TxStatusCommitted:
		return "Committed"
	default:
		return fmt.Sprintf("TxStatus(%d)", uint8(s))
	}
}

// Final reports whether the status can no longer change
func (s TxStatus) Final() bool {
	return s == TxStatusRejected || s == TxStatusCommitted
}

type TransactionStatus struct {
	cbor.StructAsArray
	Hash   Hash
	Status TxStatus
	Reason string
}

// Authority is the account and signer used to authorize a transaction or query
type Authority struct {
	Account AccountId
	Signer  Signer
}

func (a Authority) Validate() error {
	if a.Account.IsZero() {
		return ErrMissingAuthority
	}
	if a.Signer == nil {
		return ErrMissingSigner
	}
	return nil
}
