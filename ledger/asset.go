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
	"strings"

	"github.com/blinklabs-io/goiroha/cbor"
)

// AssetValueType fixes which AssetValue variant the assets of a definition hold
type AssetValueType uint8

const (
	AssetValueTypeQuantity AssetValueType = 0
	AssetValueTypeStore    AssetValueType = 1
)

func (t AssetValueType) String() string {
	switch t {
	case AssetValueTypeQuantity:
		return "Quantity"
	case AssetValueTypeStore:
		return "Store"
	default:
		return fmt.Sprintf("AssetValueType(%d)", uint8(t))
	}
}

func (t AssetValueType) Valid() bool {
	return t == AssetValueTypeQuantity || t == AssetValueTypeStore
}

// ParseAssetValueType accepts the names returned by String
func ParseAssetValueType(s string) (AssetValueType, error) {
	switch s {
	case "Quantity", "quantity":
		return AssetValueTypeQuantity, nil
	case "Store", "store":
		return AssetValueTypeStore, nil
	default:
		return 0, fmt.Errorf("unknown asset value type: %q", s)
	}
}

// Mintable records whether more of an asset may be minted. It is never enforced by the client.
type Mintable uint8

const (
	MintableInfinitely Mintable = 0
	MintableOnce       Mintable = 1
	MintableNot        Mintable = 2
)

func (m Mintable) String() string {
	switch m {
	case MintableInfinitely:
		return "Infinitely"
	case MintableOnce:
		return "Once"
	case MintableNot:
		return "Not"
	default:
		return fmt.Sprintf("Mintable(%d)", uint8(m))
	}
}

func (m Mintable) Valid() bool {
	return m <= MintableNot
}

// ParseMintable accepts the names returned by String in any case
func ParseMintable(s string) (Mintable, error) {
	switch strings.ToLower(s) {
	case "infinitely":
		return MintableInfinitely, nil
	case "once":
		return MintableOnce, nil
	case "not":
		return MintableNot, nil
	default:
		return 0, fmt.Errorf("unknown mint policy: %q", s)
	}
}

// AssetValue is the value held by an asset
type AssetValue interface {
	isAssetValue()
	Type() AssetValueType
}

type AssetValueWrapper struct {
	Type  AssetValueType
	Value AssetValue
}

func (w *AssetValueWrapper) UnmarshalCBOR(data []byte) error {
	valueType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpValue AssetValue
	switch AssetValueType(valueType) { // #nosec G115
	case AssetValueTypeQuantity:
		tmpValue = &QuantityValue{}
	case AssetValueTypeStore:
		tmpValue = &StoreValue{}
	default:
		return fmt.Errorf("unknown asset value type: %d", valueType)
	}
	if _, err := cbor.Decode(data, tmpValue); err != nil {
		return err
	}
	w.Type = tmpValue.Type()
	w.Value = tmpValue
	return nil
}

func (w AssetValueWrapper) MarshalCBOR() ([]byte, error) {
	if w.Value == nil {
		return nil, fmt.Errorf("cannot encode nil asset value")
	}
	return cbor.Encode(w.Value)
}

// QuantityValue is a non-negative integer amount
type QuantityValue struct {
	cbor.StructAsArray
	ValueType AssetValueType
	Quantity  uint32
}

func NewQuantity(quantity uint32) *QuantityValue {
	return &QuantityValue{
		ValueType: AssetValueTypeQuantity,
		Quantity:  quantity,
	}
}

func (*QuantityValue) isAssetValue() {}

func (*QuantityValue) Type() AssetValueType { return AssetValueTypeQuantity }

func (v QuantityValue) MarshalCBOR() ([]byte, error) {
	type quantityValueCbor QuantityValue
	v.ValueType = AssetValueTypeQuantity
	return cbor.Encode((*quantityValueCbor)(&v))
}

// StoreValue is a key/value store held as an asset
type StoreValue struct {
	cbor.StructAsArray
	ValueType AssetValueType
	Store     Metadata
}

func NewStore(store Metadata) *StoreValue {
	if store == nil {
		store = Metadata{}
	}
	return &StoreValue{
		ValueType: AssetValueTypeStore,
		Store:     store,
	}
}

func (*StoreValue) isAssetValue() {}

func (*StoreValue) Type() AssetValueType { return AssetValueTypeStore }

func (v StoreValue) MarshalCBOR() ([]byte, error) {
	type storeValueCbor StoreValue
	v.ValueType = AssetValueTypeStore
	return cbor.Encode((*storeValueCbor)(&v))
}

// AsQuantity returns the quantity held by an asset value, or a TypeMismatchError for any other variant
func AsQuantity(v AssetValue) (uint32, error) {
	switch tmp := v.(type) {
	case *QuantityValue:
		return tmp.Quantity, nil
	case nil:
		return 0, TypeMismatchError{
			Expected: AssetValueTypeQuantity.String(),
			Actual:   "none",
		}
	default:
		return 0, TypeMismatchError{
			Expected: AssetValueTypeQuantity.String(),
			Actual:   v.Type().String(),
		}
	}
}
