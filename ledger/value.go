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
	"math/big"
	"sort"

	"github.com/blinklabs-io/goiroha/cbor"
)

const (
	ValueTypeBool   = 0
	ValueTypeU32    = 1
	ValueTypeU128   = 2
	ValueTypeString = 3
	ValueTypeName   = 4
	ValueTypeVec    = 5
	ValueTypeId     = 6
)

// Value is a metadata value
type Value interface {
	isValue()
	Type() uint
}

type ValueWrapper struct {
	Type  uint
	Value Value
}

func (v *ValueWrapper) UnmarshalCBOR(data []byte) error {
	valueType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpValue Value
	switch valueType {
	case ValueTypeBool:
		tmpValue = &BoolValue{}
	case ValueTypeU32:
		tmpValue = &U32Value{}
	case ValueTypeU128:
		tmpValue = &U128Value{}
	case ValueTypeString:
		tmpValue = &StringValue{}
	case ValueTypeName:
		tmpValue = &NameValue{}
	case ValueTypeVec:
		tmpValue = &VecValue{}
	case ValueTypeId:
		tmpValue = &IdValue{}
	default:
		return fmt.Errorf("unknown value type: %d", valueType)
	}
	if _, err := cbor.Decode(data, tmpValue); err != nil {
		return err
	}
	// valueType is known within uint range
	v.Type = uint(valueType) // #nosec G115
	v.Value = tmpValue
	return nil
}

func (v ValueWrapper) MarshalCBOR() ([]byte, error) {
	if v.Value == nil {
		return nil, fmt.Errorf("cannot encode nil value")
	}
	return cbor.Encode(v.Value)
}

type BoolValue struct {
	cbor.StructAsArray
	ValueType uint
	Value     bool
}

func NewBoolValue(v bool) *BoolValue {
	return &BoolValue{ValueType: ValueTypeBool, Value: v}
}

func (*BoolValue) isValue() {}

func (*BoolValue) Type() uint { return ValueTypeBool }

func (v BoolValue) MarshalCBOR() ([]byte, error) {
	type boolValueCbor BoolValue
	v.ValueType = ValueTypeBool
	return cbor.Encode((*boolValueCbor)(&v))
}

type U32Value struct {
	cbor.StructAsArray
	ValueType uint
	Value     uint32
}

func NewU32Value(v uint32) *U32Value {
	return &U32Value{ValueType: ValueTypeU32, Value: v}
}

func (*U32Value) isValue() {}

func (*U32Value) Type() uint { return ValueTypeU32 }

func (v U32Value) MarshalCBOR() ([]byte, error) {
	type u32ValueCbor U32Value
	v.ValueType = ValueTypeU32
	return cbor.Encode((*u32ValueCbor)(&v))
}

// U128Value holds an unsigned integer of up to 128 bits
type U128Value struct {
	cbor.StructAsArray
	ValueType uint
	Value     big.Int
}

func NewU128Value(v *big.Int) (*U128Value, error) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return nil, fmt.Errorf("value %s out of range for u128", v.String())
	}
	ret := &U128Value{ValueType: ValueTypeU128}
	ret.Value.Set(v)
	return ret, nil
}

func (*U128Value) isValue() {}

func (*U128Value) Type() uint { return ValueTypeU128 }

func (v U128Value) MarshalCBOR() ([]byte, error) {
	type u128ValueCbor U128Value
	v.ValueType = ValueTypeU128
	return cbor.Encode((*u128ValueCbor)(&v))
}

type StringValue struct {
	cbor.StructAsArray
	ValueType uint
	Value     string
}

func NewStringValue(v string) *StringValue {
	return &StringValue{ValueType: ValueTypeString, Value: v}
}

func (*StringValue) isValue() {}

func (*StringValue) Type() uint { return ValueTypeString }

func (v StringValue) MarshalCBOR() ([]byte, error) {
	type stringValueCbor StringValue
	v.ValueType = ValueTypeString
	return cbor.Encode((*stringValueCbor)(&v))
}

type NameValue struct {
	cbor.StructAsArray
	ValueType uint
	Value     Name
}

func NewNameValue(v Name) *NameValue {
	return &NameValue{ValueType: ValueTypeName, Value: v}
}

func (*NameValue) isValue() {}

func (*NameValue) Type() uint { return ValueTypeName }

func (v NameValue) MarshalCBOR() ([]byte, error) {
	type nameValueCbor NameValue
	v.ValueType = ValueTypeName
	return cbor.Encode((*nameValueCbor)(&v))
}

// VecValue holds an ordered list of values
type VecValue struct {
	cbor.StructAsArray
	ValueType uint
	Values    []Value
}

func NewVecValue(values ...Value) *VecValue {
	return &VecValue{ValueType: ValueTypeVec, Values: values}
}

func (*VecValue) isValue() {}

func (*VecValue) Type() uint { return ValueTypeVec }

func (v *VecValue) UnmarshalCBOR(data []byte) error {
	var tmp struct {
		cbor.StructAsArray
		ValueType uint
		Values    []ValueWrapper
	}
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	v.ValueType = tmp.ValueType
	v.Values = make([]Value, 0, len(tmp.Values))
	for _, item := range tmp.Values {
		v.Values = append(v.Values, item.Value)
	}
	return nil
}

func (v VecValue) MarshalCBOR() ([]byte, error) {
	tmp := struct {
		cbor.StructAsArray
		ValueType uint
		Values    []ValueWrapper
	}{
		ValueType: ValueTypeVec,
		Values:    make([]ValueWrapper, 0, len(v.Values)),
	}
	for _, item := range v.Values {
		tmp.Values = append(tmp.Values, ValueWrapper{Value: item})
	}
	return cbor.Encode(&tmp)
}

// IdValue holds the canonical form of any identifier
type IdValue struct {
	cbor.StructAsArray
	ValueType uint
	Id        string
}

func NewIdValue(id fmt.Stringer) *IdValue {
	return &IdValue{ValueType: ValueTypeId, Id: id.String()}
}

func (*IdValue) isValue() {}

func (*IdValue) Type() uint { return ValueTypeId }

func (v IdValue) MarshalCBOR() ([]byte, error) {
	type idValueCbor IdValue
	v.ValueType = ValueTypeId
	return cbor.Encode((*idValueCbor)(&v))
}

// Metadata maps names to values. Key order is irrelevant and the encoding sorts keys.
type Metadata map[Name]Value

// Keys returns the metadata keys in sorted order
func (m Metadata) Keys() []Name {
	ret := make([]Name, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].String() < ret[j].String()
	})
	return ret
}

func (m Metadata) MarshalCBOR() ([]byte, error) {
	tmp := make(map[string]ValueWrapper, len(m))
	for k, v := range m {
		if k.IsZero() {
			return nil, InvalidNameError{Reason: "name is empty"}
		}
		tmp[k.String()] = ValueWrapper{Value: v}
	}
	return cbor.Encode(tmp)
}

func (m *Metadata) UnmarshalCBOR(data []byte) error {
	var tmp map[string]ValueWrapper
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	ret := make(Metadata, len(tmp))
	for k, v := range tmp {
		name, err := NewName(k)
		if err != nil {
			return err
		}
		ret[name] = v.Value
	}
	*m = ret
	return nil
}
