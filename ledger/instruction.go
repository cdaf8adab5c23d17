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
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/goiroha/cbor"
)

const (
	InstructionTypeRegisterDomain          = 0
	InstructionTypeRegisterAccount         = 1
	InstructionTypeRegisterAssetDefinition = 2
	InstructionTypeRegisterAsset           = 3
	InstructionTypeTransferAsset           = 4
	InstructionTypeMintAsset               = 5
	InstructionTypeBurnAsset               = 6
)

// Instruction is a single state change carried by a transaction
type Instruction interface {
	isInstruction()
	Type() uint
}

type InstructionWrapper struct {
	Type        uint
	Instruction Instruction
}

func (w *InstructionWrapper) UnmarshalCBOR(data []byte) error {
	instructionType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpInstruction Instruction
	switch instructionType {
	case InstructionTypeRegisterDomain:
		tmpInstruction = &RegisterDomain{}
	case InstructionTypeRegisterAccount:
		tmpInstruction = &RegisterAccount{}
	case InstructionTypeRegisterAssetDefinition:
		tmpInstruction = &RegisterAssetDefinition{}
	case InstructionTypeRegisterAsset:
		tmpInstruction = &RegisterAsset{}
	case InstructionTypeTransferAsset:
		tmpInstruction = &TransferAsset{}
	case InstructionTypeMintAsset:
		tmpInstruction = &MintAsset{}
	case InstructionTypeBurnAsset:
		tmpInstruction = &BurnAsset{}
	default:
		return fmt.Errorf("unknown instruction type: %d", instructionType)
	}
	if _, err := cbor.Decode(data, tmpInstruction); err != nil {
		return err
	}
	// instructionType is known within uint range
	w.Type = uint(instructionType) // #nosec G115
	w.Instruction = tmpInstruction
	return nil
}

func (w InstructionWrapper) MarshalCBOR() ([]byte, error) {
	if w.Instruction == nil {
		return nil, ErrNilInstruction
	}
	return cbor.Encode(w.Instruction)
}

// Instructions is an ordered list of instructions
type Instructions []Instruction

func (i Instructions) MarshalCBOR() ([]byte, error) {
	tmp := make([]InstructionWrapper, 0, len(i))
	for _, instruction := range i {
		tmp = append(tmp, InstructionWrapper{Instruction: instruction})
	}
	return cbor.Encode(tmp)
}

func (i *Instructions) UnmarshalCBOR(data []byte) error {
	var tmp []InstructionWrapper
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	ret := make(Instructions, 0, len(tmp))
	for _, item := range tmp {
		ret = append(ret, item.Instruction)
	}
	*i = ret
	return nil
}

type RegisterDomain struct {
	cbor.StructAsArray
	InstructionType uint
	Id              DomainId
	Metadata        Metadata
}

func NewRegisterDomain(id DomainId, metadata Metadata) *RegisterDomain {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &RegisterDomain{
		InstructionType: InstructionTypeRegisterDomain,
		Id:              id,
		Metadata:        metadata,
	}
}

func (*RegisterDomain) isInstruction() {}

func (*RegisterDomain) Type() uint { return InstructionTypeRegisterDomain }

func (i RegisterDomain) MarshalCBOR() ([]byte, error) {
	type registerDomainCbor RegisterDomain
	i.InstructionType = InstructionTypeRegisterDomain
	return cbor.Encode((*registerDomainCbor)(&i))
}

type RegisterAccount struct {
	cbor.StructAsArray
	InstructionType uint
	Id              AccountId
	Signatories     []PublicKey
	Metadata        Metadata
}

// NewRegisterAccount builds an account registration. An account may be registered with no signatories.
func NewRegisterAccount(
	id AccountId,
	signatories []PublicKey,
	metadata Metadata,
) *RegisterAccount {
	if metadata == nil {
		metadata = Metadata{}
	}
	if signatories == nil {
		signatories = []PublicKey{}
	}
	return &RegisterAccount{
		InstructionType: InstructionTypeRegisterAccount,
		Id:              id,
		Signatories:     slices.Clone(signatories),
		Metadata:        metadata,
	}
}

func (*RegisterAccount) isInstruction() {}

func (*RegisterAccount) Type() uint { return InstructionTypeRegisterAccount }

func (i RegisterAccount) MarshalCBOR() ([]byte, error) {
	type registerAccountCbor RegisterAccount
	i.InstructionType = InstructionTypeRegisterAccount
	return cbor.Encode((*registerAccountCbor)(&i))
}

type RegisterAssetDefinition struct {
	cbor.StructAsArray
	InstructionType uint
	Id              AssetDefinitionId
	ValueType       AssetValueType
	Metadata        Metadata
	Mintable        Mintable
}

func NewRegisterAssetDefinition(
	id AssetDefinitionId,
	valueType AssetValueType,
	metadata Metadata,
	mintable Mintable,
) *RegisterAssetDefinition {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &RegisterAssetDefinition{
		InstructionType: InstructionTypeRegisterAssetDefinition,
		Id:              id,
		ValueType:       valueType,
		Metadata:        metadata,
		Mintable:        mintable,
	}
}

func (*RegisterAssetDefinition) isInstruction() {}

func (*RegisterAssetDefinition) Type() uint { return InstructionTypeRegisterAssetDefinition }

func (i RegisterAssetDefinition) MarshalCBOR() ([]byte, error) {
	type registerAssetDefinitionCbor RegisterAssetDefinition
	i.InstructionType = InstructionTypeRegisterAssetDefinition
	return cbor.Encode((*registerAssetDefinitionCbor)(&i))
}

type RegisterAsset struct {
	InstructionType uint
	Id              AssetId
	Value           AssetValue
}

type registerAssetCbor struct {
	cbor.StructAsArray
	InstructionType uint
	Id              AssetId
	Value           AssetValueWrapper
}

func NewRegisterAsset(id AssetId, value AssetValue) *RegisterAsset {
	return &RegisterAsset{
		InstructionType: InstructionTypeRegisterAsset,
		Id:              id,
		Value:           value,
	}
}

func (*RegisterAsset) isInstruction() {}

func (*RegisterAsset) Type() uint { return InstructionTypeRegisterAsset }

func (i *RegisterAsset) UnmarshalCBOR(data []byte) error {
	var tmp registerAssetCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	i.InstructionType = tmp.InstructionType
	i.Id = tmp.Id
	i.Value = tmp.Value.Value
	return nil
}

func (i RegisterAsset) MarshalCBOR() ([]byte, error) {
	if i.Value == nil {
		return nil, errors.New("register asset: missing asset value")
	}
	return cbor.Encode(
		&registerAssetCbor{
			InstructionType: InstructionTypeRegisterAsset,
			Id:              i.Id,
			Value:           AssetValueWrapper{Value: i.Value},
		},
	)
}

// TransferAsset moves a quantity between two assets of the same definition
type TransferAsset struct {
	cbor.StructAsArray
	InstructionType uint
	Source          AssetId
	Quantity        uint32
	Destination     AssetId
}

func NewTransferAsset(
	source AssetId,
	quantity uint32,
	destination AssetId,
) *TransferAsset {
	return &TransferAsset{
		InstructionType: InstructionTypeTransferAsset,
		Source:          source,
		Quantity:        quantity,
		Destination:     destination,
	}
}

func (*TransferAsset) isInstruction() {}

func (*TransferAsset) Type() uint { return InstructionTypeTransferAsset }

func (i TransferAsset) MarshalCBOR() ([]byte, error) {
	type transferAssetCbor TransferAsset
	i.InstructionType = InstructionTypeTransferAsset
	return cbor.Encode((*transferAssetCbor)(&i))
}

type MintAsset struct {
	cbor.StructAsArray
	InstructionType uint
	Id              AssetId
	Quantity        uint32
}

func NewMintAsset(id AssetId, quantity uint32) *MintAsset {
	return &MintAsset{
		InstructionType: InstructionTypeMintAsset,
		Id:              id,
		Quantity:        quantity,
	}
}

func (*MintAsset) isInstruction() {}

func (*MintAsset) Type() uint { return InstructionTypeMintAsset }

func (i MintAsset) MarshalCBOR() ([]byte, error) {
	type mintAssetCbor MintAsset
	i.InstructionType = InstructionTypeMintAsset
	return cbor.Encode((*mintAssetCbor)(&i))
}

type BurnAsset struct {
	cbor.StructAsArray
	InstructionType uint
	Id              AssetId
	Quantity        uint32
}

func NewBurnAsset(id AssetId, quantity uint32) *BurnAsset {
	return &BurnAsset{
		InstructionType: InstructionTypeBurnAsset,
		Id:              id,
		Quantity:        quantity,
	}
}

func (*BurnAsset) isInstruction() {}

func (*BurnAsset) Type() uint { return InstructionTypeBurnAsset }

func (i BurnAsset) MarshalCBOR() ([]byte, error) {
	type burnAssetCbor BurnAsset
	i.InstructionType = InstructionTypeBurnAsset
	return cbor.Encode((*burnAssetCbor)(&i))
}
