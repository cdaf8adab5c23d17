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

// Package predicate provides filter expressions that are attached to queries and
// evaluated by the ledger. The client only checks that an expression is well formed.
package predicate

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/goiroha/cbor"
)

const (
	PredicateTypeAnd     = 0
	PredicateTypeOr      = 1
	PredicateTypeNot     = 2
	PredicateTypeString  = 3
	PredicateTypeNumeric = 4
)

// ErrMalformedPredicate is matched by any MalformedPredicateError using errors.Is
var ErrMalformedPredicate = errors.New("malformed predicate")

// MalformedPredicateError describes the first structural problem found in a predicate tree
type MalformedPredicateError struct {
	// Path to the offending node, e.g. "and[1].not"
	Path   string
	Reason string
}

func (e MalformedPredicateError) Error() string {
	if e.Path == "" {
		return "malformed predicate: " + e.Reason
	}
	return fmt.Sprintf("malformed predicate at %s: %s", e.Path, e.Reason)
}

func (MalformedPredicateError) Is(target error) bool {
	return target == ErrMalformedPredicate
}

type Predicate interface {
	isPredicate()
	Type() uint
	validate(path string) error
}

// Validate checks the structure of a predicate tree without evaluating it
func Validate(p Predicate) error {
	if p == nil {
		return MalformedPredicateError{Reason: "predicate is nil"}
	}
	return p.validate("")
}

// nilNode reports a typed nil found where a predicate was expected
func nilNode(path string) error {
	if path == "" {
		return MalformedPredicateError{Reason: "predicate is nil"}
	}
	return MalformedPredicateError{Path: path, Reason: "operand is nil"}
}

func joinPath(path string, elem string) string {
	if path == "" {
		return elem
	}
	return path + "." + elem
}

type Wrapper struct {
	Type      uint
	Predicate Predicate
}

func (w *Wrapper) UnmarshalCBOR(data []byte) error {
	predicateType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpPredicate Predicate
	switch predicateType {
	case PredicateTypeAnd:
		tmpPredicate = &And{}
	case PredicateTypeOr:
		tmpPredicate = &Or{}
	case PredicateTypeNot:
		tmpPredicate = &Not{}
	case PredicateTypeString:
		tmpPredicate = &StringPredicate{}
	case PredicateTypeNumeric:
		tmpPredicate = &NumericPredicate{}
	default:
		return fmt.Errorf("unknown predicate type: %d", predicateType)
	}
	if _, err := cbor.Decode(data, tmpPredicate); err != nil {
		return err
	}
	// predicateType is known within uint range
	w.Type = uint(predicateType) // #nosec G115
	w.Predicate = tmpPredicate
	return nil
}

func (w Wrapper) MarshalCBOR() ([]byte, error) {
	if w.Predicate == nil {
		return nil, MalformedPredicateError{Reason: "predicate is nil"}
	}
	return cbor.Encode(w.Predicate)
}

type compoundCbor struct {
	cbor.StructAsArray
	PredicateType uint
	Operands      []Wrapper
}

func encodeCompound(predicateType uint, operands []Predicate) ([]byte, error) {
	tmp := compoundCbor{
		PredicateType: predicateType,
		Operands:      make([]Wrapper, 0, len(operands)),
	}
	for _, operand := range operands {
		tmp.Operands = append(tmp.Operands, Wrapper{Predicate: operand})
	}
	return cbor.Encode(&tmp)
}

func decodeCompound(data []byte) (uint, []Predicate, error) {
	var tmp compoundCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return 0, nil, err
	}
	ret := make([]Predicate, 0, len(tmp.Operands))
	for _, operand := range tmp.Operands {
		ret = append(ret, operand.Predicate)
	}
	return tmp.PredicateType, ret, nil
}

func validateOperands(path string, operands []Predicate) error {
	if len(operands) == 0 {
		return MalformedPredicateError{
			Path:   path,
			Reason: "at least one operand is required",
		}
	}
	for idx, operand := range operands {
		opPath := fmt.Sprintf("%s[%d]", path, idx)
		if operand == nil {
			return MalformedPredicateError{
				Path:   opPath,
				Reason: "operand is nil",
			}
		}
		if err := operand.validate(opPath); err != nil {
			return err
		}
	}
	return nil
}

// And matches when every operand matches
type And struct {
	PredicateType uint
	Operands      []Predicate
}

func NewAnd(operands ...Predicate) *And {
	return &And{PredicateType: PredicateTypeAnd, Operands: operands}
}

func (*And) isPredicate() {}

func (*And) Type() uint { return PredicateTypeAnd }

func (p *And) validate(path string) error {
	if p == nil {
		return nilNode(path)
	}
	return validateOperands(joinPath(path, "and"), p.Operands)
}

func (p *And) UnmarshalCBOR(data []byte) error {
	var err error
	p.PredicateType, p.Operands, err = decodeCompound(data)
	return err
}

func (p And) MarshalCBOR() ([]byte, error) {
	return encodeCompound(PredicateTypeAnd, p.Operands)
}

// Or matches when any operand matches
type Or struct {
	PredicateType uint
	Operands      []Predicate
}

func NewOr(operands ...Predicate) *Or {
	return &Or{PredicateType: PredicateTypeOr, Operands: operands}
}

func (*Or) isPredicate() {}

func (*Or) Type() uint { return PredicateTypeOr }

func (p *Or) validate(path string) error {
	if p == nil {
		return nilNode(path)
	}
	return validateOperands(joinPath(path, "or"), p.Operands)
}

func (p *Or) UnmarshalCBOR(data []byte) error {
	var err error
	p.PredicateType, p.Operands, err = decodeCompound(data)
	return err
}

func (p Or) MarshalCBOR() ([]byte, error) {
	return encodeCompound(PredicateTypeOr, p.Operands)
}

// Not inverts its operand
type Not struct {
	PredicateType uint
	Operand       Predicate
}

type notCbor struct {
	cbor.StructAsArray
	PredicateType uint
	Operand       Wrapper
}

func NewNot(operand Predicate) *Not {
	return &Not{PredicateType: PredicateTypeNot, Operand: operand}
}

func (*Not) isPredicate() {}

func (*Not) Type() uint { return PredicateTypeNot }

func (p *Not) validate(path string) error {
	if p == nil {
		return nilNode(path)
	}
	path = joinPath(path, "not")
	if p.Operand == nil {
		return MalformedPredicateError{
			Path:   path,
			Reason: "exactly one operand is required",
		}
	}
	return p.Operand.validate(path)
}

func (p *Not) UnmarshalCBOR(data []byte) error {
	var tmp notCbor
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	p.PredicateType = tmp.PredicateType
	p.Operand = tmp.Operand.Predicate
	return nil
}

func (p Not) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(
		&notCbor{
			PredicateType: PredicateTypeNot,
			Operand:       Wrapper{Predicate: p.Operand},
		},
	)
}
