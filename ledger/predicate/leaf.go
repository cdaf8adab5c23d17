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

package predicate

import (
	"fmt"

	"github.com/blinklabs-io/goiroha/cbor"
)

// Field names the attribute of a query result that a leaf predicate inspects
type Field string

const (
	FieldId         Field = "id"
	FieldName       Field = "name"
	FieldDomain     Field = "domain"
	FieldAccount    Field = "account"
	FieldDefinition Field = "definition"
	FieldQuantity   Field = "quantity"
	FieldLogo       Field = "logo"
)

type StringOp uint8

const (
	StringOpIs         StringOp = 0
	StringOpContains   StringOp = 1
	StringOpStartsWith StringOp = 2
	StringOpEndsWith   StringOp = 3
)

func (o StringOp) String() string {
	switch o {
	case StringOpIs:
		return "is"
	case StringOpContains:
		return "contains"
	case StringOpStartsWith:
		return "starts_with"
	case StringOpEndsWith:
		return "ends_with"
	default:
		return fmt.Sprintf("StringOp(%d)", uint8(o))
	}
}

type NumericOp uint8

const (
	NumericOpEq NumericOp = 0
	NumericOpLt NumericOp = 1
	NumericOpLe NumericOp = 2
	NumericOpGt NumericOp = 3
	NumericOpGe NumericOp = 4
)

func (o NumericOp) String() string {
	switch o {
	case NumericOpEq:
		return "eq"
	case NumericOpLt:
		return "lt"
	case NumericOpLe:
		return "le"
	case NumericOpGt:
		return "gt"
	case NumericOpGe:
		return "ge"
	default:
		return fmt.Sprintf("NumericOp(%d)", uint8(o))
	}
}

// StringPredicate compares the text form of a field
type StringPredicate struct {
	cbor.StructAsArray
	PredicateType uint
	Field         Field
	Op            StringOp
	Value         string
}

func newString(field Field, op StringOp, value string) *StringPredicate {
	return &StringPredicate{
		PredicateType: PredicateTypeString,
		Field:         field,
		Op:            op,
		Value:         value,
	}
}

func Is(field Field, value string) *StringPredicate {
	return newString(field, StringOpIs, value)
}

func Contains(field Field, value string) *StringPredicate {
	return newString(field, StringOpContains, value)
}

func StartsWith(field Field, value string) *StringPredicate {
	return newString(field, StringOpStartsWith, value)
}

func EndsWith(field Field, value string) *StringPredicate {
	return newString(field, StringOpEndsWith, value)
}

func (*StringPredicate) isPredicate() {}

func (*StringPredicate) Type() uint { return PredicateTypeString }

func (p StringPredicate) MarshalCBOR() ([]byte, error) {
	type stringPredicateCbor StringPredicate
	p.PredicateType = PredicateTypeString
	return cbor.Encode((*stringPredicateCbor)(&p))
}

func (p *StringPredicate) validate(path string) error {
	if p == nil {
		return nilNode(path)
	}
	path = joinPath(path, "string")
	if p.Field == "" {
		return MalformedPredicateError{Path: path, Reason: "field is empty"}
	}
	if p.Op > StringOpEndsWith {
		return MalformedPredicateError{
			Path:   path,
			Reason: "unknown operator " + p.Op.String(),
		}
	}
	return nil
}

// NumericPredicate compares a numeric field
type NumericPredicate struct {
	cbor.StructAsArray
	PredicateType uint
	Field         Field
	Op            NumericOp
	Value         uint64
}

func newNumeric(field Field, op NumericOp, value uint64) *NumericPredicate {
	return &NumericPredicate{
		PredicateType: PredicateTypeNumeric,
		Field:         field,
		Op:            op,
		Value:         value,
	}
}

func Eq(field Field, value uint64) *NumericPredicate {
	return newNumeric(field, NumericOpEq, value)
}

func Lt(field Field, value uint64) *NumericPredicate {
	return newNumeric(field, NumericOpLt, value)
}

func Le(field Field, value uint64) *NumericPredicate {
	return newNumeric(field, NumericOpLe, value)
}

func Gt(field Field, value uint64) *NumericPredicate {
	return newNumeric(field, NumericOpGt, value)
}

func Ge(field Field, value uint64) *NumericPredicate {
	return newNumeric(field, NumericOpGe, value)
}

func (*NumericPredicate) isPredicate() {}

func (*NumericPredicate) Type() uint { return PredicateTypeNumeric }

func (p NumericPredicate) MarshalCBOR() ([]byte, error) {
	type numericPredicateCbor NumericPredicate
	p.PredicateType = PredicateTypeNumeric
	return cbor.Encode((*numericPredicateCbor)(&p))
}

func (p *NumericPredicate) validate(path string) error {
	if p == nil {
		return nilNode(path)
	}
	path = joinPath(path, "numeric")
	if p.Field == "" {
		return MalformedPredicateError{Path: path, Reason: "field is empty"}
	}
	if p.Op > NumericOpGe {
		return MalformedPredicateError{
			Path:   path,
			Reason: "unknown operator " + p.Op.String(),
		}
	}
	return nil
}
