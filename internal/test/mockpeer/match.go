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

package mockpeer

import (
	"strings"

	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/ledger/predicate"
)

// fields holds the attributes of a query result that a predicate can inspect
type fields struct {
	strings  map[predicate.Field]string
	numerics map[predicate.Field]uint64
}

func domainFields(d ledger.Domain) fields {
	return fields{
		strings: map[predicate.Field]string{
			predicate.FieldId:   d.Id.String(),
			predicate.FieldName: d.Id.Name.String(),
			predicate.FieldLogo: d.Logo,
		},
	}
}

func accountFields(a ledger.Account) fields {
	return fields{
		strings: map[predicate.Field]string{
			predicate.FieldId:     a.Id.String(),
			predicate.FieldName:   a.Id.Name.String(),
			predicate.FieldDomain: a.Id.Domain.String(),
		},
	}
}

func assetDefinitionFields(d ledger.AssetDefinition) fields {
	return fields{
		strings: map[predicate.Field]string{
			predicate.FieldId:     d.Id.String(),
			predicate.FieldName:   d.Id.Name.String(),
			predicate.FieldDomain: d.Id.Domain.String(),
		},
	}
}

func assetFields(a ledger.Asset) fields {
	ret := fields{
		strings: map[predicate.Field]string{
			predicate.FieldId:         a.Id.String(),
			predicate.FieldName:       a.Id.Definition.Name.String(),
			predicate.FieldDomain:     a.Id.Definition.Domain.String(),
			predicate.FieldAccount:    a.Id.Account.String(),
			predicate.FieldDefinition: a.Id.Definition.String(),
		},
		numerics: map[predicate.Field]uint64{},
	}
	if quantity, err := ledger.AsQuantity(a.Value); err == nil {
		ret.numerics[predicate.FieldQuantity] = uint64(quantity)
	}
	return ret
}

// evaluate reports whether the record matches the predicate. A nil predicate matches
// everything and a leaf naming a field the record does not have never matches.
func evaluate(p predicate.Predicate, f fields) bool {
	switch tmp := p.(type) {
	case nil:
		return true
	case *predicate.And:
		for _, operand := range tmp.Operands {
			if !evaluate(operand, f) {
				return false
			}
		}
		return true
	case *predicate.Or:
		for _, operand := range tmp.Operands {
			if evaluate(operand, f) {
				return true
			}
		}
		return false
	case *predicate.Not:
		return !evaluate(tmp.Operand, f)
	case *predicate.StringPredicate:
		value, ok := f.strings[tmp.Field]
		if !ok {
			return false
		}
		switch tmp.Op {
		case predicate.StringOpIs:
			return value == tmp.Value
		case predicate.StringOpContains:
			return strings.Contains(value, tmp.Value)
		case predicate.StringOpStartsWith:
			return strings.HasPrefix(value, tmp.Value)
		case predicate.StringOpEndsWith:
			return strings.HasSuffix(value, tmp.Value)
		default:
			return false
		}
	case *predicate.NumericPredicate:
		value, ok := f.numerics[tmp.Field]
		if !ok {
			return false
		}
		switch tmp.Op {
		case predicate.NumericOpEq:
			return value == tmp.Value
		case predicate.NumericOpLt:
			return value < tmp.Value
		case predicate.NumericOpLe:
			return value <= tmp.Value
		case predicate.NumericOpGt:
			return value > tmp.Value
		case predicate.NumericOpGe:
			return value >= tmp.Value
		default:
			return false
		}
	default:
		return false
	}
}

func filter[T any](items []T, p predicate.Predicate, toFields func(T) fields) []T {
	ret := make([]T, 0, len(items))
	for _, item := range items {
		if evaluate(p, toFields(item)) {
			ret = append(ret, item)
		}
	}
	return ret
}
