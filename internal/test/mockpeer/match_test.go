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
	"testing"

	"github.com/blinklabs-io/goiroha/internal/test"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/ledger/predicate"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	asset := ledger.NewAsset(
		test.AssetId("rose#wonderland#alice@wonderland"),
		ledger.NewQuantity(13),
	)
	store := ledger.NewAsset(
		test.AssetId("deed#wonderland#alice@wonderland"),
		ledger.NewStore(nil),
	)
	testDefs := []struct {
		name      string
		predicate predicate.Predicate
		asset     ledger.Asset
		expected  bool
	}{
		{"nil", nil, asset, true},
		{"is", predicate.Is(predicate.FieldId, "rose#wonderland#alice@wonderland"), asset, true},
		{"contains", predicate.Contains(predicate.FieldAccount, "alice"), asset, true},
		{"starts with", predicate.StartsWith(predicate.FieldDefinition, "tulip"), asset, false},
		{"ends with", predicate.EndsWith(predicate.FieldDomain, "land"), asset, true},
		{"eq", predicate.Eq(predicate.FieldQuantity, 13), asset, true},
		{"lt", predicate.Lt(predicate.FieldQuantity, 13), asset, false},
		{"le", predicate.Le(predicate.FieldQuantity, 13), asset, true},
		{"gt", predicate.Gt(predicate.FieldQuantity, 12), asset, true},
		{"ge", predicate.Ge(predicate.FieldQuantity, 14), asset, false},
		{"store has no quantity", predicate.Ge(predicate.FieldQuantity, 0), store, false},
		{"unknown field", predicate.Is(predicate.FieldLogo, ""), asset, false},
		{
			"and",
			predicate.NewAnd(
				predicate.Is(predicate.FieldName, "rose"),
				predicate.Gt(predicate.FieldQuantity, 10),
			),
			asset,
			true,
		},
		{
			"or",
			predicate.NewOr(
				predicate.Is(predicate.FieldName, "tulip"),
				predicate.Is(predicate.FieldName, "daisy"),
			),
			asset,
			false,
		},
		{
			"not",
			predicate.NewNot(predicate.Is(predicate.FieldName, "tulip")),
			asset,
			true,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(
				t,
				testDef.expected,
				evaluate(testDef.predicate, assetFields(testDef.asset)),
			)
		})
	}
}

func TestFilterDomains(t *testing.T) {
	domains := []ledger.Domain{
		{Id: test.DomainId("D")},
		{Id: test.DomainId("wonderland"), Logo: "/ipfs/rabbit"},
		{Id: test.DomainId("looking_glass")},
	}
	ret := filter(
		domains,
		predicate.NewOr(
			predicate.Is(predicate.FieldId, "D"),
			predicate.Contains(predicate.FieldLogo, "rabbit"),
		),
		domainFields,
	)
	assert.Len(t, ret, 2)
	assert.Equal(t, "wonderland", ret[1].Id.String())
	assert.Len(t, filter(domains, nil, domainFields), 3)
}
