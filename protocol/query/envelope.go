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
	"time"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/ledger/predicate"
)

// QueryPayload is the signed portion of a query
type QueryPayload struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	// Milliseconds since the Unix epoch
	Timestamp uint64
	Query     QueryWrapper
	AccountId ledger.AccountId
	Filter    *predicate.Wrapper
}

func (p *QueryPayload) UnmarshalCBOR(cborData []byte) error {
	return p.UnmarshalCborGeneric(cborData, p)
}

func (p QueryPayload) MarshalCBOR() ([]byte, error) {
	// Return stored CBOR if we have any
	cborData := p.Cbor()
	if cborData != nil {
		return cborData, nil
	}
	return cbor.EncodeGeneric(&p)
}

// Predicate returns the filter carried by the payload, or nil
func (p QueryPayload) Predicate() predicate.Predicate {
	if p.Filter == nil {
		return nil
	}
	return p.Filter.Predicate
}

func (p QueryPayload) clone() QueryPayload {
	ret := p
	if p.Filter != nil {
		tmpFilter := *p.Filter
		ret.Filter = &tmpFilter
	}
	ret.SetCbor(p.Cbor())
	return ret
}

// SignedQuery is an immutable signed query envelope
type SignedQuery struct {
	payload   QueryPayload
	signature ledger.Signature
}

type signedQueryCbor struct {
	cbor.StructAsArray
	Payload   QueryPayload
	Signature ledger.Signature
}

// NewSignedQuery builds and signs a query. The filter, if any, is checked for structural
// validity before signing.
func NewSignedQuery(
	query Query,
	authority ledger.Authority,
	filter predicate.Predicate,
) (*SignedQuery, error) {
	if query == nil {
		return nil, ErrNilQuery
	}
	if err := authority.Validate(); err != nil {
		return nil, err
	}
	payload := QueryPayload{
		Timestamp: uint64(time.Now().UnixMilli()), // #nosec G115
		Query:     QueryWrapper{Type: query.Type(), Query: query},
		AccountId: authority.Account,
	}
	if filter != nil {
		if err := predicate.Validate(filter); err != nil {
			return nil, err
		}
		payload.Filter = &predicate.Wrapper{
			Type:      filter.Type(),
			Predicate: filter,
		}
	}
	cborData, err := cbor.Encode(&payload)
	if err != nil {
		return nil, fmt.Errorf("encode query payload: %w", err)
	}
	sig, err := ledger.NewSignature(authority.Signer, cborData)
	if err != nil {
		return nil, err
	}
	payload.SetCbor(cborData)
	return &SignedQuery{
		payload:   payload,
		signature: sig,
	}, nil
}

// Payload returns a copy of the signed payload
func (s *SignedQuery) Payload() QueryPayload {
	return s.payload.clone()
}

func (s *SignedQuery) Query() Query {
	return s.payload.Query.Query
}

func (s *SignedQuery) Signature() ledger.Signature {
	return s.signature
}

// Verify checks the signature against the encoded payload
func (s *SignedQuery) Verify() error {
	return s.signature.Verify(s.payload.Cbor())
}

func (s *SignedQuery) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(
		&signedQueryCbor{
			Payload:   s.payload,
			Signature: s.signature,
		},
	)
}

func (s *SignedQuery) UnmarshalCBOR(cborData []byte) error {
	var tmp signedQueryCbor
	if _, err := cbor.Decode(cborData, &tmp); err != nil {
		return err
	}
	if tmp.Payload.Cbor() == nil {
		return errors.New("decode query: missing payload")
	}
	s.payload = tmp.Payload
	s.signature = tmp.Signature
	return nil
}
