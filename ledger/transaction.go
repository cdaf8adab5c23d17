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
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/goiroha/cbor"
)

const DefaultTransactionTimeToLive = 100 * time.Second

// TransactionPayload is the signed portion of a transaction
type TransactionPayload struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	AccountId    AccountId
	Instructions Instructions
	// Milliseconds since the Unix epoch
	CreationTime uint64
	// Milliseconds
	TimeToLive uint64
	// Zero means no nonce
	Nonce    uint32
	Metadata Metadata
}

func (p *TransactionPayload) UnmarshalCBOR(cborData []byte) error {
	return p.UnmarshalCborGeneric(cborData, p)
}

func (p TransactionPayload) MarshalCBOR() ([]byte, error) {
	// Return stored CBOR if we have any
	cborData := p.Cbor()
	if cborData != nil {
		return cborData, nil
	}
	return cbor.EncodeGeneric(&p)
}

// Hash returns the hash of the encoded payload
func (p TransactionPayload) Hash() (Hash, error) {
	cborData, err := p.MarshalCBOR()
	if err != nil {
		return Hash{}, err
	}
	return Blake2b256Hash(cborData), nil
}

func (p TransactionPayload) clone() TransactionPayload {
	ret := p
	ret.Instructions = slices.Clone(p.Instructions)
	ret.Metadata = maps.Clone(p.Metadata)
	ret.SetCbor(p.Cbor())
	return ret
}

type TransactionOptionFunc func(*TransactionPayload)

// WithCreationTime overrides the creation time, which otherwise defaults to the time the transaction is built
func WithCreationTime(t time.Time) TransactionOptionFunc {
	return func(p *TransactionPayload) {
		p.CreationTime = uint64(t.UnixMilli()) // #nosec G115
	}
}

// WithTimeToLive specifies how long the ledger may hold the transaction before discarding it
func WithTimeToLive(ttl time.Duration) TransactionOptionFunc {
	return func(p *TransactionPayload) {
		p.TimeToLive = uint64(ttl.Milliseconds()) // #nosec G115
	}
}

// WithNonce distinguishes otherwise identical transactions
func WithNonce(nonce uint32) TransactionOptionFunc {
	return func(p *TransactionPayload) {
		p.Nonce = nonce
	}
}

// WithTransactionMetadata attaches metadata to the transaction itself
func WithTransactionMetadata(metadata Metadata) TransactionOptionFunc {
	return func(p *TransactionPayload) {
		p.Metadata = maps.Clone(metadata)
	}
}

// Transaction is an unsigned transaction. It can be signed exactly once.
type Transaction struct {
	mutex   sync.Mutex
	payload TransactionPayload
	signed  bool
}

// NewTransaction builds a transaction authorized by the provided account
func NewTransaction(
	account AccountId,
	instructions []Instruction,
	opts ...TransactionOptionFunc,
) (*Transaction, error) {
	if account.IsZero() {
		return nil, ErrMissingAuthority
	}
	if len(instructions) == 0 {
		return nil, ErrEmptyTransaction
	}
	for _, instruction := range instructions {
		if instruction == nil {
			return nil, ErrNilInstruction
		}
	}
	payload := TransactionPayload{
		AccountId:    account,
		Instructions: slices.Clone(instructions),
		CreationTime: uint64(time.Now().UnixMilli()), // #nosec G115
		TimeToLive:   uint64(DefaultTransactionTimeToLive.Milliseconds()),
		Metadata:     Metadata{},
	}
	for _, opt := range opts {
		opt(&payload)
	}
	if payload.Metadata == nil {
		payload.Metadata = Metadata{}
	}
	return &Transaction{payload: payload}, nil
}

// Payload returns a copy of the transaction payload
func (t *Transaction) Payload() TransactionPayload {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.payload.clone()
}

// Sign encodes and signs the payload. A second call returns ErrAlreadySigned.
func (t *Transaction) Sign(signer Signer) (*SignedTransaction, error) {
	if signer == nil {
		return nil, ErrMissingSigner
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.signed {
		return nil, ErrAlreadySigned
	}
	cborData, err := cbor.Encode(&t.payload)
	if err != nil {
		return nil, fmt.Errorf("encode transaction payload: %w", err)
	}
	sig, err := NewSignature(signer, cborData)
	if err != nil {
		return nil, err
	}
	t.signed = true
	payload := t.payload.clone()
	payload.SetCbor(cborData)
	return &SignedTransaction{
		payload:    payload,
		signatures: []Signature{sig},
		hash:       Blake2b256Hash(cborData),
	}, nil
}

// SignedTransaction is an immutable signed transaction envelope
type SignedTransaction struct {
	payload    TransactionPayload
	signatures []Signature
	hash       Hash
}

type signedTransactionCbor struct {
	cbor.StructAsArray
	Payload    TransactionPayload
	Signatures []Signature
}

func (s *SignedTransaction) Hash() Hash {
	return s.hash
}

// Payload returns a copy of the signed payload
func (s *SignedTransaction) Payload() TransactionPayload {
	return s.payload.clone()
}

// Signatures returns a copy of the signatures
func (s *SignedTransaction) Signatures() []Signature {
	return slices.Clone(s.signatures)
}

// Verify checks every signature against the encoded payload
func (s *SignedTransaction) Verify() error {
	if len(s.signatures) == 0 {
		return ErrInvalidSignature
	}
	for _, sig := range s.signatures {
		if err := sig.Verify(s.payload.Cbor()); err != nil {
			return err
		}
	}
	return nil
}

func (s *SignedTransaction) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(
		&signedTransactionCbor{
			Payload:    s.payload,
			Signatures: s.signatures,
		},
	)
}

func (s *SignedTransaction) UnmarshalCBOR(cborData []byte) error {
	var tmp signedTransactionCbor
	if _, err := cbor.Decode(cborData, &tmp); err != nil {
		return err
	}
	if tmp.Payload.Cbor() == nil {
		return fmt.Errorf("decode transaction: missing payload")
	}
	s.payload = tmp.Payload
	s.signatures = tmp.Signatures
	s.hash = Blake2b256Hash(tmp.Payload.Cbor())
	return nil
}
