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
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
)

const (
	DigestFunctionEd25519 = "ed25519"

	// Multicodec code for an ed25519 public key
	multicodecEd25519Pub = 0xed

	HashSize = blake2b.Size256
)

// Hash is a Blake2b-256 digest
type Hash [HashSize]byte

// Blake2b256Hash returns the Blake2b-256 digest of the provided data
func Blake2b256Hash(data []byte) Hash {
	return Hash(blake2b.Sum256(data))
}

func NewHashFromHex(s string) (Hash, error) {
	var ret Hash
	data, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("decode hash: %w", err)
	}
	if len(data) != HashSize {
		return ret, fmt.Errorf(
			"invalid hash length: expected %d bytes, got %d",
			HashSize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return bytes.Clone(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(data []byte) error {
	tmp, err := NewHashFromHex(string(data))
	if err != nil {
		return err
	}
	*h = tmp
	return nil
}

// PublicKey is a public key tagged with its digest function
type PublicKey struct {
	cbor.StructAsArray
	DigestFunction string
	Payload        []byte
}

// NewEd25519PublicKey validates the provided key bytes and returns them as a PublicKey
func NewEd25519PublicKey(payload []byte) (PublicKey, error) {
	ret := PublicKey{
		DigestFunction: DigestFunctionEd25519,
		Payload:        bytes.Clone(payload),
	}
	if err := ret.Validate(); err != nil {
		return PublicKey{}, err
	}
	return ret, nil
}

// ParsePublicKey parses the multihash form of a public key (e.g. ed0120...)
func ParsePublicKey(s string) (PublicKey, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("decode public key: %w", err)
	}
	decoded, err := multihash.Decode(data)
	if err != nil {
		return PublicKey{}, fmt.Errorf("decode public key multihash: %w", err)
	}
	if decoded.Code != multicodecEd25519Pub {
		return PublicKey{}, fmt.Errorf(
			"%w: multicodec 0x%x",
			ErrUnsupportedDigest,
			decoded.Code,
		)
	}
	return NewEd25519PublicKey(decoded.Digest)
}

// Validate checks that the key uses a supported digest function and that the
// payload is a point on the curve
func (k PublicKey) Validate() error {
	if k.DigestFunction != DigestFunctionEd25519 {
		return fmt.Errorf("%w: %s", ErrUnsupportedDigest, k.DigestFunction)
	}
	if len(k.Payload) != ed25519.PublicKeySize {
		return fmt.Errorf(
			"invalid ed25519 public key length: expected %d bytes, got %d",
			ed25519.PublicKeySize,
			len(k.Payload),
		)
	}
	if _, err := new(edwards25519.Point).SetBytes(k.Payload); err != nil {
		return fmt.Errorf("invalid ed25519 public key: %w", err)
	}
	return nil
}

func (k PublicKey) Equal(other PublicKey) bool {
	return k.DigestFunction == other.DigestFunction &&
		bytes.Equal(k.Payload, other.Payload)
}

// String returns the hex-encoded multihash form of the key
func (k PublicKey) String() string {
	// The error return of Encode is always nil
	data, _ := multihash.Encode(k.Payload, multicodecEd25519Pub)
	return hex.EncodeToString(data)
}

func (k PublicKey) MarshalText() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(data []byte) error {
	tmp, err := ParsePublicKey(string(data))
	if err != nil {
		return err
	}
	*k = tmp
	return nil
}

// Signer produces signatures on behalf of an account
type Signer interface {
	PublicKey() PublicKey
	Sign(message []byte) ([]byte, error)
}

// Signature is a signature over the Blake2b-256 hash of an encoded payload
type Signature struct {
	cbor.StructAsArray
	PublicKey PublicKey
	Payload   []byte
}

// NewSignature hashes the encoded payload and signs the hash with the provided signer
func NewSignature(signer Signer, payload []byte) (Signature, error) {
	if signer == nil {
		return Signature{}, ErrMissingSigner
	}
	hash := Blake2b256Hash(payload)
	sig, err := signer.Sign(hash[:])
	if err != nil {
		return Signature{}, fmt.Errorf("sign payload: %w", err)
	}
	return Signature{
		PublicKey: signer.PublicKey(),
		Payload:   sig,
	}, nil
}

// Verify checks the signature against the provided encoded payload
func (s Signature) Verify(payload []byte) error {
	if err := s.PublicKey.Validate(); err != nil {
		return err
	}
	hash := Blake2b256Hash(payload)
	if !ed25519.Verify(
		ed25519.PublicKey(s.PublicKey.Payload),
		hash[:],
		s.Payload,
	) {
		return ErrInvalidSignature
	}
	return nil
}
