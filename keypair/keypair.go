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

// Package keypair provides an Ed25519 signing identity that implements ledger.Signer
package keypair

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/blinklabs-io/goiroha/ledger"
)

type KeyPair struct {
	privateKey ed25519.PrivateKey
	publicKey  ledger.PublicKey
}

// Generate creates a new random key pair
func Generate() (*KeyPair, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return New(privateKey)
}

// FromSeed derives a key pair from a 32-byte seed
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf(
			"invalid ed25519 seed length: expected %d bytes, got %d",
			ed25519.SeedSize,
			len(seed),
		)
	}
	return New(ed25519.NewKeyFromSeed(seed))
}

// New wraps an existing Ed25519 private key
func New(privateKey ed25519.PrivateKey) (*KeyPair, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf(
			"invalid ed25519 private key length: expected %d bytes, got %d",
			ed25519.PrivateKeySize,
			len(privateKey),
		)
	}
	pubKey, ok := privateKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("unexpected ed25519 public key type")
	}
	publicKey, err := ledger.NewEd25519PublicKey(pubKey)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
	}, nil
}

// FromHex imports a key pair from a hex-encoded 32-byte seed or 64-byte private key.
// If publicKey is not empty, it must match the imported key in multihash form.
func FromHex(privateKey string, publicKey string) (*KeyPair, error) {
	data, err := hex.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	var kp *KeyPair
	switch len(data) {
	case ed25519.SeedSize:
		kp, err = FromSeed(data)
	case ed25519.PrivateKeySize:
		kp, err = New(ed25519.PrivateKey(data))
	default:
		return nil, fmt.Errorf(
			"invalid private key length: %d bytes",
			len(data),
		)
	}
	if err != nil {
		return nil, err
	}
	if publicKey != "" {
		expected, err := ledger.ParsePublicKey(publicKey)
		if err != nil {
			return nil, err
		}
		if !expected.Equal(kp.publicKey) {
			return nil, errors.New("public key does not match private key")
		}
	}
	return kp, nil
}

func (k *KeyPair) PublicKey() ledger.PublicKey {
	return k.publicKey
}

func (k *KeyPair) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(k.privateKey, message), nil
}

// PrivateKeyHex returns the hex-encoded 32-byte seed
func (k *KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(k.privateKey.Seed())
}
