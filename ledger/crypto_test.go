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

package ledger_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/keypair"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyMultihash(t *testing.T) {
	kp, err := keypair.Generate()
	require.NoError(t, err)
	pubKey := kp.PublicKey()
	text := pubKey.String()
	assert.True(t, strings.HasPrefix(text, "ed0120"), "got %s", text)
	assert.Len(t, text, 6+64)
	assert.Equal(t, hex.EncodeToString(pubKey.Payload), text[6:])
	parsed, err := ledger.ParsePublicKey(text)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(pubKey))
}

func TestParsePublicKeyErrors(t *testing.T) {
	testDefs := []struct {
		Input       string
		Unsupported bool
	}{
		{Input: "not hex"},
		{Input: "ed01"},
		// Multihash framing with a SHA2-256 code
		{
			Input:       "1220" + strings.Repeat("00", 32),
			Unsupported: true,
		},
		// Not a point on the curve
		{
			Input: "ed0120" + "efffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f",
		},
		// Wrong key length
		{Input: "ed0110" + strings.Repeat("11", 16)},
	}
	for _, testDef := range testDefs {
		_, err := ledger.ParsePublicKey(testDef.Input)
		require.Error(t, err, "input %q", testDef.Input)
		if testDef.Unsupported {
			assert.ErrorIs(t, err, ledger.ErrUnsupportedDigest)
		}
	}
}

func TestHashHex(t *testing.T) {
	hash := ledger.Blake2b256Hash([]byte("abc"))
	parsed, err := ledger.NewHashFromHex(hash.String())
	require.NoError(t, err)
	assert.Equal(t, hash, parsed)
	assert.False(t, hash.IsZero())
	assert.True(t, ledger.Hash{}.IsZero())
	_, err = ledger.NewHashFromHex("abcd")
	assert.Error(t, err)
	_, err = ledger.NewHashFromHex("zz")
	assert.Error(t, err)
}

func TestSignatureCbor(t *testing.T) {
	kp, err := keypair.Generate()
	require.NoError(t, err)
	payload := []byte{0x01, 0x02, 0x03}
	sig, err := ledger.NewSignature(kp, payload)
	require.NoError(t, err)
	data, err := cbor.Encode(sig)
	require.NoError(t, err)
	var decoded ledger.Signature
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, sig, decoded)
	assert.NoError(t, decoded.Verify(payload))
	decoded.Payload[0] ^= 0xff
	assert.ErrorIs(t, decoded.Verify(payload), ledger.ErrInvalidSignature)
}

func TestNewSignatureNilSigner(t *testing.T) {
	_, err := ledger.NewSignature(nil, []byte{0x01})
	assert.ErrorIs(t, err, ledger.ErrMissingSigner)
}
