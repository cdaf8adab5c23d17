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
	"testing"
	"time"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/keypair"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInstructions(t *testing.T) []ledger.Instruction {
	t.Helper()
	domain, err := ledger.ParseDomainId("D")
	require.NoError(t, err)
	joe, err := ledger.ParseAccountId("joe@D")
	require.NoError(t, err)
	definition, err := ledger.ParseAssetDefinitionId("asset#D")
	require.NoError(t, err)
	joeAsset, err := ledger.ParseAssetId("asset#D#joe@D")
	require.NoError(t, err)
	carlAsset, err := ledger.ParseAssetId("asset#D#carl@D")
	require.NoError(t, err)
	kp, err := keypair.Generate()
	require.NoError(t, err)
	return []ledger.Instruction{
		ledger.NewRegisterDomain(domain, nil),
		ledger.NewRegisterAccount(joe, []ledger.PublicKey{kp.PublicKey()}, nil),
		ledger.NewRegisterAssetDefinition(
			definition,
			ledger.AssetValueTypeQuantity,
			ledger.Metadata{mustName(t, "note"): ledger.NewStringValue("x")},
			ledger.MintableOnce,
		),
		ledger.NewRegisterAsset(joeAsset, ledger.NewQuantity(100)),
		ledger.NewTransferAsset(joeAsset, 10, carlAsset),
		ledger.NewMintAsset(joeAsset, 5),
		ledger.NewBurnAsset(joeAsset, 1),
	}
}

func TestInstructionsCbor(t *testing.T) {
	instructions := ledger.Instructions(testInstructions(t))
	data, err := cbor.Encode(instructions)
	require.NoError(t, err)
	var decoded ledger.Instructions
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(instructions))
	for idx, instruction := range instructions {
		assert.Equal(t, instruction.Type(), decoded[idx].Type())
		assert.Equal(t, instruction, decoded[idx])
	}
}

func TestInstructionLiteralsCbor(t *testing.T) {
	joeAsset, err := ledger.ParseAssetId("asset#D#joe@D")
	require.NoError(t, err)
	carlAsset, err := ledger.ParseAssetId("asset#D#carl@D")
	require.NoError(t, err)
	instructions := ledger.Instructions{
		&ledger.TransferAsset{
			Source:      joeAsset,
			Quantity:    10,
			Destination: carlAsset,
		},
		&ledger.MintAsset{Id: joeAsset, Quantity: 5},
		&ledger.RegisterAsset{
			Id:    carlAsset,
			Value: &ledger.StoreValue{Store: ledger.Metadata{}},
		},
	}
	data, err := cbor.Encode(instructions)
	require.NoError(t, err)
	var decoded ledger.Instructions
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	transfer, ok := decoded[0].(*ledger.TransferAsset)
	require.True(t, ok, "decoded as %T", decoded[0])
	assert.Equal(t, uint(ledger.InstructionTypeTransferAsset), transfer.InstructionType)
	assert.Equal(t, carlAsset, transfer.Destination)
	mint, ok := decoded[1].(*ledger.MintAsset)
	require.True(t, ok, "decoded as %T", decoded[1])
	assert.Equal(t, uint32(5), mint.Quantity)
	register, ok := decoded[2].(*ledger.RegisterAsset)
	require.True(t, ok, "decoded as %T", decoded[2])
	assert.Equal(t, ledger.AssetValueTypeStore, register.Value.Type())
	_, err = ledger.AsQuantity(register.Value)
	assert.ErrorIs(t, err, ledger.ErrTypeMismatch)
}

func TestInstructionWrapperUnknownType(t *testing.T) {
	data, err := cbor.Encode([]any{99, "x"})
	require.NoError(t, err)
	var w ledger.InstructionWrapper
	_, err = cbor.Decode(data, &w)
	assert.Error(t, err)
}

func TestNewTransactionValidation(t *testing.T) {
	account, err := ledger.ParseAccountId("joe@D")
	require.NoError(t, err)
	_, err = ledger.NewTransaction(account, nil)
	assert.ErrorIs(t, err, ledger.ErrEmptyTransaction)
	_, err = ledger.NewTransaction(account, []ledger.Instruction{nil})
	assert.ErrorIs(t, err, ledger.ErrNilInstruction)
	_, err = ledger.NewTransaction(ledger.AccountId{}, testInstructions(t))
	assert.ErrorIs(t, err, ledger.ErrMissingAuthority)
}

func TestTransactionSignOnce(t *testing.T) {
	account, err := ledger.ParseAccountId("joe@D")
	require.NoError(t, err)
	kp, err := keypair.Generate()
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(account, testInstructions(t))
	require.NoError(t, err)
	signed, err := tx.Sign(kp)
	require.NoError(t, err)
	require.NotNil(t, signed)
	_, err = tx.Sign(kp)
	assert.ErrorIs(t, err, ledger.ErrAlreadySigned)
	_, err = tx.Sign(nil)
	assert.ErrorIs(t, err, ledger.ErrMissingSigner)
}

func TestTransactionOptions(t *testing.T) {
	account, err := ledger.ParseAccountId("joe@D")
	require.NoError(t, err)
	created := time.UnixMilli(1700000000000)
	tx, err := ledger.NewTransaction(
		account,
		testInstructions(t),
		ledger.WithCreationTime(created),
		ledger.WithTimeToLive(5*time.Second),
		ledger.WithNonce(7),
		ledger.WithTransactionMetadata(ledger.Metadata{
			mustName(t, "memo"): ledger.NewStringValue("hi"),
		}),
	)
	require.NoError(t, err)
	payload := tx.Payload()
	assert.Equal(t, uint64(1700000000000), payload.CreationTime)
	assert.Equal(t, uint64(5000), payload.TimeToLive)
	assert.Equal(t, uint32(7), payload.Nonce)
	assert.Len(t, payload.Metadata, 1)
	// Defaults
	tx, err = ledger.NewTransaction(account, testInstructions(t))
	require.NoError(t, err)
	payload = tx.Payload()
	assert.Equal(t, uint64(100000), payload.TimeToLive)
	assert.Equal(t, uint32(0), payload.Nonce)
	assert.NotNil(t, payload.Metadata)
}

func TestSignedTransactionCbor(t *testing.T) {
	account, err := ledger.ParseAccountId("joe@D")
	require.NoError(t, err)
	kp, err := keypair.Generate()
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(account, testInstructions(t))
	require.NoError(t, err)
	signed, err := tx.Sign(kp)
	require.NoError(t, err)
	require.NoError(t, signed.Verify())
	data, err := cbor.Encode(signed)
	require.NoError(t, err)
	var decoded ledger.SignedTransaction
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, signed.Hash(), decoded.Hash())
	assert.NoError(t, decoded.Verify())
	assert.Equal(t, account, decoded.Payload().AccountId)
	assert.Equal(
		t,
		tx.Payload().Instructions,
		decoded.Payload().Instructions,
	)
	require.Len(t, decoded.Signatures(), 1)
	assert.True(t, decoded.Signatures()[0].PublicKey.Equal(kp.PublicKey()))
	// Re-encoding uses the original payload bytes
	again, err := cbor.Encode(&decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestSignedTransactionImmutable(t *testing.T) {
	account, err := ledger.ParseAccountId("joe@D")
	require.NoError(t, err)
	kp, err := keypair.Generate()
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(account, testInstructions(t))
	require.NoError(t, err)
	signed, err := tx.Sign(kp)
	require.NoError(t, err)
	hash := signed.Hash()
	payload := signed.Payload()
	payload.Instructions[0] = nil
	payload.Metadata[mustName(t, "extra")] = ledger.NewBoolValue(true)
	sigs := signed.Signatures()
	sigs[0] = ledger.Signature{}
	assert.Equal(t, hash, signed.Hash())
	assert.NotNil(t, signed.Payload().Instructions[0])
	assert.Empty(t, signed.Payload().Metadata)
	assert.NoError(t, signed.Verify())
	expectedHash, err := signed.Payload().Hash()
	require.NoError(t, err)
	assert.Equal(t, expectedHash, hash)
}

func TestSignedTransactionTampered(t *testing.T) {
	account, err := ledger.ParseAccountId("joe@D")
	require.NoError(t, err)
	signer, err := keypair.Generate()
	require.NoError(t, err)
	other, err := keypair.Generate()
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(account, testInstructions(t))
	require.NoError(t, err)
	signed, err := tx.Sign(signer)
	require.NoError(t, err)
	data, err := cbor.Encode(signed)
	require.NoError(t, err)
	// Swap the signature public key for another key
	var raw []cbor.RawMessage
	_, err = cbor.Decode(data, &raw)
	require.NoError(t, err)
	badSig := signed.Signatures()[0]
	badSig.PublicKey = other.PublicKey()
	badSigData, err := cbor.Encode([]ledger.Signature{badSig})
	require.NoError(t, err)
	tampered, err := cbor.Encode([]cbor.RawMessage{raw[0], badSigData})
	require.NoError(t, err)
	var decoded ledger.SignedTransaction
	_, err = cbor.Decode(tampered, &decoded)
	require.NoError(t, err)
	assert.ErrorIs(t, decoded.Verify(), ledger.ErrInvalidSignature)
}
