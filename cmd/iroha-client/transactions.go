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

package main

import (
	"fmt"

	"github.com/urfave/cli"

	iroha "github.com/blinklabs-io/goiroha"
	"github.com/blinklabs-io/goiroha/keypair"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol/txsubmission"
)

type outcomeJson struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// submitted runs one mutating command and prints its outcome
func submitted(
	c *cli.Context,
	fn func(*iroha.Client, []iroha.CallOptionFunc) (txsubmission.Outcome, error),
) error {
	m := getMetadata(c)
	client, err := m.client()
	if err != nil {
		return err
	}
	defer client.Close()

	var options []iroha.CallOptionFunc
	if c.IsSet("timeout") {
		options = append(options, iroha.WithCommitTimeout(c.Duration("timeout")))
	}
	outcome, err := fn(client, options)
	if err != nil {
		return err
	}
	return printJson(m.w, outcomeJson{
		Hash:   outcome.Hash.String(),
		Status: outcome.Status.String(),
		Reason: outcome.Reason,
	})
}

func runKeygen(c *cli.Context) error {
	m := getMetadata(c)
	kp, err := keypair.Generate()
	if err != nil {
		return err
	}
	return printJson(m.w, struct {
		PublicKey  string `json:"publicKey"`
		PrivateKey string `json:"privateKey"`
	}{
		PublicKey:  kp.PublicKey().String(),
		PrivateKey: kp.PrivateKeyHex(),
	})
}

func runRegisterDomain(c *cli.Context) error {
	id, err := requiredString(c, "id")
	if err != nil {
		return err
	}
	return submitted(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (txsubmission.Outcome, error) {
		return client.RegisterDomain(getMetadata(c).ctx, id, options...)
	})
}

func runRegisterAccount(c *cli.Context) error {
	id, err := requiredString(c, "id")
	if err != nil {
		return err
	}
	var signatories []ledger.PublicKey
	for _, s := range c.StringSlice("signatory") {
		key, err := ledger.ParsePublicKey(s)
		if err != nil {
			return fmt.Errorf("signatory %q: %w", s, err)
		}
		signatories = append(signatories, key)
	}
	return submitted(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (txsubmission.Outcome, error) {
		return client.RegisterAccount(getMetadata(c).ctx, id, signatories, options...)
	})
}

func runRegisterAssetDefinition(c *cli.Context) error {
	id, err := requiredString(c, "id")
	if err != nil {
		return err
	}
	valueType, err := ledger.ParseAssetValueType(c.String("type"))
	if err != nil {
		return err
	}
	mintable, err := ledger.ParseMintable(c.String("mintable"))
	if err != nil {
		return err
	}
	return submitted(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (txsubmission.Outcome, error) {
		options = append(
			options,
			iroha.WithValueType(valueType),
			iroha.WithMintable(mintable),
		)
		return client.RegisterAssetDefinition(getMetadata(c).ctx, id, options...)
	})
}

func runRegisterAsset(c *cli.Context) error {
	id, err := requiredString(c, "id")
	if err != nil {
		return err
	}
	quantity := uint32(0)
	if c.IsSet("quantity") {
		if quantity, err = requiredQuantity(c, "quantity"); err != nil {
			return err
		}
	}
	return submitted(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (txsubmission.Outcome, error) {
		return client.RegisterAsset(
			getMetadata(c).ctx,
			id,
			ledger.NewQuantity(quantity),
			options...,
		)
	})
}

func runTransfer(c *cli.Context) error {
	from, err := requiredString(c, "from")
	if err != nil {
		return err
	}
	to, err := requiredString(c, "to")
	if err != nil {
		return err
	}
	quantity, err := requiredQuantity(c, "quantity")
	if err != nil {
		return err
	}
	return submitted(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (txsubmission.Outcome, error) {
		return client.TransferAsset(getMetadata(c).ctx, from, quantity, to, options...)
	})
}

func runMint(c *cli.Context) error {
	id, err := requiredString(c, "id")
	if err != nil {
		return err
	}
	quantity, err := requiredQuantity(c, "quantity")
	if err != nil {
		return err
	}
	return submitted(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (txsubmission.Outcome, error) {
		return client.MintAsset(getMetadata(c).ctx, id, quantity, options...)
	})
}

func runBurn(c *cli.Context) error {
	id, err := requiredString(c, "id")
	if err != nil {
		return err
	}
	quantity, err := requiredQuantity(c, "quantity")
	if err != nil {
		return err
	}
	return submitted(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (txsubmission.Outcome, error) {
		return client.BurnAsset(getMetadata(c).ctx, id, quantity, options...)
	})
}
