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

package iroha

import (
	"context"
	"errors"
	"time"

	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol/txsubmission"
)

// Submit builds a transaction from the provided instructions, signs it and sends it to the
// peer. The returned handle must be awaited or closed
func (c *Client) Submit(
	ctx context.Context,
	instructions []ledger.Instruction,
	options ...CallOptionFunc,
) (*txsubmission.Handle, error) {
	cfg := c.newCallConfig(options...)
	return c.submit(ctx, cfg, instructions...)
}

func (c *Client) submit(
	ctx context.Context,
	cfg CallConfig,
	instructions ...ledger.Instruction,
) (*txsubmission.Handle, error) {
	signedTx, err := c.sign(cfg, instructions...)
	if err != nil {
		return nil, err
	}
	return c.txSubmission(cfg.Authority).Submit(ctx, signedTx)
}

func (c *Client) sign(
	cfg CallConfig,
	instructions ...ledger.Instruction,
) (*ledger.SignedTransaction, error) {
	if err := cfg.Authority.Validate(); err != nil {
		return nil, err
	}
	tx, err := ledger.NewTransaction(
		cfg.Authority.Account,
		instructions,
		cfg.transactionOptions()...,
	)
	if err != nil {
		return nil, err
	}
	return tx.Sign(cfg.Authority.Signer)
}

// submitAndAwait submits a single instruction and waits for its commitment. The commit
// timeout covers admission as well as commitment.
func (c *Client) submitAndAwait(
	ctx context.Context,
	cfg CallConfig,
	instruction ledger.Instruction,
) (txsubmission.Outcome, error) {
	signedTx, err := c.sign(cfg, instruction)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	timeout := cfg.CommitTimeout
	if timeout <= 0 {
		timeout = c.commitTimeout
	}
	timeoutErr := txsubmission.CommitmentTimeoutError{
		Hash:    signedTx.Hash(),
		Timeout: timeout,
	}
	deadline := time.Now().Add(timeout)
	submitCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	handle, err := c.txSubmission(cfg.Authority).Submit(submitCtx, signedTx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(submitCtx.Err(), context.DeadlineExceeded) {
			c.metrics.RecordTimeout()
			return txsubmission.Outcome{}, timeoutErr
		}
		return txsubmission.Outcome{}, err
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		_ = handle.Close()
		c.metrics.RecordTimeout()
		return txsubmission.Outcome{}, timeoutErr
	}
	outcome, err := handle.Await(ctx, remaining)
	var awaitTimeout txsubmission.CommitmentTimeoutError
	if errors.As(err, &awaitTimeout) {
		return outcome, timeoutErr
	}
	return outcome, err
}

// RegisterDomain registers a new domain and waits for the transaction to be committed
func (c *Client) RegisterDomain(
	ctx context.Context,
	domainId string,
	options ...CallOptionFunc,
) (txsubmission.Outcome, error) {
	id, err := ledger.ParseDomainId(domainId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.submitAndAwait(
		ctx,
		cfg,
		ledger.NewRegisterDomain(id, cfg.Metadata),
	)
}

// RegisterAccount registers a new account controlled by the provided signatories. An
// account with no signatories cannot authorize anything
func (c *Client) RegisterAccount(
	ctx context.Context,
	accountId string,
	signatories []ledger.PublicKey,
	options ...CallOptionFunc,
) (txsubmission.Outcome, error) {
	id, err := ledger.ParseAccountId(accountId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.submitAndAwait(
		ctx,
		cfg,
		ledger.NewRegisterAccount(id, signatories, cfg.Metadata),
	)
}

// RegisterAssetDefinition registers a new asset definition. The value type defaults to
// Store and the mint policy to Infinitely
func (c *Client) RegisterAssetDefinition(
	ctx context.Context,
	assetDefinitionId string,
	options ...CallOptionFunc,
) (txsubmission.Outcome, error) {
	id, err := ledger.ParseAssetDefinitionId(assetDefinitionId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.submitAndAwait(
		ctx,
		cfg,
		ledger.NewRegisterAssetDefinition(
			id,
			cfg.ValueType,
			cfg.Metadata,
			cfg.Mintable,
		),
	)
}

// RegisterAsset registers an account's holding of an asset with its initial value
func (c *Client) RegisterAsset(
	ctx context.Context,
	assetId string,
	value ledger.AssetValue,
	options ...CallOptionFunc,
) (txsubmission.Outcome, error) {
	id, err := ledger.ParseAssetId(assetId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	if value == nil {
		return txsubmission.Outcome{}, ledger.TypeMismatchError{
			Expected: "AssetValue",
			Actual:   "nil",
		}
	}
	cfg := c.newCallConfig(options...)
	return c.submitAndAwait(ctx, cfg, ledger.NewRegisterAsset(id, value))
}

// TransferAsset moves quantity from one holding to another of the same asset definition
func (c *Client) TransferAsset(
	ctx context.Context,
	fromAssetId string,
	quantity uint32,
	toAssetId string,
	options ...CallOptionFunc,
) (txsubmission.Outcome, error) {
	source, err := ledger.ParseAssetId(fromAssetId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	destination, err := ledger.ParseAssetId(toAssetId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.submitAndAwait(
		ctx,
		cfg,
		ledger.NewTransferAsset(source, quantity, destination),
	)
}

// MintAsset increases the quantity of a holding, subject to the definition's mint policy
func (c *Client) MintAsset(
	ctx context.Context,
	assetId string,
	quantity uint32,
	options ...CallOptionFunc,
) (txsubmission.Outcome, error) {
	id, err := ledger.ParseAssetId(assetId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.submitAndAwait(ctx, cfg, ledger.NewMintAsset(id, quantity))
}

// BurnAsset decreases the quantity of a holding
func (c *Client) BurnAsset(
	ctx context.Context,
	assetId string,
	quantity uint32,
	options ...CallOptionFunc,
) (txsubmission.Outcome, error) {
	id, err := ledger.ParseAssetId(assetId)
	if err != nil {
		return txsubmission.Outcome{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.submitAndAwait(ctx, cfg, ledger.NewBurnAsset(id, quantity))
}
