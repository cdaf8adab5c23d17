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
	"fmt"

	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol/query"
)

// FindAllDomains returns every domain, filtered by the peer when a predicate is provided
func (c *Client) FindAllDomains(
	ctx context.Context,
	options ...CallOptionFunc,
) ([]ledger.Domain, error) {
	cfg := c.newCallConfig(options...)
	return c.query.FindAllDomains(ctx, cfg.Authority, cfg.requestOptions()...)
}

// FindDomainById returns a single domain
func (c *Client) FindDomainById(
	ctx context.Context,
	domainId string,
	options ...CallOptionFunc,
) (ledger.Domain, error) {
	id, err := ledger.ParseDomainId(domainId)
	if err != nil {
		return ledger.Domain{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.query.FindDomainById(ctx, cfg.Authority, id)
}

// FindAllAccounts returns every account, filtered by the peer when a predicate is provided
func (c *Client) FindAllAccounts(
	ctx context.Context,
	options ...CallOptionFunc,
) ([]ledger.Account, error) {
	cfg := c.newCallConfig(options...)
	return c.query.FindAllAccounts(ctx, cfg.Authority, cfg.requestOptions()...)
}

// FindAccountById returns a single account with its holdings
func (c *Client) FindAccountById(
	ctx context.Context,
	accountId string,
	options ...CallOptionFunc,
) (ledger.Account, error) {
	id, err := ledger.ParseAccountId(accountId)
	if err != nil {
		return ledger.Account{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.query.FindAccountById(ctx, cfg.Authority, id)
}

// FindAllAssetDefinitions returns every asset definition, filtered by the peer when a
// predicate is provided
func (c *Client) FindAllAssetDefinitions(
	ctx context.Context,
	options ...CallOptionFunc,
) ([]ledger.AssetDefinition, error) {
	cfg := c.newCallConfig(options...)
	return c.query.FindAllAssetDefinitions(ctx, cfg.Authority, cfg.requestOptions()...)
}

// FindAllAssets returns every holding, filtered by the peer when a predicate is provided
func (c *Client) FindAllAssets(
	ctx context.Context,
	options ...CallOptionFunc,
) ([]ledger.Asset, error) {
	cfg := c.newCallConfig(options...)
	return c.query.FindAllAssets(ctx, cfg.Authority, cfg.requestOptions()...)
}

// FindAssetById returns a single holding
func (c *Client) FindAssetById(
	ctx context.Context,
	assetId string,
	options ...CallOptionFunc,
) (ledger.Asset, error) {
	id, err := ledger.ParseAssetId(assetId)
	if err != nil {
		return ledger.Asset{}, err
	}
	cfg := c.newCallConfig(options...)
	return c.query.FindAssetById(ctx, cfg.Authority, id)
}

// TransactionStatus asks the peer for the status of a submitted transaction. This is how
// the outcome of a transaction whose commitment wait timed out is determined
func (c *Client) TransactionStatus(
	ctx context.Context,
	hash ledger.Hash,
	options ...CallOptionFunc,
) (ledger.TransactionStatus, error) {
	cfg := c.newCallConfig(options...)
	return c.query.FindTransactionByHash(ctx, cfg.Authority, hash)
}

// GetAccountAmount returns the quantity of an account's holding. It fails with
// query.NotFoundError when the account does not hold the asset and with
// ledger.TypeMismatchError when the holding is a store
func (c *Client) GetAccountAmount(
	ctx context.Context,
	accountId string,
	assetId string,
	options ...CallOptionFunc,
) (uint32, error) {
	asset, err := ledger.ParseAssetId(assetId)
	if err != nil {
		return 0, err
	}
	account, err := c.FindAccountById(ctx, accountId, options...)
	if err != nil {
		return 0, err
	}
	holding, ok := account.Asset(asset)
	if !ok {
		return 0, query.NotFoundError{
			Query: "GetAccountAmount",
			Reason: fmt.Sprintf(
				"asset %s not held by account %s",
				asset.String(),
				account.Id.String(),
			),
		}
	}
	return ledger.AsQuantity(holding.Value)
}
