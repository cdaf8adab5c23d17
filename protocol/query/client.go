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
	"context"
	"errors"
	"net/http"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol"
)

// Client implements the Query client
type Client struct {
	*protocol.Protocol
}

// NewClient returns a new Query client object
func NewClient(protoOptions protocol.ProtocolOptions) *Client {
	c := &Client{}
	// Configure underlying Protocol
	protoConfig := protocol.ProtocolConfig{
		Name:        ProtocolName,
		PeerUrl:     protoOptions.PeerUrl,
		HttpClient:  protoOptions.HttpClient,
		Logger:      protoOptions.Logger,
		Limiter:     protoOptions.Limiter,
		Metrics:     protoOptions.Metrics,
		CallTimeout: protoOptions.CallTimeout,
	}
	c.Protocol = protocol.New(protoConfig)
	return c
}

// FindAllDomains returns every domain matching the optional predicate
func (c *Client) FindAllDomains(
	ctx context.Context,
	authority ledger.Authority,
	options ...RequestOptionFunc,
) ([]ledger.Domain, error) {
	var result []ledger.Domain
	if err := c.runQuery(ctx, authority, NewFindAllDomains(), &result, options...); err != nil {
		return nil, err
	}
	return result, nil
}

// FindDomainById returns the domain with the provided id
func (c *Client) FindDomainById(
	ctx context.Context,
	authority ledger.Authority,
	id ledger.DomainId,
) (ledger.Domain, error) {
	var result ledger.Domain
	if err := c.runQuery(ctx, authority, NewFindDomainById(id), &result); err != nil {
		return ledger.Domain{}, err
	}
	return result, nil
}

// FindAllAccounts returns every account matching the optional predicate
func (c *Client) FindAllAccounts(
	ctx context.Context,
	authority ledger.Authority,
	options ...RequestOptionFunc,
) ([]ledger.Account, error) {
	var result []ledger.Account
	if err := c.runQuery(ctx, authority, NewFindAllAccounts(), &result, options...); err != nil {
		return nil, err
	}
	return result, nil
}

// FindAccountById returns the account with the provided id, including its holdings
func (c *Client) FindAccountById(
	ctx context.Context,
	authority ledger.Authority,
	id ledger.AccountId,
) (ledger.Account, error) {
	var result ledger.Account
	if err := c.runQuery(ctx, authority, NewFindAccountById(id), &result); err != nil {
		return ledger.Account{}, err
	}
	return result, nil
}

// FindAllAssetDefinitions returns every asset definition matching the optional predicate
func (c *Client) FindAllAssetDefinitions(
	ctx context.Context,
	authority ledger.Authority,
	options ...RequestOptionFunc,
) ([]ledger.AssetDefinition, error) {
	var result []ledger.AssetDefinition
	if err := c.runQuery(ctx, authority, NewFindAllAssetDefinitions(), &result, options...); err != nil {
		return nil, err
	}
	return result, nil
}

// FindAllAssets returns every holding matching the optional predicate
func (c *Client) FindAllAssets(
	ctx context.Context,
	authority ledger.Authority,
	options ...RequestOptionFunc,
) ([]ledger.Asset, error) {
	var result []ledger.Asset
	if err := c.runQuery(ctx, authority, NewFindAllAssets(), &result, options...); err != nil {
		return nil, err
	}
	return result, nil
}

// FindAssetById returns the holding with the provided id
func (c *Client) FindAssetById(
	ctx context.Context,
	authority ledger.Authority,
	id ledger.AssetId,
) (ledger.Asset, error) {
	var result ledger.Asset
	if err := c.runQuery(ctx, authority, NewFindAssetById(id), &result); err != nil {
		return ledger.Asset{}, err
	}
	return result, nil
}

// FindTransactionByHash returns the pipeline status of a submitted transaction
func (c *Client) FindTransactionByHash(
	ctx context.Context,
	authority ledger.Authority,
	hash ledger.Hash,
) (ledger.TransactionStatus, error) {
	var result ledger.TransactionStatus
	if err := c.runQuery(ctx, authority, NewFindTransactionByHash(hash), &result); err != nil {
		return ledger.TransactionStatus{}, err
	}
	return result, nil
}

func (c *Client) runQuery(
	ctx context.Context,
	authority ledger.Authority,
	query Query,
	result any,
	options ...RequestOptionFunc,
) (err error) {
	queryName := TypeName(query.Type())
	defer func() {
		c.Metrics().RecordQuery(queryName, err)
	}()
	c.Protocol.Logger().
		Debug("calling "+queryName+"()",
			"component", "network",
			"protocol", ProtocolName,
			"account", authority.Account.String(),
		)
	reqConfig := NewRequestConfig(options...)
	signedQuery, err := NewSignedQuery(query, authority, reqConfig.Filter)
	if err != nil {
		return err
	}
	queryCbor, err := cbor.Encode(signedQuery)
	if err != nil {
		return protocol.SerializationError{Op: "encode query", Err: err}
	}
	respBody, err := c.Post(
		ctx,
		protocol.EndpointQuery,
		reqConfig.Pagination.params(),
		queryCbor,
	)
	if err != nil {
		var statusErr *protocol.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusNotFound {
				return NotFoundError{Query: queryName, Reason: statusErr.Body}
			}
			if statusErr.ClientError() {
				return QueryRejectedError{Query: queryName, Reason: statusErr.Body}
			}
		}
		return err
	}
	if _, err := cbor.Decode(respBody, result); err != nil {
		return protocol.SerializationError{Op: "decode " + queryName + " result", Err: err}
	}
	return nil
}
