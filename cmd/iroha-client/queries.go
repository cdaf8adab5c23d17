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
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/ledger/predicate"
)

// queried runs one read-only command and prints its result
func queried(
	c *cli.Context,
	fn func(*iroha.Client, []iroha.CallOptionFunc) (any, error),
) error {
	m := getMetadata(c)
	client, err := m.client()
	if err != nil {
		return err
	}
	defer client.Close()

	var options []iroha.CallOptionFunc
	if c.IsSet("start") || c.IsSet("limit") {
		start, err := paginationFlag(c, "start")
		if err != nil {
			return err
		}
		limit, err := paginationFlag(c, "limit")
		if err != nil {
			return err
		}
		options = append(options, iroha.WithPagination(start, limit))
	}
	result, err := fn(client, options)
	if err != nil {
		return err
	}
	return printJson(m.w, result)
}

func paginationFlag(c *cli.Context, name string) (uint32, error) {
	v := c.Uint(name)
	if uint64(v) > uint64(^uint32(0)) {
		return 0, fmt.Errorf("--%s out of range: %d", name, v)
	}
	return uint32(v), nil
}

func runBalance(c *cli.Context) error {
	account, err := requiredString(c, "account")
	if err != nil {
		return err
	}
	asset, err := requiredString(c, "asset")
	if err != nil {
		return err
	}
	return queried(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (any, error) {
		quantity, err := client.GetAccountAmount(getMetadata(c).ctx, account, asset, options...)
		if err != nil {
			return nil, err
		}
		return map[string]uint32{"quantity": quantity}, nil
	})
}

func runDomains(c *cli.Context) error {
	return queried(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (any, error) {
		if s := c.String("name-contains"); s != "" {
			options = append(
				options,
				iroha.WithPredicate(predicate.Contains(predicate.FieldName, s)),
			)
		}
		return client.FindAllDomains(getMetadata(c).ctx, options...)
	})
}

func runAccounts(c *cli.Context) error {
	return queried(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (any, error) {
		if s := c.String("domain"); s != "" {
			domain, err := ledger.ParseDomainId(s)
			if err != nil {
				return nil, err
			}
			options = append(
				options,
				iroha.WithPredicate(predicate.Is(predicate.FieldDomain, domain.String())),
			)
		}
		return client.FindAllAccounts(getMetadata(c).ctx, options...)
	})
}

func runAssetDefinitions(c *cli.Context) error {
	return queried(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (any, error) {
		return client.FindAllAssetDefinitions(getMetadata(c).ctx, options...)
	})
}

func runAssets(c *cli.Context) error {
	return queried(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (any, error) {
		if s := c.String("account"); s != "" {
			account, err := ledger.ParseAccountId(s)
			if err != nil {
				return nil, err
			}
			options = append(
				options,
				iroha.WithPredicate(predicate.Is(predicate.FieldAccount, account.String())),
			)
		}
		return client.FindAllAssets(getMetadata(c).ctx, options...)
	})
}

func runAccount(c *cli.Context) error {
	id, err := requiredString(c, "id")
	if err != nil {
		return err
	}
	return queried(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (any, error) {
		return client.FindAccountById(getMetadata(c).ctx, id, options...)
	})
}

func runTxStatus(c *cli.Context) error {
	s, err := requiredString(c, "hash")
	if err != nil {
		return err
	}
	hash, err := ledger.NewHashFromHex(s)
	if err != nil {
		return err
	}
	return queried(c, func(client *iroha.Client, options []iroha.CallOptionFunc) (any, error) {
		status, err := client.TransactionStatus(getMetadata(c).ctx, hash, options...)
		if err != nil {
			return nil, err
		}
		return outcomeJson{
			Hash:   status.Hash.String(),
			Status: status.Status.String(),
			Reason: status.Reason,
		}, nil
	})
}

func runStatus(c *cli.Context) error {
	return queried(c, func(client *iroha.Client, _ []iroha.CallOptionFunc) (any, error) {
		status, err := client.Status(getMetadata(c).ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"peers":       status.Peers,
			"blocks":      status.Blocks,
			"txsAccepted": status.TxsAccepted,
			"txsRejected": status.TxsRejected,
			"uptime":      status.Uptime.String(),
		}, nil
	})
}

func runHealth(c *cli.Context) error {
	return queried(c, func(client *iroha.Client, _ []iroha.CallOptionFunc) (any, error) {
		if err := client.Health(getMetadata(c).ctx); err != nil {
			return nil, err
		}
		return map[string]string{"status": "healthy"}, nil
	})
}
