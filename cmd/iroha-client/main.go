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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	iroha "github.com/blinklabs-io/goiroha"
	"github.com/blinklabs-io/goiroha/batch"
	"github.com/blinklabs-io/goiroha/cmd/common"
)

type metadata struct {
	ctx    context.Context
	flags  *common.GlobalFlags
	config *common.Config
	logger *slog.Logger
	w      io.Writer
	e      io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "devel"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(ctx, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(app.ErrWriter, "error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp(ctx context.Context, w io.Writer, e io.Writer) *cli.App {
	flags := common.NewGlobalFlags()

	app := cli.NewApp()
	app.Name = "iroha-client"
	app.Usage = "submit transactions and queries to a ledger peer"
	app.Version = version
	app.Writer = w
	app.ErrWriter = e
	app.Flags = flags.Flags()
	app.Commands = commands()

	app.Before = func(c *cli.Context) error {
		level := slog.LevelInfo
		if flags.Debug {
			level = slog.LevelDebug
		}
		logger := slog.New(
			slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}),
		)
		cfg, err := flags.Load()
		if err != nil {
			return err
		}
		c.App.Metadata["config"] = &metadata{
			ctx:    ctx,
			flags:  flags,
			config: cfg,
			logger: logger,
			w:      c.App.Writer,
			e:      c.App.ErrWriter,
		}
		return nil
	}
	return app
}

func commands() []cli.Command {
	txFlags := []cli.Flag{
		cli.DurationFlag{
			Name:  "timeout",
			Usage: " commitment wait `DURATION`, overrides the configuration",
		},
	}
	pageFlags := []cli.Flag{
		cli.UintFlag{
			Name:  "start",
			Usage: " skip the first `N` results",
		},
		cli.UintFlag{
			Name:  "limit",
			Usage: " return at most `N` results",
		},
	}
	return []cli.Command{
		{
			Name:   "keygen",
			Usage:  "generate an ed25519 key pair, it is not stored anywhere",
			Action: runKeygen,
		},
		{
			Name:      "register-domain",
			Usage:     "register a new domain",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*domain `NAME`",
				},
			}, txFlags...),
			Action: runRegisterDomain,
		},
		{
			Name:      "register-account",
			Usage:     "register a new account",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*account `NAME@DOMAIN`",
				},
				cli.StringSliceFlag{
					Name:  "signatory, s",
					Usage: " signatory public `KEY` in multihash form, may be repeated",
				},
			}, txFlags...),
			Action: runRegisterAccount,
		},
		{
			Name:      "register-asset-definition",
			Usage:     "register a new asset definition",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*asset definition `NAME#DOMAIN`",
				},
				cli.StringFlag{
					Name:  "type",
					Value: "store",
					Usage: " value `TYPE` [quantity|store]",
				},
				cli.StringFlag{
					Name:  "mintable",
					Value: "infinitely",
					Usage: " mint `POLICY` [infinitely|once|not]",
				},
			}, txFlags...),
			Action: runRegisterAssetDefinition,
		},
		{
			Name:      "register-asset",
			Usage:     "register an account's holding of an asset with an initial quantity",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*asset `NAME#DOMAIN#ACCOUNT@DOMAIN`",
				},
				cli.UintFlag{
					Name:  "quantity, q",
					Usage: " initial `QUANTITY`",
				},
			}, txFlags...),
			Action: runRegisterAsset,
		},
		{
			Name:      "transfer",
			Usage:     "transfer a quantity between two holdings of the same asset",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Usage: "*source `ASSET`",
				},
				cli.StringFlag{
					Name:  "to, t",
					Usage: "*destination `ASSET`",
				},
				cli.UintFlag{
					Name:  "quantity, q",
					Usage: "*`QUANTITY` to transfer",
				},
			}, txFlags...),
			Action: runTransfer,
		},
		{
			Name:      "mint",
			Usage:     "increase the quantity of a holding",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*`ASSET` to mint",
				},
				cli.UintFlag{
					Name:  "quantity, q",
					Usage: "*`QUANTITY` to mint",
				},
			}, txFlags...),
			Action: runMint,
		},
		{
			Name:      "burn",
			Usage:     "decrease the quantity of a holding",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*`ASSET` to burn",
				},
				cli.UintFlag{
					Name:  "quantity, q",
					Usage: "*`QUANTITY` to burn",
				},
			}, txFlags...),
			Action: runBurn,
		},
		{
			Name:      "batch",
			Usage:     "submit a YAML plan of transactions, running the operations of each step concurrently",
			ArgsUsage: "\n   (* = required)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Usage: "*plan `FILE`",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Value: batch.DefaultWorkers,
					Usage: " number of concurrent `WORKERS`",
				},
			}, txFlags...),
			Action: runBatch,
		},
		{
			Name:      "balance",
			Usage:     "show the quantity held by an account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account",
					Usage: "*`ACCOUNT` holding the asset",
				},
				cli.StringFlag{
					Name:  "asset",
					Usage: "*`ASSET` held",
				},
			},
			Action: runBalance,
		},
		{
			Name:  "domains",
			Usage: "list domains",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "name-contains",
					Usage: " only list domains whose name contains `TEXT`",
				},
			}, pageFlags...),
			Action: runDomains,
		},
		{
			Name:  "accounts",
			Usage: "list accounts",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "domain",
					Usage: " only list accounts in `DOMAIN`",
				},
			}, pageFlags...),
			Action: runAccounts,
		},
		{
			Name:   "asset-definitions",
			Usage:  "list asset definitions",
			Flags:  pageFlags,
			Action: runAssetDefinitions,
		},
		{
			Name:  "assets",
			Usage: "list assets",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "account",
					Usage: " only list holdings of `ACCOUNT`",
				},
			}, pageFlags...),
			Action: runAssets,
		},
		{
			Name:      "account",
			Usage:     "show one account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*`ACCOUNT` to show",
				},
			},
			Action: runAccount,
		},
		{
			Name:      "tx-status",
			Usage:     "show the status of a submitted transaction",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "hash",
					Usage: "*transaction `HASH` in hex",
				},
			},
			Action: runTxStatus,
		},
		{
			Name:   "status",
			Usage:  "show the peer telemetry status",
			Action: runStatus,
		},
		{
			Name:   "health",
			Usage:  "check that the peer is reachable",
			Action: runHealth,
		},
	}
}

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

// client creates a client for one command. The caller closes it
func (m *metadata) client() (*iroha.Client, error) {
	return common.NewClient(m.config, m.logger)
}

func requiredString(c *cli.Context, name string) (string, error) {
	s := c.String(name)
	if s == "" {
		return "", fmt.Errorf("missing required flag: --%s", name)
	}
	return s, nil
}

func requiredQuantity(c *cli.Context, name string) (uint32, error) {
	if !c.IsSet(name) {
		return 0, fmt.Errorf("missing required flag: --%s", name)
	}
	q := c.Uint(name)
	if uint64(q) > uint64(^uint32(0)) {
		return 0, fmt.Errorf("quantity out of range: %d", q)
	}
	return uint32(q), nil
}

func printJson(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
