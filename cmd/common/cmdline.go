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

package common

import (
	"github.com/urfave/cli"
)

type GlobalFlags struct {
	ConfigFile   string
	EnvFile      string
	PeerUrl      string
	TelemetryUrl string
	Account      string
	Debug        bool
}

func NewGlobalFlags() *GlobalFlags {
	return &GlobalFlags{}
}

// Flags returns the global flags bound to f
func (f *GlobalFlags) Flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "YAML configuration `FILE`",
			Destination: &f.ConfigFile,
		},
		cli.StringFlag{
			Name:        "env-file, e",
			Value:       ".env",
			Usage:       "environment `FILE` loaded before reading IROHA_* variables",
			Destination: &f.EnvFile,
		},
		cli.StringFlag{
			Name:        "peer, p",
			Usage:       "peer API `URL`, overrides the configuration",
			Destination: &f.PeerUrl,
		},
		cli.StringFlag{
			Name:        "telemetry, t",
			Usage:       "peer telemetry `URL`, overrides the configuration",
			Destination: &f.TelemetryUrl,
		},
		cli.StringFlag{
			Name:        "account, a",
			Usage:       "authorizing `ACCOUNT` in name@domain form",
			Destination: &f.Account,
		},
		cli.BoolFlag{
			Name:        "debug, d",
			Usage:       "enable debug logging",
			Destination: &f.Debug,
		},
	}
}

// Load reads the configuration and applies any flags that were set
func (f *GlobalFlags) Load() (*Config, error) {
	cfg, err := LoadConfig(f.ConfigFile, f.EnvFile)
	if err != nil {
		return nil, err
	}
	if f.PeerUrl != "" {
		cfg.PeerUrl = f.PeerUrl
	}
	if f.TelemetryUrl != "" {
		cfg.TelemetryUrl = f.TelemetryUrl
	}
	if f.Account != "" {
		cfg.Account = f.Account
	}
	return cfg, nil
}
