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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/goiroha/keypair"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/txsubmission"
)

var ErrNoAccount = errors.New("no account configured")

// Config holds the client settings. Values are read from a YAML file, then from the
// environment, which may be seeded from a .env file
type Config struct {
	PeerUrl       string        `yaml:"peerUrl"       env:"IROHA_PEER_URL"`
	TelemetryUrl  string        `yaml:"telemetryUrl"  env:"IROHA_TELEMETRY_URL"`
	Account       string        `yaml:"account"       env:"IROHA_ACCOUNT"`
	PrivateKey    string        `yaml:"privateKey"    env:"IROHA_PRIVATE_KEY"`
	PublicKey     string        `yaml:"publicKey"     env:"IROHA_PUBLIC_KEY"`
	CommitTimeout time.Duration `yaml:"commitTimeout" env:"IROHA_COMMIT_TIMEOUT"`
	CallTimeout   time.Duration `yaml:"callTimeout"   env:"IROHA_CALL_TIMEOUT"`
}

func DefaultConfig() *Config {
	return &Config{
		CommitTimeout: txsubmission.DefaultCommitTimeout,
		CallTimeout:   protocol.DefaultCallTimeout,
	}
}

// LoadConfig builds a Config from the defaults, the optional YAML file at configFile and
// the environment. A missing envFile is not an error
func LoadConfig(configFile string, envFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}
	if err := envdecode.Decode(cfg); err != nil &&
		!errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if cfg.CommitTimeout <= 0 {
		return nil, fmt.Errorf(
			"invalid commit timeout: %s",
			cfg.CommitTimeout,
		)
	}
	if cfg.CallTimeout <= 0 {
		return nil, fmt.Errorf(
			"invalid call timeout: %s",
			cfg.CallTimeout,
		)
	}
	return cfg, nil
}

// Authority parses the configured account and key
func (c *Config) Authority() (ledger.AccountId, *keypair.KeyPair, error) {
	if c.Account == "" {
		return ledger.AccountId{}, nil, ErrNoAccount
	}
	account, err := ledger.ParseAccountId(c.Account)
	if err != nil {
		return ledger.AccountId{}, nil, fmt.Errorf("account: %w", err)
	}
	if c.PrivateKey == "" {
		return ledger.AccountId{}, nil, fmt.Errorf(
			"no private key configured for account %s",
			account.String(),
		)
	}
	kp, err := keypair.FromHex(c.PrivateKey, c.PublicKey)
	if err != nil {
		return ledger.AccountId{}, nil, fmt.Errorf("private key: %w", err)
	}
	return account, kp, nil
}
