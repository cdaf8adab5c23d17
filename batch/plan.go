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

package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	iroha "github.com/blinklabs-io/goiroha"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol/txsubmission"
)

const (
	OpRegisterDomain          = "registerDomain"
	OpRegisterAccount         = "registerAccount"
	OpRegisterAssetDefinition = "registerAssetDefinition"
	OpRegisterAsset           = "registerAsset"
	OpTransfer                = "transfer"
	OpMint                    = "mint"
	OpBurn                    = "burn"
)

var ErrEmptyPlan = errors.New("plan has no steps")

// Plan is an ordered list of steps. The operations of a step are independent of each
// other and are submitted concurrently. A step starts once every operation of the
// previous step has been committed
type Plan struct {
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Name       string      `yaml:"name"`
	Operations []Operation `yaml:"operations"`
}

// Operation is one transaction of a plan. Id names the object the operation acts on,
// which for transfers is the source holding
type Operation struct {
	Op          string   `yaml:"op"`
	Id          string   `yaml:"id"`
	To          string   `yaml:"to,omitempty"`
	Quantity    uint32   `yaml:"quantity,omitempty"`
	Type        string   `yaml:"type,omitempty"`
	Mintable    string   `yaml:"mintable,omitempty"`
	Signatories []string `yaml:"signatories,omitempty"`
}

// ParsePlan decodes and validates a YAML plan. Unknown keys are rejected
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return ErrEmptyPlan
	}
	for i, step := range p.Steps {
		if len(step.Operations) == 0 {
			return fmt.Errorf("step %d (%s): no operations", i, step.Name)
		}
		for j, op := range step.Operations {
			if _, err := op.build(nil, nil); err != nil {
				return fmt.Errorf(
					"step %d (%s): operation %d: %w",
					i,
					step.Name,
					j,
					err,
				)
			}
		}
	}
	return nil
}

func (o Operation) String() string {
	if o.To != "" {
		return fmt.Sprintf("%s %s -> %s", o.Op, o.Id, o.To)
	}
	return fmt.Sprintf("%s %s", o.Op, o.Id)
}

// RunFunc returns a function that performs the operation with client
func (o Operation) RunFunc(
	client *iroha.Client,
	options ...iroha.CallOptionFunc,
) (RunFunc, error) {
	if client == nil {
		return nil, errors.New("no client")
	}
	return o.build(client, options)
}

// build checks the operation and binds it to client. Validation passes a nil client
// and discards the result
func (o Operation) build(
	client *iroha.Client,
	options []iroha.CallOptionFunc,
) (RunFunc, error) {
	if o.Id == "" {
		return nil, fmt.Errorf("%s: missing id", o.Op)
	}
	if err := o.checkIds(); err != nil {
		return nil, fmt.Errorf("%s: %w", o.Op, err)
	}
	switch o.Op {
	case OpRegisterDomain:
		return func(ctx context.Context) (txsubmission.Outcome, error) {
			return client.RegisterDomain(ctx, o.Id, options...)
		}, nil
	case OpRegisterAccount:
		signatories := make([]ledger.PublicKey, 0, len(o.Signatories))
		for _, s := range o.Signatories {
			key, err := ledger.ParsePublicKey(s)
			if err != nil {
				return nil, fmt.Errorf("%s: signatory %q: %w", o.Op, s, err)
			}
			signatories = append(signatories, key)
		}
		return func(ctx context.Context) (txsubmission.Outcome, error) {
			return client.RegisterAccount(ctx, o.Id, signatories, options...)
		}, nil
	case OpRegisterAssetDefinition:
		valueType := ledger.AssetValueTypeStore
		if o.Type != "" {
			var err error
			if valueType, err = ledger.ParseAssetValueType(o.Type); err != nil {
				return nil, fmt.Errorf("%s: %w", o.Op, err)
			}
		}
		mintable := ledger.MintableInfinitely
		if o.Mintable != "" {
			var err error
			if mintable, err = ledger.ParseMintable(o.Mintable); err != nil {
				return nil, fmt.Errorf("%s: %w", o.Op, err)
			}
		}
		defOptions := append(
			options[:len(options):len(options)],
			iroha.WithValueType(valueType),
			iroha.WithMintable(mintable),
		)
		return func(ctx context.Context) (txsubmission.Outcome, error) {
			return client.RegisterAssetDefinition(ctx, o.Id, defOptions...)
		}, nil
	case OpRegisterAsset:
		return func(ctx context.Context) (txsubmission.Outcome, error) {
			return client.RegisterAsset(
				ctx,
				o.Id,
				ledger.NewQuantity(o.Quantity),
				options...,
			)
		}, nil
	case OpTransfer:
		if o.To == "" {
			return nil, fmt.Errorf("%s: missing destination", o.Op)
		}
		return func(ctx context.Context) (txsubmission.Outcome, error) {
			return client.TransferAsset(ctx, o.Id, o.Quantity, o.To, options...)
		}, nil
	case OpMint:
		return func(ctx context.Context) (txsubmission.Outcome, error) {
			return client.MintAsset(ctx, o.Id, o.Quantity, options...)
		}, nil
	case OpBurn:
		return func(ctx context.Context) (txsubmission.Outcome, error) {
			return client.BurnAsset(ctx, o.Id, o.Quantity, options...)
		}, nil
	default:
		return nil, fmt.Errorf("unknown operation: %q", o.Op)
	}
}

// checkIds parses the identifiers so that a malformed plan fails before anything is
// submitted
func (o Operation) checkIds() error {
	var err error
	switch o.Op {
	case OpRegisterDomain:
		_, err = ledger.ParseDomainId(o.Id)
	case OpRegisterAccount:
		_, err = ledger.ParseAccountId(o.Id)
	case OpRegisterAssetDefinition:
		_, err = ledger.ParseAssetDefinitionId(o.Id)
	case OpRegisterAsset, OpMint, OpBurn:
		_, err = ledger.ParseAssetId(o.Id)
	case OpTransfer:
		if _, err = ledger.ParseAssetId(o.Id); err == nil && o.To != "" {
			_, err = ledger.ParseAssetId(o.To)
		}
	}
	return err
}
