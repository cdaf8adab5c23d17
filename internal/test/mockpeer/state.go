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

package mockpeer

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"

	"github.com/blinklabs-io/goiroha/ledger"
)

var errNotFound = errors.New("not found")

// State is the in-memory world state of the mock peer. It is not safe for concurrent use;
// the Peer serializes access.
type State struct {
	domains     map[ledger.DomainId]ledger.Domain
	accounts    map[ledger.AccountId]ledger.Account
	definitions map[ledger.AssetDefinitionId]ledger.AssetDefinition
}

// NewState returns a state holding the genesis domain and account
func NewState(genesis ledger.AccountId, genesisKey ledger.PublicKey) *State {
	s := &State{
		domains:     map[ledger.DomainId]ledger.Domain{},
		accounts:    map[ledger.AccountId]ledger.Account{},
		definitions: map[ledger.AssetDefinitionId]ledger.AssetDefinition{},
	}
	s.domains[genesis.Domain] = ledger.Domain{
		Id:       genesis.Domain,
		Metadata: ledger.Metadata{},
	}
	s.accounts[genesis] = ledger.Account{
		Id:          genesis,
		Signatories: []ledger.PublicKey{genesisKey},
		Assets:      map[ledger.AssetId]ledger.Asset{},
		Metadata:    ledger.Metadata{},
	}
	return s
}

func (s *State) clone() *State {
	ret := &State{
		domains:     maps.Clone(s.domains),
		accounts:    make(map[ledger.AccountId]ledger.Account, len(s.accounts)),
		definitions: maps.Clone(s.definitions),
	}
	for id, account := range s.accounts {
		account.Assets = maps.Clone(account.Assets)
		account.Signatories = slices.Clone(account.Signatories)
		ret.accounts[id] = account
	}
	return ret
}

// Authorize checks that the key is a signatory of the account
func (s *State) Authorize(account ledger.AccountId, key ledger.PublicKey) error {
	tmpAccount, ok := s.accounts[account]
	if !ok {
		return fmt.Errorf("authority %s does not exist", account.String())
	}
	if !tmpAccount.HasSignatory(key) {
		return fmt.Errorf(
			"%s is not a signatory of %s",
			key.String(),
			account.String(),
		)
	}
	return nil
}

// Apply validates a signed transaction against the state and applies all of its
// instructions, or none of them
func (s *State) Apply(tx *ledger.SignedTransaction) (*State, error) {
	payload := tx.Payload()
	for _, sig := range tx.Signatures() {
		if err := s.Authorize(payload.AccountId, sig.PublicKey); err != nil {
			return nil, err
		}
	}
	next := s.clone()
	for idx, instruction := range payload.Instructions {
		if err := next.apply(instruction); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", idx, err)
		}
	}
	return next, nil
}

func (s *State) apply(instruction ledger.Instruction) error {
	switch i := instruction.(type) {
	case *ledger.RegisterDomain:
		if _, ok := s.domains[i.Id]; ok {
			return fmt.Errorf("domain %s already exists", i.Id.String())
		}
		s.domains[i.Id] = ledger.Domain{Id: i.Id, Metadata: i.Metadata}
	case *ledger.RegisterAccount:
		if _, ok := s.domains[i.Id.Domain]; !ok {
			return fmt.Errorf("domain %s does not exist", i.Id.Domain.String())
		}
		if _, ok := s.accounts[i.Id]; ok {
			return fmt.Errorf("account %s already exists", i.Id.String())
		}
		for _, key := range i.Signatories {
			if err := key.Validate(); err != nil {
				return err
			}
		}
		s.accounts[i.Id] = ledger.Account{
			Id:          i.Id,
			Signatories: slices.Clone(i.Signatories),
			Assets:      map[ledger.AssetId]ledger.Asset{},
			Metadata:    i.Metadata,
		}
	case *ledger.RegisterAssetDefinition:
		if _, ok := s.domains[i.Id.Domain]; !ok {
			return fmt.Errorf("domain %s does not exist", i.Id.Domain.String())
		}
		if _, ok := s.definitions[i.Id]; ok {
			return fmt.Errorf("asset definition %s already exists", i.Id.String())
		}
		if !i.ValueType.Valid() || !i.Mintable.Valid() {
			return errors.New("invalid asset definition")
		}
		s.definitions[i.Id] = ledger.AssetDefinition{
			Id:        i.Id,
			ValueType: i.ValueType,
			Mintable:  i.Mintable,
			Metadata:  i.Metadata,
		}
	case *ledger.RegisterAsset:
		definition, ok := s.definitions[i.Id.Definition]
		if !ok {
			return fmt.Errorf(
				"asset definition %s does not exist",
				i.Id.Definition.String(),
			)
		}
		account, ok := s.accounts[i.Id.Account]
		if !ok {
			return fmt.Errorf("account %s does not exist", i.Id.Account.String())
		}
		if _, ok := account.Assets[i.Id]; ok {
			return fmt.Errorf("asset %s already exists", i.Id.String())
		}
		if i.Value == nil || i.Value.Type() != definition.ValueType {
			return ledger.TypeMismatchError{
				Expected: definition.ValueType.String(),
				Actual:   valueTypeName(i.Value),
			}
		}
		account.Assets[i.Id] = ledger.NewAsset(i.Id, i.Value)
	case *ledger.TransferAsset:
		if i.Source.Definition != i.Destination.Definition {
			return errors.New("transfer between different asset definitions")
		}
		sourceQuantity, err := s.quantity(i.Source)
		if err != nil {
			return err
		}
		destinationQuantity, err := s.quantity(i.Destination)
		if err != nil {
			return err
		}
		if sourceQuantity < i.Quantity {
			return fmt.Errorf(
				"insufficient balance: %s holds %d, transfer needs %d",
				i.Source.String(),
				sourceQuantity,
				i.Quantity,
			)
		}
		if i.Source == i.Destination {
			return nil
		}
		if uint64(destinationQuantity)+uint64(i.Quantity) > math.MaxUint32 {
			return errors.New("quantity overflow")
		}
		s.setQuantity(i.Source, sourceQuantity-i.Quantity)
		s.setQuantity(i.Destination, destinationQuantity+i.Quantity)
	case *ledger.MintAsset:
		quantity, err := s.quantity(i.Id)
		if err != nil {
			return err
		}
		definition := s.definitions[i.Id.Definition]
		switch definition.Mintable {
		case ledger.MintableNot:
			return fmt.Errorf("asset definition %s is not mintable", definition.Id.String())
		case ledger.MintableOnce:
			definition.Mintable = ledger.MintableNot
			s.definitions[definition.Id] = definition
		case ledger.MintableInfinitely:
		}
		if uint64(quantity)+uint64(i.Quantity) > math.MaxUint32 {
			return errors.New("quantity overflow")
		}
		s.setQuantity(i.Id, quantity+i.Quantity)
	case *ledger.BurnAsset:
		quantity, err := s.quantity(i.Id)
		if err != nil {
			return err
		}
		if quantity < i.Quantity {
			return fmt.Errorf(
				"insufficient balance: %s holds %d, burn needs %d",
				i.Id.String(),
				quantity,
				i.Quantity,
			)
		}
		s.setQuantity(i.Id, quantity-i.Quantity)
	default:
		return fmt.Errorf("unsupported instruction type %T", instruction)
	}
	return nil
}

func valueTypeName(v ledger.AssetValue) string {
	if v == nil {
		return "none"
	}
	return v.Type().String()
}

func (s *State) quantity(id ledger.AssetId) (uint32, error) {
	account, ok := s.accounts[id.Account]
	if !ok {
		return 0, fmt.Errorf("account %s does not exist", id.Account.String())
	}
	asset, ok := account.Assets[id]
	if !ok {
		return 0, fmt.Errorf("asset %s does not exist", id.String())
	}
	return ledger.AsQuantity(asset.Value)
}

func (s *State) setQuantity(id ledger.AssetId, quantity uint32) {
	account := s.accounts[id.Account]
	account.Assets[id] = ledger.NewAsset(id, ledger.NewQuantity(quantity))
}

func (s *State) Domains() []ledger.Domain {
	ret := slices.Collect(maps.Values(s.domains))
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Id.String() < ret[j].Id.String()
	})
	return ret
}

func (s *State) Domain(id ledger.DomainId) (ledger.Domain, error) {
	domain, ok := s.domains[id]
	if !ok {
		return ledger.Domain{}, fmt.Errorf("domain %s: %w", id.String(), errNotFound)
	}
	return domain, nil
}

func (s *State) Accounts() []ledger.Account {
	ret := slices.Collect(maps.Values(s.accounts))
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Id.String() < ret[j].Id.String()
	})
	return ret
}

func (s *State) Account(id ledger.AccountId) (ledger.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return ledger.Account{}, fmt.Errorf("account %s: %w", id.String(), errNotFound)
	}
	return account, nil
}

func (s *State) AssetDefinitions() []ledger.AssetDefinition {
	ret := slices.Collect(maps.Values(s.definitions))
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Id.String() < ret[j].Id.String()
	})
	return ret
}

func (s *State) Assets() []ledger.Asset {
	var ret []ledger.Asset
	for _, account := range s.accounts {
		for _, asset := range account.Assets {
			ret = append(ret, asset)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Id.String() < ret[j].Id.String()
	})
	return ret
}

func (s *State) Asset(id ledger.AssetId) (ledger.Asset, error) {
	account, ok := s.accounts[id.Account]
	if ok {
		if asset, ok := account.Assets[id]; ok {
			return asset, nil
		}
	}
	return ledger.Asset{}, fmt.Errorf("asset %s: %w", id.String(), errNotFound)
}
