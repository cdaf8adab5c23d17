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

package ledger

import (
	"encoding"
	"fmt"
	"strings"

	"github.com/blinklabs-io/goiroha/cbor"
)

const (
	idKindDomain          = "domain id"
	idKindAccount         = "account id"
	idKindAssetDefinition = "asset definition id"
	idKindAsset           = "asset id"
)

// DomainId identifies a domain. Its canonical form is the bare domain name.
type DomainId struct {
	Name Name
}

func NewDomainId(name Name) DomainId {
	return DomainId{Name: name}
}

func ParseDomainId(s string) (DomainId, error) {
	name, err := NewName(s)
	if err != nil {
		return DomainId{}, InvalidIdentifierError{
			Kind:  idKindDomain,
			Input: s,
			Err:   err,
		}
	}
	return DomainId{Name: name}, nil
}

func (id DomainId) String() string {
	return id.Name.String()
}

func (id DomainId) IsZero() bool {
	return id.Name.IsZero()
}

func (id DomainId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *DomainId) UnmarshalText(data []byte) error {
	tmp, err := ParseDomainId(string(data))
	if err != nil {
		return err
	}
	*id = tmp
	return nil
}

func (id DomainId) MarshalCBOR() ([]byte, error) {
	return marshalIdCbor(id)
}

func (id *DomainId) UnmarshalCBOR(data []byte) error {
	return unmarshalIdCbor(data, id)
}

// AccountId identifies an account within a domain, in the form name@domain
type AccountId struct {
	Name   Name
	Domain DomainId
}

func NewAccountId(name Name, domain DomainId) AccountId {
	return AccountId{Name: name, Domain: domain}
}

func ParseAccountId(s string) (AccountId, error) {
	name, domain, err := splitOnce(s, AccountIdDelimiter, idKindAccount)
	if err != nil {
		return AccountId{}, err
	}
	return AccountId{Name: name, Domain: DomainId{Name: domain}}, nil
}

func (id AccountId) String() string {
	return id.Name.String() + AccountIdDelimiter + id.Domain.String()
}

func (id AccountId) IsZero() bool {
	return id.Name.IsZero() && id.Domain.IsZero()
}

func (id AccountId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AccountId) UnmarshalText(data []byte) error {
	tmp, err := ParseAccountId(string(data))
	if err != nil {
		return err
	}
	*id = tmp
	return nil
}

func (id AccountId) MarshalCBOR() ([]byte, error) {
	return marshalIdCbor(id)
}

func (id *AccountId) UnmarshalCBOR(data []byte) error {
	return unmarshalIdCbor(data, id)
}

// AssetDefinitionId identifies an asset definition within a domain, in the form name#domain
type AssetDefinitionId struct {
	Name   Name
	Domain DomainId
}

func NewAssetDefinitionId(name Name, domain DomainId) AssetDefinitionId {
	return AssetDefinitionId{Name: name, Domain: domain}
}

func ParseAssetDefinitionId(s string) (AssetDefinitionId, error) {
	name, domain, err := splitOnce(s, AssetIdDelimiter, idKindAssetDefinition)
	if err != nil {
		return AssetDefinitionId{}, err
	}
	return AssetDefinitionId{Name: name, Domain: DomainId{Name: domain}}, nil
}

func (id AssetDefinitionId) String() string {
	return id.Name.String() + AssetIdDelimiter + id.Domain.String()
}

func (id AssetDefinitionId) IsZero() bool {
	return id.Name.IsZero() && id.Domain.IsZero()
}

func (id AssetDefinitionId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AssetDefinitionId) UnmarshalText(data []byte) error {
	tmp, err := ParseAssetDefinitionId(string(data))
	if err != nil {
		return err
	}
	*id = tmp
	return nil
}

func (id AssetDefinitionId) MarshalCBOR() ([]byte, error) {
	return marshalIdCbor(id)
}

func (id *AssetDefinitionId) UnmarshalCBOR(data []byte) error {
	return unmarshalIdCbor(data, id)
}

// AssetId identifies a holding of an asset definition by an account, in the form
// definition#account (e.g. rose#wonderland#alice@wonderland)
type AssetId struct {
	Definition AssetDefinitionId
	Account    AccountId
}

func NewAssetId(definition AssetDefinitionId, account AccountId) AssetId {
	return AssetId{Definition: definition, Account: account}
}

// ParseAssetId splits the input on the rightmost '#'. The left part must be an
// asset definition id and the right part an account id.
func ParseAssetId(s string) (AssetId, error) {
	idx := strings.LastIndex(s, AssetIdDelimiter)
	if idx < 0 {
		return AssetId{}, InvalidIdentifierError{
			Kind:  idKindAsset,
			Input: s,
			Err:   fmt.Errorf("missing %q delimiter", AssetIdDelimiter),
		}
	}
	definition, err := ParseAssetDefinitionId(s[:idx])
	if err != nil {
		return AssetId{}, InvalidIdentifierError{
			Kind:  idKindAsset,
			Input: s,
			Err:   err,
		}
	}
	account, err := ParseAccountId(s[idx+1:])
	if err != nil {
		return AssetId{}, InvalidIdentifierError{
			Kind:  idKindAsset,
			Input: s,
			Err:   err,
		}
	}
	return AssetId{Definition: definition, Account: account}, nil
}

func (id AssetId) String() string {
	return id.Definition.String() + AssetIdDelimiter + id.Account.String()
}

func (id AssetId) IsZero() bool {
	return id.Definition.IsZero() && id.Account.IsZero()
}

func (id AssetId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AssetId) UnmarshalText(data []byte) error {
	tmp, err := ParseAssetId(string(data))
	if err != nil {
		return err
	}
	*id = tmp
	return nil
}

func (id AssetId) MarshalCBOR() ([]byte, error) {
	return marshalIdCbor(id)
}

func (id *AssetId) UnmarshalCBOR(data []byte) error {
	return unmarshalIdCbor(data, id)
}

// splitOnce splits a two-part identifier on a delimiter that must occur exactly once
func splitOnce(s string, delim string, kind string) (Name, Name, error) {
	parts := strings.Split(s, delim)
	if len(parts) != 2 {
		return Name{}, Name{}, InvalidIdentifierError{
			Kind:  kind,
			Input: s,
			Err: fmt.Errorf(
				"expected exactly one %q delimiter, found %d",
				delim,
				len(parts)-1,
			),
		}
	}
	name, err := NewName(parts[0])
	if err != nil {
		return Name{}, Name{}, InvalidIdentifierError{
			Kind:  kind,
			Input: s,
			Err:   err,
		}
	}
	domain, err := NewName(parts[1])
	if err != nil {
		return Name{}, Name{}, InvalidIdentifierError{
			Kind:  kind,
			Input: s,
			Err:   err,
		}
	}
	return name, domain, nil
}

func marshalIdCbor(id fmt.Stringer) ([]byte, error) {
	return cbor.Encode(id.String())
}

func unmarshalIdCbor(data []byte, id encoding.TextUnmarshaler) error {
	var tmp string
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	return id.UnmarshalText([]byte(tmp))
}
