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
	"strings"
	"unicode"

	"github.com/blinklabs-io/goiroha/cbor"
)

const (
	AccountIdDelimiter = "@"
	AssetIdDelimiter   = "#"
)

// Name is a validated identifier component. The zero value is not a valid name.
type Name struct {
	value string
}

// NewName validates the provided string and returns it as a Name
func NewName(name string) (Name, error) {
	if err := validateName(name); err != nil {
		return Name{}, err
	}
	return Name{value: name}, nil
}

func validateName(name string) error {
	if name == "" {
		return InvalidNameError{Name: name, Reason: "name is empty"}
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return InvalidNameError{Name: name, Reason: "name contains whitespace"}
	}
	for _, delim := range []string{AccountIdDelimiter, AssetIdDelimiter} {
		if strings.Contains(name, delim) {
			return InvalidNameError{
				Name:   name,
				Reason: "name contains reserved character " + delim,
			}
		}
	}
	return nil
}

func (n Name) String() string {
	return n.value
}

func (n Name) IsZero() bool {
	return n.value == ""
}

func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.value), nil
}

func (n *Name) UnmarshalText(data []byte) error {
	tmp, err := NewName(string(data))
	if err != nil {
		return err
	}
	*n = tmp
	return nil
}

func (n Name) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(n.value)
}

func (n *Name) UnmarshalCBOR(data []byte) error {
	var tmp string
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	return n.UnmarshalText([]byte(tmp))
}
