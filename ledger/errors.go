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
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is matched by any InvalidNameError using errors.Is
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidIdentifier is matched by any InvalidIdentifierError using errors.Is
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrTypeMismatch is matched by any TypeMismatchError using errors.Is
	ErrTypeMismatch = errors.New("type mismatch")

	ErrEmptyTransaction  = errors.New("transaction has no instructions")
	ErrNilInstruction    = errors.New("transaction contains a nil instruction")
	ErrMissingAuthority  = errors.New("transaction has no authorizing account")
	ErrAlreadySigned     = errors.New("transaction is already signed")
	ErrMissingSigner     = errors.New("no signer provided")
	ErrInvalidSignature  = errors.New("signature verification failed")
	ErrUnsupportedDigest = errors.New("unsupported digest function")
)

// InvalidNameError indicates a string that cannot be used as a name
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
}

func (InvalidNameError) Is(target error) bool {
	return target == ErrInvalidName
}

// InvalidIdentifierError indicates a string that cannot be parsed as the given identifier kind
type InvalidIdentifierError struct {
	Kind  string
	Input string
	Err   error
}

func (e InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Kind, e.Input, e.Err)
}

func (e InvalidIdentifierError) Unwrap() error { return e.Err }

func (InvalidIdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// TypeMismatchError indicates that a decoded value is not the variant the caller expected
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf(
		"type mismatch: expected %s, found %s",
		e.Expected,
		e.Actual,
	)
}

func (TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
