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
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("query target not found")
	ErrQueryRejected = errors.New("query rejected")
)

// NotFoundError indicates that the queried entity does not exist
type NotFoundError struct {
	Query  string
	Reason string
}

func (e NotFoundError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: not found", e.Query)
	}
	return fmt.Sprintf("%s: not found: %s", e.Query, e.Reason)
}

func (NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// QueryRejectedError indicates that the peer refused to run the query
type QueryRejectedError struct {
	Query  string
	Reason string
}

func (e QueryRejectedError) Error() string {
	return fmt.Sprintf("%s: rejected: %s", e.Query, e.Reason)
}

func (QueryRejectedError) Is(target error) bool {
	return target == ErrQueryRejected
}
