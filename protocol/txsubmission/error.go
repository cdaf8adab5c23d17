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

package txsubmission

import (
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/goiroha/ledger"
)

var (
	ErrHandleClosed   = errors.New("commitment handle is closed")
	ErrNilTransaction = errors.New("transaction is nil")
)

// TransactionRejectedError indicates that the peer refused the transaction at admission or
// that the ledger rejected it during validation
type TransactionRejectedError struct {
	Hash   ledger.Hash
	Reason string
}

func (e TransactionRejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("transaction %s rejected", e.Hash.String())
	}
	return fmt.Sprintf(
		"transaction %s rejected: %s",
		e.Hash.String(),
		e.Reason,
	)
}

// CommitmentTimeoutError indicates that no final status arrived in time. The transaction
// may still be committed later.
type CommitmentTimeoutError struct {
	Hash    ledger.Hash
	Timeout time.Duration
}

func (e CommitmentTimeoutError) Error() string {
	return fmt.Sprintf(
		"transaction %s: no commitment within %s",
		e.Hash.String(),
		e.Timeout,
	)
}
