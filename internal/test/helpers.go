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

package test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/blinklabs-io/goiroha/ledger"
	"go.uber.org/goleak"
)

func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// LeakOptions returns the goleak options used by tests that talk HTTP. Idle keep-alive
// connections in the shared transport are owned by net/http, not by our code.
func LeakOptions() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	}
}

// VerifyNoLeaks fails the test if any unexpected goroutines are still running once the
// test and every cleanup registered after this call have finished
func VerifyNoLeaks(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		goleak.VerifyNone(t, LeakOptions()...)
	})
}

func AccountId(s string) ledger.AccountId {
	id, err := ledger.ParseAccountId(s)
	if err != nil {
		panic(fmt.Sprintf("error parsing account id: %s", err))
	}
	return id
}

func AssetId(s string) ledger.AssetId {
	id, err := ledger.ParseAssetId(s)
	if err != nil {
		panic(fmt.Sprintf("error parsing asset id: %s", err))
	}
	return id
}

func DomainId(s string) ledger.DomainId {
	id, err := ledger.ParseDomainId(s)
	if err != nil {
		panic(fmt.Sprintf("error parsing domain id: %s", err))
	}
	return id
}

func AssetDefinitionId(s string) ledger.AssetDefinitionId {
	id, err := ledger.ParseAssetDefinitionId(s)
	if err != nil {
		panic(fmt.Sprintf("error parsing asset definition id: %s", err))
	}
	return id
}
