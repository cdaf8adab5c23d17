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
	"io"
	"net/http"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/query"
)

func paginate[T any](items []T, pagination query.Pagination) []T {
	start, end := pagination.Apply(len(items))
	return items[start:end]
}

func (p *Peer) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	signedQuery := &query.SignedQuery{}
	if _, err := cbor.Decode(body, signedQuery); err != nil {
		http.Error(w, "decode query: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := signedQuery.Verify(); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	pagination, err := query.ParsePagination(r.URL.Query())
	if err != nil {
		http.Error(w, "invalid pagination: "+err.Error(), http.StatusBadRequest)
		return
	}
	result, err := p.runQuery(signedQuery, pagination)
	if err != nil {
		var authErr authorizationError
		switch {
		case errors.Is(err, errNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &authErr):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	resultCbor, err := cbor.Encode(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set(protocol.HeaderContentType, protocol.ContentTypeCbor)
	_, _ = w.Write(resultCbor)
}

type authorizationError struct {
	Err error
}

func (e authorizationError) Error() string {
	return e.Err.Error()
}

func (e authorizationError) Unwrap() error {
	return e.Err
}

func (p *Peer) runQuery(
	signedQuery *query.SignedQuery,
	pagination query.Pagination,
) (any, error) {
	payload := signedQuery.Payload()
	filterPredicate := payload.Predicate()
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := p.state.Authorize(payload.AccountId, signedQuery.Signature().PublicKey); err != nil {
		return nil, authorizationError{Err: err}
	}
	switch q := signedQuery.Query().(type) {
	case *query.FindAllDomains:
		return paginate(
			filter(p.state.Domains(), filterPredicate, domainFields),
			pagination,
		), nil
	case *query.FindDomainById:
		return p.state.Domain(q.Id)
	case *query.FindAllAccounts:
		return paginate(
			filter(p.state.Accounts(), filterPredicate, accountFields),
			pagination,
		), nil
	case *query.FindAccountById:
		return p.state.Account(q.Id)
	case *query.FindAllAssetDefinitions:
		return paginate(
			filter(p.state.AssetDefinitions(), filterPredicate, assetDefinitionFields),
			pagination,
		), nil
	case *query.FindAllAssets:
		return paginate(
			filter(p.state.Assets(), filterPredicate, assetFields),
			pagination,
		), nil
	case *query.FindAssetById:
		return p.state.Asset(q.Id)
	case *query.FindTransactionByHash:
		status, ok := p.txs[q.Hash]
		if !ok {
			return nil, fmt.Errorf("transaction %s: %w", q.Hash.String(), errNotFound)
		}
		return status, nil
	default:
		return nil, fmt.Errorf("unsupported query type %T", q)
	}
}
