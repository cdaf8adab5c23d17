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

package query_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/internal/test"
	"github.com/blinklabs-io/goiroha/keypair"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/ledger/predicate"
	"github.com/blinklabs-io/goiroha/metrics"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthority(t *testing.T) ledger.Authority {
	t.Helper()
	kp, err := keypair.Generate()
	require.NoError(t, err)
	return ledger.Authority{
		Account: test.AccountId("alice@wonderland"),
		Signer:  kp,
	}
}

type receivedQuery struct {
	query  *query.SignedQuery
	params url.Values
}

type queryPeer struct {
	mutex    sync.Mutex
	received []receivedQuery
	handler  func(w http.ResponseWriter, q *query.SignedQuery)
}

func (p *queryPeer) last() receivedQuery {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.received[len(p.received)-1]
}

func newQueryClient(t *testing.T, peer *queryPeer, m *metrics.Metrics) *query.Client {
	t.Helper()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !assert.Equal(t, protocol.EndpointQuery, r.URL.Path) {
				http.Error(w, "bad endpoint", http.StatusTeapot)
				return
			}
			body, err := io.ReadAll(r.Body)
			if !assert.NoError(t, err) {
				return
			}
			var q query.SignedQuery
			if _, err := cbor.Decode(body, &q); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := q.Verify(); err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			peer.mutex.Lock()
			peer.received = append(
				peer.received,
				receivedQuery{query: &q, params: r.URL.Query()},
			)
			peer.mutex.Unlock()
			peer.handler(w, &q)
		}),
	)
	httpClient := &http.Client{Transport: &http.Transport{}}
	t.Cleanup(func() {
		httpClient.CloseIdleConnections()
		server.Close()
	})
	peerUrl, err := url.Parse(server.URL)
	require.NoError(t, err)
	return query.NewClient(
		protocol.ProtocolOptions{
			PeerUrl:    peerUrl,
			HttpClient: httpClient,
			Metrics:    m,
		},
	)
}

func writeCbor(t *testing.T, w http.ResponseWriter, v any) {
	data, err := cbor.Encode(v)
	if !assert.NoError(t, err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set(protocol.HeaderContentType, protocol.ContentTypeCbor)
	_, _ = w.Write(data)
}

func TestFindAllDomains(t *testing.T) {
	test.VerifyNoLeaks(t)
	authority := testAuthority(t)
	peer := &queryPeer{
		handler: func(w http.ResponseWriter, q *query.SignedQuery) {
			writeCbor(t, w, []ledger.Domain{
				{Id: test.DomainId("D"), Metadata: ledger.Metadata{}},
				{Id: test.DomainId("wonderland"), Logo: "/ipfs/logo", Metadata: ledger.Metadata{}},
			})
		},
	}
	c := newQueryClient(t, peer, nil)
	filter := predicate.NewOr(
		predicate.Is(predicate.FieldId, "D"),
		predicate.StartsWith(predicate.FieldId, "wonder"),
	)
	domains, err := c.FindAllDomains(
		context.Background(),
		authority,
		query.WithPredicate(filter),
		query.WithPagination(1, 10),
	)
	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, "D", domains[0].Id.String())
	assert.Equal(t, "/ipfs/logo", domains[1].Logo)
	received := peer.last()
	assert.Equal(t, "1", received.params.Get(query.ParamStart))
	assert.Equal(t, "10", received.params.Get(query.ParamLimit))
	assert.IsType(t, &query.FindAllDomains{}, received.query.Query())
	assert.Equal(t, authority.Account, received.query.Payload().AccountId)
	require.NotNil(t, received.query.Payload().Predicate())
	assert.Equal(t, filter, received.query.Payload().Predicate())
}

func TestFindAccountById(t *testing.T) {
	test.VerifyNoLeaks(t)
	authority := testAuthority(t)
	assetId := test.AssetId("rose#wonderland#alice@wonderland")
	peer := &queryPeer{
		handler: func(w http.ResponseWriter, q *query.SignedQuery) {
			findQuery, ok := q.Query().(*query.FindAccountById)
			if !assert.True(t, ok) {
				return
			}
			writeCbor(t, w, ledger.Account{
				Id: findQuery.Id,
				Assets: map[ledger.AssetId]ledger.Asset{
					assetId: ledger.NewAsset(assetId, ledger.NewQuantity(13)),
				},
			})
		},
	}
	c := newQueryClient(t, peer, nil)
	account, err := c.FindAccountById(context.Background(), authority, authority.Account)
	require.NoError(t, err)
	assert.Equal(t, authority.Account, account.Id)
	asset, ok := account.Asset(assetId)
	require.True(t, ok)
	quantity, err := ledger.AsQuantity(asset.Value)
	require.NoError(t, err)
	assert.Equal(t, uint32(13), quantity)
	assert.Nil(t, peer.last().query.Payload().Predicate())
	assert.Empty(t, peer.last().params)
}

func TestFindTransactionByHash(t *testing.T) {
	test.VerifyNoLeaks(t)
	authority := testAuthority(t)
	hash := ledger.Blake2b256Hash([]byte("tx"))
	peer := &queryPeer{
		handler: func(w http.ResponseWriter, q *query.SignedQuery) {
			findQuery, ok := q.Query().(*query.FindTransactionByHash)
			if !assert.True(t, ok) {
				return
			}
			writeCbor(t, w, ledger.TransactionStatus{
				Hash:   findQuery.Hash,
				Status: ledger.TxStatusRejected,
				Reason: "duplicate domain",
			})
		},
	}
	c := newQueryClient(t, peer, nil)
	status, err := c.FindTransactionByHash(context.Background(), authority, hash)
	require.NoError(t, err)
	assert.Equal(t, hash, status.Hash)
	assert.Equal(t, ledger.TxStatusRejected, status.Status)
	assert.Equal(t, "duplicate domain", status.Reason)
}

func TestQueryErrors(t *testing.T) {
	testDefs := []struct {
		name    string
		handler func(w http.ResponseWriter, q *query.SignedQuery)
		check   func(t *testing.T, err error)
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *query.SignedQuery) {
				http.Error(w, "account joe@D", http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var notFoundErr query.NotFoundError
				require.ErrorAs(t, err, &notFoundErr)
				assert.Equal(t, "FindAccountById", notFoundErr.Query)
				assert.Equal(t, "account joe@D", notFoundErr.Reason)
				assert.ErrorIs(t, err, query.ErrNotFound)
			},
		},
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, _ *query.SignedQuery) {
				http.Error(w, "not permitted", http.StatusForbidden)
			},
			check: func(t *testing.T, err error) {
				var rejectedErr query.QueryRejectedError
				require.ErrorAs(t, err, &rejectedErr)
				assert.Equal(t, "not permitted", rejectedErr.Reason)
				assert.ErrorIs(t, err, query.ErrQueryRejected)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *query.SignedQuery) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				var statusErr *protocol.StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
			},
		},
		{
			name: "undecodable result",
			handler: func(w http.ResponseWriter, _ *query.SignedQuery) {
				_, _ = w.Write([]byte{0xff, 0x00})
			},
			check: func(t *testing.T, err error) {
				var serErr protocol.SerializationError
				require.ErrorAs(t, err, &serErr)
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			test.VerifyNoLeaks(t)
			m, err := metrics.New(nil)
			require.NoError(t, err)
			c := newQueryClient(t, &queryPeer{handler: testDef.handler}, m)
			authority := testAuthority(t)
			_, err = c.FindAccountById(
				context.Background(),
				authority,
				test.AccountId("joe@D"),
			)
			require.Error(t, err)
			testDef.check(t, err)
			stats := m.Stats()
			assert.Equal(t, uint64(1), stats.Queries)
			assert.Equal(t, uint64(1), stats.QueryErrors)
		})
	}
}

func TestMalformedPredicateNotSent(t *testing.T) {
	test.VerifyNoLeaks(t)
	peer := &queryPeer{
		handler: func(w http.ResponseWriter, _ *query.SignedQuery) {
			writeCbor(t, w, []ledger.Asset{})
		},
	}
	c := newQueryClient(t, peer, nil)
	_, err := c.FindAllAssets(
		context.Background(),
		testAuthority(t),
		query.WithPredicate(predicate.NewAnd()),
	)
	assert.ErrorIs(t, err, predicate.ErrMalformedPredicate)
	assert.Empty(t, peer.received)
}

func TestMissingAuthority(t *testing.T) {
	c := query.NewClient(protocol.ProtocolOptions{})
	_, err := c.FindAllDomains(context.Background(), ledger.Authority{})
	assert.ErrorIs(t, err, ledger.ErrMissingAuthority)
	kp, err := keypair.Generate()
	require.NoError(t, err)
	_, err = c.FindAllDomains(
		context.Background(),
		ledger.Authority{Signer: kp},
	)
	assert.ErrorIs(t, err, ledger.ErrMissingAuthority)
	_, err = c.FindAllDomains(
		context.Background(),
		ledger.Authority{Account: test.AccountId("joe@D")},
	)
	assert.ErrorIs(t, err, ledger.ErrMissingSigner)
}

func TestSignedQueryCbor(t *testing.T) {
	authority := testAuthority(t)
	filter := predicate.NewNot(predicate.Ge(predicate.FieldQuantity, 5))
	signed, err := query.NewSignedQuery(
		query.NewFindAssetById(test.AssetId("rose#wonderland#alice@wonderland")),
		authority,
		filter,
	)
	require.NoError(t, err)
	require.NoError(t, signed.Verify())
	data, err := cbor.Encode(signed)
	require.NoError(t, err)
	var decoded query.SignedQuery
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	require.NoError(t, decoded.Verify())
	assert.Equal(t, signed.Query(), decoded.Query())
	assert.Equal(t, filter, decoded.Payload().Predicate())
	assert.Equal(t, signed.Payload().Timestamp, decoded.Payload().Timestamp)
	reencoded, err := cbor.Encode(&decoded)
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}

func TestSignedQueryPayloadCopy(t *testing.T) {
	authority := testAuthority(t)
	filter := predicate.Is(predicate.FieldName, "wonderland")
	signed, err := query.NewSignedQuery(query.NewFindAllDomains(), authority, filter)
	require.NoError(t, err)
	payload := signed.Payload()
	cborData := payload.Cbor()
	require.NotEmpty(t, cborData)
	for idx := range cborData {
		cborData[idx] = 0
	}
	payload.Filter.Predicate = predicate.Is(predicate.FieldName, "looking_glass")
	assert.NoError(t, signed.Verify())
	assert.Equal(t, filter, signed.Payload().Predicate())
}

func TestSignedQueryTampered(t *testing.T) {
	authority := testAuthority(t)
	signed, err := query.NewSignedQuery(query.NewFindAllDomains(), authority, nil)
	require.NoError(t, err)
	other, err := query.NewSignedQuery(query.NewFindAllAccounts(), authority, nil)
	require.NoError(t, err)
	data, err := cbor.Encode(signed)
	require.NoError(t, err)
	otherData, err := cbor.Encode(other)
	require.NoError(t, err)
	// Graft the second payload onto the first signature
	type envelope struct {
		cbor.StructAsArray
		Payload   cbor.RawMessage
		Signature ledger.Signature
	}
	var tmp, tmpOther envelope
	_, err = cbor.Decode(data, &tmp)
	require.NoError(t, err)
	_, err = cbor.Decode(otherData, &tmpOther)
	require.NoError(t, err)
	tmp.Payload = tmpOther.Payload
	grafted, err := cbor.Encode(&tmp)
	require.NoError(t, err)
	var tampered query.SignedQuery
	_, err = cbor.Decode(grafted, &tampered)
	require.NoError(t, err)
	assert.ErrorIs(t, tampered.Verify(), ledger.ErrInvalidSignature)
}

func TestUnknownQueryType(t *testing.T) {
	var w query.QueryWrapper
	data, err := cbor.Encode([]any{99})
	require.NoError(t, err)
	err = w.UnmarshalCBOR(data)
	assert.ErrorContains(t, err, "unknown query type: 99")
}

func TestPagination(t *testing.T) {
	testDefs := []struct {
		pagination query.Pagination
		length     int
		start      int
		end        int
	}{
		{query.Pagination{}, 5, 0, 5},
		{query.Pagination{Start: 2}, 5, 2, 5},
		{query.Pagination{Limit: 2}, 5, 0, 2},
		{query.Pagination{Start: 4, Limit: 3}, 5, 4, 5},
		{query.Pagination{Start: 9, Limit: 3}, 5, 5, 5},
	}
	for _, testDef := range testDefs {
		start, end := testDef.pagination.Apply(testDef.length)
		assert.Equal(t, testDef.start, start, "%+v", testDef.pagination)
		assert.Equal(t, testDef.end, end, "%+v", testDef.pagination)
	}
	params := url.Values{}
	params.Set(query.ParamStart, "3")
	params.Set(query.ParamLimit, "7")
	p, err := query.ParsePagination(params)
	require.NoError(t, err)
	assert.Equal(t, query.Pagination{Start: 3, Limit: 7}, p)
	params.Set(query.ParamLimit, "-1")
	_, err = query.ParsePagination(params)
	assert.Error(t, err)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "FindAllAssets", query.TypeName(query.QueryTypeFindAllAssets))
	assert.Equal(t, "Query(42)", query.TypeName(42))
}
