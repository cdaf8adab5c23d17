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

package mockpeer_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/blinklabs-io/goiroha/cbor"
	"github.com/blinklabs-io/goiroha/internal/test"
	"github.com/blinklabs-io/goiroha/internal/test/mockpeer"
	"github.com/blinklabs-io/goiroha/keypair"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPeer(t *testing.T, options ...mockpeer.PeerOptionFunc) (*mockpeer.Peer, ledger.Authority) {
	t.Helper()
	kp, err := keypair.Generate()
	require.NoError(t, err)
	genesis := test.AccountId("alice@wonderland")
	p := mockpeer.New(genesis, kp.PublicKey(), options...)
	t.Cleanup(p.Close)
	return p, ledger.Authority{Account: genesis, Signer: kp}
}

func postTransaction(
	t *testing.T,
	httpClient *http.Client,
	p *mockpeer.Peer,
	tx *ledger.SignedTransaction,
) *http.Response {
	t.Helper()
	txCbor, err := cbor.Encode(tx)
	require.NoError(t, err)
	resp, err := httpClient.Post(
		p.PeerUrl()+protocol.EndpointTransaction,
		protocol.ContentTypeCbor,
		bytes.NewReader(txCbor),
	)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

func signedTx(
	t *testing.T,
	authority ledger.Authority,
	instructions ...ledger.Instruction,
) *ledger.SignedTransaction {
	t.Helper()
	tx, err := ledger.NewTransaction(authority.Account, instructions)
	require.NoError(t, err)
	signed, err := tx.Sign(authority.Signer)
	require.NoError(t, err)
	return signed
}

func newHttpClient(t *testing.T) *http.Client {
	httpClient := &http.Client{Transport: &http.Transport{}}
	t.Cleanup(httpClient.CloseIdleConnections)
	return httpClient
}

func TestPeerEvents(t *testing.T) {
	test.VerifyNoLeaks(t)
	p, genesis := newPeer(t, mockpeer.WithCommitDelay(10*time.Millisecond))
	httpClient := newHttpClient(t)
	tx := signedTx(t, genesis, ledger.NewRegisterDomain(test.DomainId("D"), nil))
	subscriber, err := events.NewSubscriber(
		events.Config{TelemetryUrl: mustParseUrl(t, p.TelemetryUrl())},
	)
	require.NoError(t, err)
	stream, err := subscriber.Subscribe(
		context.Background(),
		events.TransactionFilter(tx.Hash()),
	)
	require.NoError(t, err)
	defer stream.Close()
	resp := postTransaction(t, httpClient, p, tx)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var statuses []ledger.TxStatus
	for {
		event, err := stream.Next(ctx)
		require.NoError(t, err)
		statuses = append(statuses, event.Status)
		if event.Status.Final() {
			break
		}
	}
	assert.Equal(t, ledger.TxStatusCommitted, statuses[len(statuses)-1])
	status, ok := p.TransactionStatus(tx.Hash())
	require.True(t, ok)
	assert.Equal(t, ledger.TxStatusCommitted, status.Status)
}

func TestPeerAdmission(t *testing.T) {
	test.VerifyNoLeaks(t)
	p, genesis := newPeer(t)
	httpClient := newHttpClient(t)
	tx := signedTx(t, genesis, ledger.NewRegisterDomain(test.DomainId("D"), nil))
	resp := postTransaction(t, httpClient, p, tx)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = postTransaction(t, httpClient, p, tx)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, err := httpClient.Post(
		p.PeerUrl()+protocol.EndpointTransaction,
		protocol.ContentTypeCbor,
		bytes.NewReader([]byte{0xff}),
	)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPeerRejectsUnknownSignatory(t *testing.T) {
	test.VerifyNoLeaks(t)
	p, genesis := newPeer(t)
	httpClient := newHttpClient(t)
	intruder, err := keypair.Generate()
	require.NoError(t, err)
	tx := signedTx(
		t,
		ledger.Authority{Account: genesis.Account, Signer: intruder},
		ledger.NewRegisterDomain(test.DomainId("D"), nil),
	)
	resp := postTransaction(t, httpClient, p, tx)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool {
		status, ok := p.TransactionStatus(tx.Hash())
		return ok && status.Status.Final()
	}, 5*time.Second, 5*time.Millisecond)
	status, _ := p.TransactionStatus(tx.Hash())
	assert.Equal(t, ledger.TxStatusRejected, status.Status)
	assert.Contains(t, status.Reason, "is not a signatory of alice@wonderland")
}

func TestPeerStatusAndHealth(t *testing.T) {
	test.VerifyNoLeaks(t)
	p, _ := newPeer(t)
	httpClient := newHttpClient(t)
	resp, err := httpClient.Get(p.PeerUrl() + protocol.EndpointHealth)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, err = httpClient.Get(p.TelemetryUrl() + protocol.EndpointStatus)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"txs_accepted":0`)
	assert.Contains(t, string(body), `"uptime":{"secs":`)
}

func TestPeerCloseEndsStreams(t *testing.T) {
	test.VerifyNoLeaks(t)
	p, _ := newPeer(t)
	subscriber, err := events.NewSubscriber(
		events.Config{TelemetryUrl: mustParseUrl(t, p.TelemetryUrl())},
	)
	require.NoError(t, err)
	stream, err := subscriber.Subscribe(context.Background(), events.Filter{})
	require.NoError(t, err)
	defer stream.Close()
	p.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = stream.Next(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}
