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

package iroha_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	iroha "github.com/blinklabs-io/goiroha"
	"github.com/blinklabs-io/goiroha/internal/test"
	"github.com/blinklabs-io/goiroha/internal/test/mockpeer"
	"github.com/blinklabs-io/goiroha/keypair"
	"github.com/blinklabs-io/goiroha/ledger"
	"github.com/blinklabs-io/goiroha/ledger/predicate"
	"github.com/blinklabs-io/goiroha/protocol"
	"github.com/blinklabs-io/goiroha/protocol/query"
	"github.com/blinklabs-io/goiroha/protocol/txsubmission"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminAccount = "alice@wonderland"
	testTimeout  = 5 * time.Second
)

type fixture struct {
	peer   *mockpeer.Peer
	client *iroha.Client
	admin  *keypair.KeyPair
}

func newFixture(
	t *testing.T,
	telemetry bool,
	peerOptions []mockpeer.PeerOptionFunc,
	options ...iroha.ClientOptionFunc,
) *fixture {
	t.Helper()
	admin, err := keypair.Generate()
	require.NoError(t, err)
	p := mockpeer.New(test.AccountId(adminAccount), admin.PublicKey(), peerOptions...)
	t.Cleanup(p.Close)
	clientOptions := []iroha.ClientOptionFunc{
		iroha.WithPeerUrl(p.PeerUrl()),
		iroha.WithAdmin(test.AccountId(adminAccount), admin),
		iroha.WithDefaultCommitTimeout(testTimeout),
		iroha.WithPollInterval(10 * time.Millisecond),
	}
	if telemetry {
		clientOptions = append(clientOptions, iroha.WithTelemetryUrl(p.TelemetryUrl()))
	}
	c, err := iroha.NewClient(append(clientOptions, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return &fixture{peer: p, client: c, admin: admin}
}

func (f *fixture) amount(t *testing.T, account string, asset string) uint32 {
	t.Helper()
	amount, err := f.client.GetAccountAmount(context.Background(), account, asset)
	require.NoError(t, err)
	return amount
}

// runScenario registers joe and carl with holdings of asset#D and moves 10 units from joe to carl
func runScenario(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	joe, err := keypair.Generate()
	require.NoError(t, err)
	_, err = f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	_, err = f.client.RegisterAccount(ctx, "joe@D", []ledger.PublicKey{joe.PublicKey()})
	require.NoError(t, err)
	_, err = f.client.RegisterAssetDefinition(
		ctx,
		"asset#D",
		iroha.WithValueType(ledger.AssetValueTypeQuantity),
	)
	require.NoError(t, err)
	_, err = f.client.RegisterAsset(ctx, "asset#D#joe@D", ledger.NewQuantity(100))
	require.NoError(t, err)
	_, err = f.client.RegisterAccount(ctx, "carl@D", nil)
	require.NoError(t, err)
	_, err = f.client.RegisterAsset(ctx, "asset#D#carl@D", ledger.NewQuantity(0))
	require.NoError(t, err)
	outcome, err := f.client.TransferAsset(
		ctx,
		"asset#D#joe@D",
		10,
		"asset#D#carl@D",
		iroha.WithAuthority(test.AccountId("joe@D"), joe),
	)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxStatusCommitted, outcome.Status)
	assert.Equal(t, uint32(90), f.amount(t, "joe@D", "asset#D#joe@D"))
	assert.Equal(t, uint32(10), f.amount(t, "carl@D", "asset#D#carl@D"))
}

func TestEndToEnd(t *testing.T) {
	test.VerifyNoLeaks(t)
	reg := prometheus.NewRegistry()
	f := newFixture(t, true, nil, iroha.WithPrometheusRegistry(reg))
	runScenario(t, f)
	stats := f.client.Metrics().Stats()
	assert.Equal(t, uint64(7), stats.TransactionsSubmitted)
	assert.Equal(t, uint64(7), stats.TransactionsCommitted)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestEndToEndPolling(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(
		t,
		false,
		[]mockpeer.PeerOptionFunc{mockpeer.WithCommitDelay(20 * time.Millisecond)},
	)
	runScenario(t, f)
}

func TestListing(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	_, err := f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	domains, err := f.client.FindAllDomains(ctx)
	require.NoError(t, err)
	var ids []string
	for _, domain := range domains {
		ids = append(ids, domain.Id.String())
	}
	assert.Contains(t, ids, "D")
	assert.Contains(t, ids, "wonderland")
	filtered, err := f.client.FindAllDomains(
		ctx,
		iroha.WithPredicate(predicate.Is(predicate.FieldId, "D")),
	)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "D", filtered[0].Id.String())
	paged, err := f.client.FindAllDomains(ctx, iroha.WithPagination(1, 1))
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "wonderland", paged[0].Id.String())
	domain, err := f.client.FindDomainById(ctx, "D")
	require.NoError(t, err)
	assert.Equal(t, "D", domain.Id.String())
	_, err = f.client.FindDomainById(ctx, "E")
	assert.ErrorIs(t, err, query.ErrNotFound)
}

func TestUnauthorizedRejected(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	joe, err := keypair.Generate()
	require.NoError(t, err)
	intruder, err := keypair.Generate()
	require.NoError(t, err)
	_, err = f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	_, err = f.client.RegisterAccount(ctx, "joe@D", []ledger.PublicKey{joe.PublicKey()})
	require.NoError(t, err)
	// The intruder signs on behalf of joe
	_, err = f.client.RegisterAccount(
		ctx,
		"mallory@D",
		[]ledger.PublicKey{intruder.PublicKey()},
		iroha.WithAuthority(test.AccountId("joe@D"), intruder),
	)
	var rejectErr txsubmission.TransactionRejectedError
	require.ErrorAs(t, err, &rejectErr)
	assert.Contains(t, rejectErr.Reason, "is not a signatory of joe@D")
	_, err = f.client.FindAccountById(ctx, "mallory@D")
	assert.ErrorIs(t, err, query.ErrNotFound)
	// Queries are authorized the same way
	_, err = f.client.FindAllDomains(
		ctx,
		iroha.WithAuthority(test.AccountId("joe@D"), intruder),
	)
	var queryErr query.QueryRejectedError
	assert.ErrorAs(t, err, &queryErr)
}

func TestDuplicateRejected(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	_, err := f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	outcome, err := f.client.RegisterDomain(ctx, "D", iroha.WithNonce(1))
	var rejectErr txsubmission.TransactionRejectedError
	require.ErrorAs(t, err, &rejectErr)
	assert.Equal(t, ledger.TxStatusRejected, outcome.Status)
	assert.Contains(t, rejectErr.Reason, "domain D already exists")
}

func TestCommitTimeout(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, []mockpeer.PeerOptionFunc{mockpeer.WithDropEvents()})
	ctx := context.Background()
	handle, err := f.client.Submit(
		ctx,
		[]ledger.Instruction{ledger.NewRegisterDomain(test.DomainId("D"), nil)},
	)
	require.NoError(t, err)
	timeout := 100 * time.Millisecond
	start := time.Now()
	_, err = handle.Await(ctx, timeout)
	elapsed := time.Since(start)
	var timeoutErr txsubmission.CommitmentTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+2*time.Second)
	// The transaction was still applied
	require.Eventually(t, func() bool {
		status, err := f.client.TransactionStatus(ctx, handle.Hash())
		return err == nil && status.Status == ledger.TxStatusCommitted
	}, testTimeout, 10*time.Millisecond)
}

func TestCommitTimeoutPerCall(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, []mockpeer.PeerOptionFunc{mockpeer.WithDropEvents()})
	_, err := f.client.RegisterDomain(
		context.Background(),
		"D",
		iroha.WithCommitTimeout(50*time.Millisecond),
	)
	var timeoutErr txsubmission.CommitmentTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestCancelReleasesSubscription(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, []mockpeer.PeerOptionFunc{mockpeer.WithDropEvents()})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := f.client.RegisterDomain(ctx, "D")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransferConservation(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	_, err := f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	_, err = f.client.RegisterAssetDefinition(
		ctx,
		"coin#D",
		iroha.WithValueType(ledger.AssetValueTypeQuantity),
	)
	require.NoError(t, err)
	_, err = f.client.RegisterAccount(ctx, "bob@D", nil)
	require.NoError(t, err)
	_, err = f.client.RegisterAsset(ctx, "coin#D#alice@wonderland", ledger.NewQuantity(40))
	require.NoError(t, err)
	_, err = f.client.RegisterAsset(ctx, "coin#D#bob@D", ledger.NewQuantity(2))
	require.NoError(t, err)
	for _, n := range []uint32{1, 7, 0, 32} {
		before := f.amount(t, adminAccount, "coin#D#alice@wonderland")
		beforeBob := f.amount(t, "bob@D", "coin#D#bob@D")
		_, err := f.client.TransferAsset(ctx, "coin#D#alice@wonderland", n, "coin#D#bob@D")
		require.NoError(t, err)
		assert.Equal(t, before-n, f.amount(t, adminAccount, "coin#D#alice@wonderland"))
		assert.Equal(t, beforeBob+n, f.amount(t, "bob@D", "coin#D#bob@D"))
	}
	// Alice is drained, so any further transfer is refused
	_, err = f.client.TransferAsset(ctx, "coin#D#alice@wonderland", 1, "coin#D#bob@D")
	var rejectErr txsubmission.TransactionRejectedError
	require.ErrorAs(t, err, &rejectErr)
	assert.Contains(t, rejectErr.Reason, "insufficient balance")
	assert.Equal(t, uint32(42), f.amount(t, "bob@D", "coin#D#bob@D"))
}

func TestMintAndBurn(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	_, err := f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	_, err = f.client.RegisterAssetDefinition(
		ctx,
		"gem#D",
		iroha.WithValueType(ledger.AssetValueTypeQuantity),
		iroha.WithMintable(ledger.MintableOnce),
	)
	require.NoError(t, err)
	_, err = f.client.RegisterAsset(ctx, "gem#D#alice@wonderland", ledger.NewQuantity(0))
	require.NoError(t, err)
	_, err = f.client.MintAsset(ctx, "gem#D#alice@wonderland", 12)
	require.NoError(t, err)
	_, err = f.client.MintAsset(ctx, "gem#D#alice@wonderland", 1)
	var rejectErr txsubmission.TransactionRejectedError
	require.ErrorAs(t, err, &rejectErr)
	_, err = f.client.BurnAsset(ctx, "gem#D#alice@wonderland", 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), f.amount(t, adminAccount, "gem#D#alice@wonderland"))
	definitions, err := f.client.FindAllAssetDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, definitions, 1)
	assert.Equal(t, ledger.MintableNot, definitions[0].Mintable)
}

func TestGetAccountAmountErrors(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	_, err := f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	// Definitions default to Store
	_, err = f.client.RegisterAssetDefinition(ctx, "deed#D")
	require.NoError(t, err)
	title, err := ledger.NewName("title")
	require.NoError(t, err)
	_, err = f.client.RegisterAsset(
		ctx,
		"deed#D#alice@wonderland",
		ledger.NewStore(ledger.Metadata{title: ledger.NewStringValue("castle")}),
	)
	require.NoError(t, err)
	_, err = f.client.GetAccountAmount(ctx, adminAccount, "deed#D#alice@wonderland")
	var mismatchErr ledger.TypeMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	_, err = f.client.GetAccountAmount(ctx, adminAccount, "coin#D#alice@wonderland")
	var notFoundErr query.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assets, err := f.client.FindAllAssets(
		ctx,
		iroha.WithPredicate(predicate.Is(predicate.FieldDefinition, "deed#D")),
	)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	store, ok := assets[0].Value.(*ledger.StoreValue)
	require.True(t, ok)
	assert.Equal(t, ledger.NewStringValue("castle"), store.Store[title])
	asset, err := f.client.FindAssetById(ctx, "deed#D#alice@wonderland")
	require.NoError(t, err)
	assert.Equal(t, assets[0].Id, asset.Id)
	accounts, err := f.client.FindAllAccounts(
		ctx,
		iroha.WithPredicate(predicate.Is(predicate.FieldDomain, "wonderland")),
	)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, adminAccount, accounts[0].Id.String())
}

func TestInvalidIdentifiers(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	_, err := f.client.RegisterDomain(ctx, "bad@domain")
	assert.ErrorIs(t, err, ledger.ErrInvalidIdentifier)
	_, err = f.client.RegisterAccount(ctx, "joe", nil)
	assert.ErrorIs(t, err, ledger.ErrInvalidIdentifier)
	_, err = f.client.TransferAsset(ctx, "asset#D#joe@D", 1, "asset#D")
	assert.ErrorIs(t, err, ledger.ErrInvalidIdentifier)
	_, err = f.client.GetAccountAmount(ctx, "joe@D", "asset@D")
	assert.ErrorIs(t, err, ledger.ErrInvalidIdentifier)
	assert.Zero(t, f.client.Metrics().Stats().Requests)
}

func TestMissingAuthority(t *testing.T) {
	test.VerifyNoLeaks(t)
	c, err := iroha.NewClient(iroha.WithPeerUrl("http://127.0.0.1:1"))
	require.NoError(t, err)
	defer c.Close()
	_, err = c.RegisterDomain(context.Background(), "D")
	assert.ErrorIs(t, err, ledger.ErrMissingAuthority)
}

func TestNetworkError(t *testing.T) {
	test.VerifyNoLeaks(t)
	admin, err := keypair.Generate()
	require.NoError(t, err)
	c, err := iroha.NewClient(
		iroha.WithPeerUrl("http://127.0.0.1:1"),
		iroha.WithAdmin(test.AccountId(adminAccount), admin),
	)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.RegisterDomain(context.Background(), "D")
	var netErr protocol.NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Error(t, c.Health(context.Background()))
}

// newStalledClient returns a client for a peer that accepts requests and never answers them
func newStalledClient(t *testing.T, options ...iroha.ClientOptionFunc) *iroha.Client {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}),
	)
	t.Cleanup(server.Close)
	t.Cleanup(func() {
		close(release)
	})
	admin, err := keypair.Generate()
	require.NoError(t, err)
	c, err := iroha.NewClient(
		append(
			[]iroha.ClientOptionFunc{
				iroha.WithPeerUrl(server.URL),
				iroha.WithAdmin(test.AccountId(adminAccount), admin),
			},
			options...,
		)...,
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func TestQueryCallTimeout(t *testing.T) {
	test.VerifyNoLeaks(t)
	c := newStalledClient(t, iroha.WithCallTimeout(100*time.Millisecond))
	start := time.Now()
	_, err := c.FindAllDomains(context.Background())
	assert.Less(t, time.Since(start), testTimeout)
	var netErr protocol.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = c.GetAccountAmount(
		context.Background(),
		adminAccount,
		"rose#wonderland#alice@wonderland",
	)
	assert.ErrorAs(t, err, &netErr)
}

func TestCommitTimeoutCoversAdmission(t *testing.T) {
	test.VerifyNoLeaks(t)
	c := newStalledClient(t, iroha.WithDefaultCommitTimeout(200*time.Millisecond))
	start := time.Now()
	_, err := c.RegisterDomain(context.Background(), "D")
	elapsed := time.Since(start)
	var timeoutErr txsubmission.CommitmentTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 200*time.Millisecond, timeoutErr.Timeout)
	assert.False(t, timeoutErr.Hash.IsZero())
	assert.Less(t, elapsed, testTimeout)
	assert.Equal(t, uint64(1), c.Metrics().Stats().CommitTimeouts)
}

func TestNewClientErrors(t *testing.T) {
	_, err := iroha.NewClient()
	assert.ErrorIs(t, err, protocol.ErrNoPeerUrl)
	_, err = iroha.NewClient(iroha.WithPeerUrl("not a url"))
	assert.Error(t, err)
	_, err = iroha.NewClient(
		iroha.WithPeerUrl("http://127.0.0.1:8080"),
		iroha.WithTelemetryUrl("ftp://127.0.0.1:8180"),
	)
	assert.Error(t, err)
}

func TestStatusAndHealth(t *testing.T) {
	test.VerifyNoLeaks(t)
	f := newFixture(t, true, nil)
	ctx := context.Background()
	require.NoError(t, f.client.Health(ctx))
	_, err := f.client.RegisterDomain(ctx, "D")
	require.NoError(t, err)
	_, err = f.client.RegisterDomain(ctx, "D", iroha.WithNonce(7))
	require.Error(t, err)
	status, err := f.client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), status.TxsAccepted)
	assert.Equal(t, uint64(1), status.TxsRejected)
	assert.Equal(t, uint64(1), status.Blocks)
}

func TestStatusWithoutTelemetry(t *testing.T) {
	c, err := iroha.NewClient(iroha.WithPeerUrl("http://127.0.0.1:1"))
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Status(context.Background())
	assert.True(t, errors.Is(err, iroha.ErrNoTelemetry))
}

func TestParseStatus(t *testing.T) {
	status, err := iroha.ParseStatus([]byte(
		`{"peers":3,"blocks":12,"txs_accepted":40,"txs_rejected":2,"uptime":{"secs":90,"nanos":500}}`,
	))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), status.Peers)
	assert.Equal(t, uint64(12), status.Blocks)
	assert.Equal(t, uint64(40), status.TxsAccepted)
	assert.Equal(t, uint64(2), status.TxsRejected)
	assert.Equal(t, 90*time.Second+500*time.Nanosecond, status.Uptime)
	_, err = iroha.ParseStatus([]byte(`{"peers":3}`))
	assert.ErrorContains(t, err, `missing field "blocks"`)
	_, err = iroha.ParseStatus([]byte(`not json`))
	assert.Error(t, err)
}
