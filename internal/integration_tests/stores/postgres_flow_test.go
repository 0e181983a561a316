//go:build integration

package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/internal/addressing"
	blacklistsvc "mintgate/internal/blacklist/service"
	blacklistpg "mintgate/internal/blacklist/store/postgres"
	hooksvc "mintgate/internal/hook/service"
	hookpg "mintgate/internal/hook/store/postgres"
	instrumentsvc "mintgate/internal/instrument/service"
	instrumentpg "mintgate/internal/instrument/store/postgres"
	"mintgate/internal/ledger"
	mintersvc "mintgate/internal/minter/service"
	minterpg "mintgate/internal/minter/store/postgres"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/audit/publishers/compliance"
	auditpg "mintgate/pkg/platform/audit/store/postgres"
	"mintgate/pkg/platform/tx"
	"mintgate/pkg/requestcontext"
	"mintgate/pkg/testutil/containers"
)

const testAsset = domain.AssetID("usdx")

type fixture struct {
	pc          *containers.PostgresContainer
	instruments *instrumentsvc.Service
	minters     *mintersvc.Service
	blacklist   *blacklistsvc.Service
	hooks       *hooksvc.Service
	ldg         *ledger.Memory

	master domain.Identity
	minter domain.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	pc := containers.NewPostgresContainer(t)
	runner := tx.NewDB(pc.DB)
	ldg := ledger.NewMemory()
	auditPub := compliance.New(auditpg.New(pc.DB))

	instruments := instrumentsvc.New(instrumentpg.New(pc.DB), ldg, runner,
		instrumentsvc.WithAuditPublisher(auditPub))
	minters := mintersvc.New(minterpg.New(pc.DB), instruments, ldg, runner,
		mintersvc.WithAuditPublisher(auditPub))
	blacklist := blacklistsvc.New(blacklistpg.New(pc.DB), instruments, runner,
		blacklistsvc.WithAuditPublisher(auditPub))
	hooks := hooksvc.New(hookpg.New(pc.DB), instruments, blacklist, runner,
		hooksvc.WithAuditPublisher(auditPub))

	return &fixture{
		pc:          pc,
		instruments: instruments,
		minters:     minters,
		blacklist:   blacklist,
		hooks:       hooks,
		ldg:         ldg,
		master:      identity(0x01),
		minter:      identity(0x02),
	}
}

func identity(b byte) domain.Identity {
	var id domain.Identity
	id[0] = b
	return id
}

func ctxAs(actor domain.Identity) context.Context {
	ctx := requestcontext.WithIdentity(context.Background(), actor)
	return requestcontext.WithTime(ctx, time.Now().UTC())
}

func (f *fixture) initInstrument(t *testing.T) {
	t.Helper()
	_, err := f.instruments.Initialize(ctxAs(f.master), instrumentsvc.InitializeParams{
		Asset:      testAsset,
		Name:       "US Dollar X",
		Symbol:     "USDX",
		Decimals:   6,
		EnableHook: true,
	})
	require.NoError(t, err)
}

func (f *fixture) outboxCount(t *testing.T) int {
	t.Helper()
	var n int
	err := f.pc.DB.QueryRow(`SELECT COUNT(*) FROM outbox`).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestPostgres_IssuanceFlow(t *testing.T) {
	f := newFixture(t)
	f.initInstrument(t)

	_, err := f.minters.Grant(ctxAs(f.master), testAsset, f.minter, 1000)
	require.NoError(t, err)

	record, err := f.minters.Issue(ctxAs(f.minter), testAsset, domain.AccountID("treasury"), 600)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), record.Minted)
	assert.Equal(t, uint64(600), f.ldg.Balance(testAsset, domain.AccountID("treasury")))

	// Reload through the store to confirm the minted total was persisted.
	record, err = f.minters.Get(context.Background(), testAsset, f.minter)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), record.Minted)
	assert.Equal(t, uint64(400), record.Remaining())

	_, err = f.minters.Issue(ctxAs(f.minter), testAsset, domain.AccountID("treasury"), 500)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeQuotaExceeded, dErrors.CodeOf(err))
}

func TestPostgres_IssueRollsBackOnLedgerFailure(t *testing.T) {
	f := newFixture(t)
	f.initInstrument(t)

	_, err := f.minters.Grant(ctxAs(f.master), testAsset, f.minter, 1000)
	require.NoError(t, err)
	before := f.outboxCount(t)

	f.ldg.FailNext(errors.New("ledger unavailable"))
	_, err = f.minters.Issue(ctxAs(f.minter), testAsset, domain.AccountID("treasury"), 100)
	require.Error(t, err)

	// The transaction rolled back: no minted total, no issuance audit row.
	record, err := f.minters.Get(context.Background(), testAsset, f.minter)
	require.NoError(t, err)
	assert.Zero(t, record.Minted)
	assert.Equal(t, before, f.outboxCount(t))
}

func TestPostgres_DuplicateInstrumentConflicts(t *testing.T) {
	f := newFixture(t)
	f.initInstrument(t)

	_, err := f.instruments.Initialize(ctxAs(f.master), instrumentsvc.InitializeParams{
		Asset:    testAsset,
		Name:     "US Dollar X",
		Symbol:   "USDX",
		Decimals: 6,
	})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestPostgres_BlacklistRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.initInstrument(t)
	user := identity(0x0A)

	_, err := f.blacklist.Add(ctxAs(f.master), testAsset, user, "sanctions match")
	require.NoError(t, err)

	configAddr, err := addressing.ConfigAddress(testAsset)
	require.NoError(t, err)
	listed, err := f.blacklist.Probe(context.Background(), configAddr, user)
	require.NoError(t, err)
	assert.True(t, listed)

	entry, err := f.blacklist.Get(context.Background(), testAsset, user)
	require.NoError(t, err)
	assert.Equal(t, "sanctions match", entry.Reason)

	require.NoError(t, f.blacklist.Remove(ctxAs(f.master), testAsset, user))
	listed, err = f.blacklist.Probe(context.Background(), configAddr, user)
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestPostgres_HookConfigRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.initInstrument(t)

	cfg, err := f.hooks.Initialize(ctxAs(f.master), testAsset)
	require.NoError(t, err)
	assert.Equal(t, f.master, cfg.Authority)

	cfg, err = f.hooks.SetPaused(ctxAs(f.master), testAsset, true)
	require.NoError(t, err)
	assert.True(t, cfg.Paused)

	cfg, err = f.hooks.Get(context.Background(), testAsset)
	require.NoError(t, err)
	assert.True(t, cfg.Paused)
}

func TestPostgres_AuditOutboxRecordsOperations(t *testing.T) {
	f := newFixture(t)
	f.initInstrument(t)

	_, err := f.minters.Grant(ctxAs(f.master), testAsset, f.minter, 1000)
	require.NoError(t, err)
	_, err = f.minters.Issue(ctxAs(f.minter), testAsset, domain.AccountID("treasury"), 100)
	require.NoError(t, err)

	var n int
	err = f.pc.DB.QueryRow(
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'tokens_issued' AND published_at IS NULL`,
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
