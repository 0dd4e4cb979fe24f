package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/fee-engine/session"
	"github.com/atelier/fee-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dptr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// =============================================================================
// SESSION DEFAULTS
// =============================================================================

func TestSessionDefaults_RoundTrip(t *testing.T) {
	// GIVEN: Remembered defaults from a prior pass
	// WHEN: Reading them back
	// THEN: All remembered values survive, unset ones stay nil
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "s-1", session.Defaults{
		UnitRate: dptr(120),
		R:        dptr(0.6),
		Preset:   "standard",
		Shares: []session.StagePercent{
			{Stage: "Signature", Percentage: decimal.NewFromInt(10)},
			{Stage: "Preliminary Study", Percentage: decimal.NewFromInt(90)},
		},
	})
	require.NoError(t, err)

	d, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.True(t, d.UnitRate.Equal(decimal.NewFromInt(120)))
	assert.True(t, d.R.Equal(decimal.NewFromFloat(0.6)))
	assert.Nil(t, d.Factor)
	assert.Equal(t, "standard", d.Preset)
	require.Len(t, d.Shares, 2)
	assert.Equal(t, "Preliminary Study", d.Shares[1].Stage)
}

func TestSessionDefaults_MissingIsNil(t *testing.T) {
	store := newTestStore(t)

	d, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestSessionDefaults_PutReplacesWholesale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s", session.Defaults{UnitRate: dptr(120)}))
	require.NoError(t, store.Put(ctx, "s", session.Defaults{Factor: dptr(0.18)}))

	d, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Nil(t, d.UnitRate, "older defaults must not merge")
	require.NotNil(t, d.Factor)
}

// =============================================================================
// PROPOSAL ARCHIVE
// =============================================================================

func sampleProposal(id string) sqlite.ProposalRecord {
	return sqlite.ProposalRecord{
		ID:           id,
		Project:      "Edifício Residencial São João",
		Client:       "Construtora Horizonte Ltda.",
		Region:       "DF",
		Typology:     "multifamily-residential",
		DocumentJSON: `{"identification":{"project":"Edifício Residencial São João"}}`,
	}
}

func TestProposals_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProposal(ctx, sampleProposal("p-1")))

	p, err := store.GetProposal(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Edifício Residencial São João", p.Project, "non-ASCII text must survive storage")
	assert.False(t, p.CreatedAt.IsZero())
}

func TestProposals_GetMissingIsNil(t *testing.T) {
	store := newTestStore(t)

	p, err := store.GetProposal(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProposals_DuplicateIDRejected(t *testing.T) {
	// The archive is append-only; re-archiving under the same id is an error.
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProposal(ctx, sampleProposal("p-1")))
	assert.Error(t, store.SaveProposal(ctx, sampleProposal("p-1")))
}

func TestProposals_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"p-1", "p-2", "p-3"} {
		p := sampleProposal(id)
		p.CreatedAt = base.AddDate(0, 0, i)
		require.NoError(t, store.SaveProposal(ctx, p))
	}

	list, err := store.ListProposals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "p-3", list[0].ID)
	assert.Equal(t, "p-1", list[2].ID)

	limited, err := store.ListProposals(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "p-3", limited[0].ID)
}

func TestReset_ClearsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s", session.Defaults{Preset: "standard"}))
	require.NoError(t, store.SaveProposal(ctx, sampleProposal("p-1")))
	require.NoError(t, store.Reset(ctx))

	d, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Nil(t, d)

	list, err := store.ListProposals(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
