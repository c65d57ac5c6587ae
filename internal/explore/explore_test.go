package explore

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/abydos/internal/store"
	"github.com/talgya/abydos/internal/worldstate"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "abydos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestClaimIsIdempotentPerDay(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	outcome, err := Claim(ctx, st, rng, "user-1", "2026-03-05", worldstate.Clear)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	again, err := Claim(ctx, st, rng, "user-1", "2026-03-05", worldstate.Clear)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestClaimAllowsNextDay(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(2))

	_, err := Claim(ctx, st, rng, "user-2", "2026-03-05", worldstate.Clear)
	require.NoError(t, err)

	outcome, err := Claim(ctx, st, rng, "user-2", "2026-03-06", worldstate.Clear)
	require.NoError(t, err)
	assert.NotNil(t, outcome)
}

func TestClaimPersistsCreditsAndWater(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(3))

	outcome, err := Claim(ctx, st, rng, "user-3", "2026-03-05", worldstate.Clear)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	econ, err := st.GetOrCreateUserEconomy("user-3")
	require.NoError(t, err)
	assert.Equal(t, outcome.Credits, econ.Credits)
	assert.Equal(t, outcome.Water, econ.Water)
	assert.Equal(t, "2026-03-05", econ.LastExploreYMD)
}

func TestRollDroneAppliesCeiling25PercentBonus(t *testing.T) {
	out := roll(rand.New(rand.NewSource(42)), worldstate.Clear, "drone", 1)
	assert.True(t, out.DroneApplied)
}

func TestRollMaskDowngradesSandstormToCloudyOdds(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(4))

	require.NoError(t, st.WithTx(ctx, func(tx *store.Tx) error {
		return tx.SetBuff("user-4", "mask", 1, 9_999_999_999)
	}))

	outcome, err := Claim(ctx, st, rng, "user-4", "2026-03-05", worldstate.Sandstorm)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.MaskUsed)
}

func TestRollRangeHandlesDegenerateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	assert.Equal(t, int64(10), rollRange(rng, 10, 10))
	assert.Equal(t, int64(10), rollRange(rng, 10, 5))
}
