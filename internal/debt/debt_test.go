package debt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/abydos/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "abydos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestApplyInterestOnceRoundsUp(t *testing.T) {
	assert.Equal(t, int64(0), applyInterestOnce(0, 0.005))
	assert.Equal(t, int64(101), applyInterestOnce(100, 0.005)) // 100.5 -> ceil 101
}

func TestPressureStageThresholds(t *testing.T) {
	assert.Equal(t, 0, PressureStage(0))
	assert.Equal(t, 0, PressureStage(499_999))
	assert.Equal(t, 1, PressureStage(500_000))
	assert.Equal(t, 2, PressureStage(2_000_000))
	assert.Equal(t, 3, PressureStage(8_000_000))
	assert.Equal(t, 4, PressureStage(30_000_000))
	assert.Equal(t, 5, PressureStage(100_000_000))
}

func TestApplyInterestUpToTodayIsIdempotentForSameDay(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()

	require.NoError(t, e.ApplyInterestUpToToday(ctx, "guild-1", "2026-03-05"))
	after1, err := st.GetOrCreateGuildDebt("guild-1", "2026-03-05")
	require.NoError(t, err)

	require.NoError(t, e.ApplyInterestUpToToday(ctx, "guild-1", "2026-03-05"))
	after2, err := st.GetOrCreateGuildDebt("guild-1", "2026-03-05")
	require.NoError(t, err)

	assert.Equal(t, after1.Debt, after2.Debt)
}

func TestApplyInterestUpToTodayAdvancesAcrossDays(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()

	before, err := st.GetOrCreateGuildDebt("guild-2", "2026-03-01")
	require.NoError(t, err)

	require.NoError(t, e.ApplyInterestUpToToday(ctx, "guild-2", "2026-03-03"))
	after, err := st.GetOrCreateGuildDebt("guild-2", "2026-03-03")
	require.NoError(t, err)

	assert.Greater(t, after.Debt, before.Debt)
	assert.Equal(t, "2026-03-03", after.LastInterestYMD)
}

func TestRepayClampsToCreditsAndDebt(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()

	_, err := st.GetOrCreateUserEconomy("user-1")
	require.NoError(t, err)
	require.NoError(t, st.WithTx(ctx, func(tx *store.Tx) error {
		return tx.AddUserCredits("user-1", 1_000)
	}))
	_, err = st.GetOrCreateGuildDebt("guild-3", "2026-03-05")
	require.NoError(t, err)

	res, err := e.Repay(ctx, "guild-3", "user-1", -1, "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), res.Paid)
	assert.Equal(t, int64(0), res.CreditsAfter)
}

func TestRepayRejectsEmptyWallet(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()

	_, err := st.GetOrCreateUserEconomy("user-2")
	require.NoError(t, err)
	_, err = st.GetOrCreateGuildDebt("guild-4", "2026-03-05")
	require.NoError(t, err)

	_, err = e.Repay(ctx, "guild-4", "user-2", 100, "2026-03-05")
	require.Error(t, err)
}
