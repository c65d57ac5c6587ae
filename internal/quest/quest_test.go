package quest

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

func TestBoardSeedIsDeterministic(t *testing.T) {
	a := boardSeed("guild-1", "2026-03-05")
	b := boardSeed("guild-1", "2026-03-05")
	c := boardSeed("guild-1", "2026-03-06")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestEnsureDailyBoardIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := New(st)

	require.NoError(t, e.EnsureDailyBoard(ctx, "guild-1", "2026-03-05"))
	first, err := st.ListQuestBoard("guild-1", ScopeDaily, "2026-03-05")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, e.EnsureDailyBoard(ctx, "guild-1", "2026-03-05"))
	second, err := st.ListQuestBoard("guild-1", ScopeDaily, "2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}

func TestClaimRejectsDoubleClaim(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := New(st)

	require.NoError(t, e.EnsureDailyBoard(ctx, "guild-2", "2026-03-05"))
	board, err := st.ListQuestBoard("guild-2", ScopeDaily, "2026-03-05")
	require.NoError(t, err)
	require.NotEmpty(t, board)

	// Find the explore_done quest, the simplest to satisfy directly.
	var exploreQuest *store.QuestDef
	for i := range board {
		if board[i].QuestType == string(TypeExploreDone) {
			exploreQuest = &board[i]
			break
		}
	}
	require.NotNil(t, exploreQuest)

	require.NoError(t, st.WithTx(ctx, func(tx *store.Tx) error {
		return tx.InsertExploreMeta(store.ExploreMeta{UserID: "user-1", DateYMD: "2026-03-05", Weather: "clear", Success: true})
	}))

	_, err = e.Claim(ctx, "guild-2", ScopeDaily, "2026-03-05", exploreQuest.QuestNo, "user-1", "2026-03-05")
	require.NoError(t, err)

	_, err = e.Claim(ctx, "guild-2", ScopeDaily, "2026-03-05", exploreQuest.QuestNo, "user-1", "2026-03-05")
	require.Error(t, err)
	ce, ok := err.(*ClaimError)
	require.True(t, ok)
	assert.Equal(t, ReasonClaimed, ce.Reason)
}

func TestClaimRejectsUnmetPredicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	e := New(st)

	require.NoError(t, e.EnsureDailyBoard(ctx, "guild-3", "2026-03-05"))
	board, err := st.ListQuestBoard("guild-3", ScopeDaily, "2026-03-05")
	require.NoError(t, err)

	var exploreQuest *store.QuestDef
	for i := range board {
		if board[i].QuestType == string(TypeExploreDone) {
			exploreQuest = &board[i]
			break
		}
	}
	require.NotNil(t, exploreQuest)

	_, err = e.Claim(ctx, "guild-3", ScopeDaily, "2026-03-05", exploreQuest.QuestNo, "user-2", "2026-03-05")
	require.Error(t, err)
	ce, ok := err.(*ClaimError)
	require.True(t, ok)
	assert.Equal(t, ReasonExplore, ce.Reason)
}
