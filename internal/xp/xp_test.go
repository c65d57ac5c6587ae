package xp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

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

func TestPickCmdTier(t *testing.T) {
	assert.Equal(t, TierSystem, PickCmdTier("admin"))
	assert.Equal(t, TierGame, PickCmdTier("aby_workshop"))
	assert.Equal(t, TierChat, PickCmdTier("yume_chat"))
	assert.Equal(t, TierSocial, PickCmdTier("stamps"))
	assert.Equal(t, TierDefault, PickCmdTier("something_else"))
}

func TestXPToNextIsMonotonic(t *testing.T) {
	prev := XPToNext(0)
	for lvl := int64(1); lvl < 20; lvl++ {
		cur := XPToNext(lvl)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestAwardChatGrantsWithinConfiguredRange(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	res, err := e.AwardChat(ctx, "guild-1", "user-1", ChatMessage{Content: "hello there abydos"}, now)
	require.NoError(t, err)
	assert.Greater(t, res.AwardedXP, int64(0))
	assert.LessOrEqual(t, res.AwardedXP, int64(DefaultConfig().ChatTotalCap))
}

func TestAwardChatSuppressesImmediateRepeat(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	cfg := DefaultConfig()
	cfg.ChatRepeatWindowS = 60
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, st.SetXPConfigJSON("guild-2", string(raw)))

	first, err := e.AwardChat(ctx, "guild-2", "user-1", ChatMessage{Content: "same message"}, now)
	require.NoError(t, err)
	assert.Greater(t, first.AwardedXP, int64(0))

	second, err := e.AwardChat(ctx, "guild-2", "user-1", ChatMessage{Content: "same message"}, now.Add(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.AwardedXP)
}

func TestApplyCascadesMultipleLevelUps(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	st0, err := st.GetOrCreateXPState("guild-3", "user-1")
	require.NoError(t, err)

	res, err := e.apply(ctx, "guild-3", "user-1", st0, XPToNext(0)+XPToNext(1)+10, "", now)
	require.NoError(t, err)
	assert.Len(t, res.LevelUps, 2)
	assert.Equal(t, int64(2), res.Level)
}

func TestAwardCommandUsesTierRate(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	res, err := e.AwardCommand(ctx, "guild-4", "user-1", "aby_workshop", now)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultConfig().CmdXPGame), res.AwardedXP)
}

func TestTopXPOrdersDescending(t *testing.T) {
	st := newTestStore(t)
	e := New(st)
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	lo, err := st.GetOrCreateXPState("guild-5", "low")
	require.NoError(t, err)
	_, err = e.apply(ctx, "guild-5", "low", lo, 50, "", now)
	require.NoError(t, err)

	hi, err := st.GetOrCreateXPState("guild-5", "high")
	require.NoError(t, err)
	_, err = e.apply(ctx, "guild-5", "high", hi, 5000, "", now)
	require.NoError(t, err)

	top, err := st.TopXP("guild-5", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].UserID)
}
