package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "abydos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

type recordingPublisher struct {
	calls int
	last  Summary
}

func (p *recordingPublisher) PublishWeeklyReport(ctx context.Context, guildID string, s Summary) {
	p.calls++
	p.last = s
}

func currentWeekKey(t *testing.T) string {
	t.Helper()
	wk, err := calendar.WeekKeyFromYMD(calendar.YMD(calendar.Now()))
	require.NoError(t, err)
	return wk
}

func TestBuildSummarySumsDeltasWithinWeek(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	guildID := "guild-1"
	weekKey := currentWeekKey(t)

	require.NoError(t, st.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertEconomyLog(store.EconomyLogEntry{GuildID: guildID, Kind: "interest", DeltaDebt: 1_000}); err != nil {
			return err
		}
		if err := tx.InsertEconomyLog(store.EconomyLogEntry{GuildID: guildID, Kind: "incident", DeltaDebt: 500}); err != nil {
			return err
		}
		return tx.InsertEconomyLog(store.EconomyLogEntry{GuildID: guildID, UserID: "user-1", Kind: "repay", DeltaDebt: -2_000, DeltaCredits: -2_000})
	}))

	s := &Scheduler{store: st}
	summary, err := s.buildSummary(guildID, weekKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), summary.InterestDelta)
	assert.Equal(t, int64(500), summary.IncidentDelta)
	assert.Equal(t, int64(-2_000), summary.RepayDelta)
	assert.Equal(t, int64(2_000), summary.RepaidCredits)
	assert.Equal(t, summary.InterestDelta+summary.IncidentDelta+summary.RepayDelta, summary.NetDelta)
}

func TestTickGuildPublishesOnceAndSetsMarker(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	guildID := "guild-2"
	weekKey := currentWeekKey(t)

	pub := &recordingPublisher{}
	s := New(st, pub)

	s.tickGuild(ctx, guildID, weekKey)
	assert.Equal(t, 1, pub.calls)

	s.tickGuild(ctx, guildID, weekKey)
	assert.Equal(t, 1, pub.calls, "second call within the same week must not republish")
}

func TestTextRendersRankingsAndSigns(t *testing.T) {
	summary := Summary{
		WeekKey: "2026-W10", NetDelta: -5_000, InterestDelta: 1_000, IncidentDelta: 2_000, RepayDelta: -8_000,
		RepaidCredits: 8_000,
		TopRepayers:   []store.UserAmount{{UserID: "u1", Amount: 5_000}},
		TopPoints:     []store.UserAmount{{UserID: "u2", Amount: 30}},
	}
	text := Text(summary)
	assert.Contains(t, text, "2026-W10")
	assert.Contains(t, text, "-5,000")
	assert.Contains(t, text, "+1,000")
	assert.Contains(t, text, "<@u1>")
	assert.Contains(t, text, "<@u2>")
}
