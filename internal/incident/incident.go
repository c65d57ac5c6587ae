// Package incident rotates per-guild economic events whose severity and
// cadence scale with the guild's debt pressure. Same small-actor shape as
// internal/worldstate, grounded on the teacher's engine.Engine tick loop.
// See design doc Section 4.E.
package incident

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/debt"
	"github.com/talgya/abydos/internal/entropy"
	"github.com/talgya/abydos/internal/store"
)

// Announcer broadcasts an incident to a guild's configured channel.
type Announcer interface {
	AnnounceIncident(ctx context.Context, guildID string, e Event, deltaDebt int64)
}

// Event describes one bad or mild-positive economic event.
type Event struct {
	Kind        string // "bad" or "good"
	Title       string
	Description string
	// DeltaMin/DeltaMax are the positive base Δdebt magnitude before
	// pressure scaling; rollEvent adds it to debt for bad events and
	// subtracts it for good events.
	DeltaMin, DeltaMax int64
}

var badEvents = []Event{
	{Kind: "bad", Title: "설비 고장", Description: "급수 설비가 고장나 긴급 수리비가 발생했다.", DeltaMin: 200_000, DeltaMax: 900_000},
	{Kind: "bad", Title: "모래폭풍 피해", Description: "모래폭풍이 저장고를 덮쳐 물자가 유실됐다.", DeltaMin: 150_000, DeltaMax: 700_000},
	{Kind: "bad", Title: "이자 독촉", Description: "채권자가 추가 수수료를 청구했다.", DeltaMin: 100_000, DeltaMax: 500_000},
	{Kind: "bad", Title: "전력망 과부하", Description: "전력망이 과부하되어 복구 비용이 청구됐다.", DeltaMin: 250_000, DeltaMax: 1_000_000},
}

var goodEvents = []Event{
	{Kind: "good", Title: "폐자재 매각", Description: "창고에서 발견한 폐자재를 팔아 빚을 일부 갚았다.", DeltaMin: 50_000, DeltaMax: 300_000},
	{Kind: "good", Title: "지원금 지급", Description: "정착지 지원금이 도착했다.", DeltaMin: 80_000, DeltaMax: 400_000},
	{Kind: "good", Title: "거래 성공", Description: "떠돌이 상인과의 거래가 성사됐다.", DeltaMin: 40_000, DeltaMax: 250_000},
}

// Scheduler owns aby_incident_state exclusively; only its goroutine
// writes that table, per design doc Section 4.E's invariant.
type Scheduler struct {
	store     *store.Store
	debt      *debt.Engine
	announcer Announcer
	rng       *rand.Rand

	// entropySrc, when non-nil, supplies the bad/good roll from
	// random.org's true-entropy pool; when nil the roll uses crypto/rand.
	// Since an
	// incident's kind is the one roll per guild that actually moves
	// real debt, it is the "critical stochastic event" worth spending
	// the external call on. Falls back to crypto/rand internally if the
	// API is unreachable, so it is never a hard dependency.
	entropySrc *entropy.Client
}

func New(st *store.Store, de *debt.Engine, announcer Announcer) *Scheduler {
	return &Scheduler{
		store:     st,
		debt:      de,
		announcer: announcer,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetEntropySource wires in an optional random.org-backed entropy client
// for the incident kind roll. Safe to call with nil.
func (s *Scheduler) SetEntropySource(c *entropy.Client) {
	s.entropySrc = c
}

// Run drives the 120s scan loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(120 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	guildIDs, err := s.store.ListGuildIDsWithDebt()
	if err != nil {
		slog.Warn("incident: list guilds failed", "error", err)
		return
	}

	now := time.Now()
	for _, gid := range guildIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.tickGuild(ctx, gid, now)
	}
}

func (s *Scheduler) tickGuild(ctx context.Context, guildID string, now time.Time) {
	st, err := s.store.GetOrCreateIncidentState(guildID, now.Unix())
	if err != nil {
		slog.Warn("incident: load state failed", "guild", guildID, "error", err)
		return
	}
	if st.NextIncidentAt > now.Unix() {
		return
	}

	today := calendar.YMD(now)
	if err := s.debt.ApplyInterestUpToToday(ctx, guildID, today); err != nil {
		slog.Warn("incident: catch-up interest failed", "guild", guildID, "error", err)
		return
	}

	gd, err := s.store.GetOrCreateGuildDebt(guildID, today)
	if err != nil {
		slog.Warn("incident: load debt failed", "guild", guildID, "error", err)
		return
	}

	stage := debt.PressureStage(gd.Debt)
	event, delta := s.rollEvent(stage, gd.Debt)

	var newDebt int64
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		newDebt = gd.Debt + delta
		if newDebt < 0 {
			newDebt = 0
		}
		if err := tx.SetGuildDebtAmount(guildID, newDebt); err != nil {
			return err
		}
		if err := tx.InsertIncidentLog(store.IncidentLogEntry{
			GuildID: guildID, Kind: event.Kind, Title: event.Title,
			Description: event.Description, DeltaDebt: newDebt - gd.Debt,
		}); err != nil {
			return err
		}
		return tx.InsertEconomyLog(store.EconomyLogEntry{
			GuildID: guildID, Kind: "incident", DeltaDebt: newDebt - gd.Debt, Memo: event.Title,
		})
	})
	if err != nil {
		slog.Warn("incident: apply failed", "guild", guildID, "error", err)
		return
	}

	nextAt := now.Add(rescheduleInterval(s.rng, stage))
	if err := s.store.SetIncidentSchedule(guildID, now.Unix(), nextAt.Unix()); err != nil {
		slog.Warn("incident: reschedule failed", "guild", guildID, "error", err)
		return
	}

	slog.Info("incident fired", "guild", guildID, "kind", event.Kind, "title", event.Title, "delta_debt", newDebt-gd.Debt, "stage", stage)
	if s.announcer != nil {
		s.announcer.AnnounceIncident(ctx, guildID, event, newDebt-gd.Debt)
	}
}

// rollEvent draws a bad event with probability min(0.85, 0.45+0.08*stage),
// else a mild positive event, and scales the base Δdebt range by stage+1.
func (s *Scheduler) rollEvent(stage int, currentDebt int64) (Event, int64) {
	pBad := 0.45 + 0.08*float64(stage)
	if pBad > 0.85 {
		pBad = 0.85
	}

	var pool []Event
	var sign int64 = 1
	if entropy.FloatFromSource(s.entropySrc) < pBad {
		pool = badEvents
	} else {
		pool = goodEvents
		sign = -1
	}

	e := pool[s.rng.Intn(len(pool))]
	scale := int64(stage + 1)
	span := e.DeltaMax - e.DeltaMin
	base := e.DeltaMin
	if span > 0 {
		base += s.rng.Int63n(span + 1)
	}
	delta := sign * base * scale

	if sign < 0 && -delta > currentDebt {
		delta = -currentDebt
	}
	return e, delta
}

// rescheduleInterval picks the next fire time; ranges shrink as pressure
// stage rises, per design doc Section 4.E step 5.
func rescheduleInterval(rng *rand.Rand, stage int) time.Duration {
	var lo, hi time.Duration
	switch {
	case stage >= 5:
		lo, hi = 1*time.Hour, 3*time.Hour
	case stage >= 3:
		lo, hi = 90*time.Minute, 4*time.Hour
	case stage >= 1:
		lo, hi = 2*time.Hour, 6*time.Hour
	default:
		lo, hi = 4*time.Hour, 10*time.Hour
	}
	return lo + time.Duration(rng.Int63n(int64(hi-lo)))
}
