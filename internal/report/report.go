// Package report publishes the per-guild weekly economic summary inside
// the Monday maintenance window. Grounded on design doc Section 4.I; the
// 10-minute-ticker + idempotent marker shape follows worldstate/incident.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/store"
)

const topN = 5

// Publisher delivers a finished Summary to a guild's configured channel.
type Publisher interface {
	PublishWeeklyReport(ctx context.Context, guildID string, s Summary)
}

// Summary is the aggregated weekly economic delta for one guild.
type Summary struct {
	GuildID       string
	WeekKey       string
	InterestDelta int64
	IncidentDelta int64
	RepayDelta    int64
	NetDelta      int64
	RepaidCredits int64
	TopRepayers   []store.UserAmount
	TopPoints     []store.UserAmount
}

// Scheduler checks the calendar every 10 minutes and publishes at most
// once per (guild, week).
type Scheduler struct {
	store     *store.Store
	publisher Publisher
}

func New(st *store.Store, publisher Publisher) *Scheduler {
	return &Scheduler{store: st, publisher: publisher}
}

func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
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
	now := calendar.Now()
	if !calendar.IsMondayMaintenanceWindow(now) {
		return
	}

	lastWeek := calendar.PreviousWeekKey(now)
	guildIDs, err := s.store.ListGuildIDsWithDebt()
	if err != nil {
		slog.Warn("report: list guilds failed", "error", err)
		return
	}

	for _, gid := range guildIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.tickGuild(ctx, gid, lastWeek)
	}
}

const lastReportKeyPrefix = "weekly_report_last_week:"

func (s *Scheduler) tickGuild(ctx context.Context, guildID, weekKey string) {
	markerKey := lastReportKeyPrefix + guildID
	marker, _, err := s.store.GetBotConfig(markerKey)
	if err != nil {
		slog.Warn("report: read marker failed", "guild", guildID, "error", err)
		return
	}
	if marker == weekKey {
		return
	}

	summary, err := s.buildSummary(guildID, weekKey)
	if err != nil {
		slog.Warn("report: build summary failed", "guild", guildID, "error", err)
		return
	}

	if s.publisher != nil {
		s.publisher.PublishWeeklyReport(ctx, guildID, *summary)
	}

	if err := s.store.SetBotConfig(markerKey, weekKey); err != nil {
		slog.Warn("report: set marker failed", "guild", guildID, "error", err)
	}
}

func (s *Scheduler) buildSummary(guildID, weekKey string) (*Summary, error) {
	ymds, err := calendar.WeekYMDsFromWeekKey(weekKey)
	if err != nil {
		return nil, err
	}
	fromT, err := calendar.ParseYMD(ymds[0])
	if err != nil {
		return nil, err
	}
	toT, err := calendar.ParseYMD(ymds[6])
	if err != nil {
		return nil, err
	}
	from := fromT.Unix()
	to := toT.AddDate(0, 0, 1).Unix()

	interestDelta, err := s.store.SumEconomyLogDelta(guildID, "interest", "delta_debt", from, to)
	if err != nil {
		return nil, err
	}
	incidentDelta, err := s.store.SumEconomyLogDelta(guildID, "incident", "delta_debt", from, to)
	if err != nil {
		return nil, err
	}
	repayDebtDelta, err := s.store.SumEconomyLogDelta(guildID, "repay", "delta_debt", from, to)
	if err != nil {
		return nil, err
	}
	repaidCredits, err := s.store.SumEconomyLogDelta(guildID, "repay", "delta_credits", from, to)
	if err != nil {
		return nil, err
	}

	topRepayers, err := s.store.TopRepayers(guildID, from, to, topN)
	if err != nil {
		return nil, err
	}
	topPoints, err := s.store.TopWeeklyPoints(guildID, weekKey, topN)
	if err != nil {
		return nil, err
	}

	return &Summary{
		GuildID:       guildID,
		WeekKey:       weekKey,
		InterestDelta: interestDelta,
		IncidentDelta: incidentDelta,
		RepayDelta:    repayDebtDelta,
		NetDelta:      interestDelta + incidentDelta + repayDebtDelta,
		RepaidCredits: -repaidCredits,
		TopRepayers:   topRepayers,
		TopPoints:     topPoints,
	}, nil
}

// Text renders a Summary as a plain-text announcement body. Credit/debt
// figures are rendered with thousands separators via go-humanize, since
// Abydos amounts regularly run into the millions.
func Text(s Summary) string {
	lines := fmt.Sprintf(
		"📊 %s 주간 보고\n순변동: %s  (이자 %s, 사건 %s, 상환 %s)\n누적 상환: %s 크레딧\n",
		s.WeekKey, humanizeSigned(s.NetDelta), humanizeSigned(s.InterestDelta),
		humanizeSigned(s.IncidentDelta), humanizeSigned(s.RepayDelta), humanize.Comma(s.RepaidCredits),
	)
	if len(s.TopRepayers) > 0 {
		lines += "상환왕:\n"
		for i, r := range s.TopRepayers {
			lines += fmt.Sprintf("%d. <@%s> %s\n", i+1, r.UserID, humanize.Comma(r.Amount))
		}
	}
	if len(s.TopPoints) > 0 {
		lines += "주간 포인트:\n"
		for i, p := range s.TopPoints {
			lines += fmt.Sprintf("%d. <@%s> %s\n", i+1, p.UserID, humanize.Comma(p.Amount))
		}
	}
	return lines
}

func humanizeSigned(v int64) string {
	if v >= 0 {
		return "+" + humanize.Comma(v)
	}
	return humanize.Comma(v)
}
