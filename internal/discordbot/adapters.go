package discordbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/abydos/internal/incident"
	"github.com/talgya/abydos/internal/report"
	"github.com/talgya/abydos/internal/websync"
	"github.com/talgya/abydos/internal/wordchain"
	"github.com/talgya/abydos/internal/worldstate"
)

// announceChannelKey namespaces the generic bot_config key-value table
// (internal/store/world.go) per guild rather than adding new schema.
func announceChannelKey(guildID string) string {
	return "announce_channel:" + guildID
}

// SetAnnounceChannel records the channel a guild wants incident/weather/
// weekly-report announcements posted to.
func (b *Bot) SetAnnounceChannel(guildID, channelID string) error {
	return b.store.SetBotConfig(announceChannelKey(guildID), channelID)
}

func (b *Bot) announceChannelFor(guildID string) (string, bool) {
	ch, ok, err := b.store.GetBotConfig(announceChannelKey(guildID))
	if err != nil || !ok || ch == "" {
		return "", false
	}
	return ch, true
}

func (b *Bot) sendToGuild(guildID, text string) {
	ch, ok := b.announceChannelFor(guildID)
	if !ok {
		return
	}
	b.reply(b.session, ch, text)
}

// worldAnnouncer adapts Bot to worldstate.Announcer.
type worldAnnouncer struct{ bot *Bot }

func NewWorldAnnouncer(b *Bot) worldstate.Announcer { return worldAnnouncer{bot: b} }

func (a worldAnnouncer) AnnounceWeatherChange(ctx context.Context, from, to worldstate.Weather, nextChangeAt time.Time) {
	for _, guildID := range a.bot.knownGuildIDs() {
		a.bot.sendToGuild(guildID, fmt.Sprintf("🌦️ 날씨가 %s에서 %s(으)로 바뀌었어. 다음 변화는 %s경.",
			weatherText(from), weatherText(to), nextChangeAt.Format("15:04")))
	}
}

func weatherText(w worldstate.Weather) string {
	switch w {
	case worldstate.Clear:
		return "맑음"
	case worldstate.Cloudy:
		return "흐림"
	case worldstate.Sandstorm:
		return "모래폭풍"
	default:
		return string(w)
	}
}

// incidentAnnouncer adapts Bot to incident.Announcer.
type incidentAnnouncer struct{ bot *Bot }

func NewIncidentAnnouncer(b *Bot) incident.Announcer { return incidentAnnouncer{bot: b} }

func (a incidentAnnouncer) AnnounceIncident(ctx context.Context, guildID string, e incident.Event, deltaDebt int64) {
	icon := "⚠️"
	sign := "+"
	if e.Kind == "good" {
		icon = "✨"
		sign = "-"
	}
	a.bot.sendToGuild(guildID, fmt.Sprintf("%s %s\n%s\n정착지 빚 %s%s 크레딧", icon, e.Title, e.Description, sign, humanize.Comma(abs64(deltaDebt))))
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// reportPublisher adapts Bot to report.Publisher.
type reportPublisher struct{ bot *Bot }

func NewReportPublisher(b *Bot) report.Publisher { return reportPublisher{bot: b} }

func (p reportPublisher) PublishWeeklyReport(ctx context.Context, guildID string, s report.Summary) {
	text := fmt.Sprintf(
		"📊 주간 리포트 (%s)\n이자 %s · 사건 %s · 상환 %s · 순변동 %s\n총 상환액 %s 크레딧",
		s.WeekKey, humanize.Comma(s.InterestDelta), humanize.Comma(s.IncidentDelta),
		humanize.Comma(s.RepayDelta), humanize.Comma(s.NetDelta), humanize.Comma(s.RepaidCredits))
	p.bot.sendToGuild(guildID, text)
}

// guildSource adapts Bot to websync.GuildSource.
type guildSource struct{ bot *Bot }

func NewGuildSource(b *Bot) websync.GuildSource { return guildSource{bot: b} }

func (g guildSource) SelfUser() websync.BotInfo {
	u := g.bot.session.State.User
	if u == nil {
		return websync.BotInfo{}
	}
	return websync.BotInfo{UserID: u.ID, Username: u.Username}
}

func (g guildSource) Guilds() []websync.GuildInfo {
	guilds := g.bot.session.State.Guilds
	out := make([]websync.GuildInfo, 0, len(guilds))
	for _, gd := range guilds {
		out = append(out, websync.GuildInfo{GuildID: gd.ID, Name: gd.Name})
	}
	return out
}

func (b *Bot) knownGuildIDs() []string {
	guilds := b.session.State.Guilds
	ids := make([]string, 0, len(guilds))
	for _, g := range guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// turnNotifier adapts Bot to wordchain.TurnNotifier.
type turnNotifier struct{ bot *Bot }

func NewTurnNotifier(b *Bot) wordchain.TurnNotifier { return turnNotifier{bot: b} }

func (n turnNotifier) Announce(ctx context.Context, guildID, channelID, text string) error {
	if _, err := n.bot.session.ChannelMessageSend(channelID, text); err != nil {
		slog.Warn("discordbot: turn announce failed", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}
