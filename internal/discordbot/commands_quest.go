package discordbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/quest"
)

func (b *Bot) cmdQuestBoard(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) error {
	today := todayYMD()
	weekKey := calendar.WeekKey(calendar.Now())
	if err := b.quest.EnsureDailyBoard(ctx, m.GuildID, today); err != nil {
		return err
	}
	if err := b.quest.EnsureWeeklyBoard(ctx, m.GuildID, weekKey); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("📋 오늘의 의뢰:\n")
	daily, err := b.store.ListQuestBoard(m.GuildID, quest.ScopeDaily, today)
	if err != nil {
		return err
	}
	for _, q := range daily {
		fmt.Fprintf(&sb, "D%d. %s — %s (보상 %s 크레딧 / %d점)\n", q.QuestNo, q.Title, q.Description, humanize.Comma(q.RewardCredits), q.RewardPoints)
	}
	sb.WriteString("\n📆 이번 주 의뢰:\n")
	weekly, err := b.store.ListQuestBoard(m.GuildID, quest.ScopeWeekly, weekKey)
	if err != nil {
		return err
	}
	for _, q := range weekly {
		fmt.Fprintf(&sb, "W%d. %s — %s (보상 %s 크레딧 / %d점)\n", q.QuestNo, q.Title, q.Description, humanize.Comma(q.RewardCredits), q.RewardPoints)
	}
	b.reply(s, m.ChannelID, sb.String())
	return nil
}

// cmdQuestClaim parses "납품 <D|W><questNo>", e.g. "납품 D1" or "납품 W2".
func (b *Bot) cmdQuestClaim(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return bizerr.Invalid("args")
	}
	scope, questNo, err := parseQuestRef(args[0])
	if err != nil {
		return err
	}
	boardKey := todayYMD()
	if scope == quest.ScopeWeekly {
		boardKey = calendar.WeekKey(calendar.Now())
	}

	res, err := b.quest.Claim(ctx, m.GuildID, scope, boardKey, questNo, m.Author.ID, todayYMD())
	if err != nil {
		if ce, ok := err.(*quest.ClaimError); ok {
			return bizerr.Precondition(string(ce.Reason))
		}
		return err
	}
	b.reply(s, m.ChannelID, fmt.Sprintf("✅ 의뢰 완료: %s! +%d점", res.Quest.Title, res.Points))
	return nil
}

// parseQuestRef parses a reference like "D1" or "W2" into a scope and
// quest number.
func parseQuestRef(raw string) (scope string, questNo int64, err error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) < 2 {
		return "", 0, bizerr.Invalid("quest_ref")
	}
	var prefix string
	prefix, raw = raw[:1], raw[1:]
	n, convErr := strconv.ParseInt(raw, 10, 64)
	if convErr != nil || n <= 0 {
		return "", 0, bizerr.Invalid("quest_ref")
	}
	switch prefix {
	case "D":
		return quest.ScopeDaily, n, nil
	case "W":
		return quest.ScopeWeekly, n, nil
	default:
		return "", 0, bizerr.Invalid("quest_ref")
	}
}

func (b *Bot) cmdQuestRanking(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) error {
	weekKey := calendar.WeekKey(calendar.Now())
	top, err := b.store.TopWeeklyPoints(m.GuildID, weekKey, 10)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		b.reply(s, m.ChannelID, "이번 주 의뢰 점수 기록이 아직 없어.")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("🏆 주간 의뢰 랭킹:\n")
	for i, row := range top {
		fmt.Fprintf(&sb, "%d위 <@%s> — %d점\n", i+1, row.UserID, row.Amount)
	}
	b.reply(s, m.ChannelID, sb.String())
	return nil
}
