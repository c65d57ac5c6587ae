package discordbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/talgya/abydos/internal/xp"
)

func (b *Bot) cmdLevel(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) error {
	st, err := b.store.GetOrCreateXPState(m.GuildID, m.Author.ID)
	if err != nil {
		return err
	}
	next := xp.XPToNext(st.Level)
	b.reply(s, m.ChannelID, fmt.Sprintf("✨ <@%s> 레벨 %d — 누적 경험치 %s (다음 레벨까지 %s)",
		m.Author.ID, st.Level, humanize.Comma(st.TotalXP), humanize.Comma(next-st.TotalXP)))
	return nil
}

func (b *Bot) cmdXPRanking(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) error {
	top, err := b.store.TopXP(m.GuildID, 10)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		b.reply(s, m.ChannelID, "아직 경험치 기록이 없어.")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("📊 레벨 랭킹:\n")
	for i, row := range top {
		fmt.Fprintf(&sb, "%d위 <@%s> — 레벨 %d (%s XP)\n", i+1, row.UserID, row.Level, humanize.Comma(row.TotalXP))
	}
	b.reply(s, m.ChannelID, sb.String())
	return nil
}
