package discordbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/wordchain"
)

// waitForWordFrom returns a waitForMove closure that blocks until userID
// posts a message in channelID, or ctx is cancelled. Grounded on
// discordgo's own AddHandler/remove-func idiom (the teacher has no
// Discord transport of its own to imitate here).
func (b *Bot) waitForWordFrom(channelID, userID string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		ch := make(chan string, 1)
		remove := b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
			if m.ChannelID != channelID || m.Author.ID != userID {
				return
			}
			select {
			case ch <- strings.TrimSpace(m.Content):
			default:
			}
		})
		defer remove()

		select {
		case word := <-ch:
			return word, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// waitForWordFromEither is the PvP variant: the handler accepts a move
// from whichever of the two players is currently due, passed in via
// turnUserID at call time.
func (b *Bot) waitForWordFromEither(channelID string) func(ctx context.Context, turnUserID string) (string, error) {
	return func(ctx context.Context, turnUserID string) (string, error) {
		wait := b.waitForWordFrom(channelID, turnUserID)
		return wait(ctx)
	}
}

func parseDifficulty(args []string) wordchain.Difficulty {
	if len(args) == 0 {
		return wordchain.DifficultyNormal
	}
	switch args[0] {
	case "쉬움", "easy":
		return wordchain.DifficultyEasy
	case "어려움", "hard":
		return wordchain.DifficultyHard
	default:
		return wordchain.DifficultyNormal
	}
}

func (b *Bot) cmdWordChainPractice(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	difficulty := parseDifficulty(args)
	outcome, err := b.wordchain.StartPractice(ctx, m.GuildID, m.ChannelID, m.Author.ID, m.Author.Username,
		difficulty, b.waitForWordFrom(m.ChannelID, m.Author.ID))
	if err != nil {
		return err
	}
	b.reply(s, m.ChannelID, practiceOutcomeText(outcome))
	return nil
}

func practiceOutcomeText(outcome wordchain.Outcome) string {
	switch outcome {
	case wordchain.OutcomeWin:
		return "🎉 연습 승리!"
	case wordchain.OutcomeTimeout:
		return "⏰ 시간 초과로 패배했어."
	case wordchain.OutcomeResignation:
		return "🏳️ 기권했어."
	case wordchain.OutcomeStopped:
		return "연습을 종료했어."
	default:
		return "연습이 끝났어."
	}
}

// cmdWordChainStart parses "블루전 @상대".
func (b *Bot) cmdWordChainStart(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if len(m.Mentions) == 0 {
		return bizerr.Invalid("opponent")
	}
	opponent := m.Mentions[0]
	if opponent.ID == m.Author.ID {
		return bizerr.Invalid("opponent")
	}

	winnerID, outcome, err := b.wordchain.StartPvP(ctx, m.GuildID, m.ChannelID,
		m.Author.ID, m.Author.Username, opponent.ID, opponent.Username,
		b.waitForWordFromEither(m.ChannelID))
	if err != nil {
		return err
	}
	if winnerID == "" {
		b.reply(s, m.ChannelID, practiceOutcomeText(outcome))
		return nil
	}
	b.reply(s, m.ChannelID, fmt.Sprintf("🏆 <@%s> 승리! (%s)", winnerID, practiceOutcomeText(outcome)))
	return nil
}

func (b *Bot) cmdWordChainStop(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) error {
	if err := b.wordchain.Stop(m.GuildID, m.ChannelID); err != nil {
		return err
	}
	b.reply(s, m.ChannelID, "게임을 종료했어.")
	return nil
}

// cmdWordChainRecords reports a user's win/loss tally: self if no mention
// is given, the mentioned user otherwise.
func (b *Bot) cmdWordChainRecords(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	userID, displayName := m.Author.ID, m.Author.Username
	if len(m.Mentions) > 0 {
		userID, displayName = m.Mentions[0].ID, m.Mentions[0].Username
	}
	rec, err := b.store.GetOrCreateWordChainRecord(userID, displayName)
	if err != nil {
		return err
	}
	b.reply(s, m.ChannelID, fmt.Sprintf("📜 <@%s> 전적: %d승 %d패", userID, rec.Wins, rec.Losses))
	return nil
}
