// Package discordbot is the Discord transport: a prefix-command router
// wired to discordgo, plus the Announcer/Publisher/GuildSource/
// TurnNotifier adapters the core engines need to reach chat. Grounded
// structurally on the teacher's internal/api.Server (one small dispatch
// surface wrapping the simulation core) but over a chat transport
// instead of HTTP.
package discordbot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/debt"
	"github.com/talgya/abydos/internal/llm"
	"github.com/talgya/abydos/internal/quest"
	"github.com/talgya/abydos/internal/store"
	"github.com/talgya/abydos/internal/wordchain"
	"github.com/talgya/abydos/internal/workshop"
	"github.com/talgya/abydos/internal/worldstate"
	"github.com/talgya/abydos/internal/xp"
)

// Bot owns the discordgo session and every engine the command surface
// dispatches into.
type Bot struct {
	session *discordgo.Session
	store   *store.Store
	prefix  string

	world     *worldstate.Scheduler
	debt      *debt.Engine
	workshop  *workshop.Workshop
	quest     *quest.Engine
	xp        *xp.Engine
	wordchain *wordchain.Manager
	oracle    *llm.Oracle

	rng *rand.Rand
}

// New builds a Bot around an already-authenticated discordgo.Session.
// The caller still must call session.Open. The world scheduler and
// word-chain manager are wired in afterward via SetWorldScheduler/
// SetWordChainManager, since both depend on an Announcer/TurnNotifier
// adapter that in turn needs a *Bot to send through (see adapters.go).
func New(session *discordgo.Session, st *store.Store, prefix string, de *debt.Engine, ws *workshop.Workshop, qe *quest.Engine, xe *xp.Engine, oracle *llm.Oracle) *Bot {
	b := &Bot{
		session: session, store: st, prefix: prefix,
		debt: de, workshop: ws, quest: qe, xp: xe, oracle: oracle,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	session.AddHandler(b.onMessageCreate)
	return b
}

// SetWorldScheduler wires the world-weather scheduler in after
// construction (see New's doc comment).
func (b *Bot) SetWorldScheduler(world *worldstate.Scheduler) { b.world = world }

// SetWordChainManager wires the word-chain session manager in after
// construction (see New's doc comment).
func (b *Bot) SetWordChainManager(wc *wordchain.Manager) { b.wordchain = wc }

// commandModule classifies a command name for XP-tier purposes (see
// xp.PickCmdTier), mirroring cogs/leveling.py's per-cog module mapping.
func commandModule(name string) string {
	switch name {
	case "탐사", "탐사지원", "지갑", "가방", "사용", "공방", "제작", "판매", "의뢰", "납품", "의뢰랭킹":
		return "aby_mini_game"
	case "빚현황", "부채", "빚", "빚상환":
		return "aby_mini_game"
	case "블루전", "블루전시작", "블루전대전", "블루전연습", "연습종료", "블루전연습종료", "블루전전적":
		return "aby_mini_game"
	case "레벨", "랭킹", "경험치":
		return "yume_chat"
	case "날씨", "날씨설정":
		return "aby_environment"
	default:
		return "default"
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot || m.GuildID == "" {
		return
	}
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, b.prefix) {
		b.awardChat(m)
		return
	}

	rest := strings.TrimSpace(strings.TrimPrefix(content, b.prefix))
	if rest == "" {
		return
	}
	fields := strings.Fields(rest)
	name, args := fields[0], fields[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := b.dispatch(ctx, s, m, name, args); err != nil {
		b.reply(s, m.ChannelID, errorReply(err))
	}

	if _, err := b.xp.AwardCommand(ctx, m.GuildID, m.Author.ID, commandModule(name), time.Now()); err != nil {
		slog.Warn("discordbot: award command xp failed", "error", err)
	}
}

func (b *Bot) awardChat(m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := b.xp.AwardChat(ctx, m.GuildID, m.Author.ID, xp.ChatMessage{
		Content:       m.Content,
		HasAttachment: len(m.Attachments) > 0,
	}, time.Now())
	if err != nil {
		slog.Warn("discordbot: award chat xp failed", "error", err)
		return
	}
	for _, up := range res.LevelUps {
		b.reply(b.session, m.ChannelID, levelUpText(m.Author.ID, up))
	}
}

func (b *Bot) dispatch(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, name string, args []string) error {
	switch name {
	case "탐사":
		return b.cmdExplore(ctx, s, m)
	case "지갑", "내지갑", "재화":
		return b.cmdWallet(ctx, s, m)
	case "가방", "인벤", "인벤토리", "전리품":
		return b.cmdInventory(ctx, s, m)
	case "빚현황", "부채", "빚":
		return b.cmdDebtStatus(ctx, s, m)
	case "빚상환":
		return b.cmdRepay(ctx, s, m, args)
	case "공방", "상점", "제작소":
		return b.cmdWorkshopList(ctx, s, m)
	case "제작":
		return b.cmdCraft(ctx, s, m, args)
	case "사용":
		return b.cmdUseItem(ctx, s, m, args)
	case "판매":
		return b.cmdSell(ctx, s, m, args)
	case "의뢰":
		return b.cmdQuestBoard(ctx, s, m)
	case "납품":
		return b.cmdQuestClaim(ctx, s, m, args)
	case "의뢰랭킹", "주간의뢰", "의뢰점수", "주간랭킹":
		return b.cmdQuestRanking(ctx, s, m)
	case "레벨":
		return b.cmdLevel(ctx, s, m)
	case "랭킹":
		return b.cmdXPRanking(ctx, s, m)
	case "블루전", "블루전시작", "블루전대전":
		return b.cmdWordChainStart(ctx, s, m, args)
	case "블루전연습":
		return b.cmdWordChainPractice(ctx, s, m, args)
	case "연습종료", "블루전연습종료":
		return b.cmdWordChainStop(ctx, s, m)
	case "블루전전적":
		return b.cmdWordChainRecords(ctx, s, m, args)
	case "날씨":
		return b.cmdWeatherStatus(ctx, s, m)
	case "날씨설정":
		return b.cmdWeatherSet(ctx, s, m, args)
	default:
		return nil // unknown command: silently ignored, matching discord.py's default on_command_error behavior for CommandNotFound
	}
}

func (b *Bot) reply(s *discordgo.Session, channelID, text string) {
	if text == "" {
		return
	}
	if _, err := s.ChannelMessageSend(channelID, text); err != nil {
		slog.Warn("discordbot: send message failed", "channel_id", channelID, "error", err)
	}
}

func errorReply(err error) string {
	switch bizerr.CodeOf(err) {
	case bizerr.CodeInvalidInput:
		return "입력을 다시 확인해줘."
	case bizerr.CodePrecondition:
		return preconditionText(bizerr.Reason(err))
	case bizerr.CodeConflict:
		return "지금은 다른 작업이 진행 중이야. 잠시 후 다시 시도해줘."
	case bizerr.CodeBudget:
		return "이번 달 AI 서술 한도를 다 썼어. 기본 문구로 대신할게."
	case bizerr.CodeTransient:
		return "외부 서비스 응답이 없어. 잠시 후 다시 시도해줘."
	default:
		slog.Error("discordbot: command failed", "error", err)
		return "처리 중 문제가 생겼어."
	}
}

func preconditionText(reason string) string {
	switch reason {
	case "insufficient_credits":
		return "크레딧이 부족해."
	case "insufficient_materials":
		return "재료가 부족해."
	case "empty_wallet":
		return "지갑이 비어있어."
	case "no_debt":
		return "이미 빚이 없어."
	case "already_done_today", "claimed":
		return "오늘은 이미 완료했어."
	case "not_sellable":
		return "판매할 수 없는 항목이야."
	case "not_consumable":
		return "그건 그냥 재료야. `!공방`에서 제작하거나 `!판매`로 팔 수 있어."
	case "not_admin":
		return "이건 서버 관리자만 쓸 수 있어."
	default:
		return "조건을 만족하지 못했어."
	}
}

func levelUpText(userID string, up xp.LevelUpEvent) string {
	return fmt.Sprintf("🎉 <@%s>님이 레벨 %d이 되었어요!", userID, up.AfterLevel)
}

func todayYMD() string {
	return calendar.YMD(calendar.Now())
}
