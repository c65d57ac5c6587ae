// Package xp shapes chat, command, and interaction events into
// experience points and carries level-up cascades. Grounded line-for-line
// on cogs/leveling.py's _calc_chat_xp/_calc_cmd_xp/_calc_interaction_xp/
// _pick_cmd_tier. See design doc Section 4.K.
package xp

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/talgya/abydos/internal/numeric"
	"github.com/talgya/abydos/internal/store"
)

var (
	reEffective = regexp.MustCompile(`[0-9A-Za-z가-힣]`)
	reURL       = regexp.MustCompile(`(?i)https?://`)
	rePunct     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reSpace     = regexp.MustCompile(`\s+`)
)

// Config is a guild's tunable XP shaping profile, stored as JSON in
// xp_config and loaded once per event.
type Config struct {
	ChatMinChars      int `json:"chat_min_chars"`
	ChatRepeatWindowS int `json:"chat_repeat_window_sec"`
	ChatXPMin         int `json:"chat_xp_min"`
	ChatXPMax         int `json:"chat_xp_max"`
	ChatLenStep       int `json:"chat_len_step"`
	ChatLenCap        int `json:"chat_len_cap"`
	ChatAttachBonus   int `json:"chat_attach_bonus"`
	ChatLinkBonus     int `json:"chat_link_bonus"`
	ChatTotalCap      int `json:"chat_total_cap"`

	CmdXPSystem int `json:"cmd_xp_system"`
	CmdXPGame   int `json:"cmd_xp_game"`
	CmdXPChat   int `json:"cmd_xp_chat"`
	CmdXPSocial int `json:"cmd_xp_social"`
	CmdXPDefault int `json:"cmd_xp"`

	InteractionXPComponent int `json:"interaction_xp_component"`
	InteractionXPModal     int `json:"interaction_xp_modal"`
}

// DefaultConfig mirrors the original's inline defaults.
func DefaultConfig() Config {
	return Config{
		ChatMinChars: 0, ChatRepeatWindowS: 0,
		ChatXPMin: 15, ChatXPMax: 25, ChatLenStep: 30, ChatLenCap: 10,
		ChatAttachBonus: 3, ChatLinkBonus: 0, ChatTotalCap: 50,
		CmdXPSystem: 0, CmdXPGame: 12, CmdXPChat: 8, CmdXPSocial: 8, CmdXPDefault: 5,
		InteractionXPComponent: 2, InteractionXPModal: 3,
	}
}

// CmdTier classifies a command's originating module into an XP tier.
type CmdTier string

const (
	TierSystem  CmdTier = "system"
	TierGame    CmdTier = "game"
	TierChat    CmdTier = "chat"
	TierSocial  CmdTier = "social"
	TierDefault CmdTier = "default"
)

var systemModules = map[string]bool{
	"admin": true, "noise_settings": true, "channel_settings": true,
	"rule_maker": true, "aby_environment": true,
}
var gameModules = map[string]bool{
	"aby_mini_game": true, "aby_workshop": true, "aby_quest_board": true, "survival_cooking": true,
}
var chatModules = map[string]bool{
	"yume_chat": true, "yume_diary": true,
}
var socialModules = map[string]bool{
	"yume_fun": true, "social": true, "stamps": true,
}

// PickCmdTier maps a command module name to an XP tier.
func PickCmdTier(module string) CmdTier {
	switch {
	case systemModules[module]:
		return TierSystem
	case gameModules[module]:
		return TierGame
	case chatModules[module]:
		return TierChat
	case socialModules[module]:
		return TierSocial
	default:
		return TierDefault
	}
}

func effectiveCharCount(s string) int {
	return len(reEffective.FindAllString(s, -1))
}

func normalizeForRepeat(s string) string {
	x := strings.ToLower(strings.TrimSpace(s))
	x = reSpace.ReplaceAllString(x, " ")
	x = rePunct.ReplaceAllString(x, " ")
	x = reSpace.ReplaceAllString(x, " ")
	return strings.TrimSpace(x)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ChatMessage is the subset of an inbound chat message the chat XP
// calculation needs.
type ChatMessage struct {
	Content         string
	HasAttachment   bool
}

// Engine applies a guild's Config against inbound events and persists XP.
type Engine struct {
	store *store.Store
	rng   *rand.Rand
}

func New(st *store.Store) *Engine {
	return &Engine{store: st, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// GetConfig loads a guild's XP config, falling back to DefaultConfig.
func (e *Engine) GetConfig(guildID string) (Config, error) {
	raw, err := e.store.GetXPConfigJSON(guildID)
	if err != nil {
		return Config{}, err
	}
	if raw == "" {
		return DefaultConfig(), nil
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// chatXP computes the raw XP a chat message earns, given the caller's
// notion of "now" and the previous-message dedup signature. A message
// below ChatMinChars earns 0 and keeps prevSig; a message whose
// normalized text is empty skips the repeat check and keeps prevSig.
func (e *Engine) chatXP(cfg Config, msg ChatMessage, now int64, prevSig string, prevTS int64) (int, string) {
	content := strings.TrimSpace(msg.Content)
	if effectiveCharCount(content) < max(0, cfg.ChatMinChars) {
		return 0, prevSig
	}

	norm := normalizeForRepeat(content)
	sig := prevSig
	if norm != "" {
		newSig := sha1Hex(norm)
		if cfg.ChatRepeatWindowS > 0 && prevSig == newSig && now-prevTS <= int64(cfg.ChatRepeatWindowS) {
			return 0, newSig
		}
		sig = newSig
	}

	lo, hi := max(0, cfg.ChatXPMin), max(0, cfg.ChatXPMax)
	if hi < lo {
		hi = lo
	}
	base := lo
	if hi > lo {
		base += e.rng.Intn(hi - lo + 1)
	}

	step := max(1, cfg.ChatLenStep)
	lenCap := max(0, cfg.ChatLenCap)
	lengthBonus := numeric.Clamp(len(content)/step, 0, lenCap)

	attachBonus := 0
	if msg.HasAttachment {
		attachBonus = max(0, cfg.ChatAttachBonus)
	}
	linkBonus := 0
	if reURL.MatchString(content) {
		linkBonus = max(0, cfg.ChatLinkBonus)
	}

	totalCap := max(1, cfg.ChatTotalCap)
	delta := base + lengthBonus + attachBonus + linkBonus
	return numeric.Clamp(delta, 0, totalCap), sig
}

func (cfg Config) cmdXP(tier CmdTier) int {
	switch tier {
	case TierSystem:
		return max(0, cfg.CmdXPSystem)
	case TierGame:
		return max(0, cfg.CmdXPGame)
	case TierChat:
		return max(0, cfg.CmdXPChat)
	case TierSocial:
		return max(0, cfg.CmdXPSocial)
	default:
		return max(0, cfg.CmdXPDefault)
	}
}

func (cfg Config) interactionXP(isModal bool) int {
	if isModal {
		return max(0, cfg.InteractionXPModal)
	}
	return max(0, cfg.InteractionXPComponent)
}

// XPToNext is the level curve: a monotonically increasing requirement
// for the next level, resolved as an Open Question (design doc §3.K).
func XPToNext(level int64) int64 {
	return 100 + 25*level + 5*level*level
}

// LevelUpEvent reports one level crossing within an Award call.
type LevelUpEvent struct {
	BeforeLevel int64
	AfterLevel  int64
	XPIntoLevel int64
	XPToNext    int64
	TotalXP     int64
}

// AwardResult reports the outcome of one XP award, including any
// cascaded level-ups.
type AwardResult struct {
	AwardedXP int64
	TotalXP   int64
	Level     int64
	LevelUps  []LevelUpEvent
}

// AwardChat processes an inbound chat message for (guildID, userID).
func (e *Engine) AwardChat(ctx context.Context, guildID, userID string, msg ChatMessage, now time.Time) (*AwardResult, error) {
	cfg, err := e.GetConfig(guildID)
	if err != nil {
		return nil, err
	}
	st, err := e.store.GetOrCreateXPState(guildID, userID)
	if err != nil {
		return nil, err
	}
	delta, sig := e.chatXP(cfg, msg, now.Unix(), st.LastMsgSig, st.LastXPAtTS)
	return e.apply(ctx, guildID, userID, st, delta, sig, now)
}

// AwardCommand processes a command invocation for (guildID, userID).
func (e *Engine) AwardCommand(ctx context.Context, guildID, userID, module string, now time.Time) (*AwardResult, error) {
	cfg, err := e.GetConfig(guildID)
	if err != nil {
		return nil, err
	}
	st, err := e.store.GetOrCreateXPState(guildID, userID)
	if err != nil {
		return nil, err
	}
	delta := int64(cfg.cmdXP(PickCmdTier(module)))
	return e.apply(ctx, guildID, userID, st, delta, st.LastMsgSig, now)
}

// AwardInteraction processes a component/modal interaction.
func (e *Engine) AwardInteraction(ctx context.Context, guildID, userID string, isModal bool, now time.Time) (*AwardResult, error) {
	cfg, err := e.GetConfig(guildID)
	if err != nil {
		return nil, err
	}
	st, err := e.store.GetOrCreateXPState(guildID, userID)
	if err != nil {
		return nil, err
	}
	delta := int64(cfg.interactionXP(isModal))
	return e.apply(ctx, guildID, userID, st, delta, st.LastMsgSig, now)
}

func (e *Engine) apply(ctx context.Context, guildID, userID string, st *store.XPState, delta int64, sig string, now time.Time) (*AwardResult, error) {
	if delta <= 0 {
		return &AwardResult{TotalXP: st.TotalXP, Level: st.Level}, nil
	}

	newTotal := st.TotalXP + delta
	level := st.Level
	var ups []LevelUpEvent
	remaining := newTotal
	for l := int64(0); l < level; l++ {
		remaining -= XPToNext(l)
	}
	for {
		need := XPToNext(level)
		if remaining < need {
			break
		}
		remaining -= need
		before := level
		level++
		ups = append(ups, LevelUpEvent{
			BeforeLevel: before, AfterLevel: level,
			XPIntoLevel: remaining, XPToNext: XPToNext(level), TotalXP: newTotal,
		})
	}

	if err := e.store.AddXP(guildID, userID, newTotal, level, now.Unix(), sig); err != nil {
		return nil, err
	}

	return &AwardResult{AwardedXP: delta, TotalXP: newTotal, Level: level, LevelUps: ups}, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
