// Package quest materializes deterministic daily/weekly quest boards and
// evaluates per-user claims. Grounded on design doc Section 4.H; the
// tagged-variant evaluator shape follows the teacher's style of keying
// behavior off a small enum rather than a type switch spread across
// files. See design doc Section 9.
package quest

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/calendar"
	"github.com/talgya/abydos/internal/numeric"
	"github.com/talgya/abydos/internal/store"
	"github.com/talgya/abydos/internal/workshop"
)

const (
	ScopeDaily  = "daily"
	ScopeWeekly = "weekly"

	dailyQuestCount  = 3
	weeklyQuestCount = 3
)

// QuestType enumerates the evaluable predicate kinds.
type QuestType string

const (
	TypeDeliverItem             QuestType = "deliver_item"
	TypeRepayTotal              QuestType = "repay_total"
	TypeExploreDone             QuestType = "explore_done"
	TypeExploreSandstormSuccess QuestType = "explore_sandstorm_success"
)

// ClaimFailReason is the typed failure code spec.md §4.H step 4 requires.
type ClaimFailReason string

const (
	ReasonClaimed ClaimFailReason = "claimed"
	ReasonItems   ClaimFailReason = "items"
	ReasonRepay   ClaimFailReason = "repay"
	ReasonExplore ClaimFailReason = "explore"
)

// Engine materializes boards and evaluates claims.
type Engine struct {
	store *store.Store
}

func New(st *store.Store) *Engine { return &Engine{store: st} }

// template seeds one quest of a random board: a quest_type plus target
// range, resolved against a board-seeded PRNG.
type template struct {
	questType            QuestType
	itemPool             []string
	targetQtyLo, targetQtyHi int64
	rewardPointsLo, rewardPointsHi int64
	rewardCreditsLo, rewardCreditsHi int64
}

var dailyTemplates = []template{
	{questType: TypeDeliverItem, itemPool: []string{"scrap", "cloth", "filter", "battery", "circuit"}, targetQtyLo: 2, targetQtyHi: 5, rewardPointsLo: 10, rewardPointsHi: 20, rewardCreditsLo: 500, rewardCreditsHi: 1500},
	{questType: TypeExploreDone, targetQtyLo: 1, targetQtyHi: 1, rewardPointsLo: 5, rewardPointsHi: 10, rewardCreditsLo: 200, rewardCreditsHi: 600},
	{questType: TypeRepayTotal, targetQtyLo: 5_000, targetQtyHi: 20_000, rewardPointsLo: 15, rewardPointsHi: 25, rewardCreditsLo: 800, rewardCreditsHi: 2000},
}

var weeklyTemplates = []template{
	{questType: TypeRepayTotal, targetQtyLo: 30_000, targetQtyHi: 100_000, rewardPointsLo: 60, rewardPointsHi: 120, rewardCreditsLo: 4000, rewardCreditsHi: 10_000},
	{questType: TypeExploreSandstormSuccess, targetQtyLo: 1, targetQtyHi: 1, rewardPointsLo: 40, rewardPointsHi: 80, rewardCreditsLo: 2000, rewardCreditsHi: 6000},
	{questType: TypeDeliverItem, itemPool: []string{"scrap", "cloth", "filter", "battery", "circuit"}, targetQtyLo: 10, targetQtyHi: 25, rewardPointsLo: 50, rewardPointsHi: 100, rewardCreditsLo: 3000, rewardCreditsHi: 8000},
}

// boardSeed derives a deterministic PRNG seed from (guildID, boardKey)
// via FNV-1a, so the same board materializes identically anywhere.
func boardSeed(guildID, boardKey string) int64 {
	h := fnv.New64a()
	h.Write([]byte(guildID))
	h.Write([]byte{0})
	h.Write([]byte(boardKey))
	return int64(h.Sum64())
}

func rollRange(rng *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Int63n(hi-lo+1)
}

func materialize(rng *rand.Rand, guildID, scope, boardKey string, templates []template, title func(template) (string, string)) []store.QuestDef {
	defs := make([]store.QuestDef, 0, len(templates))
	for i, tpl := range templates {
		var targetKey string
		if len(tpl.itemPool) > 0 {
			targetKey = tpl.itemPool[rng.Intn(len(tpl.itemPool))]
		}
		t, d := title(tpl)
		defs = append(defs, store.QuestDef{
			GuildID: guildID, Scope: scope, BoardKey: boardKey, QuestNo: int64(i + 1),
			QuestType:     string(tpl.questType),
			Title:         t,
			Description:   d,
			TargetKey:     targetKey,
			TargetQty:     rollRange(rng, tpl.targetQtyLo, tpl.targetQtyHi),
			RewardPoints:  rollRange(rng, tpl.rewardPointsLo, tpl.rewardPointsHi),
			RewardCredits: rollRange(rng, tpl.rewardCreditsLo, tpl.rewardCreditsHi),
		})
	}
	return defs
}

func questFlavor(tpl template) (title, description string) {
	switch tpl.questType {
	case TypeDeliverItem:
		return "물자 납품", "공방 재료를 모아 납품한다."
	case TypeExploreDone:
		return "정기 탐사", "오늘의 탐사를 완료한다."
	case TypeRepayTotal:
		return "부채 상환", "정착지 빚을 일정 금액 이상 갚는다."
	case TypeExploreSandstormSuccess:
		return "폭풍 속 생존", "모래폭풍 속 탐사에 성공한다."
	default:
		return "임무", ""
	}
}

// EnsureDailyBoard materializes a deterministic board for (guildID, ymd)
// if it doesn't already exist.
func (e *Engine) EnsureDailyBoard(ctx context.Context, guildID, ymd string) error {
	exists, err := e.store.BoardExists(guildID, ScopeDaily, ymd)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	rng := rand.New(rand.NewSource(boardSeed(guildID, ymd)))
	defs := materialize(rng, guildID, ScopeDaily, ymd, dailyTemplates[:numeric.Min(dailyQuestCount, len(dailyTemplates))], questFlavor)
	return e.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.InsertQuestDefs(defs)
	})
}

// EnsureWeeklyBoard materializes a deterministic board for (guildID, weekKey).
func (e *Engine) EnsureWeeklyBoard(ctx context.Context, guildID, weekKey string) error {
	exists, err := e.store.BoardExists(guildID, ScopeWeekly, weekKey)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	rng := rand.New(rand.NewSource(boardSeed(guildID, weekKey)))
	defs := materialize(rng, guildID, ScopeWeekly, weekKey, weeklyTemplates[:numeric.Min(weeklyQuestCount, len(weeklyTemplates))], questFlavor)
	return e.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.InsertQuestDefs(defs)
	})
}


// ClaimResult reports the rewards applied by a successful claim.
type ClaimResult struct {
	Quest   store.QuestDef
	Points  int64
}

// ClaimError carries a typed failure reason alongside the bizerr taxonomy.
type ClaimError struct {
	Reason ClaimFailReason
}

func (e *ClaimError) Error() string { return "quest claim failed: " + string(e.Reason) }

// Claim evaluates a quest's predicate for a user and, on success, applies
// rewards, inserts the claim marker, and bumps weekly points, all in one
// transaction. On failure it returns a *ClaimError with a typed reason.
func (e *Engine) Claim(ctx context.Context, guildID, scope, boardKey string, questNo int64, userID, today string) (*ClaimResult, error) {
	quest, ok, err := e.store.GetQuestDef(guildID, scope, boardKey, questNo)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, bizerr.Invalid("unknown_quest")
	}

	claimed, err := e.store.HasClaimed(guildID, scope, boardKey, questNo, userID)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, &ClaimError{Reason: ReasonClaimed}
	}

	ok, reason, err := e.evaluate(*quest, userID, today)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ClaimError{Reason: reason}
	}

	weekKey, err := calendar.WeekKeyFromYMD(today)
	if err != nil {
		return nil, err
	}

	var result ClaimResult
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		claimed, err := tx.HasClaimed(guildID, scope, boardKey, questNo, userID)
		if err != nil {
			return err
		}
		if claimed {
			return &ClaimError{Reason: ReasonClaimed}
		}
		if quest.QuestType == string(TypeDeliverItem) {
			if err := tx.ConsumeUserItem(userID, quest.TargetKey, quest.TargetQty); err != nil {
				return err
			}
		}
		if quest.RewardCredits != 0 {
			if err := tx.AddUserCredits(userID, quest.RewardCredits); err != nil {
				return err
			}
		}
		if quest.RewardItemKey != "" && quest.RewardItemQty != 0 {
			if err := tx.AddUserItem(userID, quest.RewardItemKey, quest.RewardItemQty); err != nil {
				return err
			}
		}
		if err := tx.InsertQuestClaim(guildID, scope, boardKey, questNo, userID); err != nil {
			return err
		}
		if err := tx.AddWeeklyPoints(guildID, weekKey, userID, quest.RewardPoints); err != nil {
			return err
		}
		if quest.RewardCredits != 0 {
			if err := tx.InsertEconomyLog(store.EconomyLogEntry{
				GuildID: guildID, UserID: userID, Kind: "quest_reward",
				DeltaCredits: quest.RewardCredits, Memo: quest.Title,
			}); err != nil {
				return err
			}
		}
		result = ClaimResult{Quest: *quest, Points: quest.RewardPoints}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *Engine) evaluate(quest store.QuestDef, userID, today string) (bool, ClaimFailReason, error) {
	switch QuestType(quest.QuestType) {
	case TypeDeliverItem:
		qty, err := e.store.GetItemQty(userID, quest.TargetKey)
		if err != nil {
			return false, "", err
		}
		if qty < quest.TargetQty {
			return false, ReasonItems, nil
		}
		return true, "", nil

	case TypeRepayTotal:
		weekKey, err := calendar.WeekKeyFromYMD(today)
		if err != nil {
			return false, "", err
		}
		var from, to int64
		if quest.Scope == ScopeWeekly {
			ymds, err := calendar.WeekYMDsFromWeekKey(weekKey)
			if err != nil {
				return false, "", err
			}
			fromT, err := calendar.ParseYMD(ymds[0])
			if err != nil {
				return false, "", err
			}
			from = fromT.Unix()
			toT, err := calendar.ParseYMD(today)
			if err != nil {
				return false, "", err
			}
			to = toT.AddDate(0, 0, 1).Unix()
		} else {
			t, err := calendar.ParseYMD(today)
			if err != nil {
				return false, "", err
			}
			from = t.Unix()
			to = t.AddDate(0, 0, 1).Unix()
		}
		total, err := e.store.SumUserRepayTotal(quest.GuildID, userID, from, to)
		if err != nil {
			return false, "", err
		}
		if total < quest.TargetQty {
			return false, ReasonRepay, nil
		}
		return true, "", nil

	case TypeExploreDone:
		_, ok, err := e.store.GetExploreMeta(userID, today)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, ReasonExplore, nil
		}
		return true, "", nil

	case TypeExploreSandstormSuccess:
		weekKey, err := calendar.WeekKeyFromYMD(today)
		if err != nil {
			return false, "", err
		}
		ymds, err := calendar.WeekYMDsFromWeekKey(weekKey)
		if err != nil {
			return false, "", err
		}
		ok, err := e.store.HasSandstormSuccessInWeek(userID, ymds)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, ReasonExplore, nil
		}
		return true, "", nil

	default:
		return false, "", bizerr.Invalid("unknown_quest_type")
	}
}

// ResolveItemAlias is a thin re-export so discordbot command parsing can
// translate a Korean item token the same way workshop/quest do.
func ResolveItemAlias(raw string) string { return workshop.ResolveItemKey(raw) }
