package discordbot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/abydos/internal/bizerr"
	"github.com/talgya/abydos/internal/quest"
	"github.com/talgya/abydos/internal/wordchain"
)

func TestParseAmountOrAllRecognizesAllKeyword(t *testing.T) {
	n, err := parseAmountOrAll("전부")
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), n)

	n, err = parseAmountOrAll("ALL")
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), n)
}

func TestParseAmountOrAllParsesCommaSeparatedAmount(t *testing.T) {
	n, err := parseAmountOrAll("1,500")
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), n)
}

func TestParseAmountOrAllRejectsNonPositive(t *testing.T) {
	_, err := parseAmountOrAll("0")
	assert.Error(t, err)
	_, err = parseAmountOrAll("-5")
	assert.Error(t, err)
	_, err = parseAmountOrAll("not-a-number")
	assert.Error(t, err)
}

func TestResolveRecipeAliasAcceptsKoreanAliasOrRawID(t *testing.T) {
	assert.Equal(t, "mask", resolveRecipeAlias("방진마스크"))
	assert.Equal(t, "mask", resolveRecipeAlias("mask"))
	assert.Equal(t, "", resolveRecipeAlias("없는레시피"))
}

func TestItemDisplayNamePrefersShortestKoreanAlias(t *testing.T) {
	assert.Equal(t, "고철", itemDisplayName("scrap"))
	assert.Equal(t, "unknown-key", itemDisplayName("unknown-key"))
}

func TestParseQuestRefParsesDailyAndWeeklyRefs(t *testing.T) {
	scope, n, err := parseQuestRef("D1")
	assert.NoError(t, err)
	assert.Equal(t, quest.ScopeDaily, scope)
	assert.Equal(t, int64(1), n)

	scope, n, err = parseQuestRef("w12")
	assert.NoError(t, err)
	assert.Equal(t, quest.ScopeWeekly, scope)
	assert.Equal(t, int64(12), n)
}

func TestParseQuestRefRejectsMalformedRefs(t *testing.T) {
	for _, raw := range []string{"", "X1", "D", "D0", "Dabc"} {
		_, _, err := parseQuestRef(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseDifficultyDefaultsToNormal(t *testing.T) {
	assert.Equal(t, wordchain.DifficultyNormal, parseDifficulty(nil))
	assert.Equal(t, wordchain.DifficultyNormal, parseDifficulty([]string{"모르는값"}))
	assert.Equal(t, wordchain.DifficultyEasy, parseDifficulty([]string{"쉬움"}))
	assert.Equal(t, wordchain.DifficultyHard, parseDifficulty([]string{"hard"}))
}

func TestCommandModuleClassifiesKnownCommands(t *testing.T) {
	assert.Equal(t, "aby_mini_game", commandModule("탐사"))
	assert.Equal(t, "aby_mini_game", commandModule("빚상환"))
	assert.Equal(t, "yume_chat", commandModule("레벨"))
	assert.Equal(t, "default", commandModule("알수없음"))
}

func TestErrorReplyMapsEachBizerrCode(t *testing.T) {
	assert.Equal(t, "입력을 다시 확인해줘.", errorReply(bizerr.Invalid("amount")))
	assert.Equal(t, "크레딧이 부족해.", errorReply(bizerr.Precondition("insufficient_credits")))
	assert.Equal(t, "지금은 다른 작업이 진행 중이야. 잠시 후 다시 시도해줘.", errorReply(bizerr.Busy()))
	assert.Equal(t, "처리 중 문제가 생겼어.", errorReply(errors.New("unexpected")))
}

func TestPreconditionTextFallsBackForUnknownReason(t *testing.T) {
	assert.Equal(t, "조건을 만족하지 못했어.", preconditionText("something_new"))
	assert.Equal(t, "재료가 부족해.", preconditionText("insufficient_materials"))
}
