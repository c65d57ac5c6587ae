package wordchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRulesAsLines(t *testing.T) {
	text := "# comment\n녀 -> 여\n라 -> 나, 낙\n\nmalformed line\n"
	m := parseRulesAsLines(text)
	assert.Equal(t, []string{"여"}, m["녀"])
	assert.Equal(t, []string{"나", "낙"}, m["라"])
	_, ok := m["malformed line"]
	assert.False(t, ok)
}

func TestParseRulesAsJSON(t *testing.T) {
	m := parseRulesAsJSON(`{"녀": ["여"], "라": ["나", "낙"]}`)
	require.NotNil(t, m)
	assert.Equal(t, []string{"여"}, m["녀"])
	assert.ElementsMatch(t, []string{"나", "낙"}, m["라"])

	assert.Nil(t, parseRulesAsJSON("not json"))
}

func TestLoadDooumMapPrecedence(t *testing.T) {
	// Line format wins even when the same text would also parse as JSON-ish
	// garbage: line format is tried first per SPEC_FULL.md's auto-detect
	// order.
	lineText := "녀 -> 여\n"
	m := loadDooumMap(lineText)
	assert.Equal(t, []string{"여"}, m["녀"])

	jsonText := `{"라": ["나"]}`
	m = loadDooumMap(jsonText)
	assert.Equal(t, []string{"나"}, m["라"])

	m = loadDooumMap("")
	assert.Equal(t, defaultDooumMap["녀"], m["녀"])
}

func TestAllowedFirstCharsSymmetricClosure(t *testing.T) {
	d := &Dictionary{
		words:      map[string]bool{},
		dooumMap:   map[string][]string{"녀": {"여"}},
		dooumEquiv: buildEquivMap(map[string][]string{"녀": {"여"}}),
	}
	// last == "녀": allowed firsts are {녀} ∪ E(녀)={여} ∪ E⁻¹(녀)={}.
	allowed := d.allowedFirstChars("녀")
	assert.True(t, allowed["녀"])
	assert.True(t, allowed["여"])

	// last == "여": allowed firsts are {여} ∪ E(여)={} ∪ E⁻¹(여)={녀}.
	allowed = d.allowedFirstChars("여")
	assert.True(t, allowed["여"])
	assert.True(t, allowed["녀"])
}

func TestValidFollow(t *testing.T) {
	d := &Dictionary{
		words:      map[string]bool{"여우": true, "녀석": true, "우산": true},
		dooumMap:   map[string][]string{"녀": {"여"}},
		dooumEquiv: buildEquivMap(map[string][]string{"녀": {"여"}}),
	}
	assert.True(t, d.ValidFollow("소녀", "여우"))
	assert.True(t, d.ValidFollow("여우", "우산"))
	assert.False(t, d.ValidFollow("여우", "녀석")) // "우"에서 "녀"로는 불가
}

func TestRebuildIndexOrdering(t *testing.T) {
	d := &Dictionary{words: map[string]bool{"가나": true, "가나다": true, "가다": true}}
	d.rebuildIndex()
	got := d.byFirst["가"]
	// sorted by (-length, lex): "가나다" (3) before the two length-2 words,
	// which are then lexically ordered.
	require.Len(t, got, 3)
	assert.Equal(t, "가나다", got[0])
	assert.Equal(t, "가나", got[1])
	assert.Equal(t, "가다", got[2])
}

func TestCandidatesFromLastExcludesUsed(t *testing.T) {
	d := &Dictionary{words: map[string]bool{"사과": true, "사자": true}}
	d.rebuildIndex()
	used := map[string]bool{"사과": true}
	cands := d.candidatesFromLast("사", used)
	assert.Equal(t, []string{"사자"}, cands)
}

func TestHasAnyMoveFromLast(t *testing.T) {
	d := &Dictionary{words: map[string]bool{"사과": true}}
	d.rebuildIndex()
	assert.True(t, d.hasAnyMoveFromLast("사", map[string]bool{}))
	assert.False(t, d.hasAnyMoveFromLast("사", map[string]bool{"사과": true}))
	assert.False(t, d.hasAnyMoveFromLast("없", map[string]bool{}))
}
