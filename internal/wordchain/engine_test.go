package wordchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDict(words ...string) *Dictionary {
	d := &Dictionary{words: map[string]bool{}}
	for _, w := range words {
		d.words[w] = true
	}
	d.rebuildIndex()
	return d
}

func TestDepthFor(t *testing.T) {
	assert.Equal(t, 4, depthFor(DifficultyEasy))
	assert.Equal(t, 10, depthFor(DifficultyNormal))
	assert.Equal(t, 20, depthFor(DifficultyHard))
	assert.Equal(t, 10, depthFor(Difficulty("unknown")))
}

func TestEvaluateLeaf(t *testing.T) {
	d := newTestDict("사과")
	assert.Equal(t, -9999, evaluateLeaf(d, "사", map[string]bool{"사과": true}))
	assert.Equal(t, 0, evaluateLeaf(d, "사", map[string]bool{}))
}

func TestSelectAIWordNoCandidates(t *testing.T) {
	d := newTestDict("사과")
	_, ok := SelectAIWord(d, "사과", map[string]bool{"사과": true}, DifficultyNormal)
	assert.False(t, ok)
}

func TestSelectAIWordPicksImmediateWin(t *testing.T) {
	// "사자" ends on "자", which has no dictionary continuation at all, so
	// playing it should win immediately over any other legal reply.
	d := newTestDict("사자", "사과", "과일")
	word, ok := SelectAIWord(d, "시작사", map[string]bool{}, DifficultyNormal)
	require.True(t, ok)
	assert.Equal(t, "사자", word)
}

func TestHasAnyMoveHelper(t *testing.T) {
	d := newTestDict("사과")
	assert.True(t, HasAnyMove(d, "사", map[string]bool{}))
	assert.False(t, HasAnyMove(d, "사", map[string]bool{"사과": true}))
}
