package wordchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(words ...string) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		dict:     newTestDict(words...),
	}
}

func TestCheckMoveRejectsEmpty(t *testing.T) {
	m := newTestManager("사과")
	sess := newSession(ModePractice, "g", "c")
	res := m.checkMove(sess, "   ")
	assert.False(t, res.ok)
}

func TestCheckMoveRejectsUnknownWord(t *testing.T) {
	m := newTestManager("사과")
	sess := newSession(ModePractice, "g", "c")
	res := m.checkMove(sess, "없는단어")
	assert.False(t, res.ok)
	assert.Contains(t, res.reason, "없는단어")
}

func TestCheckMoveRejectsAlreadyUsed(t *testing.T) {
	m := newTestManager("사과")
	sess := newSession(ModePractice, "g", "c")
	sess.Used["사과"] = true
	res := m.checkMove(sess, "사과")
	assert.False(t, res.ok)
}

func TestCheckMoveRejectsBadFollow(t *testing.T) {
	m := newTestManager("사과", "우산")
	sess := newSession(ModePractice, "g", "c")
	sess.History = append(sess.History, "사과") // ends "과", next must start "과"
	res := m.checkMove(sess, "우산")
	assert.False(t, res.ok)
}

func TestCheckMoveAcceptsLegalFollow(t *testing.T) {
	m := newTestManager("사과", "과일")
	sess := newSession(ModePractice, "g", "c")
	sess.History = append(sess.History, "사과")
	res := m.checkMove(sess, "과일")
	assert.True(t, res.ok)
}

func TestCanStop(t *testing.T) {
	sess := newSession(ModePractice, "g", "c")
	sess.HostID = "host-1"
	assert.True(t, CanStop(sess, "host-1", false))
	assert.False(t, CanStop(sess, "someone-else", false))
	assert.True(t, CanStop(sess, "someone-else", true))
}

func TestManagerBeginRejectsDuplicate(t *testing.T) {
	m := newTestManager("사과")
	_, release, err := m.begin(ModePractice, "g", "c")
	require.NoError(t, err)
	assert.True(t, m.Active("g", "c"))

	_, _, err = m.begin(ModePvP, "g", "c")
	assert.ErrorIs(t, err, ErrSessionActive)

	release()
	assert.False(t, m.Active("g", "c"))

	_, release2, err := m.begin(ModePractice, "g", "c")
	require.NoError(t, err)
	release2()
}

func TestManagerStopUnknownSession(t *testing.T) {
	m := newTestManager("사과")
	err := m.Stop("g", "c")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerStopSignalsSession(t *testing.T) {
	m := newTestManager("사과")
	sess, release, err := m.begin(ModePractice, "g", "c")
	require.NoError(t, err)
	defer release()

	require.NoError(t, m.Stop("g", "c"))
	select {
	case <-sess.stop:
	default:
		t.Fatal("expected stop channel to be closed")
	}

	// Stopping again must not panic on a double close.
	assert.NoError(t, m.Stop("g", "c"))
}
