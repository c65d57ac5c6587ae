package wordchain

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/talgya/abydos/internal/llm"
	"github.com/talgya/abydos/internal/store"
)

// turnTimeout is the hard per-turn deadline for both practice and PvP
// play; warnBefore is how long before it that a "10 seconds left"
// notice goes out. Both practice and PvP share one timeout in the
// Python original (PRACTICE_TURN_TIMEOUT == PVP_TURN_TIMEOUT == 90s).
const (
	turnTimeout = 90 * time.Second
	warnBefore  = 10 * time.Second
)

// Mode is which kind of game a session is currently running.
type Mode int

const (
	ModeIdle Mode = iota
	ModePractice
	ModePvP
)

// Outcome is how a finished game ended, for flavor text and record
// keeping.
type Outcome string

const (
	OutcomeWin        Outcome = "win"
	OutcomeTimeout    Outcome = "timeout"
	OutcomeResignation Outcome = "resignation"
	OutcomeStopped    Outcome = "stopped"
)

// Session is the live state for one (guild, channel) word-chain game.
// Only one session may be active per key at a time; Manager enforces
// that with its own lock before a Session is ever handed to a caller.
type Session struct {
	Mode       Mode
	GuildID    string
	ChannelID  string
	HostID     string
	HostName   string
	OpponentID string // PvP only
	Opponent   string
	Difficulty Difficulty // Practice only
	Used       map[string]bool
	History    []string
	StartedAt  time.Time
	Turn       string // user ID whose move it is, PvP; host always moves in Practice

	stop chan struct{}
}

func newSession(mode Mode, guildID, channelID string) *Session {
	return &Session{
		Mode:      mode,
		GuildID:   guildID,
		ChannelID: channelID,
		Used:      map[string]bool{},
		StartedAt: time.Now(),
		stop:      make(chan struct{}),
	}
}

// TurnNotifier is the transport-facing hook a Manager calls to push
// chat messages for the game in progress: turn prompts, the 10s-left
// warning, and the final result line. Implemented by internal/discordbot.
type TurnNotifier interface {
	Announce(ctx context.Context, guildID, channelID, text string) error
}

// Manager owns the set of live sessions and the shared dictionary they
// all search against.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	dict     *Dictionary
	store    *store.Store
	oracle   *llm.Oracle
	notifier TurnNotifier
	rng      *rand.Rand
}

func NewManager(dict *Dictionary, st *store.Store, oracle *llm.Oracle, notifier TurnNotifier) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		dict:     dict,
		store:    st,
		oracle:   oracle,
		notifier: notifier,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func key(guildID, channelID string) string {
	return guildID + "/" + channelID
}

var (
	// ErrSessionActive is returned when a start/practice/pvp command is
	// issued against a channel that already has a game running.
	ErrSessionActive = errors.New("wordchain: a game is already running in this channel")
	// ErrNoSession is returned when a stop/move is issued against a
	// channel with no live game.
	ErrNoSession = errors.New("wordchain: no game is running in this channel")
)

// begin registers a new session for (guildID, channelID), failing if one
// is already active. The returned release func must be deferred by the
// caller to clear the slot once the game loop returns.
func (m *Manager) begin(mode Mode, guildID, channelID string) (*Session, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(guildID, channelID)
	if _, ok := m.sessions[k]; ok {
		return nil, nil, ErrSessionActive
	}
	sess := newSession(mode, guildID, channelID)
	m.sessions[k] = sess
	release := func() {
		m.mu.Lock()
		delete(m.sessions, k)
		m.mu.Unlock()
	}
	return sess, release, nil
}

// Active reports whether a game is running in (guildID, channelID).
func (m *Manager) Active(guildID, channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[key(guildID, channelID)]
	return ok
}

// CanStop reports whether requesterID may stop the session: the host,
// or isModerator (guild administrator/manage_channels/manage_guild,
// decided by the caller before invoking this).
func CanStop(sess *Session, requesterID string, isModerator bool) bool {
	return requesterID == sess.HostID || isModerator
}

// Stop signals a running session's game loop to end as OutcomeStopped.
func (m *Manager) Stop(guildID, channelID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[key(guildID, channelID)]
	m.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	select {
	case <-sess.stop:
		// already stopping
	default:
		close(sess.stop)
	}
	return nil
}

// MoveInput is one player's submitted word for the current turn.
type MoveInput struct {
	UserID string
	Word   string
}

// moveResult is what a legality check decides about a submitted word.
type moveResult struct {
	ok     bool
	reason string
}

// forfeitTokens are the resignation words recognized before any
// dictionary check, grounded on blue_war.py's practice and PvP turn
// loops (`w.lower() in ("gg", "기권", "항복", "포기")`).
var forfeitTokens = map[string]bool{
	"gg": true, "기권": true, "항복": true, "포기": true,
}

func isForfeit(word string) bool {
	return forfeitTokens[strings.ToLower(normalizeWord(word))]
}

func (m *Manager) checkMove(sess *Session, word string) moveResult {
	word = normalizeWord(word)
	if word == "" {
		return moveResult{false, "단어를 입력해줘."}
	}
	if sess.Used[word] {
		return moveResult{false, fmt.Sprintf("'%s'는 이미 사용된 단어야.", word)}
	}
	if !m.dict.Contains(word) {
		return moveResult{false, fmt.Sprintf("'%s'는 사전에 없는 단어야.", word)}
	}
	if len(sess.History) > 0 {
		prev := sess.History[len(sess.History)-1]
		if !m.dict.ValidFollow(prev, word) {
			allowed := m.dict.AllowedFirstChars(lastChar(prev))
			return moveResult{false, fmt.Sprintf("'%s'(으)로 시작하는 단어를 입력해야 해. (허용: %v)", lastChar(prev), allowed)}
		}
	}
	return moveResult{true, ""}
}

func (sess *Session) play(word string) {
	sess.Used[word] = true
	sess.History = append(sess.History, word)
}

// StartPractice launches a solo game against the AI at the given
// difficulty. It blocks until the game ends; callers run it in its own
// goroutine. waitForMove must block until the user submits a word,
// stops, or the context is cancelled by an outer turn timeout.
func (m *Manager) StartPractice(ctx context.Context, guildID, channelID, hostID, hostName string, difficulty Difficulty, waitForMove func(ctx context.Context) (string, error)) (Outcome, error) {
	sess, release, err := m.begin(ModePractice, guildID, channelID)
	if err != nil {
		return "", err
	}
	defer release()
	sess.HostID, sess.HostName, sess.Difficulty = hostID, hostName, difficulty

	start := m.dict.RandomStartWord(m.rng.Intn)
	if start == "" {
		return "", fmt.Errorf("wordchain: empty dictionary")
	}
	sess.History = append(sess.History, start)
	sess.Used[start] = true

	userGoesFirst := m.rng.Intn(2) == 0

	for {
		if !userGoesFirst {
			aiWord, ok := SelectAIWord(m.dict, sess.History[len(sess.History)-1], sess.Used, difficulty)
			if !ok {
				m.finishPractice(sess, hostID, hostName, OutcomeWin)
				return OutcomeWin, nil
			}
			sess.play(aiWord)
			m.announce(ctx, sess, fmt.Sprintf("AI: %s", aiWord))
			if !HasAnyMove(m.dict, lastChar(aiWord), sess.Used) {
				m.finishPractice(sess, hostID, hostName, OutcomeTimeout)
				m.announce(ctx, sess, "네가 이어갈 단어가 없어! AI 승리.")
				return OutcomeTimeout, nil
			}
		}
		userGoesFirst = false

		outcome, done, err := m.waitUserTurn(ctx, sess, hostID, waitForMove)
		if err != nil {
			return "", err
		}
		if done {
			m.finishPractice(sess, hostID, hostName, outcome)
			return outcome, nil
		}

		if !HasAnyMove(m.dict, lastChar(sess.History[len(sess.History)-1]), sess.Used) {
			m.finishPractice(sess, hostID, hostName, OutcomeWin)
			m.announce(ctx, sess, "AI가 이어갈 단어가 없어! 네 승리!")
			return OutcomeWin, nil
		}
	}
}

// waitUserTurn runs one user turn with the timeout/warning goroutine
// pattern, returning (outcome, true) when the game is over (timeout,
// resignation, or stop) or (_, false) when play should continue.
func (m *Manager) waitUserTurn(ctx context.Context, sess *Session, userID string, waitForMove func(ctx context.Context) (string, error)) (Outcome, bool, error) {
	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	warnTimer := time.AfterFunc(turnTimeout-warnBefore, func() {
		m.announce(ctx, sess, "10초 남았어!")
	})
	defer warnTimer.Stop()

	moveCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		word, err := waitForMove(turnCtx)
		if err != nil {
			errCh <- err
			return
		}
		moveCh <- word
	}()

	select {
	case <-sess.stop:
		return OutcomeStopped, true, nil
	case <-turnCtx.Done():
		return OutcomeTimeout, true, nil
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return OutcomeTimeout, true, nil
		}
		return "", false, err
	case word := <-moveCh:
		if isForfeit(word) {
			m.announce(ctx, sess, "기권!\n이번 판은 유메 승리야. 으헤~")
			return OutcomeResignation, true, nil
		}
		res := m.checkMove(sess, word)
		if !res.ok {
			m.announce(ctx, sess, res.reason)
			return "", false, nil
		}
		sess.play(normalizeWord(word))
		return "", false, nil
	}
}

func (m *Manager) finishPractice(sess *Session, hostID, hostName string, outcome Outcome) {
	switch outcome {
	case OutcomeWin:
		_ = m.store.RecordWin(hostID, hostName)
	case OutcomeTimeout, OutcomeResignation:
		_ = m.store.RecordLoss(hostID, hostName)
	}
	m.narratePracticeResult(hostID, outcome)
}

// narratePracticeResult asks the oracle for a short flavor line, per
// the same mode-string/fallback pattern as NarrateIncident. Practice
// results are purely cosmetic: finishPractice discards both the line and
// any error.
func (m *Manager) narratePracticeResult(userID string, outcome Outcome) (string, error) {
	if m.oracle == nil || !m.oracle.Enabled() {
		return "", fmt.Errorf("llm: oracle disabled")
	}
	instructions := `당신은 단어잇기 연습 게임의 짧은 해설자입니다. 결과를 1문장의 담백한 한국어로 전달하세요. 과장하지 말 것.`
	input := fmt.Sprintf("유저: %s\n결과: %s", userID, outcome)
	return m.oracle.Generate("wordchain_practice_result", instructions, input, 80)
}

// StartPvP launches a two-player game between hostID and opponentID. It
// blocks until the game ends; callers run it in its own goroutine.
func (m *Manager) StartPvP(ctx context.Context, guildID, channelID, hostID, hostName, opponentID, opponentName string, waitForMove func(ctx context.Context, turnUserID string) (string, error)) (winnerID string, outcome Outcome, err error) {
	sess, release, err := m.begin(ModePvP, guildID, channelID)
	if err != nil {
		return "", "", err
	}
	defer release()
	sess.HostID, sess.HostName = hostID, hostName
	sess.OpponentID, sess.Opponent = opponentID, opponentName

	start := m.dict.RandomStartWord(m.rng.Intn)
	if start == "" {
		return "", "", fmt.Errorf("wordchain: empty dictionary")
	}
	sess.History = append(sess.History, start)
	sess.Used[start] = true

	players := [2]string{hostID, opponentID}
	names := [2]string{hostName, opponentName}
	turn := m.rng.Intn(2)

	for {
		current, currentName := players[turn], names[turn]
		other, otherName := players[1-turn], names[1-turn]

		if !HasAnyMove(m.dict, lastChar(sess.History[len(sess.History)-1]), sess.Used) {
			m.finishPvP(other, otherName, current, currentName)
			m.announce(ctx, sess, fmt.Sprintf("<@%s>가 이어갈 단어가 없어! <@%s> 승리!", current, other))
			return other, OutcomeWin, nil
		}

		turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
		warnTimer := time.AfterFunc(turnTimeout-warnBefore, func() {
			m.announce(ctx, sess, "10초 남았어!")
		})

		word, moveErr := waitForMove(turnCtx, current)
		warnTimer.Stop()
		cancel()

		select {
		case <-sess.stop:
			return "", OutcomeStopped, nil
		default:
		}

		if moveErr != nil {
			if errors.Is(moveErr, context.DeadlineExceeded) {
				m.finishPvP(other, otherName, current, currentName)
				m.announce(ctx, sess, fmt.Sprintf("<@%s>가 시간 초과! <@%s> 승리!", current, other))
				return other, OutcomeTimeout, nil
			}
			return "", "", moveErr
		}

		if isForfeit(word) {
			m.finishPvP(other, otherName, current, currentName)
			m.announce(ctx, sess, fmt.Sprintf("<@%s> 기권!\n이번 판 승자는 <@%s>!", current, other))
			return other, OutcomeResignation, nil
		}

		res := m.checkMove(sess, word)
		if !res.ok {
			m.announce(ctx, sess, res.reason)
			continue // same player's turn again
		}
		sess.play(normalizeWord(word))
		m.announce(ctx, sess, fmt.Sprintf("<@%s>: %s", current, normalizeWord(word)))
		turn = 1 - turn
	}
}

func (m *Manager) finishPvP(winnerID, winnerName, loserID, loserName string) {
	_ = m.store.RecordWin(winnerID, winnerName)
	_ = m.store.RecordLoss(loserID, loserName)
}

func (m *Manager) announce(ctx context.Context, sess *Session, text string) {
	if m.notifier == nil {
		return
	}
	_ = m.notifier.Announce(ctx, sess.GuildID, sess.ChannelID, text)
}
