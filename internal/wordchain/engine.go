package wordchain

import "time"

// Difficulty maps a practice selection to a minimax depth cap, per
// the Easy/Normal/Hard buttons in the Python original's difficulty view.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

func depthFor(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return 4
	case DifficultyHard:
		return 20
	default:
		return 10
	}
}

// aiSearchTimeLimit is the wall-clock deadline for one minimax call.
const aiSearchTimeLimit = 1200 * time.Millisecond

// candidateScanCap bounds how many of the (length, lex)-sorted
// candidates minimax actually explores; the rest are dominated moves
// that never change the outcome in practice, matching moves0[:60] in
// the Python original.
const candidateScanCap = 60

// immediateWinScanCap bounds the cheap pre-pass that looks for a move
// which immediately ends the game in the mover's favor.
const immediateWinScanCap = 30

// evaluateLeaf returns a terminal score for the position where it is
// the mover's turn and last is the tail character: -9999 if the mover
// has no legal move (mover loses), 0 otherwise (search cut off, neutral).
func evaluateLeaf(dict *Dictionary, last string, used map[string]bool) int {
	if !dict.hasAnyMoveFromLast(last, used) {
		return -9999
	}
	return 0
}

// searchState threads the wall-clock deadline through the recursive
// minimax calls without a package-level variable.
type searchState struct {
	dict     *Dictionary
	deadline time.Time
}

func (s *searchState) timedOut() bool {
	return time.Now().After(s.deadline)
}

// minimax is alpha-beta search over word-chain continuations. maximizing
// is true when it is the AI's own move being scored. On deadline it
// unwinds with neutral (0) scores for unexplored subtrees, same as the
// Python original's time.time() check per node.
func (s *searchState) minimax(last string, used map[string]bool, depth, alpha, beta int, maximizing bool) int {
	if s.timedOut() {
		return 0
	}
	if depth == 0 {
		return evaluateLeaf(s.dict, last, used)
	}

	candidates := s.dict.candidatesFromLast(last, used)
	if len(candidates) == 0 {
		if maximizing {
			return -9999
		}
		return 9999
	}
	if len(candidates) > candidateScanCap {
		candidates = candidates[:candidateScanCap]
	}

	if maximizing {
		best := -1 << 30
		for _, cand := range candidates {
			used[cand] = true
			score := s.minimax(lastChar(cand), used, depth-1, alpha, beta, false)
			delete(used, cand)
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta || s.timedOut() {
				break
			}
		}
		return best
	}

	best := 1 << 30
	for _, cand := range candidates {
		used[cand] = true
		score := s.minimax(lastChar(cand), used, depth-1, alpha, beta, true)
		delete(used, cand)
		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta || s.timedOut() {
			break
		}
	}
	return best
}

// SelectAIWord picks the AI's next word against currentWord, given the
// used set and a difficulty-derived search depth. Falls back to the
// single best-looking candidate if the search times out or every
// continuation looks losing.
func SelectAIWord(dict *Dictionary, currentWord string, used map[string]bool, difficulty Difficulty) (string, bool) {
	last := lastChar(currentWord)
	candidates := dict.candidatesFromLast(last, used)
	if len(candidates) == 0 {
		return "", false
	}

	// Immediate-win scan: does playing this candidate leave the opponent
	// with no reply at all?
	scanLimit := immediateWinScanCap
	if scanLimit > len(candidates) {
		scanLimit = len(candidates)
	}
	for _, cand := range candidates[:scanLimit] {
		used[cand] = true
		opponentStuck := !dict.hasAnyMoveFromLast(lastChar(cand), used)
		delete(used, cand)
		if opponentStuck {
			return cand, true
		}
	}

	searchLimit := candidateScanCap
	if searchLimit > len(candidates) {
		searchLimit = len(candidates)
	}
	pool := candidates[:searchLimit]

	s := &searchState{dict: dict, deadline: time.Now().Add(aiSearchTimeLimit)}
	depth := depthFor(difficulty)

	bestScore := -1 << 30
	bestMove := pool[0]
	for _, cand := range pool {
		if s.timedOut() {
			break
		}
		used[cand] = true
		score := s.minimax(lastChar(cand), used, depth-1, -1<<30, 1<<30, false)
		delete(used, cand)
		if score > bestScore {
			bestScore = score
			bestMove = cand
		}
	}
	return bestMove, true
}

// HasAnyMove reports whether the player to move from last has any
// legal continuation at all (used to detect a loss).
func HasAnyMove(dict *Dictionary, last string, used map[string]bool) bool {
	return dict.hasAnyMoveFromLast(last, used)
}
