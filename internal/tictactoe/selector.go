package tictactoe

import (
	"math"
	"math/rand"
)

// openingRanks orders cells by strategic value: center, then corners, then
// edges.
var openingRanks = [9]int{4, 0, 2, 6, 8, 1, 3, 5, 7}

const (
	openingChoices = 3

	winScore = 10
)

// Selector - picks moves for the computer player. The search is a full
// minimax over every legal continuation, which makes the computer
// unbeatable; only the very first move of a game is randomized so that
// games do not all start the same way.
type Selector struct {
	rng *rand.Rand
}

func NewSelector() *Selector {
	return &Selector{}
}

// NewSelectorWithSource - builds a selector with its own randomness source
// so tests can pin the opening draw. The shared source returned by
// NewSelector is safe for concurrent use; a custom one is not.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// SelectMove - returns the cell the given mark should play on the board.
// The second result is false when no cell is free. On an empty board the
// move is drawn from the strongest opening cells instead of searching.
func (that *Selector) SelectMove(board Board, mark string) (int, bool) {
	free := board.FreeCells()
	if len(free) == 0 {
		return 0, false
	}

	if board.IsEmpty() {
		return openingRanks[that.intn(openingChoices)], true
	}

	bestCell := free[0]
	bestScore := math.MinInt

	for _, cell := range free {
		next := board
		next[cell] = mark

		score := that.minimax(next, Opponent(mark), mark, 1)
		if score > bestScore {
			bestScore = score
			bestCell = cell
		}
	}

	return bestCell, true
}

// minimax - exhaustively scores a position from the computer's point of
// view. Depth counts plies from the root, so a nearer win outranks a
// distant one and a distant loss outranks a near one. Ties keep the first
// candidate found.
func (that *Selector) minimax(board Board, turn, botMark string, depth int) int {
	outcome := Evaluate(board)

	switch {
	case outcome.HasWinner() && outcome.Winner == botMark:
		return winScore - depth
	case outcome.HasWinner():
		return depth - winScore
	case outcome.Draw:
		return 0
	}

	if turn == botMark {
		best := math.MinInt
		for _, cell := range board.FreeCells() {
			next := board
			next[cell] = turn

			if score := that.minimax(next, Opponent(turn), botMark, depth+1); score > best {
				best = score
			}
		}

		return best
	}

	best := math.MaxInt
	for _, cell := range board.FreeCells() {
		next := board
		next[cell] = turn

		if score := that.minimax(next, Opponent(turn), botMark, depth+1); score < best {
			best = score
		}
	}

	return best
}

func (that *Selector) intn(n int) int {
	if that.rng != nil {
		return that.rng.Intn(n)
	}

	return rand.Intn(n) //nolint: gosec // it's ok
}
