package tictactoe

// Outcome - the verdict on a board position: a completed line with its
// winner, a draw on a full board, or the zero value while the game is open.
type Outcome struct {
	Winner string
	Line   [3]int
	Draw   bool
}

// HasWinner reports whether a line is complete.
func (that Outcome) HasWinner() bool {
	return that.Winner != EmptyCell
}

// Finished reports whether the position is terminal.
func (that Outcome) Finished() bool {
	return that.HasWinner() || that.Draw
}

// Evaluate - scans the winning combos in fixed order and reports the first
// completed one. A full board without a completed line is a draw; anything
// else means the game is still on.
func Evaluate(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome{Winner: a, Line: combo}
		}
	}

	if board.IsFull() {
		return Outcome{Draw: true}
	}

	return Outcome{}
}
