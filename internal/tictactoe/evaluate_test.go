package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Run("Reports a completed row with its line", func(t *testing.T) {
		// Given: a board where X completed the top row
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: X should be the winner on the top row
		require.True(t, outcome.HasWinner())
		assert.Equal(t, PlayerX, outcome.Winner)
		assert.Equal(t, [3]int{0, 1, 2}, outcome.Line)
		assert.True(t, outcome.Finished())
	})

	t.Run("Reports a completed column with its line", func(t *testing.T) {
		// Given: a board where O completed the middle column
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			PlayerX, PlayerO, EmptyCell,
			EmptyCell, PlayerO, PlayerX,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: O should be the winner on the middle column
		require.True(t, outcome.HasWinner())
		assert.Equal(t, PlayerO, outcome.Winner)
		assert.Equal(t, [3]int{1, 4, 7}, outcome.Line)
	})

	t.Run("Reports a completed diagonal with its line", func(t *testing.T) {
		// Given: a board where X completed the main diagonal
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			PlayerO, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerX,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: X should be the winner on the diagonal
		require.True(t, outcome.HasWinner())
		assert.Equal(t, PlayerX, outcome.Winner)
		assert.Equal(t, [3]int{0, 4, 8}, outcome.Line)
	})

	t.Run("Reports a draw on a full board without a line", func(t *testing.T) {
		// Given: a full board with no completed line
		board := Board{
			PlayerX, PlayerO, PlayerX,
			PlayerX, PlayerO, PlayerO,
			PlayerO, PlayerX, PlayerX,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: the outcome should be a draw without a winner
		assert.False(t, outcome.HasWinner())
		assert.True(t, outcome.Draw)
		assert.True(t, outcome.Finished())
	})

	t.Run("Reports an open game otherwise", func(t *testing.T) {
		// Given: a board with free cells and no completed line
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			EmptyCell, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerO,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: the game should still be open
		assert.False(t, outcome.HasWinner())
		assert.False(t, outcome.Draw)
		assert.False(t, outcome.Finished())
	})

	t.Run("Empty board is an open game", func(t *testing.T) {
		// Given: an empty board
		board := Board{}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: the game should still be open
		assert.False(t, outcome.Finished())
	})

	t.Run("Evaluating the same board twice gives the same outcome", func(t *testing.T) {
		// Given: a finished board
		board := Board{
			PlayerO, PlayerO, PlayerO,
			PlayerX, PlayerX, EmptyCell,
			PlayerX, EmptyCell, EmptyCell,
		}

		// When: evaluating it twice
		first := Evaluate(board)
		second := Evaluate(board)

		// Then: both outcomes should be identical
		assert.Equal(t, first, second)
	})

	t.Run("The first completed combo in scan order wins ties", func(t *testing.T) {
		// Given: a board where X completed both the top row and the left column
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerX, PlayerO, PlayerO,
			PlayerX, PlayerO, PlayerO,
		}

		// When: evaluating the board
		outcome := Evaluate(board)

		// Then: the top row should be reported, since it comes first
		require.True(t, outcome.HasWinner())
		assert.Equal(t, [3]int{0, 1, 2}, outcome.Line)
	})
}
