package tictactoe

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

// WinCombos - the eight cell triples that decide a game.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board - a tic-tac-toe grid in row-major order. Boards are values: placing
// a mark on a copy never touches the original, which is what the move
// search relies on.
type Board [9]string

// IsEmpty reports whether no mark has been placed yet.
func (that Board) IsEmpty() bool {
	for _, cell := range that {
		if cell != EmptyCell {
			return false
		}
	}

	return true
}

// IsFull reports whether every cell is taken.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// FreeCells - returns the indexes of unoccupied cells in ascending order.
func (that Board) FreeCells() []int {
	free := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			free = append(free, i)
		}
	}

	return free
}

// Opponent - returns the mark of the other player.
func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}
