package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
	"github.com/playgrid/tictactoe-backend/internal/tictactoe"
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	PlayerTie = "-"
)

const (
	LocalType = "local"
	BotType   = "bot"
)

var ErrInvalidCell = errors.New("invalid cell index")

type Game struct {
	ID          string          `json:"id"`
	Board       tictactoe.Board `json:"board"`
	Winner      string          `json:"winner,omitempty"`
	WinningLine []int           `json:"winning_line,omitempty"`
	Status      string          `json:"status"`
	Turn        string          `json:"player_turn"`
	BotThinking bool            `json:"bot_thinking,omitempty"`
	Players     []*Player       `json:"players,omitempty"`
	Type        string          `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:     id,
		Board:  tictactoe.Board{},
		Turn:   tictactoe.PlayerX,
		Status: StatusOngoing,
		Type:   gameType,
	}
}

// MakeTurn - plays the mark into the cell and advances the game state.
// Cells are written once; nothing short of ResetBoard ever clears one.
func (that *Game) MakeTurn(playerMark string, cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != tictactoe.EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = playerMark
	that.UpdateGameState()

	return nil
}

// UpdateGameState - re-evaluates the board and either finishes the game or
// passes the turn to the other mark.
func (that *Game) UpdateGameState() {
	outcome := tictactoe.Evaluate(that.Board)

	switch {
	// one player wins
	case outcome.HasWinner():
		that.Winner = outcome.Winner
		that.WinningLine = outcome.Line[:]
		that.Status = StatusFinished
		that.Turn = ""
		that.BotThinking = false
	// tie
	case outcome.Draw:
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = ""
		that.BotThinking = false
	// game continue
	default:
		that.Turn = tictactoe.Opponent(that.Turn)
	}
}

// ResetBoard - starts the session over: fresh board, X to move, same players.
func (that *Game) ResetBoard() {
	that.Board = tictactoe.Board{}
	that.Winner = ""
	that.WinningLine = nil
	that.Status = StatusOngoing
	that.Turn = tictactoe.PlayerX
	that.BotThinking = false
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsLocal() bool {
	return that.Type == LocalType
}

func (that *Game) IsWithBot() bool {
	return that.Type == BotType
}

// BotPlayer - returns the computer's seat in the session, or nil.
func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

func (that *Game) GetRandomMarks() (string, string) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return tictactoe.PlayerX, tictactoe.PlayerO
	}
	return tictactoe.PlayerO, tictactoe.PlayerX
}
