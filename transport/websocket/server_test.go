package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
	"github.com/playgrid/tictactoe-backend/internal/entity"
	"github.com/playgrid/tictactoe-backend/internal/tictactoe"
)

type stubGameUseCase struct {
	player  *entity.Player
	game    *entity.Game
	turnErr error

	onUpdate func(game *entity.Game)
}

func (that *stubGameUseCase) GetOrCreatePlayer(_ context.Context, _ string) (*entity.Player, error) {
	return that.player, nil
}

func (that *stubGameUseCase) GetGameByPlayerID(_ context.Context, _ string) (*entity.Game, error) {
	if that.game == nil {
		return nil, apperror.ErrNoActiveGames
	}

	return that.game, nil
}

func (that *stubGameUseCase) StartGame(_ context.Context, _, _ string) (*entity.Game, error) {
	return that.game, nil
}

func (that *stubGameUseCase) MakeTurn(_ context.Context, _ string, _ int) (*entity.Game, error) {
	if that.turnErr != nil {
		return nil, that.turnErr
	}

	return that.game, nil
}

func (that *stubGameUseCase) ResetGame(_ context.Context, _ string) (*entity.Game, error) {
	return that.game, nil
}

func (that *stubGameUseCase) EndGame(_ context.Context, _ *entity.Game) error {
	return nil
}

func (that *stubGameUseCase) OnGameUpdate(fn func(game *entity.Game)) {
	that.onUpdate = fn
}

// newTestSocket spins up the server over httptest and dials it with the
// gorilla client.
func newTestSocket(t *testing.T, gameUseCase uGame) *websocket.Conn {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(logger, gameUseCase)

	ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		server.serveWS(context.Background(), writer, req)
	}))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, payload Payload) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))
}

func readResponse(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var message Message
	require.NoError(t, conn.ReadJSON(&message))

	var payload Payload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func newStubGame() *entity.Game {
	game := entity.NewGame("g1", entity.BotType)
	game.Board[0] = tictactoe.PlayerX
	game.Turn = tictactoe.PlayerO
	game.Players = []*entity.Player{
		{ID: "p1", Mark: tictactoe.PlayerX, GameID: "g1"},
		entity.NewBotPlayer("g1", tictactoe.PlayerO),
	}

	return game
}

func TestServer_Connect(t *testing.T) {
	t.Run("Creates a player for a first connection", func(t *testing.T) {
		// Given: a connected client without a player
		stub := &stubGameUseCase{player: &entity.Player{ID: "p1"}}
		conn := newTestSocket(t, stub)

		// When: sending a connect action
		sendAction(t, conn, actionConnect, Payload{Player: &entity.Player{}})
		action, payload := readResponse(t, conn)

		// Then: the new player comes back without a game
		assert.Equal(t, actionConnect, action)
		require.NotNil(t, payload.Player)
		assert.Equal(t, "p1", payload.Player.ID)
		assert.Nil(t, payload.Game)
	})

	t.Run("Resumes the running game", func(t *testing.T) {
		// Given: a player already seated in a game
		stub := &stubGameUseCase{
			player: &entity.Player{ID: "p1", Mark: tictactoe.PlayerX, GameID: "g1"},
			game:   newStubGame(),
		}
		conn := newTestSocket(t, stub)

		// When: sending a connect action
		sendAction(t, conn, actionConnect, Payload{Player: &entity.Player{ID: "p1"}})
		action, payload := readResponse(t, conn)

		// Then: the game comes back with seats and type masked
		assert.Equal(t, actionConnect, action)
		require.NotNil(t, payload.Game)
		assert.Equal(t, "g1", payload.Game.ID)
		assert.Equal(t, tictactoe.PlayerX, payload.Game.Board[0])
		assert.Nil(t, payload.Game.Players)
		assert.Empty(t, payload.Game.Type)
	})

	t.Run("Rejects a payload without a player", func(t *testing.T) {
		// Given: a connected client
		stub := &stubGameUseCase{player: &entity.Player{ID: "p1"}}
		conn := newTestSocket(t, stub)

		// When: sending a connect action without a player
		sendAction(t, conn, actionConnect, Payload{})
		_, payload := readResponse(t, conn)

		// Then: an error response is returned
		assert.Equal(t, "Player is required", payload.Error)
	})
}

func TestServer_GameTurn(t *testing.T) {
	t.Run("Broadcasts the updated game to the seat", func(t *testing.T) {
		// Given: a game where the human just moved
		stub := &stubGameUseCase{
			player: &entity.Player{ID: "p1", Mark: tictactoe.PlayerX, GameID: "g1"},
			game:   newStubGame(),
		}
		conn := newTestSocket(t, stub)

		// When: sending a turn for cell 0
		cell := 0
		sendAction(t, conn, actionGameTurn, Payload{Player: &entity.Player{ID: "p1"}, Cell: &cell})
		action, payload := readResponse(t, conn)

		// Then: the masked game comes back on the same action
		assert.Equal(t, actionGameTurn, action)
		require.NotNil(t, payload.Game)
		assert.Equal(t, tictactoe.PlayerX, payload.Game.Board[0])
		assert.Equal(t, tictactoe.PlayerO, payload.Game.Turn)
		assert.Nil(t, payload.Game.Players)
		assert.Empty(t, payload.Game.Type)
	})

	t.Run("Reports rule violations to the sender", func(t *testing.T) {
		// Given: a move the rules reject
		stub := &stubGameUseCase{
			player:  &entity.Player{ID: "p1"},
			turnErr: apperror.ErrCellOccupied,
		}
		conn := newTestSocket(t, stub)

		// When: sending the rejected turn
		cell := 0
		sendAction(t, conn, actionGameTurn, Payload{Player: &entity.Player{ID: "p1"}, Cell: &cell})
		_, payload := readResponse(t, conn)

		// Then: the rule violation text is delivered
		assert.Equal(t, apperror.ErrCellOccupied.Error(), payload.Error)
	})

	t.Run("Rejects a turn without a cell", func(t *testing.T) {
		// Given: a connected client
		stub := &stubGameUseCase{player: &entity.Player{ID: "p1"}}
		conn := newTestSocket(t, stub)

		// When: sending a turn without a cell
		sendAction(t, conn, actionGameTurn, Payload{Player: &entity.Player{ID: "p1"}})
		_, payload := readResponse(t, conn)

		// Then: an error response is returned
		assert.Equal(t, "Cell is required", payload.Error)
	})
}

func TestServer_BotUpdatePush(t *testing.T) {
	// Given: a registered player and a game changed by the computer
	stub := &stubGameUseCase{player: &entity.Player{ID: "p1"}}
	conn := newTestSocket(t, stub)

	sendAction(t, conn, actionConnect, Payload{Player: &entity.Player{}})
	_, _ = readResponse(t, conn)

	game := newStubGame()
	game.Board[4] = tictactoe.PlayerO
	game.Turn = tictactoe.PlayerX

	// When: the scheduler reports the computer's move
	stub.onUpdate(game)

	// Then: the move is pushed to the player as a turn update
	action, payload := readResponse(t, conn)
	assert.Equal(t, actionGameTurn, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, tictactoe.PlayerO, payload.Game.Board[4])
	assert.Equal(t, tictactoe.PlayerX, payload.Game.Turn)
}

func TestMaskGameDetails(t *testing.T) {
	// Given: a game with seats and a type
	game := newStubGame()

	// When: masking it for the wire
	masked := maskGameDetails(game)

	// Then: seats and type are hidden, the rest is kept
	assert.Nil(t, masked.Players)
	assert.Empty(t, masked.Type)
	assert.Equal(t, game.ID, masked.ID)
	assert.Equal(t, game.Board, masked.Board)

	// Then: the original game is left intact
	assert.Len(t, game.Players, 2)
	assert.Equal(t, entity.BotType, game.Type)
}
