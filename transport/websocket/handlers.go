package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
	"github.com/playgrid/tictactoe-backend/internal/entity"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"

	gameStatusLeave = "leave"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)

		return that.sendErrorResponse(conn, msg.Action, "failed to create a new player")
	}

	that.registerConnection(player.ID, conn)

	if player.GameID != "" {
		return that.handleExistingGame(ctx, conn, msg, player)
	}

	payloadResp := Payload{
		Player: player,
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

// handleExistingGame - reattaches a connecting player to the game they were in.
func (that *Server) handleExistingGame(ctx context.Context, conn *connection, msg *Message, player *entity.Player) error {
	log := that.logger.With("method", "handleExistingGame")

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
	if err != nil {
		log.Error("failed to get game", "gameID", player.GameID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to get the game")
	}

	payload := Payload{
		Player: player,
		Game:   maskGameDetails(game),
	}

	return that.sendMessage(conn, msg.Action, payload)
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	if payloadReq.Game == nil {
		log.Error("Game is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Game is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	game, err := that.gameUseCase.StartGame(ctx, payloadReq.Player.ID, payloadReq.Game.Type)
	if errors.Is(err, apperror.ErrUnknownGameType) {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to start game", "type", payloadReq.Game.Type, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new game")
	}

	that.broadcastGame(msg.Action, game)

	log.Info("game started", "gameID", game.ID, "type", game.Type)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	if payloadReq.Cell == nil {
		log.Error("Cell is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Cell is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Cell)
	if errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrNoActiveGames) ||
		errors.Is(err, entity.ErrInvalidCell) {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to make turn", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to make a turn")
	}

	that.broadcastGame(msg.Action, game)

	log.Info("Player made a turn", "gameID", game.ID, "cell", *payloadReq.Cell)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameReset")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	game, err := that.gameUseCase.ResetGame(ctx, payloadReq.Player.ID)
	if errors.Is(err, apperror.ErrNoActiveGames) {
		return that.sendErrorResponse(conn, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to reset game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to reset the game")
	}

	that.broadcastGame(msg.Action, game)

	log.Info("game reset", "gameID", game.ID)

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameLeave")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "Player is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	game, err := that.gameUseCase.GetGameByPlayerID(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to find game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "game doesn't exist")
	}

	if err = that.gameUseCase.EndGame(ctx, game); err != nil {
		log.Error("failed to end game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to leave the game")
	}

	masked := maskGameDetails(game)
	masked.Status = gameStatusLeave

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		that.connectionsMutex.RLock()
		playerConn, ok := that.connections[player.ID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Info("failed to find connection", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   masked,
		}

		if err = that.sendMessage(playerConn, msg.Action, payloadResp); err != nil {
			log.Error("failed to send game update", "error", err)
		}
	}

	log.Info("Player left the game", "gameID", game.ID)

	return nil
}

// broadcastGame - sends the game to every connected human player in it.
func (that *Server) broadcastGame(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcastGame", "gameID", game.ID)

	masked := maskGameDetails(game)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		that.connectionsMutex.RLock()
		conn, ok := that.connections[player.ID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   masked,
		}

		if err := that.sendMessage(conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "error", err)
		}
	}
}

// maskGameDetails hides seat and matchmaking details from the game payload.
func maskGameDetails(game *entity.Game) *entity.Game {
	masked := *game
	masked.Players = nil
	masked.Type = ""

	return &masked
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	payload := Payload{Error: errorMsg}
	if err := that.sendMessage(conn, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
