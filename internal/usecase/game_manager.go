package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playgrid/tictactoe-backend/internal/apperror"
	"github.com/playgrid/tictactoe-backend/internal/entity"
	"github.com/playgrid/tictactoe-backend/internal/pkg"
	"github.com/playgrid/tictactoe-backend/internal/tictactoe"
)

const botMoveTimeout = 5 * time.Second

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager - owns the lifecycle of game sessions: creating them, applying
// turns and driving the computer player.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo

	selector *tictactoe.Selector
	botDelay time.Duration

	timersMu  sync.Mutex
	botTimers map[string]*time.Timer
	botEpochs map[string]uint64

	onUpdate func(game *entity.Game)
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, selector *tictactoe.Selector, botDelay time.Duration) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		selector:  selector,
		botDelay:  botDelay,
		botTimers: make(map[string]*time.Timer),
		botEpochs: make(map[string]uint64),
	}
}

// OnGameUpdate - registers the callback that delivers games changed outside
// a client request, like a landed computer move. Register before serving
// traffic; the callback is read without locking afterwards.
func (that *GameManager) OnGameUpdate(fn func(game *entity.Game)) {
	that.onUpdate = fn
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// GetGameByPlayerID - returns the player's running game, so a reconnecting
// client can pick the session back up.
func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	return game, nil
}

// StartGame - creates a fresh session for the player. A local game seats one
// player for both marks; a bot game draws the mark split at random and may
// put the computer on the first move.
func (that *GameManager) StartGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	log := that.logger.With("method", "StartGame")

	if gameType != entity.LocalType && gameType != entity.BotType {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, gameType)
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	// a new game always replaces whatever the player was in before
	if player.GameID != "" {
		if old, oldErr := that.gameRepo.GetByID(ctx, player.GameID); oldErr == nil {
			if endErr := that.EndGame(ctx, old); endErr != nil {
				log.Error("failed to end previous game", "gameID", old.ID, "error", endErr)
			}
		}
	}

	gameID := pkg.GenerateGameID()
	game := entity.NewGame(gameID, gameType)

	player.GameID = gameID
	player.Mark = tictactoe.PlayerX

	game.Players = []*entity.Player{player}

	if game.IsWithBot() {
		playerMark, botMark := game.GetRandomMarks()
		player.Mark = playerMark
		game.Players = append(game.Players, entity.NewBotPlayer(gameID, botMark))
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if game.IsWithBot() {
		that.scheduleBotMove(ctx, game)
	}

	log.Info("game started", "gameID", gameID, "type", gameType)

	return game, nil
}

// MakeTurn - applies the player's move. In a local game the single seat
// plays whichever mark is due. When the move leaves the game open for the
// computer, its reply is scheduled.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	mark := player.Mark
	if game.IsLocal() {
		// one seat plays both sides in a local game
		mark = game.Turn
	}

	if err = game.MakeTurn(mark, cell); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if game.IsWithBot() {
		that.scheduleBotMove(ctx, game)
	}

	return game, nil
}

// ResetGame - starts the same session over on a fresh board. A pending
// computer move from the old board is cancelled first.
func (that *GameManager) ResetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, err
	}

	that.cancelBotMove(game.ID)
	game.ResetBoard()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	if game.IsWithBot() {
		that.scheduleBotMove(ctx, game)
	}

	that.logger.Info("game reset", "gameID", game.ID)

	return game, nil
}

// EndGame - tears the session down and releases its players back to the menu.
func (that *GameManager) EndGame(ctx context.Context, game *entity.Game) error {
	log := that.logger.With("method", "EndGame", "gameID", game.ID)

	that.cancelBotMove(game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.releaseBotEpoch(game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		player.Mark = ""
		player.GameID = ""

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to detach player", "playerID", player.ID, "error", err)
		}
	}

	log.Info("game ended")

	return nil
}

// scheduleBotMove - computes the computer's reply for the current position
// and arms a timer to land it after the configured delay. The chosen cell
// and the board it was chosen for are captured now; landing re-checks them.
func (that *GameManager) scheduleBotMove(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "scheduleBotMove", "gameID", game.ID)

	bot := game.BotPlayer()
	if bot == nil || !game.IsOngoing() || game.Turn != bot.Mark {
		return
	}

	cell, ok := that.selector.SelectMove(game.Board, bot.Mark)
	if !ok {
		return
	}

	game.BotThinking = true
	if err := that.updateGame(ctx, game); err != nil {
		log.Error("failed to mark the game as thinking", "error", err)
		return
	}

	gameID := game.ID
	botMark := bot.Mark
	snapshot := game.Board

	that.timersMu.Lock()
	if pending, exists := that.botTimers[gameID]; exists {
		pending.Stop()
	}
	epoch := that.botEpochs[gameID]

	var timer *time.Timer
	timer = time.AfterFunc(that.botDelay, func() {
		// release the map slot only if it still belongs to this timer,
		// a reset may have re-armed the game in the meantime
		that.timersMu.Lock()
		if that.botTimers[gameID] == timer {
			delete(that.botTimers, gameID)
		}
		that.timersMu.Unlock()

		that.completeBotMove(gameID, botMark, cell, snapshot, epoch)
	})
	that.botTimers[gameID] = timer
	that.timersMu.Unlock()
}

// completeBotMove - lands a previously computed computer move. The session
// is reloaded first and the move is dropped when the game is gone, it is no
// longer the computer's turn, the board moved on from the position the cell
// was chosen for, or the move was cancelled while in flight.
func (that *GameManager) completeBotMove(gameID, botMark string, cell int, snapshot tictactoe.Board, epoch uint64) {
	log := that.logger.With("method", "completeBotMove", "gameID", gameID)

	ctx, cancel := context.WithTimeout(context.Background(), botMoveTimeout)
	defer cancel()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		log.Debug("dropping bot move, game is gone", "error", err)
		return
	}

	if !game.IsOngoing() || game.Turn != botMark || game.Board != snapshot {
		log.Debug("dropping bot move, board changed since it was computed")
		return
	}

	that.timersMu.Lock()
	stale := that.botEpochs[gameID] != epoch
	that.timersMu.Unlock()

	if stale {
		log.Debug("dropping bot move, it was cancelled while in flight")
		return
	}

	game.BotThinking = false

	if err = game.MakeTurn(botMark, cell); err != nil {
		log.Error("failed to apply bot move", "cell", cell, "error", err)
		return
	}

	if err = that.updateGame(ctx, game); err != nil {
		log.Error("failed to save bot move", "error", err)
		return
	}

	log.Info("bot made a turn", "cell", cell)

	if that.onUpdate != nil {
		that.onUpdate(game)
	}
}

// cancelBotMove - stops the pending computer move for the game, if any. The
// epoch bump also invalidates a move whose timer has already fired.
func (that *GameManager) cancelBotMove(gameID string) {
	that.timersMu.Lock()
	defer that.timersMu.Unlock()

	that.botEpochs[gameID]++

	if timer, ok := that.botTimers[gameID]; ok {
		timer.Stop()
		delete(that.botTimers, gameID)
	}
}

// releaseBotEpoch - forgets the cancellation epoch of a deleted session.
func (that *GameManager) releaseBotEpoch(gameID string) {
	that.timersMu.Lock()
	defer that.timersMu.Unlock()

	delete(that.botEpochs, gameID)
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: pkg.GenerateNewSessionID(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
