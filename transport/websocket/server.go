package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playgrid/tictactoe-backend/internal/entity"
	"github.com/playgrid/tictactoe-backend/internal/pkg"
)

type uGame interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	StartGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
	ResetGame(ctx context.Context, playerID string) (*entity.Game, error)
	EndGame(ctx context.Context, game *entity.Game) error

	OnGameUpdate(fn func(game *entity.Game))
}

// connection - a client socket. gorilla permits one concurrent writer and
// the bot scheduler pushes from its own goroutine, so every write goes
// through the mutex.
type connection struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (that *connection) writeJSON(v interface{}) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.ws.WriteJSON(v)
}

type Server struct {
	logger      *slog.Logger
	gameUseCase uGame
	upgrader    websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	handlers map[string]func(ctx context.Context, message *Message, conn *connection) error
}

func New(logger *slog.Logger, gameUseCase uGame) *Server {
	server := &Server{
		logger:      logger,
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		connections: make(map[string]*connection),

		handlers: make(map[string]func(context.Context, *Message, *connection) error),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameReset] = server.handleGameReset
	server.handlers[actionGameLeave] = server.handleGameLeave

	gameUseCase.OnGameUpdate(server.pushGameUpdate)

	return server
}

// Start - starts the WebSocket server and keeps it up until the context is
// canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(writer http.ResponseWriter, req *http.Request) {
		that.serveWS(ctx, writer, req)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and feeds client messages to the action
// handlers until the client goes away.
func (that *Server) serveWS(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(writer, req, that.sessionHeader(req))
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{ws: ws}

	defer that.handleDisconnect(conn)
	defer ws.Close()

	log.Info("WebSocket connection established")

	for {
		_, raw, readErr := ws.ReadMessage()
		if readErr != nil {
			if websocket.IsUnexpectedCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("connection closed unexpectedly", "error", readErr)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sessionHeader - issues the user_session cookie on the upgrade response
// when the client does not present one yet.
func (that *Server) sessionHeader(req *http.Request) http.Header {
	log := that.logger.With("method", "sessionHeader")

	if cookie, err := req.Cookie("user_session"); err == nil {
		log.Info("session cookie found", "cookie", cookie.Value)
		return nil
	}

	cookie := &http.Cookie{
		Name:    "user_session",
		Value:   pkg.GenerateNewSessionID(),
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/ws",
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return header
}

func (that *Server) registerConnection(playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[playerID] = conn
}

// handleDisconnect - drops the connection from the registry. The player's
// game stays in storage, so reconnecting picks the session back up.
func (that *Server) handleDisconnect(conn *connection) {
	log := that.logger.With("method", "handleDisconnect")

	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, registered := range that.connections {
		if registered != conn {
			continue
		}

		delete(that.connections, playerID)
		log.Info("player disconnected", "playerID", playerID)

		return
	}
}

// pushGameUpdate - delivers a game the bot scheduler changed to its
// connected players.
func (that *Server) pushGameUpdate(game *entity.Game) {
	that.broadcastGame(actionGameTurn, game)
}

func (that *Server) sendMessage(conn *connection, action string, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.writeJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
