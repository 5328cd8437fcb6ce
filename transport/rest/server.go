package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// storagePinger reports whether the session store is reachable.
type storagePinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	logger  *slog.Logger
	echo    *echo.Echo
	storage storagePinger
}

func New(logger *slog.Logger, storage storagePinger) *Server {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	server := &Server{
		logger:  logger,
		echo:    router,
		storage: storage,
	}

	router.GET("/ping", server.handlePing)
	router.GET("/healthz", server.handleHealth)

	return server
}

// Start - serves HTTP until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := that.echo.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down http server", "error", err)
		}
	}()

	if err := that.echo.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
