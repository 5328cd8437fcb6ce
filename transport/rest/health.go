package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth - reports whether the session store is reachable.
func (that *Server) handleHealth(ctx echo.Context) error {
	if err := that.storage.Ping(ctx.Request().Context()); err != nil {
		that.logger.Error("storage ping failed", "error", err)
		return ctx.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded"})
	}

	return ctx.JSON(http.StatusOK, healthResponse{Status: "ok"})
}
