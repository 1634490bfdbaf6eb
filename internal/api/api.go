// Package api serves the game over JSON for web clients. Clients run the
// quiz session themselves and post the finished result back.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/chemquest/internal/game"
	"github.com/abhisek/chemquest/internal/progress"
)

// UserHeader selects the profile a request acts on.
const UserHeader = "X-User-ID"

// Handler holds the dependencies shared by all routes.
type Handler struct {
	game        *game.Game
	defaultUser string
	logger      *slog.Logger
}

// NewHandler creates a Handler. Requests without UserHeader act on
// defaultUser.
func NewHandler(g *game.Game, defaultUser string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{game: g, defaultUser: defaultUser, logger: logger}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/healthz", h.Health)

	r.GET("/levels", h.ListLevels)
	r.GET("/levels/:id", h.GetLevel)
	r.POST("/levels/:id/results", h.SubmitResult)

	r.GET("/profile", h.GetProfile)

	r.GET("/mistakes", h.ListMistakes)
	r.POST("/mistakes/:id/retry", h.RetryMistake)

	return r
}

func (h *Handler) userID(c *gin.Context) string {
	if u := c.GetHeader(UserHeader); u != "" {
		return u
	}
	return h.defaultUser
}

// fail maps domain errors to HTTP statuses. Unexpected errors are logged
// and hidden from the client.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, progress.ErrUnknownLevel), errors.Is(err, game.ErrUnknownMistake):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"user_id", c.GetHeader(UserHeader),
		)
	}
}
