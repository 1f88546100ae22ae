package api

import (
	"context"
	"net/http"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/services/session"
	"FxPulse/internal/usecase"
	xhttp "FxPulse/pkg/http"
	"FxPulse/pkg/http/middleware"
	xlogger "FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

var nowUTC = func() time.Time { return time.Now().UTC() }

// SystemEchoHandler serves the session clock, coach chat, live stream and
// health.
type SystemEchoHandler struct {
	logger  *xlogger.Logger
	coach   *usecase.Coach
	stream  http.Handler
	db      HealthChecker
	limiter middleware.Allower
	now     func() time.Time
}

func NewSystemEchoHandler(
	logger *xlogger.Logger,
	coach *usecase.Coach,
	stream http.Handler,
	db HealthChecker,
	limiter middleware.Allower,
) *SystemEchoHandler {
	return &SystemEchoHandler{logger: logger, coach: coach, stream: stream, db: db, limiter: limiter, now: nowUTC}
}

func (h *SystemEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/session", h.Session)
	g.POST("/chat", h.Chat, middleware.RateLimit(h.limiter))
	if h.stream != nil {
		g.GET("/stream", echo.WrapHandler(h.stream))
	}
}

// Session returns the current session and its default pairs.
func (h *SystemEchoHandler) Session(c echo.Context) error {
	now := h.now()
	name := session.Current(now)
	pairs := session.DefaultPairs(name)
	if pairs == nil {
		pairs = []string{}
	}
	return xhttp.SuccessResponse(c, models.SessionResponse{
		Session:   name.String(),
		Pairs:     pairs,
		LocalTime: session.Local(now),
	})
}

func (h *SystemEchoHandler) Chat(c echo.Context) error {
	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return verr
	}
	reply, err := h.coach.Ask(c.Request().Context(), req)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, models.ChatResponse{Message: reply})
}

func (h *SystemEchoHandler) Health(c echo.Context) error {
	res := xhttp.HealthResponse{Status: "ok", Database: "ok"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Health(ctx); err != nil {
			h.logger.Warn("health check failed", xlogger.Error(err))
			res.Status, res.Database = "degraded", "unreachable"
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, res)
		}
	}
	return xhttp.SuccessResponse(c, res)
}
