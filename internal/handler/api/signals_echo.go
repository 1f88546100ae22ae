package api

import (
	"net/http"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/usecase"
	xhttp "FxPulse/pkg/http"
	"FxPulse/pkg/http/middleware"
	xlogger "FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler serves signal reads, manual creation and generation.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	signals  domrepo.SignalStore
	settings domrepo.SettingsStore
	gen      *usecase.SignalGenerator
	batch    *usecase.BatchGenerator
	limiter  middleware.Allower
	now      func() time.Time
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	signals domrepo.SignalStore,
	settings domrepo.SettingsStore,
	gen *usecase.SignalGenerator,
	batch *usecase.BatchGenerator,
	limiter middleware.Allower,
) *SignalsEchoHandler {
	return &SignalsEchoHandler{
		logger:   logger,
		signals:  signals,
		settings: settings,
		gen:      gen,
		batch:    batch,
		limiter:  limiter,
		now:      gen.Now,
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/signals")
	g.GET("", h.List)
	g.GET("/active", h.Active)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.POST("/generate", h.Generate, middleware.RateLimit(h.limiter))
	g.POST("/generate-all", h.GenerateAll, middleware.RateLimit(h.limiter))
}

// List returns signals, newest first. ?limit= caps the result.
func (h *SignalsEchoHandler) List(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0)
	items, err := h.signals.List(c.Request().Context(), limit)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, items)
}

// Active returns the signal live now, else the next upcoming one.
func (h *SignalsEchoHandler) Active(c echo.Context) error {
	s, err := h.signals.Current(c.Request().Context(), h.now())
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *SignalsEchoHandler) Get(c echo.Context) error {
	req := &models.SignalIDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return verr
	}
	s, err := h.signals.Get(c.Request().Context(), req.ID)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, s)
}

// Create stores a signal supplied by the client. A second signal for the
// same pair and window is a conflict.
func (h *SignalsEchoHandler) Create(c echo.Context) error {
	req := &models.CreateSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return verr
	}
	s := req.ToSignal()
	if err := h.signals.Create(c.Request().Context(), s); err != nil {
		return toAppError(err)
	}
	return xhttp.CreatedResponse(c, s)
}

func (h *SignalsEchoHandler) Generate(c echo.Context) error {
	req := &models.GenerateSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return verr
	}
	ctx := c.Request().Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		return toAppError(err)
	}
	s, err := h.gen.Generate(ctx, req.Pair, settings)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *SignalsEchoHandler) GenerateAll(c echo.Context) error {
	items, err := h.batch.GenerateAll(c.Request().Context())
	if err != nil {
		return toAppError(err)
	}
	return xhttp.DataResponse(c, http.StatusOK, items)
}
