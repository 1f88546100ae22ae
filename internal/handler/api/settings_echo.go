package api

import (
	"errors"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/usecase"
	xhttp "FxPulse/pkg/http"
	xlogger "FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SettingsEchoHandler serves the operator settings and the Telegram check.
type SettingsEchoHandler struct {
	logger   *xlogger.Logger
	settings domrepo.SettingsStore
	check    *usecase.TelegramCheck
}

func NewSettingsEchoHandler(logger *xlogger.Logger, settings domrepo.SettingsStore, check *usecase.TelegramCheck) *SettingsEchoHandler {
	return &SettingsEchoHandler{logger: logger, settings: settings, check: check}
}

func (h *SettingsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/settings", h.Get)
	g.PATCH("/settings", h.Patch)
	g.POST("/test-telegram", h.TestTelegram)
}

func (h *SettingsEchoHandler) Get(c echo.Context) error {
	s, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, s)
}

// Patch applies the fields present in the body.
func (h *SettingsEchoHandler) Patch(c echo.Context) error {
	patch := &models.SettingsPatch{}
	if verr := xhttp.ReadAndValidateRequest(c, patch); verr != nil {
		return verr
	}
	s, err := h.settings.Update(c.Request().Context(), patch)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *SettingsEchoHandler) TestTelegram(c echo.Context) error {
	if err := h.check.Run(c.Request().Context()); err != nil {
		if errors.Is(err, models.ErrNotificationsDisabled) {
			return toAppError(err)
		}
		h.logger.Warn("telegram test failed", xlogger.Error(err))
		return xhttp.InternalError(err.Error()).WithError(err)
	}
	return xhttp.SuccessResponse(c, map[string]bool{"success": true})
}
