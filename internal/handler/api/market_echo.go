package api

import (
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/usecase"
	xhttp "FxPulse/pkg/http"
	xlogger "FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler serves the trade log and the news calendar.
type MarketEchoHandler struct {
	logger *xlogger.Logger
	trades domrepo.TradeStore
	news   domrepo.NewsStore
	gate   *usecase.NewsGate
	now    func() time.Time
}

func NewMarketEchoHandler(logger *xlogger.Logger, trades domrepo.TradeStore, news domrepo.NewsStore, gate *usecase.NewsGate) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, trades: trades, news: news, gate: gate, now: nowUTC}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/trades", h.Trades)
	g.GET("/history", h.Trades)
	g.GET("/news", h.News)
	g.POST("/news", h.CreateNews)
}

// Trades returns the trade log, newest first.
func (h *MarketEchoHandler) Trades(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0)
	items, err := h.trades.List(c.Request().Context(), limit)
	if err != nil {
		return toAppError(err)
	}
	return xhttp.SuccessResponse(c, items)
}

// News returns events near now, optionally for one currency.
func (h *MarketEchoHandler) News(c echo.Context) error {
	req := &models.NewsQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return verr
	}
	return xhttp.SuccessResponse(c, h.gate.Window(c.Request().Context(), req.Currency, h.now()))
}

func (h *MarketEchoHandler) CreateNews(c echo.Context) error {
	req := &models.CreateNewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return verr
	}
	ev := &models.NewsEvent{
		Title:     req.Title,
		Impact:    models.Impact(req.Impact),
		Currency:  req.Currency,
		Timestamp: req.Timestamp,
	}
	if err := h.news.Create(c.Request().Context(), ev); err != nil {
		return toAppError(err)
	}
	h.gate.Invalidate()
	return xhttp.CreatedResponse(c, ev)
}
