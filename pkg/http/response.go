package http

import (
	"errors"
	"net/http"

	applogger "FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DataResponse writes data as the bare JSON body.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, data)
}

// SuccessResponse writes success response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// CreatedResponse writes created response.
func CreatedResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusCreated, data)
}

// InternalServerErrorResponse writes internal server error.
func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, ErrorBody{
		Message: "Something went wrong",
		Code:    "ERR_INTERNAL",
	})
}

// AppErrorResponse writes application error response.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, ErrorBody{
			Message: appErr.Message,
			Code:    appErr.Code,
			Field:   appErr.Field,
		})
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return DataResponse(c, he.Code, ErrorBody{Message: msg, Code: codeForStatus(he.Code)})
	}
	return InternalServerErrorResponse(c)
}

// ErrorHandler returns an echo error handler that renders errors as ErrorBody
// and logs server-side failures.
func ErrorHandler(l *applogger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var appErr *AppError
		if l != nil && (!errors.As(err, &appErr) || appErr.Status >= http.StatusInternalServerError) {
			var he *echo.HTTPError
			if !errors.As(err, &he) {
				l.Error("request failed",
					applogger.String("method", c.Request().Method),
					applogger.String("route", c.Path()),
					applogger.Error(err),
				)
			}
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(statusOf(err))
			return
		}
		_ = AppErrorResponse(c, err)
	}
}

func statusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "ERR_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "ERR_METHOD_NOT_ALLOWED"
	case http.StatusBadRequest:
		return "ERR_BAD_REQUEST"
	case http.StatusTooManyRequests:
		return "ERR_RATE_LIMITED"
	case http.StatusRequestEntityTooLarge:
		return "ERR_TOO_LARGE"
	default:
		if status >= 500 {
			return "ERR_INTERNAL"
		}
		return "ERR_UNKNOWN"
	}
}
