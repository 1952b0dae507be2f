package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wellness/portal/internal/platform/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindConflict:       http.StatusConflict,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindUnexpected:     http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders errors returned by handlers and middleware. Unexpected
// errors are logged and their detail withheld from the client.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var status int
		var body ErrorBody

		var he *echo.HTTPError
		var ae *apperr.Error
		switch {
		case errors.As(err, &he):
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			} else {
				body.Message = http.StatusText(he.Code)
			}
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
			body.Message = "Request timed out"
		case errors.As(err, &ae) && ae.Kind != apperr.KindUnexpected:
			status = StatusFor(ae.Kind)
			body = ErrorBody{Message: ae.Message, Kind: string(ae.Kind), Code: ae.Code}
		default:
			status = http.StatusInternalServerError
			body = ErrorBody{Message: "Server error", Kind: string(apperr.KindUnexpected)}
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("unexpected error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}
