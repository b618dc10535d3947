package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"clientdesk/internal/errors"
)

// NewHTTPErrorHandler renders every error as an errors.ErrorResponse.
// Domain errors map to their status codes; anything unexpected is logged and
// reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errors.ErrorResponse) {
	// echo's own errors: bind failures, unknown routes, wrong methods
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		if resp, ok := he.Message.(errors.ErrorResponse); ok {
			return he.Code, resp
		}
		return he.Code, errors.ErrorResponse{
			Error: fmt.Sprintf("%v", he.Message),
			Code:  codeForStatus(he.Code),
		}
	}

	httpErr, known := errors.MapErrorToHTTP(err)
	if !known {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("unhandled error")
	}
	return httpErr.StatusCode, httpErr.ToErrorResponse()
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "HTTP_ERROR"
	}
}
