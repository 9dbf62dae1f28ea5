package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/generated/servers"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind string) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindStateTransition, errs.KindConcurrencyConflict, errs.KindExpiryViolation:
		return http.StatusConflict
	case errs.KindGeocodeFailure, errs.KindRiskRejection:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an Error body. Internal errors are logged and their
// message is not sent to the client.
func (s *Server) fail(ctx echo.Context, err error) error {
	kind := errs.KindOf(err)
	msg := err.Error()
	if kind == errs.KindInternal {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		msg = http.StatusText(http.StatusInternalServerError)
	}
	return ctx.JSON(statusFor(kind), servers.Error{Kind: kind, Message: msg})
}

// badRequest reports a body that could not be decoded.
func badRequest(ctx echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return ctx.JSON(http.StatusBadRequest, servers.Error{Kind: errs.KindValidation, Message: m})
		}
	}
	return ctx.JSON(http.StatusBadRequest, servers.Error{Kind: errs.KindValidation, Message: "invalid request body"})
}

// ErrorHandler renders errors raised outside the Server methods (routing,
// parameter binding and request validation) in the same Error shape.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		} else {
			e.Logger.Error(err)
		}

		kind := errs.KindInternal
		switch {
		case code == http.StatusNotFound:
			kind = errs.KindNotFound
		case code < http.StatusInternalServerError:
			kind = errs.KindValidation
		}

		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, servers.Error{Kind: kind, Message: msg})
		}
		if err != nil {
			e.Logger.Error(err)
		}
	}
}
