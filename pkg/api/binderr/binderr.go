// Package binderr builds the error responses of the slotswap API.
//
// Handlers return these as echo.HTTPError so echo's standard error handling
// pipeline serializes them as types.ErrorMessage bodies.
package binderr

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slotswap/slotswap/pkg/api/types"
)

type Option func(in *types.ErrorMessage) *types.ErrorMessage

func WithAdvice(advice string) Option {
	return func(in *types.ErrorMessage) *types.ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) Option {
	return func(in *types.ErrorMessage) *types.ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func WithSee(see string) Option {
	return func(in *types.ErrorMessage) *types.ErrorMessage {
		if see != "" {
			in.See = see
		}
		return in
	}
}

func New(code int, reason string, opts ...Option) *echo.HTTPError {
	msg := types.ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return New(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

func NotFound() *echo.HTTPError {
	return New(http.StatusNotFound, "not found")
}

func Conflict(reason string, options ...Option) *echo.HTTPError {
	return New(
		http.StatusConflict,
		reason,
		options...,
	)
}

func Unauthorized(advice string) *echo.HTTPError {
	return New(http.StatusUnauthorized, "unauthorized", WithAdvice(advice))
}

func ServiceUnavailable(advice string, err error) *echo.HTTPError {
	return New(
		http.StatusServiceUnavailable,
		"service unavailable temporarily",
		WithAdvice(advice),
		WithError(err),
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return New(
		http.StatusInternalServerError,
		"unexpected error",
		WithError(err),
	)
}
