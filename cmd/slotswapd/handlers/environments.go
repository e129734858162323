package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slotswap/slotswap/pkg/api/binderr"
	"github.com/slotswap/slotswap/pkg/api/types"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
)

// StatusProvider observes the environment. Orchestrator.Status is one.
type StatusProvider func(ctx context.Context) (domain.EnvironmentStatus, error)

// GetEnvironmentsHandler serves the active slot and both slot observations.
func GetEnvironmentsHandler(status StatusProvider) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		env, err := status(c.Request().Context())
		if err != nil {
			if relerr.AsStateUnavailable(err) {
				return binderr.ServiceUnavailable(
					"the active-slot record is missing or unreadable; check the stable service and its labels",
					err,
				)
			}
			return binderr.InternalServerError(err)
		}

		c.JSON(http.StatusOK, types.ComposeEnvironment(env))

		return nil
	}
}

// HealthHandler answers 200 once the daemon serves requests.
func HealthHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
