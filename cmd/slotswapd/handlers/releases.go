package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slotswap/slotswap/pkg/api/binderr"
	"github.com/slotswap/slotswap/pkg/api/types"
	"github.com/slotswap/slotswap/pkg/orchestrator"
)

// PostReleaseHandler accepts a release request and starts it in the
// background. The response is 202 with the run id; progress is read back via
// GET /api/releases/{id}.
func PostReleaseHandler(runner *orchestrator.Runner) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		request := types.ReleaseRequest{}
		if err := c.Bind(&request); err != nil {
			return binderr.BadRequest(
				`the request body should be JSON: {"artifact_reference", "version_label", "triggered_by"}`,
				err,
			)
		}
		descriptor, err := request.Descriptor()
		if err != nil {
			return binderr.BadRequest(err.Error(), err)
		}

		id, err := runner.Submit(descriptor)
		if err != nil {
			if errors.Is(err, orchestrator.ErrReleaseInFlight) {
				return binderr.Conflict(
					"another release is in flight",
					binderr.WithAdvice("wait for the running release to finish, then submit again"),
				)
			}
			return binderr.InternalServerError(err)
		}

		c.JSON(http.StatusAccepted, types.ReleaseSubmitted{ID: id})

		return nil
	}
}

// FindReleasesHandler lists all known runs, newest first.
func FindReleasesHandler(runner *orchestrator.Runner) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		reports := runner.List()
		resp := make([]types.Release, 0, len(reports))
		for _, report := range reports {
			resp = append(resp, types.ComposeRelease(report))
		}

		c.JSON(http.StatusOK, resp)

		return nil
	}
}

// GetReleaseHandler serves one run by the id path parameter.
func GetReleaseHandler(runner *orchestrator.Runner, paramId string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		report, ok := runner.Get(c.Param(paramId))
		if !ok {
			return binderr.NotFound()
		}

		c.JSON(http.StatusOK, types.ComposeRelease(report))

		return nil
	}
}
