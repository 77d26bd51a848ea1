package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-seating/internal/allocation"
	"github.com/iliyamo/theater-seating/internal/layout"
	"github.com/iliyamo/theater-seating/internal/seating"
	"github.com/iliyamo/theater-seating/internal/ticket"
)

// writeError maps domain errors to HTTP responses. Anything unrecognised
// is a persistence failure and surfaces as 500.
func writeError(c echo.Context, err error) error {
	var failed *allocation.AllocationFailedError
	switch {
	case errors.Is(err, seating.ErrUnknownSeat), errors.Is(err, layout.ErrOutOfRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, allocation.ErrCapacityExceeded):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.As(err, &failed):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     err.Error(),
			"label":     failed.Label,
			"requested": failed.Requested,
		})
	case errors.Is(err, ticket.ErrMalformedRow), errors.Is(err, ticket.ErrEmpty):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("chart operation failed: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save chart"})
}
