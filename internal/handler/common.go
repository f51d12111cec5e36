package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/lifecycle"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
)

// currentUserID reads the authenticated user's ID stored by the JWT
// middleware.  A false return means the route was registered without
// JWTAuth, which is a wiring bug, not a client error.
func currentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get("user_id").(uint64)
	return id, ok
}

// engineError maps lifecycle and repository sentinels onto HTTP
// responses.  Every mutation handler funnels its engine errors through
// here so one table decides the status codes.
func engineError(c echo.Context, err error) error {
	var vErr *lifecycle.ValidationError
	var tErr *lifecycle.InvalidTransitionError
	switch {
	case errors.Is(err, lifecycle.ErrNotFound),
		errors.Is(err, lifecycle.ErrQueueEmpty):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &vErr),
		errors.As(err, &tErr),
		errors.Is(err, lifecycle.ErrInvalidState),
		errors.Is(err, lifecycle.ErrInvalidRole),
		errors.Is(err, lifecycle.ErrSlotFull),
		errors.Is(err, lifecycle.ErrDuplicateJoin),
		errors.Is(err, lifecycle.ErrSelfJoinForbidden),
		errors.Is(err, lifecycle.ErrScheduleConflict):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrConflict),
		errors.Is(err, repository.ErrAlreadyQueued),
		errors.Is(err, repository.ErrPlateExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
