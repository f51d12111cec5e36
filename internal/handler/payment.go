package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
)

// ConvenienceFeeCents is the flat per-rider charge collected on
// joining a slot, separate from the shared fare.
const ConvenienceFeeCents int64 = 5000

// PaymentHandler serves the convenience-fee endpoints.  No payment
// gateway is integrated; payments are recorded as a paid flag after
// the external collection happens.
type PaymentHandler struct {
	Participations *repository.ParticipationRepo
}

func NewPaymentHandler(p *repository.ParticipationRepo) *PaymentHandler {
	return &PaymentHandler{Participations: p}
}

// QuoteConvenienceFee returns the flat fee charged per join.
func (h *PaymentHandler) QuoteConvenienceFee(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"convenience_fee_cents": ConvenienceFeeCents,
		"currency":              "INR",
	})
}

// Pay marks the caller's participation fee as paid.
func (h *PaymentHandler) Pay(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid participation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Participations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "participation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Participations.MarkPaid(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already paid"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment recorded"})
}
