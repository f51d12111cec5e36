package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/handler"
	"github.com/Advaitgaur004/Urban-ride-server/internal/middleware"
)

// RegisterRider registers rider-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Riders create
// slots, join and leave them, finalize or cancel their own slots, and
// settle the convenience fee.
func RegisterRider(e *echo.Echo, s *handler.SlotHandler, p *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/slots", s.Create)
	g.POST("/slots/:id/join", s.Join)
	g.POST("/slots/:id/finalize", s.Finalize)
	g.POST("/slots/:id/cancel", s.Cancel)
	g.GET("/my-participations", s.MyParticipations)

	g.POST("/payments/convenience-fee", p.QuoteConvenienceFee)
	g.POST("/participations/:id/pay", p.Pay)
}
