package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/handler"
	"github.com/Advaitgaur004/Urban-ride-server/internal/middleware"
)

// RegisterDriver registers DRIVER-scoped endpoints under /v1.  Drivers
// manage their vehicles, feed them into the waiting queue and accept
// pending slots assigned to their vehicles.
func RegisterDriver(e *echo.Echo, v *handler.VehicleHandler, s *handler.SlotHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("DRIVER"),
	)
	g.POST("/vehicles", v.Register)
	g.GET("/my-vehicles", v.ListMine)
	g.POST("/vehicles/:id/enqueue", v.Enqueue)
	g.POST("/slots/:id/accept", s.Accept)
}
