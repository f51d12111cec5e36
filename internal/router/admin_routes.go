package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/handler"
	"github.com/Advaitgaur004/Urban-ride-server/internal/middleware"
)

// RegisterAdmin registers the back-office endpoints under /v1.  All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.GET("/users", a.ListUsers)
	g.GET("/users/:id", a.GetUser)
	g.DELETE("/users/:id", a.DeleteUser)
	g.GET("/vehicles", a.ListVehicles)
	g.GET("/queue", a.ListQueue)
}
