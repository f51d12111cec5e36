package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/handler"
	"github.com/Advaitgaur004/Urban-ride-server/internal/middleware"
)

// RegisterPublic registers routes that require no authentication: the
// health check and the slot browse endpoints guests use before signing
// up.
func RegisterPublic(e *echo.Echo, s *handler.SlotHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/slots", s.List)
	e.GET("/v1/slots/:id", s.Get)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me and token-less logout require
// a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o *handler.OTPHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/request-otp", o.RequestOTP)
	g.POST("/verify-otp", o.VerifyOTP)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/me", a.UpdateMe)
	auth.POST("/logout", a.Logout)
}
