package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/config"
	q "github.com/Advaitgaur004/Urban-ride-server/internal/queue"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
	queue_publisher "github.com/Advaitgaur004/Urban-ride-server/internal/service"
	"github.com/Advaitgaur004/Urban-ride-server/internal/utils"
)

// OTPHandler implements passwordless login: a short-lived code is
// stored in Redis and handed to a mailer via the message broker.  The
// server never sends email itself.
type OTPHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	OTP    *repository.OTPRepo
}

func NewOTPHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, o *repository.OTPRepo) *OTPHandler {
	return &OTPHandler{Cfg: cfg, Users: u, Tokens: t, OTP: o}
}

type requestOTPReq struct {
	Email string `json:"email"`
}
type verifyOTPReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RequestOTP generates a code for a known account, stores it with a
// TTL and publishes an OTPEmailEvent.  Unknown emails get the same
// 202 response so the endpoint does not reveal which emails exist.
func (h *OTPHandler) RequestOTP(c echo.Context) error {
	if h.OTP == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "otp login unavailable"})
	}
	var req requestOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	accepted := func() error {
		return c.JSON(http.StatusAccepted, echo.Map{"message": "if the account exists, a code has been sent"})
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return accepted()
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive {
		return accepted()
	}

	code, err := utils.NewOTPCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate code failed"})
	}
	ttl := time.Duration(h.Cfg.OTPTTLMin) * time.Minute
	if err := h.OTP.Store(ctx, email, code, ttl); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store code failed"})
	}

	now := time.Now().UTC()
	// Publish failures are logged by the publisher and deliberately not
	// surfaced: the code is stored and a retry of this endpoint reissues it.
	_ = queue_publisher.PublishOTPEmail(ctx, q.OTPEmailEvent{
		Email:       email,
		Username:    u.Username,
		Code:        code,
		ExpiresAt:   now.Add(ttl).Format(time.RFC3339),
		RequestedAt: now.Format(time.RFC3339),
	})
	return accepted()
}

// VerifyOTP exchanges a valid code for a token pair and consumes it.
func (h *OTPHandler) VerifyOTP(c echo.Context) error {
	if h.OTP == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "otp login unavailable"})
	}
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stored, err := h.OTP.Get(ctx, email)
	if err != nil || stored == "" || stored != code {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired code"})
	}
	_ = h.OTP.Delete(ctx, email)

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role)},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}
