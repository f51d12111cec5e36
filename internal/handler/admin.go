package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
)

// AdminHandler serves back-office list views and account management.
type AdminHandler struct {
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Vehicles *repository.VehicleRepo
	Queue    *repository.QueueRepo
}

func NewAdminHandler(u *repository.UserRepo, t *repository.TokenRepo, v *repository.VehicleRepo, q *repository.QueueRepo) *AdminHandler {
	return &AdminHandler{Users: u, Tokens: t, Vehicles: v, Queue: q}
}

type adminUserResp struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	College   *string   `json:"college,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toAdminUserResp(u model.User) adminUserResp {
	return adminUserResp{
		ID: u.ID, Username: u.Username, Email: u.Email, Phone: u.Phone,
		Role: string(u.Role), College: u.College, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
	}
}

// ListUsers returns all users, optionally filtered by ?role=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	role := model.Role(c.QueryParam("role"))
	if role != "" && !model.ValidRole(string(role)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// GetUser returns one user by id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAdminUserResp(u))
}

// DeleteUser deactivates an account and revokes its sessions.  Rows
// are kept because slots and participations reference them.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found or already disabled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	_ = h.Tokens.RevokeAllForUser(ctx, id)
	return c.NoContent(http.StatusNoContent)
}

// ListVehicles returns all vehicles.
func (h *AdminHandler) ListVehicles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]vehicleResp, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleResp(v))
	}
	return c.JSON(http.StatusOK, out)
}

// ListQueue returns the waiting line in FIFO order.
func (h *AdminHandler) ListQueue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Queue.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, echo.Map{
			"entry_id":      e.EntryID,
			"vehicle_id":    e.VehicleID,
			"driver_id":     e.DriverID,
			"license_plate": e.LicensePlate,
			"enqueued_at":   e.EnqueuedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}
