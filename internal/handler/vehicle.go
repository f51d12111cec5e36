package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/lifecycle"
	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
)

// VehicleHandler serves driver-scoped vehicle endpoints.  Mutations go
// through the lifecycle engine; reads hit the repository directly.
type VehicleHandler struct {
	Engine   *lifecycle.Service
	Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(engine *lifecycle.Service, v *repository.VehicleRepo) *VehicleHandler {
	return &VehicleHandler{Engine: engine, Vehicles: v}
}

type registerVehicleReq struct {
	LicensePlate string `json:"license_plate"`
}

type vehicleResp struct {
	ID           uint64    `json:"id"`
	DriverID     uint64    `json:"driver_id"`
	LicensePlate string    `json:"license_plate"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toVehicleResp(v model.Vehicle) vehicleResp {
	return vehicleResp{
		ID: v.ID, DriverID: v.DriverID, LicensePlate: v.LicensePlate,
		Status: string(v.Status), CreatedAt: v.CreatedAt,
	}
}

// Register creates a vehicle for the calling driver and enqueues it in
// the same transaction.
func (h *VehicleHandler) Register(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req registerVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Engine.RegisterVehicle(ctx, uid, req.LicensePlate)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, toVehicleResp(v))
}

// Enqueue puts one of the caller's AVAILABLE vehicles back into the
// waiting queue, e.g. after a finished ride.
func (h *VehicleHandler) Enqueue(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	vehicleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Engine.EnqueueVehicle(ctx, uid, vehicleID); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle enqueued"})
}

// ListMine returns the caller's vehicles.
func (h *VehicleHandler) ListMine(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.ListByDriver(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]vehicleResp, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleResp(v))
	}
	return c.JSON(http.StatusOK, out)
}
