package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Advaitgaur004/Urban-ride-server/internal/lifecycle"
	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
	q "github.com/Advaitgaur004/Urban-ride-server/internal/queue"
	"github.com/Advaitgaur004/Urban-ride-server/internal/repository"
	queue_publisher "github.com/Advaitgaur004/Urban-ride-server/internal/service"
)

// SlotHandler serves the ride-slot endpoints: creation, lifecycle
// actions, joining and the public browse views.
type SlotHandler struct {
	Engine         *lifecycle.Service
	Slots          *repository.SlotRepo
	Vehicles       *repository.VehicleRepo
	Users          *repository.UserRepo
	Participations *repository.ParticipationRepo
}

func NewSlotHandler(engine *lifecycle.Service, s *repository.SlotRepo, v *repository.VehicleRepo, u *repository.UserRepo, p *repository.ParticipationRepo) *SlotHandler {
	return &SlotHandler{Engine: engine, Slots: s, Vehicles: v, Users: u, Participations: p}
}

type createSlotReq struct {
	MaxCapacity uint32    `json:"max_capacity"`
	FareCents   int64     `json:"fare_cents"`
	RideTime    time.Time `json:"ride_time"`
	StartLoc    string    `json:"start_loc"`
	DestLoc     string    `json:"dest_loc"`
}

type slotResp struct {
	ID              uint64    `json:"id"`
	VehicleID       uint64    `json:"vehicle_id"`
	CreatorID       uint64    `json:"creator_id"`
	MaxCapacity     uint32    `json:"max_capacity"`
	CurrentCapacity uint32    `json:"current_capacity"`
	FareCents       int64     `json:"fare_cents"`
	Status          string    `json:"status"`
	RideTime        time.Time `json:"ride_time"`
	StartLoc        string    `json:"start_loc"`
	DestLoc         string    `json:"dest_loc"`
	CreatedAt       time.Time `json:"created_at"`
}

func toSlotResp(s model.RideSlot) slotResp {
	return slotResp{
		ID: s.ID, VehicleID: s.VehicleID, CreatorID: s.CreatorID,
		MaxCapacity: s.MaxCapacity, CurrentCapacity: s.CurrentCapacity,
		FareCents: s.FareCents, Status: string(s.Status), RideTime: s.RideTime,
		StartLoc: s.StartLoc, DestLoc: s.DestLoc, CreatedAt: s.CreatedAt,
	}
}

// Create makes a new slot for the calling rider, claiming the oldest
// queued vehicle.
func (h *SlotHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Engine.CreateSlot(ctx, lifecycle.CreateSlotInput{
		CreatorID:   uid,
		MaxCapacity: req.MaxCapacity,
		FareCents:   req.FareCents,
		RideTime:    req.RideTime,
		StartLoc:    req.StartLoc,
		DestLoc:     req.DestLoc,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, toSlotResp(slot))
}

// Accept lets the driver of the assigned vehicle open the slot.
func (h *SlotHandler) Accept(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Engine.AcceptSlot(ctx, uid, slotID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toSlotResp(slot))
}

// Join admits the calling rider into an OPEN slot with the standard
// convenience fee.
func (h *SlotHandler) Join(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Engine.Join(ctx, slotID, uid, ConvenienceFeeCents)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"participation_id":      p.ID,
		"slot_id":               p.SlotID,
		"status":                string(p.Status),
		"convenience_fee_cents": p.ConvenienceFeeCents,
		"paid":                  p.Paid,
		"joined_at":             p.JoinedAt,
	})
}

// Finalize closes out a completed ride and announces it on the broker.
func (h *SlotHandler) Finalize(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Engine.FinalizeSlot(ctx, uid, slotID)
	if err != nil {
		return engineError(c, err)
	}

	// The event is best effort; the ride is finalized either way.
	plate := ""
	if v, err := h.Vehicles.GetByID(ctx, slot.VehicleID); err == nil {
		plate = v.LicensePlate
	}
	_ = queue_publisher.PublishSlotFinalized(ctx, q.SlotFinalizedEvent{
		SlotID:       slot.ID,
		CreatorID:    slot.CreatorID,
		VehicleID:    slot.VehicleID,
		LicensePlate: plate,
		StartLoc:     slot.StartLoc,
		DestLoc:      slot.DestLoc,
		RideTime:     slot.RideTime.UTC().Format(time.RFC3339),
		Riders:       slot.CurrentCapacity,
		FareCents:    slot.FareCents,
		FinalizedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, toSlotResp(slot))
}

// Cancel aborts a slot that has not reached a terminal state.
func (h *SlotHandler) Cancel(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Engine.CancelSlot(ctx, uid, slotID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toSlotResp(slot))
}

// List is the public browse endpoint.  Optional query parameters:
// status, start_loc, dest_loc, upcoming=true.
func (h *SlotHandler) List(c echo.Context) error {
	f := repository.ListFilter{
		Status:   model.SlotStatus(c.QueryParam("status")),
		StartLoc: c.QueryParam("start_loc"),
		DestLoc:  c.QueryParam("dest_loc"),
	}
	if c.QueryParam("upcoming") == "true" {
		f.After = time.Now()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]slotResp, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

type slotMemberResp struct {
	UserID   uint64    `json:"user_id"`
	Username string    `json:"username"`
	Status   string    `json:"status"`
	Paid     bool      `json:"paid"`
	JoinedAt time.Time `json:"joined_at"`
}

// Get returns one slot with its vehicle, creator and members.
func (h *SlotHandler) Get(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Slots.GetByID(ctx, slotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	members, err := h.Participations.ListBySlot(ctx, slotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	memberOut := make([]slotMemberResp, 0, len(members))
	for _, m := range members {
		memberOut = append(memberOut, slotMemberResp{
			UserID: m.UserID, Username: m.Username, Status: string(m.Status),
			Paid: m.Paid, JoinedAt: m.JoinedAt,
		})
	}

	resp := echo.Map{
		"slot":    toSlotResp(slot),
		"members": memberOut,
	}
	if v, err := h.Vehicles.GetByID(ctx, slot.VehicleID); err == nil {
		resp["vehicle"] = echo.Map{
			"id":            v.ID,
			"driver_id":     v.DriverID,
			"license_plate": v.LicensePlate,
			"status":        string(v.Status),
		}
	}
	if u, err := h.Users.GetByID(ctx, slot.CreatorID); err == nil {
		resp["creator"] = echo.Map{
			"id":       u.ID,
			"username": u.Username,
			"phone":    u.Phone,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// MyParticipations returns the calling rider's ride history.
func (h *SlotHandler) MyParticipations(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	parts, err := h.Participations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(parts))
	for _, p := range parts {
		out = append(out, echo.Map{
			"participation_id":      p.ParticipationID,
			"slot_id":               p.SlotID,
			"slot_status":           string(p.SlotStatus),
			"ride_time":             p.RideTime,
			"start_loc":             p.StartLoc,
			"dest_loc":              p.DestLoc,
			"fare_cents":            p.FareCents,
			"convenience_fee_cents": p.ConvenienceFeeCents,
			"paid":                  p.Paid,
			"status":                string(p.Status),
			"joined_at":             p.JoinedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}
