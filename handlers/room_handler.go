package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

type RoomHandler struct {
	store store.Store
	alloc *services.AllocationService
}

func NewRoomHandler(s store.Store, alloc *services.AllocationService) *RoomHandler {
	return &RoomHandler{store: s, alloc: alloc}
}

type roomPayload struct {
	Block      string `json:"block" validate:"required,max=20"`
	RoomNumber string `json:"room_number" validate:"required,max=20"`
	Capacity   int    `json:"capacity" validate:"required,min=1,max=20"`
}

// POST /api/admin/rooms?hostelId=...
func (h *RoomHandler) Create(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	var req roomPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Block = strings.TrimSpace(req.Block)
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.store.Hostels().ByID(ctx, hostelID); err != nil {
		return httpError(err)
	}

	room := &models.Room{
		HostelID:   hostelID,
		Block:      req.Block,
		RoomNumber: req.RoomNumber,
		Capacity:   req.Capacity,
	}
	if err := h.store.Rooms().Create(ctx, room); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, room)
}

// GET /api/admin/rooms?hostelId=...
func (h *RoomHandler) List(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	rooms, err := h.store.Rooms().ByHostel(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// GET /api/admin/rooms/:id
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	room, err := h.store.Rooms().ByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, room)
}

// GET /api/admin/rooms/:id/beds: one entry per bed slot
func (h *RoomHandler) Beds(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	beds, err := h.alloc.BedMap(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, beds)
}

// GET /api/admin/rooms/:id/status
func (h *RoomHandler) Status(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	status, err := h.alloc.Status(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, status)
}

type roomStudentResponse struct {
	StudentID uint   `json:"student_id"`
	Name      string `json:"name"`
	BedNumber int    `json:"bed_number"`
}

// GET /api/admin/rooms/:id/students: active occupants ordered by bed
func (h *RoomHandler) Students(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.store.Rooms().ByID(ctx, id); err != nil {
		return httpError(err)
	}
	active, err := h.store.Allocations().ActiveByRoom(ctx, id)
	if err != nil {
		return httpError(err)
	}
	out := make([]roomStudentResponse, 0, len(active))
	for _, a := range active {
		r := roomStudentResponse{StudentID: a.StudentID, BedNumber: a.BedNumber}
		if a.Student != nil && a.Student.User != nil {
			r.Name = a.Student.User.Name
		}
		out = append(out, r)
	}
	return c.JSON(http.StatusOK, out)
}

// PUT /api/admin/rooms/:id
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req roomPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	room, err := h.store.Rooms().ByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	room.Block = strings.TrimSpace(req.Block)
	room.RoomNumber = strings.TrimSpace(req.RoomNumber)
	room.Capacity = req.Capacity
	if err := h.store.Rooms().Update(ctx, room); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, room)
}

// DELETE /api/admin/rooms/:id: cascades to the room's allocation history
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.alloc.DeleteRoom(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Room deleted"})
}
