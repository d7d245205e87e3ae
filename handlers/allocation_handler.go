package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

type AllocationHandler struct {
	store store.Store
	alloc *services.AllocationService
}

func NewAllocationHandler(s store.Store, alloc *services.AllocationService) *AllocationHandler {
	return &AllocationHandler{store: s, alloc: alloc}
}

// POST /api/admin/allocations/student/:studentId/room/:roomId/bed/:bedNumber
func (h *AllocationHandler) Allocate(c echo.Context) error {
	studentID, err := uintParam(c, "studentId")
	if err != nil {
		return err
	}
	roomID, err := uintParam(c, "roomId")
	if err != nil {
		return err
	}
	bed, err := uintParam(c, "bedNumber")
	if err != nil {
		return err
	}
	alloc, err := h.alloc.Allocate(c.Request().Context(), studentID, roomID, int(bed))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, alloc)
}

// POST /api/admin/allocations/student/:studentId/room/:roomId/auto: lowest free bed
func (h *AllocationHandler) AutoAllocate(c echo.Context) error {
	studentID, err := uintParam(c, "studentId")
	if err != nil {
		return err
	}
	roomID, err := uintParam(c, "roomId")
	if err != nil {
		return err
	}
	alloc, err := h.alloc.AutoAllocate(c.Request().Context(), studentID, roomID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, alloc)
}

// POST /api/admin/allocations/student/:studentId/transfer/:roomId
func (h *AllocationHandler) Transfer(c echo.Context) error {
	studentID, err := uintParam(c, "studentId")
	if err != nil {
		return err
	}
	roomID, err := uintParam(c, "roomId")
	if err != nil {
		return err
	}
	alloc, err := h.alloc.Transfer(c.Request().Context(), studentID, roomID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, alloc)
}

// DELETE /api/admin/allocations/:allocationId
func (h *AllocationHandler) Deallocate(c echo.Context) error {
	id, err := uintParam(c, "allocationId")
	if err != nil {
		return err
	}
	if err := h.alloc.Deallocate(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Room deallocated successfully"})
}

// GET /api/admin/allocations/room/:roomId: active allocations, bed order
func (h *AllocationHandler) ByRoom(c echo.Context) error {
	roomID, err := uintParam(c, "roomId")
	if err != nil {
		return err
	}
	list, err := h.store.Allocations().ActiveByRoom(c.Request().Context(), roomID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// GET /api/admin/allocations/student/:studentId/current: null when none
func (h *AllocationHandler) Current(c echo.Context) error {
	studentID, err := uintParam(c, "studentId")
	if err != nil {
		return err
	}
	alloc, err := h.alloc.CurrentAllocation(c.Request().Context(), studentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, alloc)
}

// GET /api/admin/allocations/student/:studentId/history
func (h *AllocationHandler) History(c echo.Context) error {
	studentID, err := uintParam(c, "studentId")
	if err != nil {
		return err
	}
	list, err := h.alloc.History(c.Request().Context(), studentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// GET /api/admin/allocations/history?hostelId=...
func (h *AllocationHandler) HostelHistory(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	list, err := h.store.Allocations().HistoryByHostel(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// GET /api/admin/allocations/count?hostelId=...
func (h *AllocationHandler) Count(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	n, err := h.store.Allocations().CountActiveByHostel(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"count": n})
}
