package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
)

type HostelHandler struct {
	store store.Store
}

func NewHostelHandler(s store.Store) *HostelHandler { return &HostelHandler{store: s} }

type hostelPayload struct {
	Name string `json:"name" validate:"required,max=100"`
}

// GET /api/admin/hostels
func (h *HostelHandler) List(c echo.Context) error {
	hostels, err := h.store.Hostels().All(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hostels)
}

// POST /api/admin/hostels
func (h *HostelHandler) Create(c echo.Context) error {
	var req hostelPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	hostel := &models.Hostel{Name: req.Name, Active: true}
	if err := h.store.Hostels().Create(c.Request().Context(), hostel); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, hostel)
}

// PATCH /api/admin/hostels/:id/status?active=true|false
func (h *HostelHandler) UpdateStatus(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	active := c.QueryParam("active") == "true"

	ctx := c.Request().Context()
	hostel, err := h.store.Hostels().ByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	hostel.Active = active
	if err := h.store.Hostels().Update(ctx, hostel); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hostel)
}
