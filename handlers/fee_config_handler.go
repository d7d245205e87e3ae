package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

type FeeConfigHandler struct {
	store   store.Store
	billing *services.BillingService
}

func NewFeeConfigHandler(s store.Store, billing *services.BillingService) *FeeConfigHandler {
	return &FeeConfigHandler{store: s, billing: billing}
}

type feeConfigPayload struct {
	Amount decimal.Decimal `json:"amount"`
	DueDay int             `json:"due_day" validate:"required,min=1,max=28"`
}

// POST /api/admin/fee-config?hostelId=...: activates a new billing rule and
// retires the previous one.
func (h *FeeConfigHandler) Set(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	var req feeConfigPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	config, err := h.billing.SetFeeConfig(c.Request().Context(), hostelID, req.Amount, req.DueDay)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, config)
}

// GET /api/admin/fee-config/active?hostelId=...: null when unset
func (h *FeeConfigHandler) Active(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	config, err := h.billing.ActiveConfig(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, config)
}

// GET /api/admin/fee-config/history?hostelId=...
func (h *FeeConfigHandler) History(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	configs, err := h.store.FeeConfigs().ByHostel(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, configs)
}
