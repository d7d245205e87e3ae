package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

type FeeHandler struct {
	store   store.Store
	billing *services.BillingService
	receipt *services.ReceiptService
}

func NewFeeHandler(s store.Store, billing *services.BillingService, receipt *services.ReceiptService) *FeeHandler {
	return &FeeHandler{store: s, billing: billing, receipt: receipt}
}

type feePayload struct {
	StudentID uint            `json:"student_id" validate:"required"`
	Month     string          `json:"month" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   string          `json:"due_date" validate:"required"`
}

// POST /api/admin/fees?hostelId=...: manual fee entry; the one-fee-per-month
// rule still applies.
func (h *FeeHandler) Create(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	var req feePayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "due_date must be YYYY-MM-DD"})
	}

	fee, err := h.billing.CreateFee(c.Request().Context(), req.StudentID, hostelID, req.Month, req.Amount, dueDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, fee)
}

// GET /api/admin/fees?hostelId=...
func (h *FeeHandler) ListByHostel(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	fees, err := h.store.Fees().ByHostel(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fees)
}

// GET /api/admin/fees/student/:studentId
func (h *FeeHandler) ListByStudent(c echo.Context) error {
	studentID, err := uintParam(c, "studentId")
	if err != nil {
		return err
	}
	fees, err := h.store.Fees().ByStudent(c.Request().Context(), studentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fees)
}

// GET /api/admin/fees/status/:status
func (h *FeeHandler) ListByStatus(c echo.Context) error {
	status := strings.ToUpper(c.Param("status"))
	if status != models.FeeUnpaid && status != models.FeePaid {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "status must be UNPAID or PAID"})
	}
	fees, err := h.store.Fees().ByStatus(c.Request().Context(), status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fees)
}

// PATCH /api/admin/fees/:feeId/pay: idempotent
func (h *FeeHandler) MarkPaid(c echo.Context) error {
	feeID, err := uintParam(c, "feeId")
	if err != nil {
		return err
	}
	fee, err := h.billing.MarkPaid(c.Request().Context(), feeID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fee)
}

// DELETE /api/admin/fees/:feeId
func (h *FeeHandler) Delete(c echo.Context) error {
	feeID, err := uintParam(c, "feeId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.store.Fees().ByID(ctx, feeID); err != nil {
		return httpError(err)
	}
	if err := h.store.Fees().Delete(ctx, feeID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /api/admin/fees/:feeId/receipt: PDF download
func (h *FeeHandler) Receipt(c echo.Context) error {
	feeID, err := uintParam(c, "feeId")
	if err != nil {
		return err
	}
	fee, err := h.store.Fees().ByID(c.Request().Context(), feeID)
	if err != nil {
		return httpError(err)
	}
	pdf, err := h.receipt.Render(fee)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=fee-receipt-%d.pdf", feeID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// GET /api/admin/fees/totals?hostelId=...: collected + outstanding
func (h *FeeHandler) Totals(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	totals, err := h.billing.TotalsForHostel(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, totals)
}

// GET /api/admin/fees/collection?studentId=...
func (h *FeeHandler) StudentCollection(c echo.Context) error {
	studentID, err := uintQuery(c, "studentId")
	if err != nil {
		return err
	}
	total, err := h.billing.TotalCollectedForStudent(c.Request().Context(), studentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"student_id": studentID, "collected": total})
}

// GET /api/admin/fees/overdue
func (h *FeeHandler) Overdue(c echo.Context) error {
	fees, err := h.billing.OverdueFees(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fees)
}

// POST /api/admin/fees/generate: manual trigger of the monthly run
func (h *FeeHandler) Generate(c echo.Context) error {
	report, err := h.billing.GenerateFeesForCurrentPeriod(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
