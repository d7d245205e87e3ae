package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/services"
	"github.com/omerfarooq187/hostel-management/store"
)

// MeHandler serves the logged-in student's own profile, room, and fees. The
// principal email comes from the JWT claims, never from request input.
type MeHandler struct {
	store   store.Store
	billing *services.BillingService
	receipt *services.ReceiptService
}

func NewMeHandler(s store.Store, billing *services.BillingService, receipt *services.ReceiptService) *MeHandler {
	return &MeHandler{store: s, billing: billing, receipt: receipt}
}

func (h *MeHandler) student(c echo.Context) (*models.Student, error) {
	email, err := principalEmail(c)
	if err != nil {
		return nil, err
	}
	student, err := h.store.Students().ByUserEmail(c.Request().Context(), email)
	if err != nil {
		return nil, httpError(err)
	}
	if student == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound,
			map[string]any{"error": "Student with email " + email + " not found"})
	}
	return student, nil
}

type studentProfileResponse struct {
	StudentID     uint   `json:"student_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	RollNo        string `json:"roll_no"`
	Phone         string `json:"phone"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
}

// GET /api/student/me
func (h *MeHandler) Profile(c echo.Context) error {
	student, err := h.student(c)
	if err != nil {
		return err
	}
	resp := studentProfileResponse{
		StudentID:     student.ID,
		RollNo:        student.RollNo,
		Phone:         student.Phone,
		GuardianName:  student.GuardianName,
		GuardianPhone: student.GuardianPhone,
	}
	if student.User != nil {
		resp.Name = student.User.Name
		resp.Email = student.User.Email
	}
	return c.JSON(http.StatusOK, resp)
}

type studentRoomResponse struct {
	Block       string    `json:"block"`
	RoomNumber  string    `json:"room_number"`
	BedNumber   int       `json:"bed_number"`
	AllocatedAt time.Time `json:"allocated_at"`
}

// GET /api/student/me/room
func (h *MeHandler) Room(c echo.Context) error {
	student, err := h.student(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	alloc, err := h.store.Allocations().ActiveByStudent(ctx, student.ID)
	if err != nil {
		return httpError(err)
	}
	if alloc == nil {
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "No active allocation"})
	}
	resp := studentRoomResponse{BedNumber: alloc.BedNumber, AllocatedAt: alloc.AllocatedAt}
	if alloc.Room != nil {
		resp.Block = alloc.Room.Block
		resp.RoomNumber = alloc.Room.RoomNumber
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /api/student/me/fees
func (h *MeHandler) Fees(c echo.Context) error {
	student, err := h.student(c)
	if err != nil {
		return err
	}
	fees, err := h.store.Fees().ByStudent(c.Request().Context(), student.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fees)
}

// GET /api/student/me/fees/:feeId/receipt: only the student's own fees
func (h *MeHandler) Receipt(c echo.Context) error {
	student, err := h.student(c)
	if err != nil {
		return err
	}
	feeID, err := uintParam(c, "feeId")
	if err != nil {
		return err
	}
	fee, err := h.billing.FeeForStudent(c.Request().Context(), feeID, student.ID)
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

type userUpdatePayload struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"max=20"`
}

// PUT /api/user/me/update: the logged-in user edits their own account
func (h *MeHandler) UpdateUser(c echo.Context) error {
	email, err := principalEmail(c)
	if err != nil {
		return err
	}
	var req userUpdatePayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.store.Users().ByEmail(ctx, email)
	if err != nil {
		return httpError(err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "User not found"})
	}
	user.Name = req.Name
	user.Email = req.Email
	if err := h.store.Users().Update(ctx, user); err != nil {
		return httpError(err)
	}

	if req.Phone != "" {
		if student, err := h.store.Students().ByUserID(ctx, user.ID); err == nil && student != nil {
			student.Phone = req.Phone
			if err := h.store.Students().Update(ctx, student); err != nil {
				return httpError(err)
			}
		}
	}
	return c.JSON(http.StatusOK, user)
}
