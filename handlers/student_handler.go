package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
)

type StudentHandler struct {
	store store.Store
}

func NewStudentHandler(s store.Store) *StudentHandler { return &StudentHandler{store: s} }

type studentPayload struct {
	RollNo        string `json:"roll_no" validate:"required,max=30"`
	Phone         string `json:"phone" validate:"max=20"`
	GuardianName  string `json:"guardian_name" validate:"max=120"`
	GuardianPhone string `json:"guardian_phone" validate:"max=20"`
}

func (p *studentPayload) normalize() {
	p.RollNo = strings.TrimSpace(p.RollNo)
	p.Phone = strings.TrimSpace(p.Phone)
	p.GuardianName = strings.TrimSpace(p.GuardianName)
	p.GuardianPhone = strings.TrimSpace(p.GuardianPhone)
}

// POST /api/admin/students/:userId?hostelId=...: attach a student profile
// to an existing user account, admitting them into the hostel.
func (h *StudentHandler) Admit(c echo.Context) error {
	userID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	var req studentPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.store.Users().ByID(ctx, userID); err != nil {
		return httpError(err)
	}
	if _, err := h.store.Hostels().ByID(ctx, hostelID); err != nil {
		return httpError(err)
	}
	existing, err := h.store.Students().ByUserID(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{"error": "Student profile already exists"})
	}

	student := &models.Student{
		UserID:        userID,
		HostelID:      hostelID,
		RollNo:        req.RollNo,
		Phone:         req.Phone,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
	}
	if err := h.store.Students().Create(ctx, student); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, student)
}

// GET /api/admin/students?hostelId=...
func (h *StudentHandler) List(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	list, err := h.store.Students().ByHostel(c.Request().Context(), hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// GET /api/admin/students/:id
func (h *StudentHandler) Get(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	student, err := h.store.Students().ByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, student)
}

// PUT /api/admin/students/:id
func (h *StudentHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req studentPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	student, err := h.store.Students().ByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	student.RollNo = req.RollNo
	student.Phone = req.Phone
	student.GuardianName = req.GuardianName
	student.GuardianPhone = req.GuardianPhone
	if err := h.store.Students().Update(ctx, student); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, student)
}

// DELETE /api/admin/students/:id
func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.store.Students().ByID(ctx, id); err != nil {
		return httpError(err)
	}
	if err := h.store.Students().Delete(ctx, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Student profile deleted"})
}
