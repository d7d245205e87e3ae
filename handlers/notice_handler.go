package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
)

// NoticeHandler manages the announcement board. Admins post and remove,
// students read.
type NoticeHandler struct {
	store store.Store
}

func NewNoticeHandler(s store.Store) *NoticeHandler { return &NoticeHandler{store: s} }

type noticePayload struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

// POST /api/admin/notices
func (h *NoticeHandler) Create(c echo.Context) error {
	var req noticePayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if err := c.Validate(&req); err != nil {
		return err
	}
	notice := &models.Notice{Title: req.Title, Message: req.Message}
	if err := h.store.Notices().Create(c.Request().Context(), notice); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, notice)
}

// GET /api/admin/notices and /api/student/me/notices
func (h *NoticeHandler) List(c echo.Context) error {
	notices, err := h.store.Notices().All(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notices)
}

// DELETE /api/admin/notices/:id
func (h *NoticeHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.Notices().Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
