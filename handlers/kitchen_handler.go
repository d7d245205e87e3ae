package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omerfarooq187/hostel-management/models"
	"github.com/omerfarooq187/hostel-management/store"
)

type KitchenHandler struct {
	store store.Store
}

func NewKitchenHandler(s store.Store) *KitchenHandler { return &KitchenHandler{store: s} }

type inventoryPayload struct {
	ItemName string  `json:"item_name" validate:"required,max=100"`
	Quantity float64 `json:"quantity" validate:"min=0"`
	Unit     string  `json:"unit" validate:"required,max=20"`
}

// POST /api/admin/kitchen/items?hostelId=...
func (h *KitchenHandler) Add(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	var req inventoryPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.Unit = strings.TrimSpace(req.Unit)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.store.Hostels().ByID(ctx, hostelID); err != nil {
		return httpError(err)
	}
	exists, err := h.store.Kitchen().ExistsByNameAndHostel(ctx, req.ItemName, hostelID)
	if err != nil {
		return httpError(err)
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict,
			map[string]any{"error": "Item with name " + req.ItemName + " already exists"})
	}

	item := &models.KitchenInventory{
		HostelID: hostelID,
		ItemName: req.ItemName,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	}
	if err := h.store.Kitchen().Create(ctx, item); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// GET /api/admin/kitchen/items/:itemId
func (h *KitchenHandler) Get(c echo.Context) error {
	id, err := uintParam(c, "itemId")
	if err != nil {
		return err
	}
	item, err := h.store.Kitchen().ByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// GET /api/admin/kitchen/items?itemName=...&hostelId=...
func (h *KitchenHandler) Search(c echo.Context) error {
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	name := strings.TrimSpace(c.QueryParam("itemName"))
	items, err := h.store.Kitchen().SearchByName(c.Request().Context(), name, hostelID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// PUT /api/admin/kitchen/items/:itemId?hostelId=...
func (h *KitchenHandler) Update(c echo.Context) error {
	id, err := uintParam(c, "itemId")
	if err != nil {
		return err
	}
	hostelID, err := uintQuery(c, "hostelId")
	if err != nil {
		return err
	}
	var req inventoryPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.Unit = strings.TrimSpace(req.Unit)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	item, err := h.store.Kitchen().ByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if !strings.EqualFold(item.ItemName, req.ItemName) {
		exists, err := h.store.Kitchen().ExistsByNameAndHostel(ctx, req.ItemName, hostelID)
		if err != nil {
			return httpError(err)
		}
		if exists {
			return echo.NewHTTPError(http.StatusConflict,
				map[string]any{"error": "Item with name " + req.ItemName + " already exists"})
		}
		item.ItemName = req.ItemName
	}
	item.Quantity = req.Quantity
	item.Unit = req.Unit
	if err := h.store.Kitchen().Update(ctx, item); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// PATCH /api/admin/kitchen/items/:itemId/quantity?quantity=...
func (h *KitchenHandler) UpdateQuantity(c echo.Context) error {
	id, err := uintParam(c, "itemId")
	if err != nil {
		return err
	}
	qty := floatQueryOr(c, "quantity", -1)
	if qty < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "missing or invalid quantity"})
	}

	ctx := c.Request().Context()
	item, err := h.store.Kitchen().ByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	item.Quantity = qty
	if err := h.store.Kitchen().Update(ctx, item); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// DELETE /api/admin/kitchen/items/:itemId
func (h *KitchenHandler) Delete(c echo.Context) error {
	id, err := uintParam(c, "itemId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	item, err := h.store.Kitchen().ByID(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if err := h.store.Kitchen().Delete(ctx, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Item with name " + item.ItemName + " deleted"})
}

// GET /api/admin/kitchen/items/low-stock?threshold=10
func (h *KitchenHandler) LowStock(c echo.Context) error {
	threshold := floatQueryOr(c, "threshold", 10)
	items, err := h.store.Kitchen().All(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	low := make([]models.KitchenInventory, 0)
	for _, item := range items {
		if item.Quantity <= threshold {
			low = append(low, item)
		}
	}
	return c.JSON(http.StatusOK, low)
}
