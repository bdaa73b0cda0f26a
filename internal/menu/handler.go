package menu

import (
	"net/http"

	"shared-daily-menu/internal/errors"
	"shared-daily-menu/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListItems returns the day's active items in display order with a
// per-requester canEdit flag. The date defaults to today in the fixed
// zone.
func (h *Handler) ListItems(c *gin.Context) {
	actor := middleware.MustActor(c)

	result, err := h.service.ListItems(c.Request.Context(), actor, c.Query("date"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type ItemNameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) AddItem(c *gin.Context) {
	actor := middleware.MustActor(c)

	var form ItemNameRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), actor, c.Query("date"), form.Name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handler) RenameItem(c *gin.Context) {
	actor := middleware.MustActor(c)
	itemID := c.Param("itemId")

	var form ItemNameRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	item, err := h.service.RenameItem(c.Request.Context(), actor, itemID, form.Name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handler) DeleteItem(c *gin.Context) {
	actor := middleware.MustActor(c)

	if err := h.service.DeleteItem(c.Request.Context(), actor, c.Param("itemId")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type MoveRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

func (h *Handler) MoveItem(c *gin.Context) {
	actor := middleware.MustActor(c)

	var form MoveRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest("direction must be up/down", err))
		return
	}

	result, err := h.service.MoveItem(c.Request.Context(), actor, c.Param("itemId"), Direction(form.Direction))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
