package template

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

func (h *Handler) List(c *gin.Context) {
	actor := middleware.MustActor(c)

	templates, err := h.service.ListTemplates(c.Request.Context(), actor)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

type SaveTemplateRequest struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date" binding:"required"`
}

func (h *Handler) Save(c *gin.Context) {
	actor := middleware.MustActor(c)

	var form SaveTemplateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	result, err := h.service.SaveTemplate(c.Request.Context(), actor, form.Date, form.Name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": result})
}

func (h *Handler) Apply(c *gin.Context) {
	actor := middleware.MustActor(c)

	result, err := h.service.ApplyTemplate(c.Request.Context(), actor, c.Param("templateId"), c.Query("date"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Delete(c *gin.Context) {
	actor := middleware.MustActor(c)

	if err := h.service.DeleteTemplate(c.Request.Context(), actor, c.Param("templateId")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
