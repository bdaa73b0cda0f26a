package room

import (
	"net/http"

	"shared-daily-menu/internal/errors"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for rooms
type Handler struct {
	service Service
}

// NewHandler creates a new room handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type SetupRequest struct {
	DeviceID    string `json:"deviceId" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	RoomName    string `json:"roomName"`
}

func (h *Handler) Setup(c *gin.Context) {
	var form SetupRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	result, err := h.service.CreateRoom(c.Request.Context(), form.DeviceID, form.DisplayName, form.RoomName)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type JoinRequest struct {
	DeviceID    string `json:"deviceId" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	InviteToken string `json:"inviteToken"`
}

func (h *Handler) Join(c *gin.Context) {
	roomID := c.Param("roomId")

	var form JoinRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	err := h.service.JoinRoom(c.Request.Context(), roomID, form.DeviceID, form.DisplayName, form.InviteToken)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
