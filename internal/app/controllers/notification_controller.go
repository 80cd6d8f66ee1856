package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/services"
	"github.com/Anandhu5Uthaman/College-mini/internal/middleware"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/helpers"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/websocket"
)

// NotificationController serves the caller's notification inbox and its live stream
type NotificationController struct {
	notifications *services.NotificationService
	handler       *websocket.Handler
	logger        zerolog.Logger
}

// NewNotificationController creates a new notification controller
func NewNotificationController(notifications *services.NotificationService, handler *websocket.Handler, logger zerolog.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, handler: handler, logger: logger}
}

// List returns a page of the caller's notifications and marks them read
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.StatusResponse{data=[]dto.NotificationResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	list, err := c.notifications.List(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStatusResponse(list))
}

// Unread reports whether the caller has unread notifications
// @Summary Check for new notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.NewNotificationsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /new-notifications [get]
func (c *NotificationController) Unread(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	resp, err := c.notifications.Unread(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Connect upgrades to a WebSocket carrying the caller's notifications
// @Summary Subscribe to notifications
// @Description Streams comment.created and blog.liked notifications for the caller's blogs
// @Tags notifications
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse
// @Router /notifications/ws [get]
func (c *NotificationController) Connect(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	if err := c.handler.Serve(ctx.Writer, ctx.Request, userID); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("WebSocket upgrade failed")
	}
}
