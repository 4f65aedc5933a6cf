package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membership-portal-api/internal/service"
	"github.com/membership-portal-api/internal/validation"
	"github.com/rs/zerolog"
)

// NotificationHandler handles the actor-scoped notification feed
type NotificationHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(services *service.Services, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		services: services,
		log:      log.With().Str("handler", "notification").Logger(),
	}
}

// List handles GET /v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	page, pageSize, err := validation.ParsePagination(c.Query("page"), c.Query("pageSize"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	items, total, err := h.services.Notification.ListFor(ctx, actor, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
	})
}

// MarkRead handles PUT /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	if err := h.services.Notification.MarkRead(ctx, actor, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
