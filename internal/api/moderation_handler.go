package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membership-portal-api/internal/config"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/service"
	"github.com/membership-portal-api/internal/validation"
	"github.com/rs/zerolog"
)

// ModerationHandler handles the moderation endpoints
type ModerationHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "moderation").Logger(),
	}
}

// List handles GET /v1/moderation/:kind
func (h *ModerationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	kind, err := validation.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	page, pageSize, err := validation.ParsePagination(c.Query("page"), c.Query("pageSize"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filter := models.ListFilter{
		State:    models.State(c.Query("status")),
		Category: c.Query("category"),
		OwnerID:  c.Query("owner"),
		Priority: models.Priority(c.Query("priority")),
	}

	items, total, err := h.services.Query.List(ctx, actor, kind, filter, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// Mirror the query service's normalization so total_pages is derived
	// from the page size that was actually applied.
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = h.cfg.Paging.DefaultPageSize
	}
	if pageSize > h.cfg.Paging.MaxPageSize {
		pageSize = h.cfg.Paging.MaxPageSize
	}

	c.JSON(http.StatusOK, models.ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	})
}

// Create handles POST /v1/moderation/:kind
func (h *ModerationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	kind, err := validation.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.services.Content.Create(ctx, actor, kind, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// UpdateContent handles PUT /v1/moderation/:kind/:id/content
func (h *ModerationHandler) UpdateContent(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	kind, err := validation.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.services.Content.UpdateContent(ctx, actor, kind, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Transition handles POST /v1/moderation/:kind/:id/transition
func (h *ModerationHandler) Transition(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	kind, err := validation.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validation.ValidateTransitionRequest(&req); err != nil {
		respondError(c, h.log, err)
		return
	}

	rec, err := h.services.Transition.Transition(ctx, actor, kind, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// BulkTransition handles POST /v1/moderation/:kind/bulk-transition
func (h *ModerationHandler) BulkTransition(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	kind, err := validation.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validation.ValidateBulkRequest(&req); err != nil {
		respondError(c, h.log, err)
		return
	}

	count, err := h.services.Bulk.BulkTransition(ctx, actor, kind, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.BulkTransitionResponse{Count: count})
}
