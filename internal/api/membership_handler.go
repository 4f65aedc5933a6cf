package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/service"
	"github.com/membership-portal-api/internal/validation"
	"github.com/rs/zerolog"
)

// MembershipHandler exposes the approve/reject convenience endpoints the
// admin dashboard uses. Both are thin wrappers over the generic
// bulk-transition contract, fixed to membership applications.
type MembershipHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(services *service.Services, log zerolog.Logger) *MembershipHandler {
	return &MembershipHandler{
		services: services,
		log:      log.With().Str("handler", "membership").Logger(),
	}
}

type membershipDecisionRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason,omitempty"`
}

// Approve handles POST /v1/memberships/approve
func (h *MembershipHandler) Approve(c *gin.Context) {
	h.decide(c, models.StateActive)
}

// Reject handles POST /v1/memberships/reject
func (h *MembershipHandler) Reject(c *gin.Context) {
	h.decide(c, models.StateSuspended)
}

func (h *MembershipHandler) decide(c *gin.Context, target models.State) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	var req membershipDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bulkReq := &models.BulkTransitionRequest{
		IDs:         req.IDs,
		TargetState: target,
		Reason:      req.Reason,
	}
	if err := validation.ValidateBulkRequest(bulkReq); err != nil {
		respondError(c, h.log, err)
		return
	}

	count, err := h.services.Bulk.BulkTransition(ctx, actor, models.KindMembership, bulkReq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.BulkTransitionResponse{Count: count})
}
