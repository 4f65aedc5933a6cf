package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membership-portal-api/internal/models"
	"github.com/rs/zerolog"
)

// respondError maps the workflow error taxonomy onto HTTP statuses. Failures
// always carry their specific reason; illegal bulk transitions additionally
// name the records that blocked the batch so the admin can correct and
// resubmit.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var illegal *models.IllegalTransitionError

	switch {
	case errors.As(err, &illegal):
		body := gin.H{"error": illegal.Error()}
		if len(illegal.RecordIDs) > 0 {
			body["record_ids"] = illegal.RecordIDs
		}
		c.JSON(http.StatusConflict, body)

	case errors.Is(err, models.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		// Storage failures and anything unexpected. Details go to the log,
		// not the client.
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
