package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k12fleet/assetdesk/internal/directory"
	"github.com/k12fleet/assetdesk/internal/roster"
	"github.com/k12fleet/assetdesk/internal/services"
)

// respondError maps engine errors to HTTP statuses with enough structured
// context for the UI to render a specific remediation message.
func respondError(c *gin.Context, err error) {
	var (
		schemaErr     *roster.SchemaError
		encodingErr   *roster.EncodingError
		capacityErr   *roster.CapacityError
		dupErr        *services.DuplicateReviewError
		incompleteErr *services.IncompleteVerificationError
		conflictErr   *services.ConflictError
		stateErr      *services.InvalidStateError
		notFoundErr   *directory.NotFoundError
		unavailErr    *directory.ServiceUnavailableError
	)

	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           schemaErr.Error(),
			"missing_columns": schemaErr.MissingColumns,
			"row":             schemaErr.Row,
		})
	case errors.As(err, &encodingErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": encodingErr.Error()})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": capacityErr.Error(),
			"limit": capacityErr.Limit,
		})
	case errors.As(err, &dupErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      dupErr.Error(),
			"duplicates": dupErr.Groups,
		})
	case errors.As(err, &incompleteErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             incompleteErr.Error(),
			"expected":          incompleteErr.Expected,
			"confirmed":         incompleteErr.Confirmed,
			"missing_asset_ids": incompleteErr.Missing,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      conflictErr.Error(),
			"audited_by": conflictErr.AuditedBy,
			"audited_at": conflictErr.AuditedAt,
		})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &unavailErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":    unavailErr.Error(),
			"attempts": unavailErr.Attempts,
		})
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoteTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
