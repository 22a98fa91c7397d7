package admin

import (
	"errors"

	handlershared "github.com/dropforge/internal/http/handlers/shared"
	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	return handlershared.ParseIDParam(c, name)
}

// respondServiceError maps the common admin CRUD errors.
func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "invalid input", nil)
	case errors.Is(err, service.ErrCollectionNotFound):
		respondError(c, response.CodeNotFound, "collection not found", nil)
	case errors.Is(err, service.ErrCollectionSlugExists):
		respondError(c, response.CodeConflict, "slug already exists", nil)
	case errors.Is(err, service.ErrBatchListingNotFound):
		respondError(c, response.CodeNotFound, "batch listing not found", nil)
	case errors.Is(err, service.ErrCollectibleNotFound):
		respondError(c, response.CodeNotFound, "collectible not found", nil)
	case errors.Is(err, service.ErrChipLinkNotFound):
		respondError(c, response.CodeNotFound, "chip link not found", nil)
	case errors.Is(err, service.ErrChipTagExists):
		respondError(c, response.CodeConflict, "tag already linked", nil)
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrOrderStatusInvalid):
		respondError(c, response.CodeBadRequest, "status transition not allowed", nil)
	default:
		respondError(c, response.CodeInternal, fallbackMsg, err)
	}
}
