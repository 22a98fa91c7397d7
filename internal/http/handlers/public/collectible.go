package public

import (
	handlershared "github.com/dropforge/internal/http/handlers/shared"
	"github.com/dropforge/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListLiveCollectibles returns active collectibles whose mint window is open.
func (h *Handler) ListLiveCollectibles(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	result, err := h.CollectibleService.ListLive(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "list collectibles failed", err)
		return
	}
	response.SuccessWithPage(c, result.Items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     result.Total,
		TotalPage: handlershared.TotalPages(result.Total, pageSize),
	})
}

// GetCollectible returns one active collectible.
func (h *Handler) GetCollectible(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	collectible, err := h.CollectibleService.GetPublic(id)
	if err != nil {
		respondWithMappedError(c, err, claimErrorRules, response.CodeInternal, "get collectible failed")
		return
	}
	response.Success(c, collectible)
}

// ResolveChipTag maps a scanned NFC tag to its current collectible.
func (h *Handler) ResolveChipTag(c *gin.Context) {
	tagUID := c.Param("tag_uid")
	link, err := h.ChipLinkService.ResolveTag(tagUID)
	if err != nil {
		respondError(c, response.CodeNotFound, "tag not found", nil)
		return
	}
	response.Success(c, link)
}
