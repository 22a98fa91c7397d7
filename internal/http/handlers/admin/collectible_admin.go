package admin

import (
	handlershared "github.com/dropforge/internal/http/handlers/shared"
	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/repository"
	"github.com/dropforge/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCollectibles returns collectibles for the admin panel.
func (h *Handler) ListCollectibles(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	items, total, err := h.CollectibleService.List(repository.CollectibleListFilter{
		Page:           page,
		PageSize:       pageSize,
		CollectionID:   handlershared.QueryUint(c, "collection_id"),
		BatchListingID: handlershared.QueryUint(c, "batch_listing_id"),
		WithCollection: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list collectibles failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetCollectible returns one collectible.
func (h *Handler) GetCollectible(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	collectible, err := h.CollectibleService.Get(id)
	if err != nil {
		respondServiceError(c, err, "get collectible failed")
		return
	}
	response.Success(c, collectible)
}

// CreateCollectible inserts a one-off collectible.
func (h *Handler) CreateCollectible(c *gin.Context) {
	var input service.CollectibleCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	collectible, err := h.CollectibleService.Create(input)
	if err != nil {
		respondServiceError(c, err, "create collectible failed")
		return
	}
	response.Success(c, collectible)
}

// UpdateCollectible applies a partial update.
func (h *Handler) UpdateCollectible(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.CollectibleUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	collectible, err := h.CollectibleService.Update(id, input)
	if err != nil {
		respondServiceError(c, err, "update collectible failed")
		return
	}
	response.Success(c, collectible)
}

// DeleteCollectible soft-deletes a collectible.
func (h *Handler) DeleteCollectible(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CollectibleService.Delete(id); err != nil {
		respondServiceError(c, err, "delete collectible failed")
		return
	}
	response.Success(c, nil)
}
