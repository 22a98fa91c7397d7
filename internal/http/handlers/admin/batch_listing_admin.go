package admin

import (
	handlershared "github.com/dropforge/internal/http/handlers/shared"
	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/repository"
	"github.com/dropforge/internal/service"

	"github.com/gin-gonic/gin"
)

// ListBatchListings returns templates for the admin panel.
func (h *Handler) ListBatchListings(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	items, total, err := h.BatchListingService.List(repository.BatchListingListFilter{
		Page:         page,
		PageSize:     pageSize,
		CollectionID: handlershared.QueryUint(c, "collection_id"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list batch listings failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetBatchListing returns one template.
func (h *Handler) GetBatchListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	listing, err := h.BatchListingService.Get(id)
	if err != nil {
		respondServiceError(c, err, "get batch listing failed")
		return
	}
	response.Success(c, listing)
}

// CreateBatchListing inserts a template.
func (h *Handler) CreateBatchListing(c *gin.Context) {
	var input service.BatchListingCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	listing, err := h.BatchListingService.Create(input)
	if err != nil {
		respondServiceError(c, err, "create batch listing failed")
		return
	}
	response.Success(c, listing)
}

// UpdateBatchListing applies a partial update.
func (h *Handler) UpdateBatchListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.BatchListingUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	listing, err := h.BatchListingService.Update(id, input)
	if err != nil {
		respondServiceError(c, err, "update batch listing failed")
		return
	}
	response.Success(c, listing)
}

// DeleteBatchListing soft-deletes a template.
func (h *Handler) DeleteBatchListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.BatchListingService.Delete(id); err != nil {
		respondServiceError(c, err, "delete batch listing failed")
		return
	}
	response.Success(c, nil)
}
