package admin

import (
	handlershared "github.com/dropforge/internal/http/handlers/shared"
	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/repository"
	"github.com/dropforge/internal/service"

	"github.com/gin-gonic/gin"
)

// ListChipLinks returns tag bindings for the admin panel.
func (h *Handler) ListChipLinks(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	items, total, err := h.ChipLinkService.List(repository.ChipLinkListFilter{
		Page:           page,
		PageSize:       pageSize,
		CollectionID:   handlershared.QueryUint(c, "collection_id"),
		BatchListingID: handlershared.QueryUint(c, "batch_listing_id"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list chip links failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetChipLink returns one tag binding.
func (h *Handler) GetChipLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	link, err := h.ChipLinkService.Get(id)
	if err != nil {
		respondServiceError(c, err, "get chip link failed")
		return
	}
	response.Success(c, link)
}

// CreateChipLink binds a tag.
func (h *Handler) CreateChipLink(c *gin.Context) {
	var input service.ChipLinkCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	link, err := h.ChipLinkService.Create(input)
	if err != nil {
		respondServiceError(c, err, "create chip link failed")
		return
	}
	response.Success(c, link)
}

// DisconnectChipLink detaches a tag from its collectible and template.
func (h *Handler) DisconnectChipLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	link, err := h.ChipLinkService.Disconnect(id)
	if err != nil {
		respondServiceError(c, err, "disconnect chip link failed")
		return
	}
	response.Success(c, link)
}

// DeleteChipLink soft-deletes a tag binding.
func (h *Handler) DeleteChipLink(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ChipLinkService.Delete(id); err != nil {
		respondServiceError(c, err, "delete chip link failed")
		return
	}
	response.Success(c, nil)
}
