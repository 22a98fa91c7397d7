package admin

import (
	handlershared "github.com/dropforge/internal/http/handlers/shared"
	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/repository"
	"github.com/dropforge/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCollections returns collections for the admin panel.
func (h *Handler) ListCollections(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	items, total, err := h.CollectionService.List(repository.CollectionListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list collections failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// GetCollection returns one collection.
func (h *Handler) GetCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	collection, err := h.CollectionService.Get(id)
	if err != nil {
		respondServiceError(c, err, "get collection failed")
		return
	}
	response.Success(c, collection)
}

// CreateCollection inserts a collection.
func (h *Handler) CreateCollection(c *gin.Context) {
	var input service.CollectionCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	collection, err := h.CollectionService.Create(input)
	if err != nil {
		respondServiceError(c, err, "create collection failed")
		return
	}
	response.Success(c, collection)
}

// UpdateCollection applies a partial update.
func (h *Handler) UpdateCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.CollectionUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	collection, err := h.CollectionService.Update(id, input)
	if err != nil {
		respondServiceError(c, err, "update collection failed")
		return
	}
	response.Success(c, collection)
}

// DeleteCollection soft-deletes a collection.
func (h *Handler) DeleteCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CollectionService.Delete(id); err != nil {
		respondServiceError(c, err, "delete collection failed")
		return
	}
	response.Success(c, nil)
}
