package api

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListHomeCategories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.catalog.ListDisplayedCategories(ctx)
	if err != nil {
		respondError(c, err, "failed to list home categories")
		return
	}

	resp := entity.DisplayedCategoryListResponse{Items: make([]entity.DisplayedCategoryResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, makeDisplayedCategoryResponse(&items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) CreateHomeCategory(c *gin.Context) {
	var req entity.DisplayedCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.catalog.CreateDisplayedCategory(ctx, req)
	if err != nil {
		respondError(c, err, "failed to create home category")
		return
	}
	c.JSON(http.StatusCreated, makeDisplayedCategoryResponse(item))
}

func (h *HTTPHandler) UpdateHomeCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req entity.DisplayedCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.catalog.UpdateDisplayedCategory(ctx, id, req)
	if err != nil {
		respondError(c, err, "failed to update home category")
		return
	}
	c.JSON(http.StatusOK, makeDisplayedCategoryResponse(item))
}

func (h *HTTPHandler) DeleteHomeCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.DeleteDisplayedCategory(ctx, id); err != nil {
		respondError(c, err, "failed to delete home category")
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "Not found.")
		return 0, false
	}
	return uint(id), true
}

func makeDisplayedCategoryResponse(item *entity.DbDisplayedCategory) entity.DisplayedCategoryResponse {
	return entity.DisplayedCategoryResponse{
		ID:       item.ID,
		Position: item.Position,
		Category: makeCategoryResponse(item.Category),
	}
}
