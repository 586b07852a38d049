package api

import (
	"net/http"

	"storefront/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	var query entity.CategoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	categories, meta, err := h.catalog.ListCategories(ctx, &query)
	if err != nil {
		respondError(c, err, "failed to list categories")
		return
	}

	items := make([]entity.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, makeCategoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, entity.CategoryListResponse{Categories: items, Meta: meta})
}

func (h *HTTPHandler) GetCategory(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := h.catalog.GetCategory(ctx, c.Param("slug"), CurrentPrincipal(c).IsStaff())
	if err != nil {
		respondError(c, err, "failed to load category")
		return
	}
	c.JSON(http.StatusOK, makeCategoryResponse(category))
}

func (h *HTTPHandler) CreateCategory(c *gin.Context) {
	var req entity.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := h.catalog.CreateCategory(ctx, req)
	if err != nil {
		respondError(c, err, "failed to create category")
		return
	}
	c.JSON(http.StatusCreated, makeCategoryResponse(category))
}

func (h *HTTPHandler) UpdateCategory(c *gin.Context) {
	var req entity.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	partial := c.Request.Method == http.MethodPatch
	category, err := h.catalog.UpdateCategory(ctx, c.Param("slug"), req, partial)
	if err != nil {
		respondError(c, err, "failed to update category")
		return
	}
	c.JSON(http.StatusOK, makeCategoryResponse(category))
}

func (h *HTTPHandler) DeleteCategory(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.DeleteCategory(ctx, c.Param("slug")); err != nil {
		respondError(c, err, "failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

func makeCategoryResponse(category *entity.DbCategory) entity.CategoryResponse {
	if category == nil {
		return entity.CategoryResponse{}
	}
	return entity.CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}
