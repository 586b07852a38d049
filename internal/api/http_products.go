package api

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	var query entity.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, meta, err := h.catalog.ListProducts(ctx, &query)
	if err != nil {
		respondError(c, err, "failed to list products")
		return
	}

	items := make([]entity.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, h.makeProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, entity.ProductListResponse{Products: items, Meta: meta})
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, c.Param("slug"), CurrentPrincipal(c).IsStaff())
	if err != nil {
		respondError(c, err, "failed to load product")
		return
	}
	c.JSON(http.StatusOK, h.makeProductResponse(product))
}

// CreateProduct accepts JSON, or a multipart form with the main image as "image".
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req entity.ProductRequest
	if err := h.bindPayload(c, &req); err != nil {
		InvalidPayload(c, err)
		return
	}
	image, err := h.readUpload(c, "image")
	if err != nil {
		respondError(c, err, "failed to read upload")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.catalog.CreateProduct(ctx, req, image)
	if err != nil {
		respondError(c, err, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, h.makeProductResponse(product))
}

func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	var req entity.ProductRequest
	if err := h.bindPayload(c, &req); err != nil {
		InvalidPayload(c, err)
		return
	}
	image, err := h.readUpload(c, "image")
	if err != nil {
		respondError(c, err, "failed to read upload")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	partial := c.Request.Method == http.MethodPatch
	product, err := h.catalog.UpdateProduct(ctx, c.Param("slug"), req, image, partial)
	if err != nil {
		respondError(c, err, "failed to update product")
		return
	}
	c.JSON(http.StatusOK, h.makeProductResponse(product))
}

func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, c.Param("slug")); err != nil {
		respondError(c, err, "failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) AddProductImage(c *gin.Context) {
	if !isMultipart(c) {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "Invalid input.", gin.H{"image": "No file was submitted."})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	upload, err := h.readUpload(c, "image")
	if err != nil {
		respondError(c, err, "failed to read upload")
		return
	}
	if upload == nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "Invalid input.", gin.H{"image": "No file was submitted."})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	image, err := h.catalog.AddProductImage(ctx, c.Param("slug"), upload)
	if err != nil {
		respondError(c, err, "failed to add product image")
		return
	}
	c.JSON(http.StatusCreated, entity.ProductImageResponse{ID: image.ID, Image: h.publicURL(image.Image)})
}

func (h *HTTPHandler) DeleteProductImage(c *gin.Context) {
	imageID, err := strconv.ParseUint(strings.TrimSpace(c.Param("image_id")), 10, 64)
	if err != nil || imageID == 0 {
		ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "Not found.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.DeleteProductImage(ctx, c.Param("slug"), uint(imageID)); err != nil {
		respondError(c, err, "failed to delete product image")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) makeProductResponse(product *entity.DbProduct) entity.ProductResponse {
	resp := entity.ProductResponse{
		ID:                   product.ID,
		Name:                 product.Name,
		Slug:                 product.Slug,
		GenericName:          product.GenericName,
		BrandName:            product.BrandName,
		Description:          product.Description,
		DosageInfo:           product.DosageInfo,
		Price:                product.Price,
		Stock:                product.Stock,
		Unit:                 product.Unit,
		PrescriptionRequired: product.PrescriptionRequired,
		Image:                h.optionalURL(product.Image),
		Images:               make([]entity.ProductImageResponse, 0, len(product.Images)),
		IsActive:             product.IsActive,
		CreatedAt:            product.CreatedAt,
		UpdatedAt:            product.UpdatedAt,
	}
	if product.Category != nil {
		resp.Category = product.Category.Slug
	}
	for _, image := range product.Images {
		resp.Images = append(resp.Images, entity.ProductImageResponse{ID: image.ID, Image: h.publicURL(image.Image)})
	}
	return resp
}
