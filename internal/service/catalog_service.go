package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"storefront/internal/entity"
	"storefront/internal/model"
	"storefront/internal/storage"

	"gorm.io/gorm"
)

const defaultUnit = "pcs"

// CatalogService 管理分类、商品、商品图片与首页分类
type CatalogService struct {
	repo    model.Repository
	storage storage.Storage
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(repo model.Repository, store storage.Storage) *CatalogService {
	return &CatalogService{repo: repo, storage: store}
}

// ---- categories ----

// ListCategories returns active categories.
func (s *CatalogService) ListCategories(ctx context.Context, query *entity.CategoryQuery) ([]entity.DbCategory, *entity.Meta, error) {
	categories, meta, err := s.repo.ListCategories(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, meta, nil
}

// GetCategory loads a category by slug. Inactive categories are only visible
// when includeInactive is set.
func (s *CatalogService) GetCategory(ctx context.Context, slug string, includeInactive bool) (*entity.DbCategory, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug, includeInactive)
	if err != nil {
		return nil, notFoundOr(err, "category", slug)
	}
	return category, nil
}

// CreateCategory validates req and inserts a category with a generated slug.
func (s *CatalogService) CreateCategory(ctx context.Context, req entity.CategoryRequest) (*entity.DbCategory, error) {
	name := strings.TrimSpace(deref(req.Name))
	if name == "" {
		return nil, newFieldError("name", "This field is required.")
	}
	if err := s.ensureCategoryNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	category := &entity.DbCategory{
		Name:        name,
		Description: deref(req.Description),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	exists := func(candidate string) (bool, error) {
		return s.repo.CategorySlugExists(ctx, candidate)
	}
	_, err := withSlugRetry("category", exists, name, func(slug string) error {
		category.Slug = slug
		createErr := s.repo.CreateCategory(ctx, category)
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			if nameErr := s.ensureCategoryNameFree(ctx, name, 0); nameErr != nil {
				return nameErr
			}
		}
		return createErr
	})
	if err != nil {
		return nil, wrapUnlessValidation(err, "create category")
	}
	return category, nil
}

// UpdateCategory changes a category. With partial=false the name is required.
func (s *CatalogService) UpdateCategory(ctx context.Context, slug string, req entity.CategoryRequest, partial bool) (*entity.DbCategory, error) {
	category, err := s.GetCategory(ctx, slug, true)
	if err != nil {
		return nil, err
	}

	updates := entity.CategoryUpdates{
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Name != nil || !partial {
		name := strings.TrimSpace(deref(req.Name))
		if name == "" {
			return nil, newFieldError("name", "This field is required.")
		}
		if err := s.ensureCategoryNameFree(ctx, name, category.ID); err != nil {
			return nil, err
		}
		updates.Name = &name
	}

	if err := s.repo.UpdateCategory(ctx, category.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newFieldError("name", "category with this name already exists.")
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetCategory(ctx, category.Slug, true)
}

// DeleteCategory removes a category with its products, images and home-page entries.
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	category, err := s.GetCategory(ctx, slug, true)
	if err != nil {
		return err
	}
	keys, err := s.repo.DeleteCategory(ctx, category.ID)
	if err != nil {
		return notFoundOr(err, "category", slug)
	}
	removeBlobs(ctx, s.storage, keys...)
	return nil
}

func (s *CatalogService) ensureCategoryNameFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.repo.CategoryNameExists(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return newFieldError("name", "category with this name already exists.")
	}
	return nil
}

// ---- products ----

// ListProducts returns active products matching query.
func (s *CatalogService) ListProducts(ctx context.Context, query *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error) {
	if query != nil && query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		return nil, nil, newFieldError("min_price", "min_price must not exceed max_price.")
	}
	products, meta, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("list products: %w", err)
	}
	return products, meta, nil
}

// GetProduct loads a product with its category and images.
func (s *CatalogService) GetProduct(ctx context.Context, slug string, includeInactive bool) (*entity.DbProduct, error) {
	product, err := s.repo.GetProductBySlug(ctx, slug, includeInactive)
	if err != nil {
		return nil, notFoundOr(err, "product", slug)
	}
	return product, nil
}

// CreateProduct validates req, stores the optional main image and inserts the product.
func (s *CatalogService) CreateProduct(ctx context.Context, req entity.ProductRequest, image *Upload) (*entity.DbProduct, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(deref(req.Name))
	if name == "" {
		fields["name"] = "This field is required."
	}
	if req.Category == nil || strings.TrimSpace(*req.Category) == "" {
		fields["category"] = "This field is required."
	}
	if req.Price == nil {
		fields["price"] = "This field is required."
	} else if msg := validatePrice(*req.Price); msg != "" {
		fields["price"] = msg
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Invalid input.", Fields: fields}
	}

	categoryID, err := s.resolveCategory(ctx, *req.Category)
	if err != nil {
		return nil, err
	}

	product := &entity.DbProduct{
		Name:                 name,
		CategoryID:           categoryID,
		GenericName:          strings.TrimSpace(deref(req.GenericName)),
		BrandName:            strings.TrimSpace(deref(req.BrandName)),
		Description:          deref(req.Description),
		DosageInfo:           strings.TrimSpace(deref(req.DosageInfo)),
		Price:                roundPrice(*req.Price),
		Unit:                 strings.TrimSpace(deref(req.Unit)),
		PrescriptionRequired: req.PrescriptionRequired != nil && *req.PrescriptionRequired,
		IsActive:             req.IsActive == nil || *req.IsActive,
	}
	if product.Unit == "" {
		product.Unit = defaultUnit
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if image != nil {
		key, err := saveImage(ctx, s.storage, storage.CategoryProducts, "image", image)
		if err != nil {
			return nil, wrapUnlessValidation(err, "store product image")
		}
		product.Image = key
	}

	exists := func(candidate string) (bool, error) {
		return s.repo.ProductSlugExists(ctx, candidate)
	}
	_, err = withSlugRetry("product", exists, name, func(slug string) error {
		product.Slug = slug
		return s.repo.CreateProduct(ctx, product)
	})
	if err != nil {
		removeBlobs(ctx, s.storage, product.Image)
		return nil, wrapUnlessValidation(err, "create product")
	}
	return s.GetProduct(ctx, product.Slug, true)
}

// UpdateProduct changes a product. With partial=false name, category and price
// are required. A new image replaces the old one; ClearImage removes it.
func (s *CatalogService) UpdateProduct(ctx context.Context, slug string, req entity.ProductRequest, image *Upload, partial bool) (*entity.DbProduct, error) {
	product, err := s.GetProduct(ctx, slug, true)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	updates := entity.ProductUpdates{
		GenericName:          trimmed(req.GenericName),
		BrandName:            trimmed(req.BrandName),
		Description:          req.Description,
		DosageInfo:           trimmed(req.DosageInfo),
		Stock:                req.Stock,
		PrescriptionRequired: req.PrescriptionRequired,
		IsActive:             req.IsActive,
	}
	if req.Name != nil || !partial {
		name := strings.TrimSpace(deref(req.Name))
		if name == "" {
			fields["name"] = "This field is required."
		}
		updates.Name = &name
	}
	if req.Price != nil {
		if msg := validatePrice(*req.Price); msg != "" {
			fields["price"] = msg
		}
		price := roundPrice(*req.Price)
		updates.Price = &price
	} else if !partial {
		fields["price"] = "This field is required."
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			unit = defaultUnit
		}
		updates.Unit = &unit
	}
	if req.Category == nil && !partial {
		fields["category"] = "This field is required."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Invalid input.", Fields: fields}
	}
	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		updates.CategoryID = &categoryID
	}

	var newKey, oldKey string
	switch {
	case image != nil:
		newKey, err = saveImage(ctx, s.storage, storage.CategoryProducts, "image", image)
		if err != nil {
			return nil, wrapUnlessValidation(err, "store product image")
		}
		updates.Image = &newKey
		oldKey = product.Image
	case req.ClearImage && product.Image != "":
		empty := ""
		updates.Image = &empty
		oldKey = product.Image
	}

	if err := s.repo.UpdateProduct(ctx, product.ID, updates); err != nil {
		removeBlobs(ctx, s.storage, newKey)
		return nil, fmt.Errorf("update product: %w", err)
	}
	if oldKey != "" && oldKey != newKey {
		removeBlobs(ctx, s.storage, oldKey)
	}
	return s.GetProduct(ctx, product.Slug, true)
}

// DeleteProduct removes a product, its extra images and their files.
func (s *CatalogService) DeleteProduct(ctx context.Context, slug string) error {
	product, err := s.GetProduct(ctx, slug, true)
	if err != nil {
		return err
	}
	keys, err := s.repo.DeleteProduct(ctx, product.ID)
	if err != nil {
		return notFoundOr(err, "product", slug)
	}
	removeBlobs(ctx, s.storage, keys...)
	return nil
}

// AddProductImage stores an extra image for the product.
func (s *CatalogService) AddProductImage(ctx context.Context, slug string, upload *Upload) (*entity.DbProductImage, error) {
	product, err := s.GetProduct(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	key, err := saveImage(ctx, s.storage, storage.CategoryProductImages, "image", upload)
	if err != nil {
		return nil, wrapUnlessValidation(err, "store product image")
	}

	image := &entity.DbProductImage{ProductID: product.ID, Image: key}
	if err := s.repo.AddProductImage(ctx, image); err != nil {
		removeBlobs(ctx, s.storage, key)
		return nil, fmt.Errorf("add product image: %w", err)
	}
	return image, nil
}

// DeleteProductImage removes one extra image and its file.
func (s *CatalogService) DeleteProductImage(ctx context.Context, slug string, imageID uint) error {
	product, err := s.GetProduct(ctx, slug, true)
	if err != nil {
		return err
	}
	image, err := s.repo.GetProductImage(ctx, product.ID, imageID)
	if err != nil {
		return notFoundOr(err, "product image", fmt.Sprint(imageID))
	}
	if err := s.repo.DeleteProductImage(ctx, product.ID, imageID); err != nil {
		return notFoundOr(err, "product image", fmt.Sprint(imageID))
	}
	removeBlobs(ctx, s.storage, image.Image)
	return nil
}

func (s *CatalogService) resolveCategory(ctx context.Context, slug string) (uint, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, newFieldError("category", fmt.Sprintf("Object with slug=%s does not exist.", strings.TrimSpace(slug)))
		}
		return 0, fmt.Errorf("load category: %w", err)
	}
	return category.ID, nil
}

// ---- home-page categories ----

// ListDisplayedCategories returns home-page entries by position.
func (s *CatalogService) ListDisplayedCategories(ctx context.Context) ([]entity.DbDisplayedCategory, error) {
	items, err := s.repo.ListDisplayedCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list home categories: %w", err)
	}
	return items, nil
}

// CreateDisplayedCategory places a category on the home page.
func (s *CatalogService) CreateDisplayedCategory(ctx context.Context, req entity.DisplayedCategoryRequest) (*entity.DbDisplayedCategory, error) {
	if req.Category == nil || strings.TrimSpace(*req.Category) == "" {
		return nil, newFieldError("category", "This field is required.")
	}
	categoryID, err := s.resolveCategory(ctx, *req.Category)
	if err != nil {
		return nil, err
	}
	item := &entity.DbDisplayedCategory{CategoryID: categoryID}
	if req.Position != nil {
		item.Position = *req.Position
	}
	if err := s.repo.CreateDisplayedCategory(ctx, item); err != nil {
		return nil, fmt.Errorf("create home category: %w", err)
	}
	return s.getDisplayedCategory(ctx, item.ID)
}

// UpdateDisplayedCategory moves an entry to a new position.
func (s *CatalogService) UpdateDisplayedCategory(ctx context.Context, id uint, req entity.DisplayedCategoryRequest) (*entity.DbDisplayedCategory, error) {
	if _, err := s.getDisplayedCategory(ctx, id); err != nil {
		return nil, err
	}
	if req.Position == nil {
		return nil, newFieldError("position", "This field is required.")
	}
	if err := s.repo.UpdateDisplayedCategory(ctx, id, *req.Position); err != nil {
		return nil, fmt.Errorf("update home category: %w", err)
	}
	return s.getDisplayedCategory(ctx, id)
}

// DeleteDisplayedCategory removes an entry; the category itself stays.
func (s *CatalogService) DeleteDisplayedCategory(ctx context.Context, id uint) error {
	if err := s.repo.DeleteDisplayedCategory(ctx, id); err != nil {
		return notFoundOr(err, "home category", fmt.Sprint(id))
	}
	return nil
}

func (s *CatalogService) getDisplayedCategory(ctx context.Context, id uint) (*entity.DbDisplayedCategory, error) {
	item, err := s.repo.GetDisplayedCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "home category", fmt.Sprint(id))
	}
	return item, nil
}

// ---- helpers ----

func validatePrice(price float64) string {
	switch {
	case math.IsNaN(price) || math.IsInf(price, 0):
		return "A valid number is required."
	case price < 0:
		return "Ensure this value is greater than or equal to 0."
	case price >= 1e8:
		return "Ensure that there are no more than 10 digits in total."
	}
	return ""
}

func roundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}

func notFoundOr(err error, kind, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", kind, err)
}

func wrapUnlessValidation(err error, action string) error {
	if _, ok := IsValidation(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
