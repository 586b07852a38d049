package sql

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/entity"

	"gorm.io/gorm"
)

// ListProducts returns a page of active products ordered by name.
func (r *GormRepository) ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error) {
	if err := r.ready(); err != nil {
		return nil, nil, err
	}
	if params == nil {
		params = &entity.ProductQuery{}
	}

	db := r.db.WithContext(ctx)
	query := db.Model(&entity.DbProduct{}).Where("is_active = ?", true)
	if strings.TrimSpace(params.Search) != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(params.Search))
	}
	if slug := strings.TrimSpace(params.Category); slug != "" {
		query = query.Where("category_id IN (?)", db.Model(&entity.DbCategory{}).Select("id").Where("slug = ?", slug))
	}
	if params.MinPrice != nil {
		query = query.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("price <= ?", *params.MaxPrice)
	}

	var products []entity.DbProduct
	meta, err := r.paginate(query, params.BaseParams, "name ASC, id ASC", &products, withProductRelations)
	if err != nil {
		return nil, nil, err
	}
	return products, meta, nil
}

// GetProductBySlug loads a product with its category and images.
func (r *GormRepository) GetProductBySlug(ctx context.Context, slug string, includeInactive bool) (*entity.DbProduct, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}

	query := r.db.WithContext(ctx).Scopes(withProductRelations).Where("slug = ?", trimmed)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var product entity.DbProduct
	if err := query.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductSlugExists reports whether slug is taken by any product.
func (r *GormRepository) ProductSlugExists(ctx context.Context, slug string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	return r.exists(r.db.WithContext(ctx), &entity.DbProduct{}, "slug", slug)
}

// CreateProduct inserts a new product.
func (r *GormRepository) CreateProduct(ctx context.Context, product *entity.DbProduct) error {
	if err := r.ready(); err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("product is nil")
	}
	if err := r.db.WithContext(ctx).Omit("Category", "Images").Create(product).Error; err != nil {
		product.ID = 0
		return err
	}
	return nil
}

// UpdateProduct applies a partial update.
func (r *GormRepository) UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error {
	if err := r.ready(); err != nil {
		return err
	}
	if id == 0 {
		return fmt.Errorf("invalid product id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbProduct{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

// DeleteProduct removes a product and its extra images, returning the storage
// keys that should be cleaned up.
func (r *GormRepository) DeleteProduct(ctx context.Context, id uint) ([]string, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid product id")
	}

	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := deleteProductsTx(tx, []uint{id})
		if err != nil {
			return err
		}
		keys = removed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// AddProductImage attaches an extra image to a product.
func (r *GormRepository) AddProductImage(ctx context.Context, image *entity.DbProductImage) error {
	if err := r.ready(); err != nil {
		return err
	}
	if image == nil || image.ProductID == 0 || strings.TrimSpace(image.Image) == "" {
		return fmt.Errorf("image must reference a product and a file")
	}
	return r.db.WithContext(ctx).Create(image).Error
}

// GetProductImage loads one extra image of a product.
func (r *GormRepository) GetProductImage(ctx context.Context, productID, imageID uint) (*entity.DbProductImage, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var image entity.DbProductImage
	if err := r.db.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteProductImage removes one extra image of a product.
func (r *GormRepository) DeleteProductImage(ctx context.Context, productID, imageID uint) error {
	if err := r.ready(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ? AND product_id = ?", imageID, productID).Delete(&entity.DbProductImage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func withProductRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// deleteProductsTx removes the given products and their images inside tx.
// It fails with gorm.ErrRecordNotFound when none of the products existed.
func deleteProductsTx(tx *gorm.DB, productIDs []uint) ([]string, error) {
	var keys []string

	var mainImages []string
	if err := tx.Model(&entity.DbProduct{}).Where("id IN ? AND image <> ''", productIDs).Pluck("image", &mainImages).Error; err != nil {
		return nil, err
	}
	keys = append(keys, mainImages...)

	var extraImages []string
	if err := tx.Model(&entity.DbProductImage{}).Where("product_id IN ?", productIDs).Pluck("image", &extraImages).Error; err != nil {
		return nil, err
	}
	keys = append(keys, extraImages...)

	if err := tx.Where("product_id IN ?", productIDs).Delete(&entity.DbProductImage{}).Error; err != nil {
		return nil, err
	}
	result := tx.Where("id IN ?", productIDs).Delete(&entity.DbProduct{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return keys, nil
}
