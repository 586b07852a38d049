package sql

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/entity"

	"gorm.io/gorm"
)

// ListCategories returns a page of active categories ordered by name.
func (r *GormRepository) ListCategories(ctx context.Context, params *entity.CategoryQuery) ([]entity.DbCategory, *entity.Meta, error) {
	if err := r.ready(); err != nil {
		return nil, nil, err
	}
	if params == nil {
		params = &entity.CategoryQuery{}
	}

	query := r.db.WithContext(ctx).Model(&entity.DbCategory{}).Where("is_active = ?", true)
	if strings.TrimSpace(params.Search) != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(params.Search))
	}

	var categories []entity.DbCategory
	meta, err := r.paginate(query, params.BaseParams, "name ASC, id ASC", &categories)
	if err != nil {
		return nil, nil, err
	}
	return categories, meta, nil
}

// GetCategoryBySlug loads a category. Inactive rows are only returned when includeInactive is set.
func (r *GormRepository) GetCategoryBySlug(ctx context.Context, slug string, includeInactive bool) (*entity.DbCategory, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}

	query := r.db.WithContext(ctx).Where("slug = ?", trimmed)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var category entity.DbCategory
	if err := query.First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// CategorySlugExists reports whether slug is taken by any category.
func (r *GormRepository) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	return r.exists(r.db.WithContext(ctx), &entity.DbCategory{}, "slug", slug)
}

// CategoryNameExists reports whether another category already uses name, ignoring case.
func (r *GormRepository) CategoryNameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	query := r.db.WithContext(ctx).Model(&entity.DbCategory{}).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCategory inserts a new category.
func (r *GormRepository) CreateCategory(ctx context.Context, category *entity.DbCategory) error {
	if err := r.ready(); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category is nil")
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		category.ID = 0
		return err
	}
	return nil
}

// UpdateCategory applies a partial update.
func (r *GormRepository) UpdateCategory(ctx context.Context, id uint, updates entity.CategoryUpdates) error {
	if err := r.ready(); err != nil {
		return err
	}
	if id == 0 {
		return fmt.Errorf("invalid category id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbCategory{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

// DeleteCategory removes a category together with its products, their images
// and any home-page entries. It returns the storage keys of the removed images.
func (r *GormRepository) DeleteCategory(ctx context.Context, id uint) ([]string, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid category id")
	}

	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productIDs []uint
		if err := tx.Model(&entity.DbProduct{}).Where("category_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			removed, err := deleteProductsTx(tx, productIDs)
			if err != nil {
				return err
			}
			keys = append(keys, removed...)
		}
		if err := tx.Where("category_id = ?", id).Delete(&entity.DbDisplayedCategory{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.DbCategory{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
