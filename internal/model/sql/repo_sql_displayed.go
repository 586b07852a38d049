package sql

import (
	"context"
	"fmt"

	"storefront/internal/entity"

	"gorm.io/gorm"
)

// ListDisplayedCategories returns the home-page entries in position order.
func (r *GormRepository) ListDisplayedCategories(ctx context.Context) ([]entity.DbDisplayedCategory, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var items []entity.DbDisplayedCategory
	if err := r.db.WithContext(ctx).Preload("Category").Order("position ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetDisplayedCategory loads a single home-page entry.
func (r *GormRepository) GetDisplayedCategory(ctx context.Context, id uint) (*entity.DbDisplayedCategory, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var item entity.DbDisplayedCategory
	if err := r.db.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateDisplayedCategory inserts a home-page entry.
func (r *GormRepository) CreateDisplayedCategory(ctx context.Context, item *entity.DbDisplayedCategory) error {
	if err := r.ready(); err != nil {
		return err
	}
	if item == nil || item.CategoryID == 0 {
		return fmt.Errorf("entry must reference a category")
	}
	return r.db.WithContext(ctx).Omit("Category").Create(item).Error
}

// UpdateDisplayedCategory moves an entry to a new position.
func (r *GormRepository) UpdateDisplayedCategory(ctx context.Context, id uint, position uint) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&entity.DbDisplayedCategory{}).Where("id = ?", id).Update("position", position).Error
}

// DeleteDisplayedCategory removes a home-page entry.
func (r *GormRepository) DeleteDisplayedCategory(ctx context.Context, id uint) error {
	if err := r.ready(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbDisplayedCategory{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
