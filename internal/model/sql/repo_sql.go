package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/entity"

	"gorm.io/gorm"
)

var errNotInitialised = errors.New("repository not initialised")

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ready() error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	return nil
}

// Ping checks that the database answers.
func (r *GormRepository) Ping(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// calculatePagination calculates pagination metrics
func (r *GormRepository) calculatePagination(totalCount int64, params entity.BaseParams) *entity.Meta {
	params.Normalize()
	return &entity.Meta{
		Total:    totalCount,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
}

// paginate counts the filtered rows and loads the requested page into dest.
// scopes only apply to the page query, so preloads stay out of the count.
func (r *GormRepository) paginate(query *gorm.DB, params entity.BaseParams, order string, dest interface{}, scopes ...func(*gorm.DB) *gorm.DB) (*entity.Meta, error) {
	params.Normalize()
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := query.Scopes(scopes...).Order(order).Offset(params.Offset()).Limit(int(params.PageSize)).Find(dest).Error; err != nil {
		return nil, err
	}
	return r.calculatePagination(total, params), nil
}

// exists reports whether any row of model matches column = value.
func (r *GormRepository) exists(db *gorm.DB, model interface{}, column, value string) (bool, error) {
	var count int64
	if err := db.Model(model).Where(fmt.Sprintf("%s = ?", column), value).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func likePattern(keyword string) string {
	return "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
}
