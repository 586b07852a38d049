package model

import (
	"context"
	"time"

	"storefront/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	Ping(ctx context.Context) error

	// 用户与资料
	CreateUser(ctx context.Context, user *entity.DbUser) error
	CreateUserWithProfile(ctx context.Context, user *entity.DbUser, profile *entity.DbProfile) error
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	CountUsers(ctx context.Context) (int64, error)

	CreateProfile(ctx context.Context, profile *entity.DbProfile) error
	GetProfileByUserID(ctx context.Context, userID uint) (*entity.DbProfile, error)
	GetProfileBySlug(ctx context.Context, slug string) (*entity.DbProfile, error)
	UpdateProfile(ctx context.Context, userID uint, updates entity.ProfileUpdates) error
	ProfileSlugExists(ctx context.Context, slug string) (bool, error)

	// 令牌
	CreateOutstandingToken(ctx context.Context, token *entity.DbOutstandingToken) error
	BlacklistToken(ctx context.Context, token *entity.DbBlacklistedToken) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error)

	// 分类
	ListCategories(ctx context.Context, params *entity.CategoryQuery) ([]entity.DbCategory, *entity.Meta, error)
	GetCategoryBySlug(ctx context.Context, slug string, includeInactive bool) (*entity.DbCategory, error)
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	CategoryNameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	CreateCategory(ctx context.Context, category *entity.DbCategory) error
	UpdateCategory(ctx context.Context, id uint, updates entity.CategoryUpdates) error
	DeleteCategory(ctx context.Context, id uint) ([]string, error)

	// 商品
	ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error)
	GetProductBySlug(ctx context.Context, slug string, includeInactive bool) (*entity.DbProduct, error)
	ProductSlugExists(ctx context.Context, slug string) (bool, error)
	CreateProduct(ctx context.Context, product *entity.DbProduct) error
	UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error
	DeleteProduct(ctx context.Context, id uint) ([]string, error)
	AddProductImage(ctx context.Context, image *entity.DbProductImage) error
	GetProductImage(ctx context.Context, productID, imageID uint) (*entity.DbProductImage, error)
	DeleteProductImage(ctx context.Context, productID, imageID uint) error

	// 首页分类
	ListDisplayedCategories(ctx context.Context) ([]entity.DbDisplayedCategory, error)
	GetDisplayedCategory(ctx context.Context, id uint) (*entity.DbDisplayedCategory, error)
	CreateDisplayedCategory(ctx context.Context, item *entity.DbDisplayedCategory) error
	UpdateDisplayedCategory(ctx context.Context, id uint, position uint) error
	DeleteDisplayedCategory(ctx context.Context, id uint) error
}
