package api

import (
	"context"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	revocations       cache.RevocationCache
	storagePublicBase string
	maxUploadBytes    int64

	// 服务层
	identities *service.IdentityService
	accounts   *service.AccountService
	logins     *service.LoginResolver
	tokens     *service.TokenService
	profiles   *service.ProfileService
	catalog    *service.CatalogService
}

// NewHTTPHandler 创建 HTTP 处理器实例。revocations 可以为 nil。
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, revocations cache.RevocationCache) (*HTTPHandler, error) {
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		return nil, err
	}

	identities := service.NewIdentityService(repo)
	handler := &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		revocations:       revocations,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		maxUploadBytes:    cfg.MaxUploadBytes(),
		identities:        identities,
		accounts:          service.NewAccountService(repo, identities),
		logins:            service.NewLoginResolver(identities),
		tokens:            service.NewTokenService(repo, authManager, revocations),
		profiles:          service.NewProfileService(repo, store),
		catalog:           service.NewCatalogService(repo, store),
	}
	return handler, nil
}

// Identities exposes the identity service for startup seeding.
func (h *HTTPHandler) Identities() *service.IdentityService {
	return h.identities
}

// Tokens exposes the token service for startup maintenance.
func (h *HTTPHandler) Tokens() *service.TokenService {
	return h.tokens
}

// RegisterRoutes 注册 /api 下的全部路由
func (h *HTTPHandler) RegisterRoutes(apiGroup *gin.RouterGroup) {
	accounts := apiGroup.Group("/accounts")
	accounts.POST("/register", h.Register)
	accounts.POST("/login", h.Login)
	accounts.POST("/token/refresh", h.RefreshToken)
	accounts.POST("/logout", h.AuthMiddleware(), h.Logout)
	accounts.GET("/profile/me", h.AuthMiddleware(), h.GetMyProfile)
	accounts.PUT("/profile/me", h.AuthMiddleware(), h.UpdateMyProfile)
	accounts.PATCH("/profile/me", h.AuthMiddleware(), h.UpdateMyProfile)
	accounts.GET("/profile/:slug", h.GetProfile)

	catalog := apiGroup.Group("/catalog")
	catalog.Use(h.OptionalAuth(), h.StaffOrReadOnly())

	catalog.GET("/categories", h.ListCategories)
	catalog.POST("/categories", h.CreateCategory)
	catalog.GET("/categories/:slug", h.GetCategory)
	catalog.PUT("/categories/:slug", h.UpdateCategory)
	catalog.PATCH("/categories/:slug", h.UpdateCategory)
	catalog.DELETE("/categories/:slug", h.DeleteCategory)

	catalog.GET("/products", h.ListProducts)
	catalog.POST("/products", h.CreateProduct)
	catalog.GET("/products/:slug", h.GetProduct)
	catalog.PUT("/products/:slug", h.UpdateProduct)
	catalog.PATCH("/products/:slug", h.UpdateProduct)
	catalog.DELETE("/products/:slug", h.DeleteProduct)
	catalog.POST("/products/:slug/images", h.AddProductImage)
	catalog.DELETE("/products/:slug/images/:image_id", h.DeleteProductImage)

	catalog.GET("/home-categories", h.ListHomeCategories)
	catalog.POST("/home-categories", h.CreateHomeCategory)
	catalog.PATCH("/home-categories/:id", h.UpdateHomeCategory)
	catalog.DELETE("/home-categories/:id", h.DeleteHomeCategory)
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
