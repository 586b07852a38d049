package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/api"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}
	if repo == nil {
		logrus.Error("no database configured, set DBType")
		return
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	var revocations cache.RevocationCache
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client, err := cache.Connect(context.Background(), cache.Config{
			Addr:     addr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, token revocations are checked in the database only")
		} else {
			redisCache := cache.NewRedisRevocationCache(client)
			defer redisCache.Close()
			revocations = redisCache
		}
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, revocations)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := model.SeedSuperuser(startupCtx, repo, httpHandler.Identities(), cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed superuser")
	}
	if purged, err := httpHandler.Tokens().PurgeExpired(startupCtx); err != nil {
		logrus.WithError(err).Warn("failed to purge expired tokens")
	} else if purged > 0 {
		logrus.WithField("rows", purged).Info("purged expired tokens")
	}
	cancel()

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	r.GET("/health", httpHandler.Health)
	r.GET("/health/ready", httpHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpHandler.RegisterRoutes(r.Group("/api"))

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:              serverHost,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
