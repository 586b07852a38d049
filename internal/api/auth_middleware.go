package api

import (
	"strings"

	"storefront/internal/auth"
	"storefront/internal/entity"
	"storefront/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	currentUserContextKey = "current-user"
)

// AuthMiddleware JWT 认证中间件，要求有效的 access token
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			Unauthorized(c, msgNotAuthenticated)
			return
		}
		if !ok {
			Unauthorized(c, "Authorization header must be of the form \"Bearer <token>\".")
			return
		}
		if !h.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth 在携带 token 时进行认证，未携带时以匿名身份继续。
// 携带了无效 token 的请求仍然返回 401。
func (h *HTTPHandler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if !ok {
			Unauthorized(c, "Authorization header must be of the form \"Bearer <token>\".")
			return
		}
		if !h.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// StaffOrReadOnly lets safe methods through for everyone and other methods
// only for staff. Anonymous writers get 401, authenticated non-staff get 403.
func (h *HTTPHandler) StaffOrReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if auth.AuthorizeWrite(principal, auth.IsSafeMethod(c.Request.Method)) {
			c.Next()
			return
		}

		if principal == nil {
			metrics.AuthorizationDeniedTotal.WithLabelValues("anonymous").Inc()
			Unauthorized(c, msgNotAuthenticated)
			return
		}
		metrics.AuthorizationDeniedTotal.WithLabelValues("forbidden").Inc()
		logrus.WithFields(logrus.Fields{
			"user_id": principal.UserID,
			"method":  c.Request.Method,
			"path":    c.FullPath(),
		}).Info("write denied for non-staff user")
		Forbidden(c, msgPermissionDenied)
	}
}

func (h *HTTPHandler) authenticate(c *gin.Context, token string) bool {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.tokens.Validate(ctx, token)
	if err != nil {
		respondError(c, err, "failed to validate token")
		return false
	}
	c.Set(currentUserContextKey, user)
	return true
}

// bearerToken extracts the token from the Authorization header. present is
// false when no header was sent; ok is false when it is malformed.
func bearerToken(c *gin.Context) (token string, present bool, ok bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true, false
	}
	token = strings.TrimSpace(parts[1])
	return token, true, token != ""
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *entity.DbUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*entity.DbUser)
	if !ok {
		return nil
	}
	return user
}

// CurrentPrincipal returns the authenticated actor, or nil for anonymous requests.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	return &auth.Principal{UserID: user.ID, Role: user.Role}
}

func requireUser(c *gin.Context) (*entity.DbUser, bool) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, msgNotAuthenticated)
		return nil, false
	}
	return user, true
}
