package api

import (
	"errors"
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 认证错误码
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgNotAuthenticated   = "Authentication credentials were not provided."
	msgPermissionDenied   = "You do not have permission to perform this action."
	msgTokenInvalid       = "Token is invalid or expired."
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.AbortWithStatusJSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// InvalidPayload 请求体无法解析或未通过校验
func InvalidPayload(c *gin.Context, err error) {
	fields := bindErrorFields(err)
	if len(fields) == 0 {
		ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
		return
	}
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload", fields)
}

// respondError maps a service error onto the error envelope. Causes of 500s
// are logged and never returned to the client.
func respondError(c *gin.Context, err error, action string) {
	var tokenErr *service.TokenError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, msgInvalidCredentials)
	case errors.As(err, &tokenErr):
		ErrorResponseWithDetails(c, http.StatusUnauthorized, ErrCodeTokenInvalid, msgTokenInvalid, gin.H{"reason": tokenErr.Reason})
	case errors.Is(err, service.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "Not found.")
	default:
		if vErr, ok := service.IsValidation(err); ok {
			if len(vErr.Fields) > 0 {
				ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, vErr.Message, vErr.Fields)
			} else {
				ErrorResponse(c, http.StatusBadRequest, ErrCodeValidation, vErr.Message)
			}
			return
		}
		logrus.WithError(err).WithField("path", c.FullPath()).Error(action)
		InternalError(c, action)
	}
}
