package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         int
		code           string
		message        string
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "BadRequest",
			status:         http.StatusBadRequest,
			code:           ErrCodeInvalidRequest,
			message:        "无效的请求",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrCodeInvalidRequest,
			expectedMsg:    "无效的请求",
		},
		{
			name:           "NotFound",
			status:         http.StatusNotFound,
			code:           ErrCodeNotFound,
			message:        "资源不存在",
			expectedStatus: http.StatusNotFound,
			expectedCode:   ErrCodeNotFound,
			expectedMsg:    "资源不存在",
		},
		{
			name:           "InternalError",
			status:         http.StatusInternalServerError,
			code:           ErrCodeInternalError,
			message:        "服务器内部错误",
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   ErrCodeInternalError,
			expectedMsg:    "服务器内部错误",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponse(c, tt.status, tt.code, tt.message)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}

			if response.Message != tt.expectedMsg {
				t.Errorf("expected message %s, got %s", tt.expectedMsg, response.Message)
			}
			if !c.IsAborted() {
				t.Error("expected context to be aborted")
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{"invalid credentials", fmt.Errorf("login: %w", service.ErrInvalidCredentials), http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials."},
		{"token", &service.TokenError{Reason: service.TokenExpired}, http.StatusUnauthorized, ErrCodeTokenInvalid, msgTokenInvalid},
		{"not found", fmt.Errorf("product %q: %w", "x", service.ErrNotFound), http.StatusNotFound, ErrCodeNotFound, "Not found."},
		{"validation", &service.ValidationError{Message: "Login and password required."}, http.StatusBadRequest, ErrCodeValidation, "Login and password required."},
		{"wrapped validation", fmt.Errorf("register: %w", &service.ValidationError{Message: "Invalid input.", Fields: map[string]string{"email": "taken"}}), http.StatusBadRequest, ErrCodeValidation, "Invalid input."},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternalError, "failed to do thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, "failed to do thing")

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.expectedCode || response.Message != tt.expectedMsg {
				t.Errorf("got %s %q, want %s %q", response.Code, response.Message, tt.expectedCode, tt.expectedMsg)
			}
			if strings.Contains(w.Body.String(), "disk on fire") {
				t.Error("internal causes must not leak")
			}
		})
	}
}

func TestRespondErrorFieldDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondError(c, &service.ValidationError{Message: "Invalid input.", Fields: map[string]string{"username": "taken"}}, "x")

	var response struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Details["username"] != "taken" {
		t.Errorf("expected username detail, got %v", response.Details)
	}
}

func TestInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type payload struct {
		Username string  `json:"username" binding:"required"`
		Email    string  `json:"email" binding:"required,email"`
		MinPrice float64 `json:"min_price" binding:"gte=0"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","min_price":-1}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var p payload
	err := c.ShouldBindJSON(&p)
	if err == nil {
		t.Fatal("expected binding error")
	}
	InvalidPayload(c, err)

	var response struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if w.Code != http.StatusBadRequest || response.Code != ErrCodeInvalidRequest {
		t.Fatalf("unexpected response %d %s", w.Code, response.Code)
	}
	want := map[string]string{
		"username":  "This field is required.",
		"email":     "Enter a valid email address.",
		"min_price": "Ensure this value is greater than or equal to 0.",
	}
	for field, msg := range want {
		if response.Details[field] != msg {
			t.Errorf("details[%s] = %q, want %q", field, response.Details[field], msg)
		}
	}
}

func TestShortcutFunctions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
	}{
		{"Unauthorized", func(c *gin.Context) { Unauthorized(c, "需要登录") }, http.StatusUnauthorized},
		{"Forbidden", func(c *gin.Context) { Forbidden(c, "没有权限") }, http.StatusForbidden},
		{"InternalError", func(c *gin.Context) { InternalError(c, "服务器错误") }, http.StatusInternalServerError},
		{"ServiceUnavailable", func(c *gin.Context) { ServiceUnavailable(c, "服务不可用") }, http.StatusServiceUnavailable},
		{"InvalidPayload", func(c *gin.Context) { InvalidPayload(c, errors.New("EOF")) }, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tt.call(c)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}
