package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/internal/entity"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/gin-gonic/gin"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func newTestServer(t *testing.T) (*gin.Engine, *HTTPHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		DBType:               model.DBTypeSQLite,
		DBPath:               fmt.Sprintf("file:api_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		JWTSecret:            "test-secret",
		JWTIssuer:            "storefront-test",
		StoragePublicBaseURL: "/files",
		MaxUploadMB:          1,
	}
	repo, err := model.InitRepository(&cfg)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	handler, err := NewHTTPHandler(cfg, repo, store, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	r := gin.New()
	r.GET("/health", handler.Health)
	r.GET("/health/ready", handler.Ready)
	handler.RegisterRoutes(r.Group("/api"))
	return r, handler
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r http.Handler, method, path string, fields map[string]string, fileField string, file []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "upload.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func login(t *testing.T, r http.Handler, loginName, password string) entity.AuthLoginResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/accounts/login", entity.AuthLoginRequest{Login: loginName, Password: password}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", loginName, w.Code, w.Body.String())
	}
	return decode[entity.AuthLoginResponse](t, w)
}

func TestAccountFlow(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/accounts/register", entity.AuthRegisterRequest{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	summary := decode[entity.UserSummary](t, w)
	if summary.Username != "alice" || summary.Role != entity.RoleCustomer || summary.ID == 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if strings.Contains(w.Body.String(), "secret1") || strings.Contains(w.Body.String(), "password") {
		t.Fatal("registration response must not echo the password")
	}

	w = doJSON(t, r, http.MethodPost, "/api/accounts/register", entity.AuthRegisterRequest{
		Username: "ALICE", Email: "other@x.com", Password: "secret1",
	}, "")
	if w.Code != http.StatusBadRequest || decode[APIError](t, w).Code != ErrCodeValidation {
		t.Fatalf("duplicate register: %d %s", w.Code, w.Body.String())
	}

	session := login(t, r, "ALICE@x.com", "secret1")
	if session.Access == "" || session.Refresh == "" || session.User.ID != summary.ID {
		t.Fatalf("unexpected login response: %+v", session)
	}

	wrong := doJSON(t, r, http.MethodPost, "/api/accounts/login", entity.AuthLoginRequest{Login: "alice", Password: "wrong"}, "")
	unknown := doJSON(t, r, http.MethodPost, "/api/accounts/login", entity.AuthLoginRequest{Login: "ghost", Password: "wrong"}, "")
	if wrong.Code != http.StatusUnauthorized || wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("login failures must be identical: %d %s / %d %s", wrong.Code, wrong.Body, unknown.Code, unknown.Body)
	}
	if decode[APIError](t, wrong).Message != "Invalid credentials." {
		t.Fatalf("unexpected failure body: %s", wrong.Body)
	}

	empty := doJSON(t, r, http.MethodPost, "/api/accounts/login", entity.AuthLoginRequest{}, "")
	if empty.Code != http.StatusBadRequest {
		t.Fatalf("empty login: %d", empty.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/accounts/token/refresh", entity.TokenRefreshRequest{Refresh: session.Refresh}, "")
	if w.Code != http.StatusOK || decode[entity.TokenRefreshResponse](t, w).Access == "" {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/accounts/profile/me", nil, session.Access)
	if w.Code != http.StatusOK || decode[entity.ProfileResponse](t, w).Slug != "alice" {
		t.Fatalf("profile me: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPatch, "/api/accounts/profile/me", map[string]string{"city": "Dhaka"}, session.Access)
	if w.Code != http.StatusOK || decode[entity.ProfileResponse](t, w).City != "Dhaka" {
		t.Fatalf("patch profile: %d %s", w.Code, w.Body.String())
	}

	w = doMultipart(t, r, http.MethodPatch, "/api/accounts/profile/me", map[string]string{"bio": "hi"}, "profile_picture", pngBytes, session.Access)
	if w.Code != http.StatusOK {
		t.Fatalf("multipart profile: %d %s", w.Code, w.Body.String())
	}
	profile := decode[entity.ProfileResponse](t, w)
	if profile.ProfilePicture == nil || !strings.HasPrefix(*profile.ProfilePicture, "/files/profile_pics/") || profile.Bio != "hi" {
		t.Fatalf("unexpected multipart result: %+v", profile)
	}

	w = doJSON(t, r, http.MethodGet, "/api/accounts/profile/alice", nil, "")
	if w.Code != http.StatusOK || decode[entity.ProfileResponse](t, w).User.Username != "alice" {
		t.Fatalf("public profile: %d %s", w.Code, w.Body.String())
	}
	if w = doJSON(t, r, http.MethodGet, "/api/accounts/profile/nobody", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing profile: %d", w.Code)
	}

	if w = doJSON(t, r, http.MethodPost, "/api/accounts/logout", entity.TokenRefreshRequest{Refresh: session.Refresh}, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous logout: %d", w.Code)
	}
	for _, refresh := range []string{session.Refresh, session.Refresh, "garbage"} {
		w = doJSON(t, r, http.MethodPost, "/api/accounts/logout", entity.TokenRefreshRequest{Refresh: refresh}, session.Access)
		if w.Code != http.StatusOK || decode[entity.DetailResponse](t, w).Detail != "Logged out successfully." {
			t.Fatalf("logout: %d %s", w.Code, w.Body.String())
		}
	}

	w = doJSON(t, r, http.MethodPost, "/api/accounts/token/refresh", entity.TokenRefreshRequest{Refresh: session.Refresh}, "")
	if w.Code != http.StatusUnauthorized || decode[APIError](t, w).Code != ErrCodeTokenInvalid {
		t.Fatalf("refresh after logout: %d %s", w.Code, w.Body.String())
	}
}

func TestCatalogGate(t *testing.T) {
	r, handler := newTestServer(t)
	ctx := context.Background()

	if _, err := handler.Identities().CreatePrivilegedIdentity(ctx, service.IdentityParams{
		Username: "root", Email: "root@x.com", Password: "rootpass",
	}, service.PrivilegeOverrides{}); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if _, err := handler.Identities().CreateIdentity(ctx, service.IdentityParams{
		Username: "bob", Email: "bob@x.com", Password: "bobpass",
	}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	staff := login(t, r, "root", "rootpass").Access
	customer := login(t, r, "bob", "bobpass").Access

	body := map[string]any{"name": "Pain Relief"}
	tests := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{"anonymous", "", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"customer", customer, http.StatusForbidden, ErrCodeForbidden},
		{"bad token", "not-a-jwt", http.StatusUnauthorized, ErrCodeTokenInvalid},
		{"staff", staff, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/catalog/categories", body, tt.token)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.code != "" && decode[APIError](t, w).Code != tt.code {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}

	w := doJSON(t, r, http.MethodGet, "/api/catalog/categories?search=pain", nil, "")
	list := decode[entity.CategoryListResponse](t, w)
	if w.Code != http.StatusOK || len(list.Categories) != 1 || list.Categories[0].Slug != "pain-relief" {
		t.Fatalf("public list: %d %s", w.Code, w.Body.String())
	}
	if list.Meta == nil || list.Meta.Total != 1 {
		t.Fatalf("unexpected meta: %+v", list.Meta)
	}

	w = doJSON(t, r, http.MethodPut, "/api/catalog/categories/pain-relief", map[string]any{"description": "x"}, staff)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("PUT without name: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPatch, "/api/catalog/categories/pain-relief", map[string]any{"is_active": false}, staff)
	if w.Code != http.StatusOK {
		t.Fatalf("PATCH: %d %s", w.Code, w.Body.String())
	}
	if w = doJSON(t, r, http.MethodGet, "/api/catalog/categories/pain-relief", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("inactive category visible to anonymous: %d", w.Code)
	}
	if w = doJSON(t, r, http.MethodGet, "/api/catalog/categories/pain-relief", nil, staff); w.Code != http.StatusOK {
		t.Fatalf("inactive category hidden from staff: %d", w.Code)
	}
}

func TestProductEndpoints(t *testing.T) {
	r, handler := newTestServer(t)
	ctx := context.Background()

	if _, err := handler.Identities().CreatePrivilegedIdentity(ctx, service.IdentityParams{
		Username: "root", Email: "root@x.com", Password: "rootpass",
	}, service.PrivilegeOverrides{}); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	staff := login(t, r, "root", "rootpass").Access

	if w := doJSON(t, r, http.MethodPost, "/api/catalog/categories", map[string]any{"name": "Vitamins"}, staff); w.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", w.Code, w.Body.String())
	}

	w := doMultipart(t, r, http.MethodPost, "/api/catalog/products", map[string]string{
		"name":     "Vitamin C",
		"category": "vitamins",
		"price":    "120.50",
		"stock":    "3",
	}, "image", pngBytes, staff)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", w.Code, w.Body.String())
	}
	product := decode[entity.ProductResponse](t, w)
	if product.Slug != "vitamin-c" || product.Category != "vitamins" || product.Price != 120.5 || product.Unit != "pcs" {
		t.Fatalf("unexpected product: %+v", product)
	}
	if product.Image == nil || !strings.HasPrefix(*product.Image, "/files/products/") {
		t.Fatalf("unexpected image url: %v", product.Image)
	}

	w = doMultipart(t, r, http.MethodPost, "/api/catalog/products/vitamin-c/images", nil, "image", pngBytes, staff)
	if w.Code != http.StatusCreated {
		t.Fatalf("add image: %d %s", w.Code, w.Body.String())
	}
	extra := decode[entity.ProductImageResponse](t, w)

	w = doMultipart(t, r, http.MethodPost, "/api/catalog/products/vitamin-c/images", nil, "image", []byte("not an image"), staff)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-image upload: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/catalog/products?category=vitamins&min_price=100", nil, "")
	list := decode[entity.ProductListResponse](t, w)
	if w.Code != http.StatusOK || len(list.Products) != 1 || len(list.Products[0].Images) != 1 {
		t.Fatalf("list products: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/catalog/products/vitamin-c/images/%d", extra.ID), nil, staff)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete image: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/catalog/home-categories", map[string]any{"category": "vitamins", "position": 1}, staff)
	if w.Code != http.StatusCreated {
		t.Fatalf("create home category: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/catalog/home-categories", nil, "")
	home := decode[entity.DisplayedCategoryListResponse](t, w)
	if len(home.Items) != 1 || home.Items[0].Category.Slug != "vitamins" {
		t.Fatalf("home categories: %s", w.Body.String())
	}

	if w = doJSON(t, r, http.MethodDelete, "/api/catalog/categories/vitamins", nil, staff); w.Code != http.StatusNoContent {
		t.Fatalf("delete category: %d %s", w.Code, w.Body.String())
	}
	if w = doJSON(t, r, http.MethodGet, "/api/catalog/products/vitamin-c", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("product must be gone with its category: %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready"} {
		w := doJSON(t, r, http.MethodGet, path, nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
	}
}
