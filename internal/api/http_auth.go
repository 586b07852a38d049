package api

import (
	"net/http"
	"strings"

	"storefront/internal/entity"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.accounts.Register(ctx, service.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err, "failed to register user")
		return
	}

	logrus.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, makeUserSummary(user))
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.logins.ResolveLogin(ctx, req.Login, req.Password)
	if err != nil {
		respondError(c, err, "failed to log in")
		return
	}

	pair, err := h.tokens.Issue(ctx, user)
	if err != nil {
		respondError(c, err, "failed to create session")
		return
	}

	c.JSON(http.StatusOK, entity.AuthLoginResponse{
		Access:  pair.Access.Token,
		Refresh: pair.Refresh.Token,
		User:    makeUserSummary(user),
	})
}

func (h *HTTPHandler) RefreshToken(c *gin.Context) {
	var req entity.TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}
	refresh := strings.TrimSpace(req.Refresh)
	if refresh == "" {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "Invalid input.", gin.H{"refresh": "This field is required."})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	access, err := h.tokens.Refresh(ctx, refresh)
	if err != nil {
		respondError(c, err, "failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, entity.TokenRefreshResponse{Access: access})
}

// Logout blacklists the submitted refresh token. It answers 200 whatever the
// token looks like; storage failures are only logged.
func (h *HTTPHandler) Logout(c *gin.Context) {
	var req entity.TokenRefreshRequest
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := requestContext(c)
	defer cancel()

	if refresh := strings.TrimSpace(req.Refresh); refresh != "" {
		if err := h.tokens.Revoke(ctx, refresh); err != nil {
			fields := logrus.Fields{}
			if user := CurrentUser(c); user != nil {
				fields["user_id"] = user.ID
			}
			logrus.WithError(err).WithFields(fields).Warn("failed to blacklist refresh token on logout")
		}
	}
	c.JSON(http.StatusOK, entity.DetailResponse{Detail: "Logged out successfully."})
}

func makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		DateJoined: user.CreatedAt,
	}
}
