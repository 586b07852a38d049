package api

import (
	"net/http"

	"storefront/internal/entity"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) GetMyProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.profiles.GetOrCreateProfile(ctx, user)
	if err != nil {
		respondError(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, h.makeProfileResponse(profile))
}

// UpdateMyProfile handles PUT and PATCH alike: every profile field is
// optional, so a full update is a partial one that happens to send them all.
func (h *HTTPHandler) UpdateMyProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req entity.ProfileUpdateRequest
	if err := h.bindPayload(c, &req); err != nil {
		InvalidPayload(c, err)
		return
	}
	picture, err := h.readUpload(c, "profile_picture")
	if err != nil {
		respondError(c, err, "failed to read upload")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.profiles.UpdateProfile(ctx, user, req, picture)
	if err != nil {
		respondError(c, err, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, h.makeProfileResponse(profile))
}

func (h *HTTPHandler) GetProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.profiles.GetProfileBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, h.makeProfileResponse(profile))
}

func (h *HTTPHandler) makeProfileResponse(profile *entity.DbProfile) entity.ProfileResponse {
	resp := entity.ProfileResponse{
		User:           makeUserSummary(profile.User),
		Slug:           profile.Slug,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		ProfilePicture: h.optionalURL(profile.ProfilePicture),
		Gender:         profile.Gender,
		Address:        profile.Address,
		Phone:          profile.Phone,
		City:           profile.City,
		Area:           profile.Area,
		ZipCode:        profile.ZipCode,
		Bio:            profile.Bio,
		MedicalHistory: profile.MedicalHistory,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
	if profile.DateOfBirth != nil {
		dob := profile.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	return resp
}
