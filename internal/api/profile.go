package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthyrecipes/backend/internal/middleware"
	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/service"
	"github.com/healthyrecipes/backend/internal/types"
)

// maxAvatarForm bounds the multipart body so oversized uploads are cut before parsing
const maxAvatarForm = 6 << 20

type ProfileHandler struct {
	profileService service.IProfileService
}

func NewProfileHandler(profileService service.IProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PATCH("", h.UpdateProfile)
		profile.PUT("/avatar", h.UploadAvatar)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if errors.Is(err, service.ErrNotFound) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusNotFound, middleware.ErrorResponse{Error: "profile not found"})
		return
	}
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.response(c, profile))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "body", "invalid profile patch")
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.response(c, profile))
}

// UploadAvatar accepts a multipart "avatar" file. The content type is sniffed, not trusted from the client.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarForm)
	header, err := c.FormFile("avatar")
	if err != nil {
		middleware.BadRequest(c, "avatar", "a multipart file field named avatar is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		middleware.RespondError(c, err)
		return
	}
	sniff = sniff[:n]

	profile, err := h.profileService.UploadAvatar(c.Request.Context(), userID, service.AvatarUpload{
		ContentType: http.DetectContentType(sniff),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(sniff), file),
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.response(c, profile))
}

func (h *ProfileHandler) response(c *gin.Context, p *models.Profile) types.ProfileResponse {
	return types.ProfileResponse{
		UserID:       p.UserID,
		Name:         p.Name,
		Age:          p.Age,
		Height:       p.Height,
		Weight:       p.Weight,
		HealthGoals:  p.HealthGoals,
		Preferences:  nonNil(p.Preferences),
		Allergies:    nonNil(p.Allergies),
		Deficiencies: nonNil(p.Deficiencies),
		CuisineType:  p.CuisineType,
		SkillLevel:   p.SkillLevel,
		AvatarURL:    h.profileService.AvatarURL(c.Request.Context(), p),
		UpdatedAt:    p.UpdatedAt,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
