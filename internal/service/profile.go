package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/healthyrecipes/backend/internal/logger"
	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/types"
)

const (
	maxAvatarBytes   = 5 << 20
	avatarURLExpires = 15 * time.Minute
)

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarUpload is a profile picture received from the client
type AvatarUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

type ProfileService struct {
	db       *gorm.DB
	avatars  AvatarStore
	validate *validator.Validate
	log      *zap.Logger
}

var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a profile service. avatars may be nil when object storage is not configured.
func NewProfileService(db *gorm.DB, avatars AvatarStore, log *zap.Logger) *ProfileService {
	return &ProfileService{
		db:       db,
		avatars:  avatars,
		validate: validator.New(),
		log:      logger.Component(log, "profile"),
	}
}

// GetProfile returns ErrNotFound when the user has no profile row yet
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, storeError("get profile", err)
	}
	return &profile, nil
}

// UpdateProfile merges the non-nil fields of req into the stored profile, creating it if needed
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if req == nil {
		req = &types.UpdateProfileRequest{}
	}
	if err := s.validatePatch(req); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		profile = &models.Profile{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	applyPatch(profile, req)

	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, storeError("save profile", err)
	}

	s.log.Debug("profile updated", zap.String("user_id", userID.String()))
	return profile, nil
}

func (s *ProfileService) validatePatch(req *types.UpdateProfileRequest) error {
	if req.Age != nil {
		if err := s.validate.Var(*req.Age, "min=13,max=120"); err != nil {
			return validationError("age", "must be between 13 and 120")
		}
	}
	if req.Name != nil {
		if err := s.validate.Var(*req.Name, "max=255"); err != nil {
			return validationError("name", "must be at most 255 characters")
		}
	}
	if req.SkillLevel != nil {
		if err := s.validateEnum(*req.SkillLevel, skillOptions); err != nil {
			return validationError("skill_level", "must be one of %s", strings.Join(skillOptions, ", "))
		}
	}
	if req.CuisineType != nil {
		if err := s.validateEnum(*req.CuisineType, cuisineOptions); err != nil {
			return validationError("cuisine_type", "must be one of %s", strings.Join(cuisineOptions, ", "))
		}
	}
	lists := []struct {
		field string
		items *[]string
	}{
		{"preferences", req.Preferences},
		{"allergies", req.Allergies},
		{"deficiencies", req.Deficiencies},
	}
	for _, l := range lists {
		if l.items == nil {
			continue
		}
		if err := s.validate.Var(*l.items, "max=50,dive,max=100"); err != nil {
			return validationError(l.field, "at most 50 entries of up to 100 characters")
		}
	}
	return nil
}

// validateEnum accepts an empty value (clearing the field) or a case-insensitive member of allowed
func (s *ProfileService) validateEnum(value string, allowed []string) error {
	return s.validate.Var(normalizeEnum(value), "omitempty,oneof="+strings.Join(allowed, " "))
}

func normalizeEnum(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func applyPatch(p *models.Profile, req *types.UpdateProfileRequest) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		age := *req.Age
		p.Age = &age
	}
	if req.Height != nil {
		p.Height = strings.TrimSpace(*req.Height)
	}
	if req.Weight != nil {
		p.Weight = strings.TrimSpace(*req.Weight)
	}
	if req.HealthGoals != nil {
		p.HealthGoals = strings.TrimSpace(*req.HealthGoals)
	}
	if req.Preferences != nil {
		p.Preferences = cleanList(*req.Preferences, false)
	}
	if req.Allergies != nil {
		p.Allergies = cleanList(*req.Allergies, true)
	}
	if req.Deficiencies != nil {
		p.Deficiencies = cleanList(*req.Deficiencies, true)
	}
	if req.CuisineType != nil {
		p.CuisineType = normalizeEnum(*req.CuisineType)
	}
	if req.SkillLevel != nil {
		p.SkillLevel = normalizeEnum(*req.SkillLevel)
	}
}

// cleanList trims entries and drops blanks. With dedup, later case-sensitive duplicates are dropped too.
func cleanList(items []string, dedup bool) models.JSONBStringArray {
	out := make(models.JSONBStringArray, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if dedup {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

// UploadAvatar stores a new profile picture and replaces the previous one
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, upload AvatarUpload) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if s.avatars == nil {
		return nil, fmt.Errorf("avatar storage is not configured: %w", ErrStoreUnavailable)
	}

	ext, ok := allowedAvatarTypes[upload.ContentType]
	if !ok {
		return nil, validationError("avatar", "content type %q is not supported", upload.ContentType)
	}
	if upload.Size <= 0 || upload.Size > maxAvatarBytes {
		return nil, validationError("avatar", "must be between 1 byte and %d bytes", maxAvatarBytes)
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := path.Join("avatars", userID.String(), uuid.NewString()+ext)
	if err := s.avatars.PutObject(ctx, key, upload.ContentType, upload.Body, upload.Size); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w: %w", ErrStoreUnavailable, err)
	}

	previous := profile.AvatarKey
	profile.AvatarKey = key
	if err := s.db.WithContext(ctx).Model(profile).Update("avatar_key", key).Error; err != nil {
		return nil, storeError("save avatar key", err)
	}

	if previous != "" {
		if err := s.avatars.DeleteObject(ctx, previous); err != nil {
			s.log.Warn("failed to delete previous avatar", zap.String("key", previous), zap.Error(err))
		}
	}
	return profile, nil
}

// AvatarURL presigns the profile's avatar. It returns "" when there is nothing to show.
func (s *ProfileService) AvatarURL(ctx context.Context, profile *models.Profile) string {
	if s.avatars == nil || profile == nil || profile.AvatarKey == "" {
		return ""
	}
	url, err := s.avatars.GeneratePresignedURL(ctx, profile.AvatarKey, avatarURLExpires)
	if err != nil {
		s.log.Warn("failed to presign avatar", zap.String("key", profile.AvatarKey), zap.Error(err))
		return ""
	}
	return url
}
