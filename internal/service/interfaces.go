package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/types"
)

// IAuthService issues and validates session tokens and owns the identity lifecycle
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*types.AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// IProfileService reads and merge-patches preference profiles
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, upload AvatarUpload) (*models.Profile, error)
	AvatarURL(ctx context.Context, profile *models.Profile) string
}

// IRecipeService persists generated recipes for their owner
type IRecipeService interface {
	Save(ctx context.Context, userID uuid.UUID, recipe types.Recipe) (uuid.UUID, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRecipe, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.SavedRecipe, error)
	Search(ctx context.Context, userID uuid.UUID, query string) ([]models.SavedRecipe, error)
}

// IRecipeGenerator produces a Recipe for every request
type IRecipeGenerator interface {
	Generate(ctx context.Context, req types.GenerationRequest) types.Recipe
}

// CompletionProvider is the external text generator
type CompletionProvider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AvatarStore holds profile pictures outside the record store
type AvatarStore interface {
	PutObject(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error
	DeleteObject(ctx context.Context, objectKey string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// Mailer delivers account emails
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, to, name, token string, validFor time.Duration) error
}
