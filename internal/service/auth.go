package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/healthyrecipes/backend/internal/logger"
	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/types"
)

const (
	tokenIssuer = "healthyrecipes"

	// passwordResetAudience keeps reset tokens and session tokens from standing in for each other
	passwordResetAudience = "password-reset"
	defaultResetTTL       = time.Hour
)

// AuthService is the identity provider: it owns credentials, issues session tokens and deletes accounts
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
	avatars   AvatarStore
	mailer    Mailer
	resetTTL  time.Duration
	validate  *validator.Validate
	log       *zap.Logger
	now       func() time.Time
}

var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, avatars AvatarStore, log *zap.Logger) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		avatars:   avatars,
		resetTTL:  defaultResetTTL,
		validate:  validator.New(),
		log:       logger.Component(log, "auth"),
		now:       time.Now,
	}
}

// WithPasswordReset enables the forgot-password flow. Reset links stay valid for ttl.
func (s *AuthService) WithPasswordReset(mailer Mailer, ttl time.Duration) *AuthService {
	s.mailer = mailer
	if ttl > 0 {
		s.resetTTL = ttl
	}
	return s
}

// Register creates the identity and its initial profile and returns a session token
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, storeError("check existing user", err)
	}
	if count > 0 {
		return nil, validationError("email", "is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
	}
	profile := models.Profile{
		UserID:      user.ID,
		Name:        user.Name,
		Age:         req.Age,
		Height:      strings.TrimSpace(deref(req.Height)),
		Weight:      strings.TrimSpace(deref(req.Weight)),
		HealthGoals: strings.TrimSpace(deref(req.HealthGoals)),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, storeError("create account", err)
	}

	s.log.Info("account registered", zap.String("user_id", user.ID.String()))
	return s.issue(user.ID)
}

func (s *AuthService) validateRegistration(req *types.RegisterRequest) error {
	if req == nil {
		return validationError("body", "is required")
	}
	if err := s.validate.Var(strings.TrimSpace(req.Name), "required,max=255"); err != nil {
		return validationError("name", "is required and at most 255 characters")
	}
	if err := s.validate.Var(strings.TrimSpace(req.Email), "required,email"); err != nil {
		return validationError("email", "must be a valid email address")
	}
	if err := s.validatePassword(req.Password); err != nil {
		return err
	}
	if req.Age != nil {
		if err := s.validate.Var(*req.Age, "min=13,max=120"); err != nil {
			return validationError("age", "must be between 13 and 120")
		}
	}
	return nil
}

// Login exchanges credentials for a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*types.AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	if err != nil {
		return nil, storeError("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	return s.issue(user.ID)
}

func (s *AuthService) issue(userID uuid.UUID) (*types.AuthResponse, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &types.AuthResponse{Token: token, UserID: userID.String()}, nil
}

// ParseToken checks signature, issuer and expiry without touching the store
func (s *AuthService) ParseToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if len(claims.Audience) > 0 || claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}
	return claims, nil
}

// ValidateToken parses the token and confirms its identity still exists, so deleted accounts lose their sessions
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", claims.UserID).Count(&count).Error; err != nil {
		return nil, storeError("check session identity", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
	}
	return claims, nil
}

func (s *AuthService) validatePassword(password string) error {
	if err := s.validate.Var(password, "min=6,max=72"); err != nil {
		return validationError("password", "must be between 6 and 72 characters")
	}
	return nil
}

// RequestPasswordReset mails a single-use reset link when the email belongs to an account.
// The result is the same whether or not the account exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if s.mailer == nil {
		return fmt.Errorf("password reset is not configured: %w", ErrStoreUnavailable)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return validationError("email", "must be a valid email address")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return storeError("load user", err)
	}

	token, err := s.issueReset(user)
	if err != nil {
		return err
	}

	log := s.log.With(zap.String("user_id", user.ID.String()))
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token, s.resetTTL); err != nil {
		// not surfaced, the caller must not learn that the account exists
		log.Error("failed to send password reset email", zap.Error(err))
		return nil
	}
	log.Info("password reset email sent")
	return nil
}

func (s *AuthService) issueReset(user models.User) (string, error) {
	now := s.now()
	claims := &types.ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{passwordResetAudience},
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
		},
		PasswordFingerprint: passwordFingerprint(user.PasswordHash),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return token, nil
}

// ResetPassword replaces the password of the account named by a reset token.
// The token stops working once the password changes.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	if err := s.validatePassword(newPassword); err != nil {
		return err
	}

	claims := &types.ResetClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(passwordResetAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: invalid reset token: %v", ErrUnauthenticated, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return fmt.Errorf("%w: invalid reset token subject", ErrUnauthenticated)
	}

	db := s.db.WithContext(ctx)
	var user models.User
	err = db.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
	}
	if err != nil {
		return storeError("load user", err)
	}
	if subtle.ConstantTimeCompare([]byte(claims.PasswordFingerprint), []byte(passwordFingerprint(user.PasswordHash))) != 1 {
		return fmt.Errorf("%w: reset token already used", ErrUnauthenticated)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// conditional on the old hash so only one of two concurrent resets with the same token applies
	res := db.Model(&models.User{}).
		Where("id = ? AND password_hash = ?", user.ID, user.PasswordHash).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return storeError("update password", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: reset token already used", ErrUnauthenticated)
	}

	s.log.Info("password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:16])
}

// DeleteAccount removes every saved recipe, then the profile, then the avatar, then the identity.
// Each step is its own statement. If the identity step fails, the identity survives without
// personal data and the call may be retried.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	db := s.db.WithContext(ctx)
	log := s.log.With(zap.String("user_id", userID.String()))

	res := db.Unscoped().Where("user_id = ?", userID).Delete(&models.SavedRecipe{})
	if res.Error != nil {
		return storeError("delete saved recipes", res.Error)
	}
	log.Info("deleted saved recipes", zap.Int64("count", res.RowsAffected))

	var profile models.Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return storeError("load profile", err)
	default:
		if err := db.Delete(&profile).Error; err != nil {
			return storeError("delete profile", err)
		}
		log.Info("deleted profile")
	}

	if profile.AvatarKey != "" && s.avatars != nil {
		if err := s.avatars.DeleteObject(ctx, profile.AvatarKey); err != nil {
			log.Warn("failed to delete avatar object", zap.String("key", profile.AvatarKey), zap.Error(err))
		}
	}

	if err := db.Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
		log.Error("identity deletion failed after personal data was removed", zap.Error(err))
		return storeError("delete identity", err)
	}

	log.Info("account deleted")
	return nil
}
