package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/healthyrecipes/backend/internal/logger"
	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/types"
)

type RecipeService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(db *gorm.DB, log *zap.Logger) *RecipeService {
	return &RecipeService{
		db:  db,
		log: logger.Component(log, "recipes"),
		now: time.Now,
	}
}

// Save always inserts a new record, even for a recipe identical to one already saved
func (s *RecipeService) Save(ctx context.Context, userID uuid.UUID, recipe types.Recipe) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	if err := validateRecipe(recipe); err != nil {
		return uuid.Nil, err
	}
	if recipe.NutritionalInfo == nil {
		recipe.NutritionalInfo = map[string]string{}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate recipe id: %w", err)
	}

	saved := models.NewSavedRecipe(id, userID, recipe)
	saved.Embedding = RecipeEmbedding(recipe)
	saved.CreatedAt = s.now().UTC()
	saved.UpdatedAt = saved.CreatedAt

	if err := s.db.WithContext(ctx).Create(saved).Error; err != nil {
		return uuid.Nil, storeError("save recipe", err)
	}

	s.log.Info("recipe saved", zap.String("user_id", userID.String()), zap.String("recipe_id", id.String()))
	return id, nil
}

// Get returns one of the caller's saved recipes
func (s *RecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.SavedRecipe, error) {
	return s.owned(ctx, userID, id)
}

// Delete removes a saved recipe owned by userID.
// Ids the caller does not own yield ErrForbidden whether or not they exist.
func (s *RecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(rec)
	if res.Error != nil {
		return storeError("delete recipe", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	s.log.Info("recipe deleted", zap.String("user_id", userID.String()), zap.String("recipe_id", id.String()))
	return nil
}

// owned resolves id within the caller's records, including ones the caller already deleted
func (s *RecipeService) owned(ctx context.Context, userID, id uuid.UUID) (*models.SavedRecipe, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var rec models.SavedRecipe
	err := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND user_id = ?", id, userID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, storeError("load recipe", err)
	}
	if rec.DeletedAt.Valid {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// List returns the caller's saved recipes, most recent first
func (s *RecipeService) List(ctx context.Context, userID uuid.UUID) ([]models.SavedRecipe, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	recipes := []models.SavedRecipe{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recipes).Error; err != nil {
		return nil, storeError("list recipes", err)
	}
	return recipes, nil
}

// Search ranks the caller's recipes by embedding distance on postgres and filters by title elsewhere.
// An empty query behaves like List.
func (s *RecipeService) Search(ctx context.Context, userID uuid.UUID, query string) ([]models.SavedRecipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, userID)
	}
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if s.db.Dialector.Name() == "postgres" {
		vec := GenerateEmbedding(query)
		q = q.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
		})
	} else {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(title) LIKE ?", like).Order("created_at DESC").Order("id DESC")
	}

	recipes := []models.SavedRecipe{}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, storeError("search recipes", err)
	}
	return recipes, nil
}

func validateRecipe(r types.Recipe) error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return validationError("title", "is required")
	case len(r.Ingredients) == 0:
		return validationError("ingredients", "must not be empty")
	case len(r.Instructions) == 0:
		return validationError("instructions", "must not be empty")
	case r.Servings <= 0:
		return validationError("servings", "must be positive")
	case r.Calories < 0:
		return validationError("calories", "must not be negative")
	}
	switch r.Difficulty {
	case types.DifficultyEasy, types.DifficultyIntermediate, types.DifficultyAdvanced:
		return nil
	default:
		return validationError("difficulty", "must be Easy, Intermediate or Advanced")
	}
}
