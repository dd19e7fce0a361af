package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/healthyrecipes/backend/internal/types"
)

// SavedRecipe is a generated Recipe persisted for its owner
type SavedRecipe struct {
	ID              uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description"`
	PrepTime        string           `gorm:"size:100" json:"prep_time"`
	Servings        int              `gorm:"not null" json:"servings"`
	Calories        int              `gorm:"not null" json:"calories"`
	Difficulty      string           `gorm:"size:20;not null" json:"difficulty"`
	Ingredients     JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions    JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	NutritionalInfo JSONBStringMap   `gorm:"type:jsonb;not null;default:'{}'" json:"nutritional_info"`
	TutorialURL     string           `gorm:"type:text" json:"tutorial_url"`
	Embedding       pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

// NewSavedRecipe copies every field of r so later changes to r's slices or map cannot leak in.
func NewSavedRecipe(id, userID uuid.UUID, r types.Recipe) *SavedRecipe {
	nutrients := make(JSONBStringMap, len(r.NutritionalInfo))
	for k, v := range r.NutritionalInfo {
		nutrients[k] = v
	}
	return &SavedRecipe{
		ID:              id,
		UserID:          userID,
		Title:           r.Title,
		Description:     r.Description,
		PrepTime:        r.PrepTime,
		Servings:        r.Servings,
		Calories:        r.Calories,
		Difficulty:      r.Difficulty,
		Ingredients:     append(JSONBStringArray{}, r.Ingredients...),
		Instructions:    append(JSONBStringArray{}, r.Instructions...),
		NutritionalInfo: nutrients,
		TutorialURL:     r.TutorialURL,
	}
}

// Recipe returns the stored value object
func (s *SavedRecipe) Recipe() types.Recipe {
	nutrients := make(map[string]string, len(s.NutritionalInfo))
	for k, v := range s.NutritionalInfo {
		nutrients[k] = v
	}
	return types.Recipe{
		Title:           s.Title,
		Description:     s.Description,
		PrepTime:        s.PrepTime,
		Servings:        s.Servings,
		Calories:        s.Calories,
		Difficulty:      s.Difficulty,
		Ingredients:     append([]string{}, s.Ingredients...),
		Instructions:    append([]string{}, s.Instructions...),
		NutritionalInfo: nutrients,
		TutorialURL:     s.TutorialURL,
	}
}

// Response shapes the record for its owner
func (s *SavedRecipe) Response() types.SavedRecipeResponse {
	return types.SavedRecipeResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Recipe:    s.Recipe(),
	}
}
