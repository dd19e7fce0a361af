package types

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty values a Recipe may carry
const (
	DifficultyEasy         = "Easy"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Recipe is the normalized output of the generation pipeline. It is never mutated after creation.
// A nil NutritionalInfo is saved and read back as an empty map.
type Recipe struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	PrepTime        string            `json:"prep_time"`
	Servings        int               `json:"servings"`
	Calories        int               `json:"calories"`
	Difficulty      string            `json:"difficulty"`
	Ingredients     []string          `json:"ingredients"`
	Instructions    []string          `json:"instructions"`
	NutritionalInfo map[string]string `json:"nutritional_info"`
	TutorialURL     string            `json:"tutorial_url"`
}

// GenerationRequest is a snapshot of the caller's choices and profile lists at submission time
type GenerationRequest struct {
	MealType     string   `json:"meal_type"`
	CookingTime  string   `json:"cooking_time"`
	CuisineType  string   `json:"cuisine_type"`
	SkillLevel   string   `json:"skill_level"`
	Preferences  []string `json:"preferences"`
	Allergies    []string `json:"allergies"`
	Deficiencies []string `json:"deficiencies"`
}

// GenerateRecipeRequest is the HTTP body for a generation call.
// Cuisine and skill level override the stored profile when set.
type GenerateRecipeRequest struct {
	MealType    string `json:"meal_type"`
	CookingTime string `json:"cooking_time"`
	CuisineType string `json:"cuisine_type"`
	SkillLevel  string `json:"skill_level"`
}

// SaveRecipeRequest is the HTTP body for persisting a generated recipe
type SaveRecipeRequest struct {
	Recipe Recipe `json:"recipe" binding:"required"`
}

// SavedRecipeResponse is a persisted recipe as returned to its owner
type SavedRecipeResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Recipe
}
