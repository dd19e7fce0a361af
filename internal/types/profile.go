package types

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest is a merge-patch: nil fields are left untouched
type UpdateProfileRequest struct {
	Name         *string   `json:"name,omitempty"`
	Age          *int      `json:"age,omitempty"`
	Height       *string   `json:"height,omitempty"`
	Weight       *string   `json:"weight,omitempty"`
	HealthGoals  *string   `json:"health_goals,omitempty"`
	Preferences  *[]string `json:"preferences,omitempty"`
	Allergies    *[]string `json:"allergies,omitempty"`
	Deficiencies *[]string `json:"deficiencies,omitempty"`
	CuisineType  *string   `json:"cuisine_type,omitempty"`
	SkillLevel   *string   `json:"skill_level,omitempty"`
}

// ProfileResponse is the profile as shown to its owner
type ProfileResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Age          *int      `json:"age,omitempty"`
	Height       string    `json:"height"`
	Weight       string    `json:"weight"`
	HealthGoals  string    `json:"health_goals"`
	Preferences  []string  `json:"preferences"`
	Allergies    []string  `json:"allergies"`
	Deficiencies []string  `json:"deficiencies"`
	CuisineType  string    `json:"cuisine_type"`
	SkillLevel   string    `json:"skill_level"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Options lists the values the client offers during onboarding
type Options struct {
	Preferences  []string `json:"preferences"`
	Allergies    []string `json:"allergies"`
	Deficiencies []string `json:"deficiencies"`
	Cuisines     []string `json:"cuisines"`
	SkillLevels  []string `json:"skill_levels"`
	MealTypes    []string `json:"meal_types"`
	CookingTimes []string `json:"cooking_times"`
}
