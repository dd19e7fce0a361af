package service

import (
	"fmt"
	"strings"

	"github.com/healthyrecipes/backend/internal/types"
)

// Defaults substituted into the prompt for omitted request fields
const (
	DefaultMealType     = "dinner"
	DefaultCookingTime  = "30-60 minutes"
	DefaultCuisine      = "Mediterranean"
	DefaultSkillLevel   = "beginner"
	DefaultPreferences  = "balanced"
	DefaultAllergies    = "none"
	DefaultDeficiencies = "general nutrition"
)

const systemPrompt = "You are a professional nutritionist and chef. Generate healthy recipes in valid JSON format only. Focus on nutritional benefits and clear instructions."

const promptTemplate = `Generate a detailed healthy recipe with the following specifications:
- Meal type: %s
- Cooking time: %s
- Cuisine: %s
- Skill level: %s
- Dietary preferences: %s
- Allergies to avoid: %s
- Address nutritional deficiencies: %s

Please provide a complete recipe in valid JSON format with these exact fields:
{
  "title": "Recipe Name",
  "description": "Brief description focusing on health benefits",
  "prep_time": "20 minutes",
  "servings": 4,
  "calories": 400,
  "difficulty": "Easy/Intermediate/Advanced",
  "ingredients": ["ingredient 1 with quantity", "ingredient 2 with quantity"],
  "instructions": ["detailed step 1", "detailed step 2"],
  "nutritional_info": {"protein": "25g", "carbs": "30g", "fat": "15g", "fiber": "8g", "iron": "3mg"},
  "youtube_search": "search terms for finding cooking tutorial"
}

Make sure the recipe specifically addresses the mentioned nutritional deficiencies and avoids all listed allergies. Return only valid JSON.`

// BuildPrompt renders the request into the fixed template.
// Every field is always present, with its default when empty.
func BuildPrompt(req types.GenerationRequest) string {
	return fmt.Sprintf(promptTemplate,
		orDefault(req.MealType, DefaultMealType),
		orDefault(CookingTimeLabel(req.CookingTime), DefaultCookingTime),
		orDefault(req.CuisineType, DefaultCuisine),
		orDefault(req.SkillLevel, DefaultSkillLevel),
		joinOrDefault(req.Preferences, DefaultPreferences),
		joinOrDefault(req.Allergies, DefaultAllergies),
		joinOrDefault(req.Deficiencies, DefaultDeficiencies),
	)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func joinOrDefault(items []string, def string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return def
	}
	return strings.Join(kept, ", ")
}
