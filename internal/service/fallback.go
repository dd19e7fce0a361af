package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/healthyrecipes/backend/internal/types"
)

const tutorialSearchURL = "https://www.youtube.com/results?search_query="

const fallbackTutorialSearch = "healthy quinoa spinach recipe cooking tutorial"

var fallbackIngredients = []string{
	"2 cups fresh spinach",
	"1 cup cherry tomatoes, halved",
	"1/2 cup quinoa, uncooked",
	"2 tbsp olive oil",
	"1 lemon, juiced",
	"2 cloves garlic, minced",
	"1/4 cup pine nuts",
	"Salt and pepper to taste",
}

var fallbackInstructions = []string{
	"Rinse quinoa under cold water and cook according to package instructions (about 15 minutes)",
	"Heat olive oil in a large pan over medium heat",
	"Add minced garlic and cook for 1 minute until fragrant",
	"Add cherry tomatoes and cook for 3-4 minutes until they start to soften",
	"Add fresh spinach and cook until wilted (about 2 minutes)",
	"Mix in the cooked quinoa and pine nuts",
	"Season with lemon juice, salt, and pepper to taste",
	"Serve warm and enjoy your nutritious meal!",
}

var fallbackNutrients = map[string]string{
	"protein":   "12g",
	"carbs":     "45g",
	"fat":       "14g",
	"fiber":     "6g",
	"iron":      "4mg",
	"vitamin_c": "80mg",
}

// FallbackRecipe builds the fixed recipe body with title, description, prep time and difficulty taken from req.
// It makes no external calls and always passes the checks Save applies.
func FallbackRecipe(req types.GenerationRequest) types.Recipe {
	nutrients := make(map[string]string, len(fallbackNutrients))
	for k, v := range fallbackNutrients {
		nutrients[k] = v
	}

	prepTime := "30 minutes"
	if label := CookingTimeLabel(req.CookingTime); label != "" {
		prepTime = label
	}

	return types.Recipe{
		Title: fmt.Sprintf("Healthy %s %s",
			orDefault(req.CuisineType, DefaultCuisine),
			orDefault(req.MealType, "Dinner")),
		Description: fmt.Sprintf("A nutritious %s-friendly recipe rich in %s",
			orDefault(req.SkillLevel, DefaultSkillLevel),
			joinOrDefault(req.Deficiencies, "essential nutrients")),
		PrepTime:        prepTime,
		Servings:        4,
		Calories:        350,
		Difficulty:      DifficultyForSkill(req.SkillLevel),
		Ingredients:     append([]string{}, fallbackIngredients...),
		Instructions:    append([]string{}, fallbackInstructions...),
		NutritionalInfo: nutrients,
		TutorialURL:     TutorialURL(fallbackTutorialSearch),
	}
}

// DifficultyForSkill maps a skill level onto a recipe difficulty. Anything unrecognised is Easy.
func DifficultyForSkill(skill string) string {
	switch strings.ToLower(strings.TrimSpace(skill)) {
	case "advanced":
		return types.DifficultyAdvanced
	case "intermediate":
		return types.DifficultyIntermediate
	default:
		return types.DifficultyEasy
	}
}

// TutorialURL percent-encodes the search terms into the video search template
func TutorialURL(search string) string {
	return tutorialSearchURL + strings.ReplaceAll(url.QueryEscape(search), "+", "%20")
}
