package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/healthyrecipes/backend/internal/types"
)

var errMalformedResponse = errors.New("malformed generation response")

// generatedRecipe mirrors the JSON shape requested from the provider.
// Pointers distinguish absent keys from zero values.
type generatedRecipe struct {
	Title           *string           `json:"title"`
	Description     *string           `json:"description"`
	PrepTime        *string           `json:"prep_time"`
	Servings        *float64          `json:"servings"`
	Calories        *float64          `json:"calories"`
	Difficulty      *string           `json:"difficulty"`
	Ingredients     []string          `json:"ingredients"`
	Instructions    []string          `json:"instructions"`
	NutritionalInfo map[string]string `json:"nutritional_info"`
	YoutubeLink     *string           `json:"youtube_link"`
	YoutubeSearch   *string           `json:"youtube_search"`
}

var recipeKeys = []string{
	"title", "description", "prep_time", "servings", "calories", "difficulty",
	"ingredients", "instructions", "nutritional_info", "youtube_link", "youtube_search",
}

// checkKeyCase rejects keys that name a schema field with different casing.
// encoding/json would otherwise bind them case-insensitively.
func checkKeyCase(fields map[string]json.RawMessage) error {
	for key := range fields {
		for _, want := range recipeKeys {
			if key != want && strings.EqualFold(key, want) {
				return fmt.Errorf("%w: key %q must be spelled %q", errMalformedResponse, key, want)
			}
		}
	}
	return nil
}

// StripCodeFence removes a surrounding markdown code fence such as ```json ... ```
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseRecipe strictly decodes a cleaned provider response.
// Any shape mismatch fails the whole parse; nothing is salvaged field by field.
func ParseRecipe(cleaned string, req types.GenerationRequest) (types.Recipe, error) {
	if !strings.HasPrefix(cleaned, "{") {
		return types.Recipe{}, fmt.Errorf("%w: not a JSON object", errMalformedResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return types.Recipe{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	if err := checkKeyCase(fields); err != nil {
		return types.Recipe{}, err
	}

	var g generatedRecipe
	if err := json.Unmarshal([]byte(cleaned), &g); err != nil {
		return types.Recipe{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}

	if g.Title == nil || strings.TrimSpace(*g.Title) == "" {
		return types.Recipe{}, fmt.Errorf("%w: title is missing", errMalformedResponse)
	}
	if err := checkSteps("ingredients", g.Ingredients); err != nil {
		return types.Recipe{}, err
	}
	if err := checkSteps("instructions", g.Instructions); err != nil {
		return types.Recipe{}, err
	}

	servings := 4
	if g.Servings != nil {
		n, ok := wholeNumber(*g.Servings)
		if !ok || n <= 0 {
			return types.Recipe{}, fmt.Errorf("%w: servings must be a positive integer", errMalformedResponse)
		}
		servings = n
	}

	calories := 0
	if g.Calories != nil {
		n, ok := wholeNumber(*g.Calories)
		if !ok || n < 0 {
			return types.Recipe{}, fmt.Errorf("%w: calories must be a non-negative integer", errMalformedResponse)
		}
		calories = n
	}

	nutrients := make(map[string]string, len(g.NutritionalInfo))
	for k, v := range g.NutritionalInfo {
		nutrients[k] = v
	}

	title := strings.TrimSpace(*g.Title)

	return types.Recipe{
		Title:           title,
		Description:     deref(g.Description),
		PrepTime:        deref(g.PrepTime),
		Servings:        servings,
		Calories:        calories,
		Difficulty:      normalizeDifficulty(deref(g.Difficulty), req.SkillLevel),
		Ingredients:     append([]string{}, g.Ingredients...),
		Instructions:    append([]string{}, g.Instructions...),
		NutritionalInfo: nutrients,
		TutorialURL:     tutorialFor(g, title),
	}, nil
}

func checkSteps(field string, items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: %s must be a non-empty list", errMalformedResponse, field)
	}
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%w: %s[%d] is blank", errMalformedResponse, field, i)
		}
	}
	return nil
}

func tutorialFor(g generatedRecipe, title string) string {
	if link := strings.TrimSpace(deref(g.YoutubeLink)); link != "" {
		return link
	}
	search := strings.TrimSpace(deref(g.YoutubeSearch))
	if search == "" {
		search = title + " recipe cooking tutorial"
	}
	return TutorialURL(search)
}

// normalizeDifficulty accepts the provider's wording loosely and otherwise derives it from the skill level
func normalizeDifficulty(difficulty, skill string) string {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy", "beginner":
		return types.DifficultyEasy
	case "intermediate", "medium":
		return types.DifficultyIntermediate
	case "advanced", "hard":
		return types.DifficultyAdvanced
	default:
		return DifficultyForSkill(skill)
	}
}

func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
