package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/types"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

type panicProvider struct{}

func (panicProvider) Complete(context.Context, string, string) (string, error) {
	panic("boom")
}

const validResponse = `{
  "title": "Lentil Power Bowl",
  "description": "Iron rich lentils with greens",
  "prep_time": "25 minutes",
  "servings": 2,
  "calories": 420,
  "difficulty": "Intermediate",
  "ingredients": ["1 cup lentils", "2 cups spinach"],
  "instructions": ["Cook lentils", "Fold in spinach"],
  "nutritional_info": {"protein": "24g", "iron": "6mg"},
  "youtube_search": "lentil power bowl"
}`

func observedGenerator(p CompletionProvider) (*RecipeGenerator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewRecipeGenerator(p, zap.New(core)), logs
}

func TestBuildPromptDefaults(t *testing.T) {
	prompt := BuildPrompt(types.GenerationRequest{})

	assert.Contains(t, prompt, "- Meal type: dinner")
	assert.Contains(t, prompt, "- Cooking time: 30-60 minutes")
	assert.Contains(t, prompt, "- Cuisine: Mediterranean")
	assert.Contains(t, prompt, "- Skill level: beginner")
	assert.Contains(t, prompt, "- Dietary preferences: balanced")
	assert.Contains(t, prompt, "- Allergies to avoid: none")
	assert.Contains(t, prompt, "- Address nutritional deficiencies: general nutrition")
}

func TestBuildPromptOmittedEqualsDefault(t *testing.T) {
	base := types.GenerationRequest{
		MealType:    "lunch",
		CuisineType: "italian",
		SkillLevel:  "advanced",
		Allergies:   []string{"Nuts"},
	}
	withTime := base
	withTime.CookingTime = "30-60"
	assert.Equal(t, BuildPrompt(base), BuildPrompt(withTime))

	explicitDefaults := types.GenerationRequest{
		MealType:     DefaultMealType,
		CookingTime:  "30-60",
		CuisineType:  DefaultCuisine,
		SkillLevel:   DefaultSkillLevel,
		Preferences:  []string{DefaultPreferences},
		Allergies:    []string{DefaultAllergies},
		Deficiencies: []string{DefaultDeficiencies},
	}
	assert.Equal(t, BuildPrompt(types.GenerationRequest{}), BuildPrompt(explicitDefaults))
}

func TestBuildPromptDiffersOnlyInSubstitutedDefault(t *testing.T) {
	omitted := types.GenerationRequest{CookingTime: "15-30", Deficiencies: []string{"Iron"}}
	supplied := omitted
	supplied.MealType = "breakfast"

	withDefault := BuildPrompt(omitted)
	withValue := BuildPrompt(supplied)
	require.NotEqual(t, withDefault, withValue)

	replaced := strings.Replace(withDefault, "- Meal type: "+DefaultMealType, "- Meal type: breakfast", 1)
	assert.Equal(t, withValue, replaced)
}

func TestBuildPromptUsesRequest(t *testing.T) {
	prompt := BuildPrompt(types.GenerationRequest{
		MealType:     "lunch",
		CookingTime:  "under-15",
		CuisineType:  "italian",
		SkillLevel:   "advanced",
		Preferences:  []string{"Vegan", " ", "Grains"},
		Allergies:    []string{"Nuts"},
		Deficiencies: []string{"Iron", "Vitamin D"},
	})

	assert.Contains(t, prompt, "- Meal type: lunch")
	assert.Contains(t, prompt, "- Cooking time: Under 15 minutes")
	assert.Contains(t, prompt, "- Cuisine: italian")
	assert.Contains(t, prompt, "- Skill level: advanced")
	assert.Contains(t, prompt, "- Dietary preferences: Vegan, Grains")
	assert.Contains(t, prompt, "- Allergies to avoid: Nuts")
	assert.Contains(t, prompt, "- Address nutritional deficiencies: Iron, Vitamin D")
}

func TestGenerateParsesFencedResponse(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Complete", mock.Anything, systemPrompt, mock.AnythingOfType("string")).
		Return("```json\n"+validResponse+"\n```", nil).Once()

	gen, logs := observedGenerator(provider)
	recipe := gen.Generate(context.Background(), types.GenerationRequest{SkillLevel: "beginner"})

	assert.Equal(t, "Lentil Power Bowl", recipe.Title)
	assert.Equal(t, 2, recipe.Servings)
	assert.Equal(t, 420, recipe.Calories)
	assert.Equal(t, types.DifficultyIntermediate, recipe.Difficulty)
	assert.Equal(t, []string{"1 cup lentils", "2 cups spinach"}, recipe.Ingredients)
	assert.Equal(t, "6mg", recipe.NutritionalInfo["iron"])
	assert.Equal(t, "https://www.youtube.com/results?search_query=lentil%20power%20bowl", recipe.TutorialURL)
	assert.Zero(t, logs.FilterMessage("generation degraded, serving fallback recipe").Len())
	provider.AssertExpectations(t)
}

func TestGenerateFallsBackOnProse(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("Sure! Here is a lovely recipe for you.", nil)

	gen, logs := observedGenerator(provider)
	req := types.GenerationRequest{MealType: "lunch", CuisineType: "Mexican", SkillLevel: "intermediate"}
	recipe := gen.Generate(context.Background(), req)

	assert.Equal(t, FallbackRecipe(req), recipe)
	assert.Equal(t, "Healthy Mexican lunch", recipe.Title)
	assert.Equal(t, types.DifficultyIntermediate, recipe.Difficulty)

	degraded := logs.FilterMessage("generation degraded, serving fallback recipe").All()
	require.Len(t, degraded, 1)
	assert.Equal(t, zapcore.WarnLevel, degraded[0].Level)
	assert.Equal(t, "parse_failure", degraded[0].ContextMap()["reason"])
}

func TestGenerateFallsBackOnProviderError(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("status 500"))

	gen, logs := observedGenerator(provider)
	recipe := gen.Generate(context.Background(), types.GenerationRequest{SkillLevel: "advanced", Deficiencies: []string{"Iron"}})

	assert.Equal(t, "Healthy Mediterranean Dinner", recipe.Title)
	assert.Equal(t, "A nutritious advanced-friendly recipe rich in Iron", recipe.Description)
	assert.Equal(t, types.DifficultyAdvanced, recipe.Difficulty)
	assert.Equal(t, 4, recipe.Servings)
	assert.Equal(t, 350, recipe.Calories)
	assert.Len(t, recipe.Ingredients, 8)
	assert.Len(t, recipe.Instructions, 8)

	degraded := logs.FilterMessage("generation degraded, serving fallback recipe").All()
	require.Len(t, degraded, 1)
	assert.Equal(t, "provider_error", degraded[0].ContextMap()["reason"])
}

func TestGenerateWithoutProvider(t *testing.T) {
	gen, logs := observedGenerator(nil)
	recipe := gen.Generate(context.Background(), types.GenerationRequest{})

	assert.Equal(t, types.DifficultyEasy, recipe.Difficulty)
	assert.Equal(t, "30 minutes", recipe.PrepTime)
	assert.Equal(t, 1, logs.FilterMessage("generation degraded, serving fallback recipe").Len())
}

func TestGenerateRecoversFromPanic(t *testing.T) {
	gen, logs := observedGenerator(panicProvider{})

	var recipe types.Recipe
	assert.NotPanics(t, func() {
		recipe = gen.Generate(context.Background(), types.GenerationRequest{CookingTime: "over-60"})
	})
	assert.Equal(t, "Over 1 hour", recipe.PrepTime)
	degraded := logs.FilterMessage("generation degraded, serving fallback recipe").All()
	require.Len(t, degraded, 1)
	assert.Equal(t, "panic", degraded[0].ContextMap()["reason"])
}

func TestGenerateAlwaysReturnsValidRecipe(t *testing.T) {
	responses := []string{
		"",
		"{}",
		"[]",
		`{"title": "x"}`,
		`{"title": "x", "ingredients": ["a"], "instructions": ["b"], "servings": "four"}`,
		`{"title": "x", "ingredients": ["a"], "instructions": ["b"], "servings": -1}`,
		`{"title": "x", "ingredients": ["a", ""], "instructions": ["b"]}`,
		"```\n" + validResponse,
		validResponse,
	}

	for _, raw := range responses {
		provider := new(mockProvider)
		provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(raw, nil)
		gen := NewRecipeGenerator(provider, zap.NewNop())

		recipe := gen.Generate(context.Background(), types.GenerationRequest{})
		assert.NoError(t, validateRecipe(recipe), "response %q", raw)
		assert.True(t, strings.HasPrefix(recipe.TutorialURL, tutorialSearchURL), "response %q", raw)
	}
}

func TestGenerateDoesNotShareRequestLists(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("down"))
	gen := NewRecipeGenerator(provider, zap.NewNop())

	defs := []string{"Iron"}
	recipe := gen.Generate(context.Background(), types.GenerationRequest{Deficiencies: defs})
	defs[0] = "Calcium"

	assert.Contains(t, recipe.Description, "Iron")
	recipe.Ingredients[0] = "changed"
	assert.NotEqual(t, "changed", fallbackIngredients[0])
}

func TestNewGenerationRequest(t *testing.T) {
	profile := &models.Profile{
		CuisineType:  "italian",
		SkillLevel:   "intermediate",
		Preferences:  models.JSONBStringArray{"Vegan"},
		Allergies:    models.JSONBStringArray{"Nuts"},
		Deficiencies: models.JSONBStringArray{"Iron"},
	}

	req := NewGenerationRequest(profile, types.GenerateRecipeRequest{MealType: " lunch ", SkillLevel: "advanced"})
	profile.Allergies[0] = "Soy"

	assert.Equal(t, "lunch", req.MealType)
	assert.Equal(t, "italian", req.CuisineType)
	assert.Equal(t, "advanced", req.SkillLevel)
	assert.Equal(t, []string{"Vegan"}, req.Preferences)
	assert.Equal(t, []string{"Nuts"}, req.Allergies)
	assert.Equal(t, []string{"Iron"}, req.Deficiencies)

	empty := NewGenerationRequest(nil, types.GenerateRecipeRequest{})
	assert.Empty(t, empty.Allergies)
}

func TestDifficultyForSkill(t *testing.T) {
	assert.Equal(t, types.DifficultyEasy, DifficultyForSkill("beginner"))
	assert.Equal(t, types.DifficultyEasy, DifficultyForSkill(""))
	assert.Equal(t, types.DifficultyEasy, DifficultyForSkill("expert"))
	assert.Equal(t, types.DifficultyIntermediate, DifficultyForSkill("Intermediate"))
	assert.Equal(t, types.DifficultyAdvanced, DifficultyForSkill(" advanced "))
}
