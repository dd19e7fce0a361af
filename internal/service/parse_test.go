package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthyrecipes/backend/internal/types"
)

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```JSON{\"a\":1}```":     `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"plain text":              "plain text",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFence(in), "input %q", in)
	}
}

func TestParseRecipeDefaults(t *testing.T) {
	recipe, err := ParseRecipe(`{"title": " Soup ", "ingredients": ["water"], "instructions": ["boil"]}`,
		types.GenerationRequest{SkillLevel: "advanced"})
	require.NoError(t, err)

	assert.Equal(t, "Soup", recipe.Title)
	assert.Equal(t, 4, recipe.Servings)
	assert.Equal(t, 0, recipe.Calories)
	assert.Equal(t, types.DifficultyAdvanced, recipe.Difficulty)
	assert.NotNil(t, recipe.NutritionalInfo)
	assert.Equal(t, TutorialURL("Soup recipe cooking tutorial"), recipe.TutorialURL)
}

func TestParseRecipeDifficultyAliases(t *testing.T) {
	for raw, want := range map[string]string{
		"easy":     types.DifficultyEasy,
		"Beginner": types.DifficultyEasy,
		"medium":   types.DifficultyIntermediate,
		"HARD":     types.DifficultyAdvanced,
	} {
		recipe, err := ParseRecipe(`{"title":"t","ingredients":["a"],"instructions":["b"],"difficulty":"`+raw+`"}`,
			types.GenerationRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, recipe.Difficulty, raw)
	}
}

func TestParseRecipePrefersDirectLink(t *testing.T) {
	recipe, err := ParseRecipe(`{"title":"t","ingredients":["a"],"instructions":["b"],
		"youtube_link":"https://www.youtube.com/watch?v=abc","youtube_search":"ignored"}`, types.GenerationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", recipe.TutorialURL)
}

func TestParseRecipeRejects(t *testing.T) {
	cases := map[string]string{
		"prose":              "Here you go",
		"array":              `[{"title":"t"}]`,
		"invalid json":       `{"title":`,
		"missing title":      `{"ingredients":["a"],"instructions":["b"]}`,
		"blank title":        `{"title":"  ","ingredients":["a"],"instructions":["b"]}`,
		"no ingredients":     `{"title":"t","ingredients":[],"instructions":["b"]}`,
		"blank instruction":  `{"title":"t","ingredients":["a"],"instructions":["b"," "]}`,
		"string servings":    `{"title":"t","ingredients":["a"],"instructions":["b"],"servings":"4"}`,
		"fractional serving": `{"title":"t","ingredients":["a"],"instructions":["b"],"servings":2.5}`,
		"zero servings":      `{"title":"t","ingredients":["a"],"instructions":["b"],"servings":0}`,
		"negative calories":  `{"title":"t","ingredients":["a"],"instructions":["b"],"calories":-10}`,
		"numeric ingredient": `{"title":"t","ingredients":[1],"instructions":["b"]}`,
		"upper case keys":    `{"TITLE":"X","Ingredients":["a"],"INSTRUCTIONS":["b"]}`,
		"cased servings":     `{"title":"t","ingredients":["a"],"instructions":["b"],"Servings":2}`,
		"duplicate by case":  `{"title":"t","Title":"u","ingredients":["a"],"instructions":["b"]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRecipe(raw, types.GenerationRequest{})
			assert.ErrorIs(t, err, errMalformedResponse)
		})
	}
}

func TestParseRecipeIgnoresUnrelatedKeys(t *testing.T) {
	recipe, err := ParseRecipe(`{"title":"t","ingredients":["a"],"instructions":["b"],"Notes":"extra"}`, types.GenerationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "t", recipe.Title)
}

func TestTutorialURLEncoding(t *testing.T) {
	assert.Equal(t,
		"https://www.youtube.com/results?search_query=mac%20%26%20cheese%3F",
		TutorialURL("mac & cheese?"))
}

func TestCookingTimeLabel(t *testing.T) {
	assert.Equal(t, "15-30 minutes", CookingTimeLabel("15-30"))
	assert.Equal(t, "Under 15 minutes", CookingTimeLabel(" UNDER-15 "))
	assert.Equal(t, "about an hour", CookingTimeLabel("about an hour"))
	assert.Equal(t, "", CookingTimeLabel(""))
}

func TestOptionsReturnsCopies(t *testing.T) {
	opts := Options()
	opts.Cuisines[0] = "martian"

	assert.Equal(t, "italian", Options().Cuisines[0])
	assert.Equal(t, []string{"under-15", "15-30", "30-60", "over-60"}, Options().CookingTimes)
}
