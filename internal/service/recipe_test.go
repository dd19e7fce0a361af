package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/testhelpers"
	"github.com/healthyrecipes/backend/internal/types"
)

func sampleRecipe(title string) types.Recipe {
	return types.Recipe{
		Title:           title,
		Description:     "A test recipe",
		PrepTime:        "20 minutes",
		Servings:        2,
		Calories:        300,
		Difficulty:      types.DifficultyEasy,
		Ingredients:     []string{"1 cup oats", "1 banana"},
		Instructions:    []string{"Mix", "Bake"},
		NutritionalInfo: map[string]string{"fiber": "5g"},
		TutorialURL:     TutorialURL(title),
	}
}

// fixedClock returns successive timestamps one minute apart
func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newRecipeService(t *testing.T) (*RecipeService, models.User, models.User) {
	db := testhelpers.SetupSQLite(t)
	alice := testhelpers.CreateUser(t, db, "alice@example.com")
	bob := testhelpers.CreateUser(t, db, "bob@example.com")
	svc := NewRecipeService(db, zap.NewNop())
	svc.now = fixedClock()
	return svc, alice, bob
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	svc, alice, _ := newRecipeService(t)
	ctx := context.Background()
	recipe := sampleRecipe("Overnight Oats")

	id, err := svc.Save(ctx, alice.ID, recipe)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	stored, err := svc.Get(ctx, alice.ID, id)
	require.NoError(t, err)
	assert.Equal(t, recipe, stored.Recipe())
	assert.Equal(t, alice.ID, stored.UserID)
}

func TestSaveNormalizesMissingNutrients(t *testing.T) {
	svc, alice, _ := newRecipeService(t)
	ctx := context.Background()
	recipe := sampleRecipe("Plain Toast")
	recipe.NutritionalInfo = nil

	id, err := svc.Save(ctx, alice.ID, recipe)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, alice.ID, id)
	require.NoError(t, err)
	got := stored.Recipe()
	require.NotNil(t, got.NutritionalInfo)
	assert.Empty(t, got.NutritionalInfo)

	recipe.NutritionalInfo = map[string]string{}
	assert.Equal(t, recipe, got)
}

func TestSaveIdenticalRecipeTwice(t *testing.T) {
	svc, alice, _ := newRecipeService(t)
	ctx := context.Background()
	recipe := sampleRecipe("Twice")

	first, err := svc.Save(ctx, alice.ID, recipe)
	require.NoError(t, err)
	second, err := svc.Save(ctx, alice.ID, recipe)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSaveRejectsInvalidRecipe(t *testing.T) {
	svc, alice, _ := newRecipeService(t)
	ctx := context.Background()

	bad := sampleRecipe("Bad")
	bad.Servings = 0
	_, err := svc.Save(ctx, alice.ID, bad)
	assert.ErrorIs(t, err, ErrValidationFailed)

	bad = sampleRecipe("Bad")
	bad.Difficulty = "Extreme"
	_, err = svc.Save(ctx, alice.ID, bad)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Save(ctx, uuid.Nil, sampleRecipe("Anon"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestListMostRecentFirst(t *testing.T) {
	svc, alice, bob := newRecipeService(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := svc.Save(ctx, alice.ID, sampleRecipe(title))
		require.NoError(t, err)
	}
	_, err := svc.Save(ctx, bob.ID, sampleRecipe("Bob's"))
	require.NoError(t, err)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].Title)
	assert.Equal(t, "Second", list[1].Title)
	assert.Equal(t, "First", list[2].Title)

	empty, err := svc.List(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDeleteOwnRecipe(t *testing.T) {
	svc, alice, _ := newRecipeService(t)
	ctx := context.Background()

	id, err := svc.Save(ctx, alice.ID, sampleRecipe("Gone"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice.ID, id))

	_, err = svc.Get(ctx, alice.ID, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, alice.ID, id), ErrNotFound)

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteOtherUsersRecipeIsForbidden(t *testing.T) {
	svc, alice, bob := newRecipeService(t)
	ctx := context.Background()

	id, err := svc.Save(ctx, alice.ID, sampleRecipe("Mine"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, id), ErrForbidden)
	_, err = svc.Get(ctx, bob.ID, id)
	assert.ErrorIs(t, err, ErrForbidden)

	// unknown ids look the same as other users' ids
	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, uuid.New()), ErrForbidden)

	stored, err := svc.Get(ctx, alice.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)
}

func TestSearchFallsBackToTitleMatch(t *testing.T) {
	svc, alice, bob := newRecipeService(t)
	ctx := context.Background()

	for _, title := range []string{"Lentil Soup", "Green Salad", "Spicy lentil curry"} {
		_, err := svc.Save(ctx, alice.ID, sampleRecipe(title))
		require.NoError(t, err)
	}
	_, err := svc.Save(ctx, bob.ID, sampleRecipe("Lentil Stew"))
	require.NoError(t, err)

	found, err := svc.Search(ctx, alice.ID, "LENTIL")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Spicy lentil curry", found[0].Title)
	assert.Equal(t, "Lentil Soup", found[1].Title)

	all, err := svc.Search(ctx, alice.ID, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearchRanksByEmbeddingOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	alice := testhelpers.CreateUser(t, db, "pg@example.com")
	svc := NewRecipeService(db, zap.NewNop())
	ctx := context.Background()

	for _, title := range []string{"Lentil Soup", "A very long title for a slow braised dish"} {
		_, err := svc.Save(ctx, alice.ID, sampleRecipe(title))
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, alice.ID, "Lentil Soup A test recipe")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Lentil Soup", found[0].Title)

	id := found[0].ID
	require.NoError(t, svc.Delete(ctx, alice.ID, id))
	assert.ErrorIs(t, svc.Delete(ctx, alice.ID, id), ErrNotFound)
}

func TestGenerateEmbedding(t *testing.T) {
	vec := GenerateEmbedding("Oat Bar!")
	assert.Equal(t, []float32{8, 3, 3}, vec.Slice())
	assert.Len(t, vec.Slice(), EmbeddingDimensions)

	assert.Equal(t, vec.Slice(), GenerateEmbedding("  OAT \n\tbar! ").Slice())
	assert.Equal(t, []float32{4, 2, 0}, GenerateEmbedding("Açaí").Slice())
}

func TestRecipeEmbeddingUsesTitleAndDescription(t *testing.T) {
	r := types.Recipe{Title: "Oat", Description: "Bar!", Ingredients: []string{"ignored"}}
	assert.Equal(t, GenerateEmbedding("Oat Bar!").Slice(), RecipeEmbedding(r).Slice())
}
