package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/types"
)

func TestSetupSQLiteIsIsolated(t *testing.T) {
	first := SetupSQLite(t)
	second := SetupSQLite(t)

	CreateUser(t, first, "only-here@example.com")

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateUserAddsProfile(t *testing.T) {
	db := SetupSQLite(t)

	user := CreateUser(t, db, "test@example.com")
	assert.NotEqual(t, uuid.Nil, user.ID)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Test User", profile.Name)
	assert.Empty(t, profile.Allergies)
}

func TestSavedRecipeRoundTripsOnSQLite(t *testing.T) {
	db := SetupSQLite(t)
	user := CreateUser(t, db, "cook@example.com")

	id, err := uuid.NewV7()
	require.NoError(t, err)
	rec := models.NewSavedRecipe(id, user.ID, types.Recipe{
		Title:           "Oat Bar",
		Servings:        2,
		Difficulty:      types.DifficultyEasy,
		Ingredients:     []string{"oats"},
		Instructions:    []string{"bake"},
		NutritionalInfo: map[string]string{"fiber": "4g"},
	})
	require.NoError(t, db.Create(rec).Error)

	var loaded models.SavedRecipe
	require.NoError(t, db.First(&loaded, "id = ?", id).Error)
	assert.Equal(t, []string{"oats"}, loaded.Recipe().Ingredients)
	assert.Equal(t, "4g", loaded.Recipe().NutritionalInfo["fiber"])
}

func TestMigrationsDirExists(t *testing.T) {
	assert.DirExists(t, MigrationsDir())
}
