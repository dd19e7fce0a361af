package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/config"
	"github.com/healthyrecipes/backend/internal/database"
	"github.com/healthyrecipes/backend/internal/logger"
	"github.com/healthyrecipes/backend/internal/service"
	"github.com/healthyrecipes/backend/internal/types"
)

const testPassword = "testpassword123"

type seedUser struct {
	name         string
	email        string
	age          int
	healthGoals  string
	cuisine      string
	skill        string
	preferences  []string
	allergies    []string
	deficiencies []string
	mealType     string
}

var testUsers = []seedUser{
	{
		name: "John Doe", email: "john.doe@example.com", age: 34,
		healthGoals: "Lower cholesterol", cuisine: "mediterranean", skill: "beginner",
		preferences: []string{"Vegetables", "Fish"}, allergies: []string{"Shellfish"},
		deficiencies: []string{"Omega-3"}, mealType: "dinner",
	},
	{
		name: "Jane Smith", email: "jane.smith@example.com", age: 28,
		healthGoals: "Build muscle", cuisine: "mexican", skill: "intermediate",
		preferences: []string{"Protein", "Chicken"}, allergies: []string{"Dairy"},
		deficiencies: []string{"Iron", "Vitamin D"}, mealType: "lunch",
	},
	{
		name: "Bob Wilson", email: "bob.wilson@example.com", age: 61,
		healthGoals: "Heart health", cuisine: "italian", skill: "advanced",
		preferences: []string{"Grains", "Vegetarian"}, allergies: []string{"Nuts", "Gluten"},
		deficiencies: []string{"Calcium"}, mealType: "breakfast",
	},
	{
		name: "Alice Cooper", email: "alice.cooper@example.com", age: 19,
		cuisine: "asian", skill: "beginner",
		preferences: []string{"Vegan"}, allergies: []string{"Soy"},
		deficiencies: []string{"Vitamin B12"}, mealType: "snack",
	},
}

// Seeds demo accounts with onboarding profiles and one starter recipe each.
// Recipes come from the fallback generator so seeding never calls the provider.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(false, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Open(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, nil, zlog)
	profiles := service.NewProfileService(db, nil, zlog)
	recipes := service.NewRecipeService(db, zlog)
	generator := service.NewRecipeGenerator(nil, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	created := 0
	for _, u := range testUsers {
		ulog := zlog.With(zap.String("email", u.email))

		age := u.age
		resp, err := auth.Register(ctx, &types.RegisterRequest{
			Name:        u.name,
			Email:       u.email,
			Password:    testPassword,
			Age:         &age,
			HealthGoals: &u.healthGoals,
		})
		if errors.Is(err, service.ErrValidationFailed) {
			ulog.Info("skipping existing test user", zap.Error(err))
			continue
		}
		if err != nil {
			ulog.Fatal("failed to register test user", zap.Error(err))
		}
		userID := uuid.MustParse(resp.UserID)

		profile, err := profiles.UpdateProfile(ctx, userID, &types.UpdateProfileRequest{
			CuisineType:  &u.cuisine,
			SkillLevel:   &u.skill,
			Preferences:  &u.preferences,
			Allergies:    &u.allergies,
			Deficiencies: &u.deficiencies,
		})
		if err != nil {
			ulog.Fatal("failed to set profile", zap.Error(err))
		}

		recipe := generator.Generate(ctx, service.NewGenerationRequest(profile, types.GenerateRecipeRequest{MealType: u.mealType}))
		if _, err := recipes.Save(ctx, userID, recipe); err != nil {
			ulog.Fatal("failed to save starter recipe", zap.Error(err))
		}

		ulog.Info("created test user", zap.String("user_id", resp.UserID), zap.String("recipe", recipe.Title))
		created++
	}

	zlog.Info("seeding complete", zap.Int("created", created), zap.String("password", testPassword))
}
