package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/logger"
	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/types"
)

// RecipeGenerator turns a GenerationRequest into a Recipe.
// It always returns a valid Recipe. Provider and parse failures are logged and replaced by the fallback.
type RecipeGenerator struct {
	provider CompletionProvider
	log      *zap.Logger
}

var _ IRecipeGenerator = (*RecipeGenerator)(nil)

func NewRecipeGenerator(provider CompletionProvider, log *zap.Logger) *RecipeGenerator {
	return &RecipeGenerator{
		provider: provider,
		log:      logger.Component(log, "generator"),
	}
}

// Generate never fails outward
func (g *RecipeGenerator) Generate(ctx context.Context, req types.GenerationRequest) types.Recipe {
	req = copyRequest(req)

	recipe, reason, err := g.attempt(ctx, req)
	if err != nil {
		g.log.Warn("generation degraded, serving fallback recipe",
			zap.String("reason", reason),
			zap.Error(fmt.Errorf("%w: %w", ErrGenerationDegraded, err)),
			zap.String("meal_type", req.MealType),
			zap.String("cuisine_type", req.CuisineType),
		)
		return FallbackRecipe(req)
	}
	return recipe
}

func (g *RecipeGenerator) attempt(ctx context.Context, req types.GenerationRequest) (recipe types.Recipe, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			recipe, reason, err = types.Recipe{}, "panic", fmt.Errorf("recovered: %v", r)
		}
	}()

	if g.provider == nil {
		return types.Recipe{}, "provider_error", ErrProviderNotConfigured
	}

	raw, err := g.provider.Complete(ctx, systemPrompt, BuildPrompt(req))
	if err != nil {
		return types.Recipe{}, "provider_error", err
	}

	recipe, err = ParseRecipe(StripCodeFence(raw), req)
	if err != nil {
		if errors.Is(err, errMalformedResponse) {
			g.log.Debug("unparseable provider response", zap.String("raw", truncate(raw, 500)))
		}
		return types.Recipe{}, "parse_failure", err
	}
	return recipe, "", nil
}

// NewGenerationRequest snapshots the profile lists so later profile edits cannot reach an in-flight request.
// Cuisine and skill level in body win over the profile when set.
func NewGenerationRequest(profile *models.Profile, body types.GenerateRecipeRequest) types.GenerationRequest {
	req := types.GenerationRequest{
		MealType:    strings.TrimSpace(body.MealType),
		CookingTime: strings.TrimSpace(body.CookingTime),
		CuisineType: strings.TrimSpace(body.CuisineType),
		SkillLevel:  strings.TrimSpace(body.SkillLevel),
	}
	if profile != nil {
		if req.CuisineType == "" {
			req.CuisineType = profile.CuisineType
		}
		if req.SkillLevel == "" {
			req.SkillLevel = profile.SkillLevel
		}
		req.Preferences = append([]string{}, profile.Preferences...)
		req.Allergies = append([]string{}, profile.Allergies...)
		req.Deficiencies = append([]string{}, profile.Deficiencies...)
	}
	return req
}

func copyRequest(req types.GenerationRequest) types.GenerationRequest {
	req.Preferences = append([]string(nil), req.Preferences...)
	req.Allergies = append([]string(nil), req.Allergies...)
	req.Deficiencies = append([]string(nil), req.Deficiencies...)
	return req
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
