package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/logger"
	"github.com/healthyrecipes/backend/internal/middleware"
	"github.com/healthyrecipes/backend/internal/models"
	"github.com/healthyrecipes/backend/internal/service"
	"github.com/healthyrecipes/backend/internal/types"
)

type RecipeHandler struct {
	recipeService  service.IRecipeService
	profileService service.IProfileService
	generator      service.IRecipeGenerator
	log            *zap.Logger
}

func NewRecipeHandler(recipeService service.IRecipeService, profileService service.IProfileService, generator service.IRecipeGenerator, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipeService:  recipeService,
		profileService: profileService,
		generator:      generator,
		log:            logger.Component(log, "recipes"),
	}
}

// RegisterRoutes mounts the recipe endpoints. limit guards generation and may be nil.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		generate := []gin.HandlerFunc{h.GenerateRecipe}
		if limit != nil {
			generate = append([]gin.HandlerFunc{limit}, generate...)
		}
		recipes.POST("/generate", generate...)
		recipes.POST("", h.SaveRecipe)
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

// GenerateRecipe always answers 200 with a recipe; provider trouble yields the fallback
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return
	}

	var body types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		middleware.BadRequest(c, "body", "invalid generation request")
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	switch {
	case errors.Is(err, service.ErrNotFound):
		profile = nil
	case err != nil:
		middleware.RespondError(c, err)
		return
	}

	recipe := h.generator.Generate(c.Request.Context(), service.NewGenerationRequest(profile, body))
	h.log.Debug("recipe generated",
		zap.String("user_id", userID.String()),
		zap.String("title", recipe.Title),
		zap.Bool("profile_found", profile != nil),
	)
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return
	}

	var req types.SaveRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "recipe", "a recipe object is required")
		return
	}

	id, err := h.recipeService.Save(c.Request.Context(), userID, req.Recipe)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListRecipes returns the caller's recipes, ranked by q when given
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return
	}

	var (
		recipes []models.SavedRecipe
		err     error
	)
	if q := c.Query("q"); q != "" {
		recipes, err = h.recipeService.Search(c.Request.Context(), userID, q)
	} else {
		recipes, err = h.recipeService.List(c.Request.Context(), userID)
	}
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	out := make([]types.SavedRecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, recipes[i].Response())
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), userID, id)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe.Response())
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// target resolves the caller and the :id path parameter, responding itself on failure.
// An id that cannot name a stored recipe gets the same 403 as another user's recipe.
func (h *RecipeHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.RespondError(c, service.ErrForbidden)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
