package router

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/healthyrecipes/backend/internal/api"
	"github.com/healthyrecipes/backend/internal/middleware"
	"github.com/healthyrecipes/backend/internal/service"
)

// Dependencies are the collaborators the HTTP surface is built from
type Dependencies struct {
	Log               *zap.Logger
	DB                *gorm.DB
	Redis             *redis.Client
	CORSOrigins       []string
	AuthService       service.IAuthService
	ProfileService    service.IProfileService
	RecipeService     service.IRecipeService
	Generator         service.IRecipeGenerator
	GenerationLimiter *middleware.RateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		requestid.New(),
		middleware.Logger(deps.Log),
		middleware.Recovery(deps.Log),
		middleware.CORS(deps.CORSOrigins),
		middleware.ErrorHandler(),
	)

	health := api.NewHealthHandler(deps.DB, deps.Redis)
	router.GET("/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.GET("/health", health.HealthCheck)
	v1.GET("/options", api.Options)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthService))

	var generationLimit gin.HandlerFunc
	if deps.GenerationLimiter != nil {
		generationLimit = deps.GenerationLimiter.RateLimitMiddleware()
		api.RegisterRateLimitRoutes(protected, deps.GenerationLimiter)
	}

	api.NewAuthHandler(deps.AuthService, deps.Log).RegisterRoutes(v1, protected)
	api.NewProfileHandler(deps.ProfileService).RegisterRoutes(protected)
	api.NewRecipeHandler(deps.RecipeService, deps.ProfileService, deps.Generator, deps.Log).
		RegisterRoutes(protected, generationLimit)

	return router
}
