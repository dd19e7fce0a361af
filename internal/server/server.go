package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/healthyrecipes/backend/config"
	"github.com/healthyrecipes/backend/internal/database"
	"github.com/healthyrecipes/backend/internal/middleware"
	"github.com/healthyrecipes/backend/internal/router"
	"github.com/healthyrecipes/backend/internal/service"
)

// Server represents the HTTP server and the infrastructure it owns
type Server struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *gorm.DB
	redis  *redis.Client
	router *gin.Engine
	http   *http.Server
}

// New connects the database, and Redis and S3 when configured, then wires the application
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Rate limiting fails open, so a missing Redis is only a warning
	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("redis unavailable, generation rate limiting disabled", zap.Error(err))
		redisClient = nil
	}

	var avatars service.AvatarStore
	if cfg.S3Bucket != "" {
		store, err := config.NewS3Config(ctx, cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Warn("avatar storage unavailable", zap.Error(err))
		} else {
			avatars = store
		}
	} else {
		log.Info("S3_BUCKET not set, avatar uploads disabled")
	}

	return NewWithStores(cfg, log, db, redisClient, avatars), nil
}

// NewWithStores wires services and routes over already opened stores. redisClient and avatars may be nil.
func NewWithStores(cfg *config.Config, log *zap.Logger, db *gorm.DB, redisClient *redis.Client, avatars service.AvatarStore) *Server {
	var provider service.CompletionProvider
	if cfg.LLMAPIKey != "" {
		provider = service.NewOpenAIProvider(service.ProviderConfig{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.LLMAPIKey,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.LLMTimeout,
		}, log)
	} else {
		log.Warn("LLM_API_KEY not set, every generation will serve the fallback recipe")
	}

	mailer := service.NewEmailService(service.EmailConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		FrontendURL: cfg.FrontendURL,
	}, log)
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set, password reset emails will only be logged")
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, avatars, log).
		WithPasswordReset(mailer, cfg.PasswordResetTTL)
	profileService := service.NewProfileService(db, avatars, log)

	engine := router.SetupRouter(router.Dependencies{
		Log:               log,
		DB:                db,
		Redis:             redisClient,
		CORSOrigins:       cfg.CORSOrigins,
		AuthService:       authService,
		ProfileService:    profileService,
		RecipeService:     service.NewRecipeService(db, log),
		Generator:         service.NewRecipeGenerator(provider, log),
		GenerationLimiter: middleware.NewGenerationRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow, log),
	})

	return &Server{
		cfg:    cfg,
		log:    log,
		db:     db,
		redis:  redisClient,
		router: engine,
	}
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// must outlast the provider timeout
		WriteTimeout: s.cfg.LLMTimeout + 15*time.Second,
	}

	s.log.Info("starting server", zap.String("addr", s.http.Addr), zap.String("env", s.cfg.Env.String()))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, then closes Redis and the database
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
