// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"speedgarage/internal/cache"
	"speedgarage/internal/config"
	"speedgarage/internal/database"
	"speedgarage/internal/middleware"
	"speedgarage/internal/models"
	"speedgarage/internal/observability"
	"speedgarage/internal/repository"
	"speedgarage/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "speedgarage-api"
	tokenAudience = "speedgarage-client"

	accessTokenTTL  = 4 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config     *config.Config
	db         *gorm.DB
	redis      *redis.Client
	userRepo   repository.UserRepository
	carRepo    repository.CarRepository
	reviewRepo repository.ReviewRepository
	imageRepo  repository.ImageRepository

	carService    *service.CarService
	reviewService *service.ReviewService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	userRepo := repository.NewUserRepository(db)
	carRepo := repository.NewCarRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	imageRepo := repository.NewImageRepository(db)

	return &Server{
		config:        cfg,
		db:            db,
		redis:         redisClient,
		userRepo:      userRepo,
		carRepo:       carRepo,
		reviewRepo:    reviewRepo,
		imageRepo:     imageRepo,
		carService:    service.NewCarService(carRepo),
		reviewService: service.NewReviewService(reviewRepo, carRepo),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// Panic recovery
	app.Use(recover.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.Tracing())
	}

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Prometheus metrics with per-route labels
	prom := observability.HTTPMetrics("speedgarage")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	s.registerRoutes(app)
}

// registerRoutes mounts the API surface. Kept separate from the metrics
// registration so tests can mount routes on throwaway apps.
func (s *Server) registerRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/", s.HealthCheck)

	// Auth routes
	api.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	api.Post("/token", middleware.RateLimit(s.redis, 10, 5*time.Minute, "token"), s.Token)
	api.Post("/token/refresh", middleware.RateLimit(s.redis, 30, 5*time.Minute, "token_refresh"), s.RefreshToken)

	// Public review reads
	reviews := api.Group("/reviews")
	reviews.Get("/", s.ListReviews)
	reviews.Get("/:id", s.GetReview)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Caller profile
	protected.Get("/me", s.Me)
	protected.Put("/me", s.UpdateMe)

	// Cars require authentication even for reads. Specific routes before
	// the generic /:id.
	protectedCars := protected.Group("/cars")
	protectedCars.Get("/", s.ListCars)
	protectedCars.Get("/top", s.TopCars)
	protectedCars.Get("/brands", s.Brands)
	protectedCars.Get("/models", s.Models)
	protectedCars.Get("/years", s.Years)
	protectedCars.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_car"), s.CreateCar)
	protectedCars.Get("/:id/images", s.ListCarImages)
	protectedCars.Post("/:id/images", s.UploadCarImage)
	protectedCars.Delete("/:id/images/:imageId", s.DeleteCarImage)
	protectedCars.Get("/:id", s.GetCar)
	protectedCars.Put("/:id", s.UpdateCar)
	protectedCars.Delete("/:id", s.DeleteCar)

	protectedReviews := protected.Group("/reviews")
	protectedReviews.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_review"), s.CreateReview)
	protectedReviews.Post("/:id/like", s.LikeReview)
	protectedReviews.Delete("/:id/like", s.UnlikeReview)
	protectedReviews.Put("/:id", s.UpdateReview)
	protectedReviews.Delete("/:id", s.DeleteReview)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "SpeedGarage",
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It accepts access
// tokens only; refresh tokens cannot authorize API calls.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if typ, ok := claims["typ"].(string); !ok || typ != "access" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Access token required"))
		}

		userID, ok := subjectID(claims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// parseToken validates the signature, expiry, issuer and audience and
// returns the claims.
func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uint, bool) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// optionalUserID extracts the caller's identity from the Authorization header
// without enforcing it. Anonymous and invalid tokens both yield (0, false).
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	claims, err := s.parseToken(parts[1])
	if err != nil {
		return 0, false
	}
	if typ, ok := claims["typ"].(string); !ok || typ != "access" {
		return 0, false
	}
	return subjectID(claims)
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "SpeedGarage API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.Error("unhandled error", "error", err.Error(), "path", c.Path())
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr.Error())
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr.Error())
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
