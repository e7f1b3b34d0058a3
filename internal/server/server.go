// Package server wires the HTTP layer: the Fiber app, routes, auth
// middleware and request handlers.
package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stackit/internal/cache"
	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/notifications"
	"stackit/internal/repository"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// JWT issuer and audience claims for tokens minted by this API.
const (
	jwtIssuer   = "stackit-api"
	jwtAudience = "stackit-client"
)

// Server holds the application dependencies and the Fiber app.
type Server struct {
	app    *fiber.App
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client

	userRepo         repository.UserRepository
	questionRepo     repository.QuestionRepository
	answerRepo       repository.AnswerRepository
	commentRepo      repository.CommentRepository
	tagRepo          repository.TagRepository
	notificationRepo repository.NotificationRepository

	questionService     *service.QuestionService
	answerService       *service.AnswerService
	notificationService *service.NotificationService
}

// NewServer constructs the server from configuration: connects the database
// and Redis, then wires repositories, services and routes.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, rdb), nil
}

// NewServerWithDeps wires a server from already constructed dependencies.
// Used by tests to inject an in-memory database and Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Server {
	s := &Server{
		config: cfg,
		db:     db,
		redis:  rdb,
	}

	s.userRepo = repository.NewUserRepository(db)
	s.questionRepo = repository.NewQuestionRepository(db)
	s.answerRepo = repository.NewAnswerRepository(db)
	s.commentRepo = repository.NewCommentRepository(db)
	s.tagRepo = repository.NewTagRepository(db)
	s.notificationRepo = repository.NewNotificationRepository(db)

	notifier := notifications.NewNotifier(rdb)
	s.notificationService = service.NewNotificationService(s.notificationRepo, notifier)
	notify := s.notificationService.Notify

	s.questionService = service.NewQuestionService(s.questionRepo, s.answerRepo, s.tagRepo, s.userRepo, notify)
	s.answerService = service.NewAnswerService(s.answerRepo, s.questionRepo, s.commentRepo, s.userRepo, notify)

	s.app = fiber.New(fiber.Config{
		AppName:      "stackit",
		ErrorHandler: s.errorHandler,
	})
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// App exposes the underlying Fiber app, mainly for tests using app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return models.RespondWithError(c, fiberErr.Code, err)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "Unhandled handler error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError("request", err))
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(middleware.TracingMiddleware())
	s.app.Use(middleware.ContextMiddleware())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	s.app.Use(middleware.StructuredLogger())

	prom := middleware.InitMetrics("stackit")
	prom.RegisterAt(s.app, "/metrics")
	s.app.Use(middleware.MetricsMiddleware(prom))
}

func (s *Server) setupRoutes() {
	s.app.Get("/health/live", s.LivenessCheck)
	s.app.Get("/health/ready", s.ReadinessCheck)

	api := s.app.Group("/api")
	api.Get("/", s.HealthCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "stackit metrics"}))

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/me", s.AuthRequired(), s.GetMe)
	auth.Put("/profile", s.AuthRequired(), s.UpdateProfile)

	questions := api.Group("/questions")
	questions.Get("/", s.GetQuestions)
	questions.Get("/:id", s.GetQuestion)
	questions.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 10, time.Minute, "create_question"), s.CreateQuestion)
	questions.Put("/:id/accept/:answerId", s.AuthRequired(), s.AcceptQuestionAnswer)
	questions.Delete("/:id", s.AuthRequired(), s.DeleteQuestion)

	// Specific answer routes go before the generic POST /:questionId.
	answers := api.Group("/answers", s.AuthRequired())
	answers.Post("/:id/vote", s.VoteAnswer)
	answers.Post("/:id/accept", s.ToggleAcceptAnswer)
	answers.Post("/:id/comments", middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.AddComment)
	answers.Post("/:questionId", middleware.RateLimit(s.redis, 10, time.Minute, "create_answer"), s.CreateAnswer)
	answers.Delete("/:id", s.DeleteAnswer)

	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Get("/popular", s.GetPopularTags)
	tags.Post("/", s.AuthRequired(), s.AdminRequired(), s.CreateTag)

	notificationRoutes := api.Group("/notifications", s.AuthRequired())
	notificationRoutes.Get("/", s.GetNotifications)
	notificationRoutes.Put("/:id/read", s.MarkNotificationRead)
	notificationRoutes.Patch("/read-all", s.MarkAllNotificationsRead)

	stats := api.Group("/stats", s.AuthRequired())
	stats.Get("/me", s.GetMyStats)
}

// HealthCheck reports basic service identity.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"service": "stackit",
		"status":  "ok",
	})
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// ReadinessCheck reports whether the database and Redis are reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"status": "ready", "database": "ok", "redis": "ok"}
	code := fiber.StatusOK

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = fiber.StatusServiceUnavailable
	}
	if s.redis == nil {
		status["redis"] = "disabled"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		status["redis"] = "unreachable"
	}

	return c.Status(code).JSON(status)
}

// AuthRequired validates the Bearer token and stores the authenticated user
// ID in both fiber locals and the request context for downstream logging.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Missing or malformed authorization header"))
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.config.JWTSecret), nil
		}, jwt.WithIssuer(jwtIssuer), jwt.WithAudience(jwtAudience))
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token subject"))
		}

		c.Locals("userID", uint(userID))
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AdminRequired allows only users holding the admin role. Must run after
// AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
		if err != nil {
			return respondAppError(c, err)
		}
		if !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    jwtIssuer,
		Audience:  jwt.ClaimStrings{jwtAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	middleware.Logger.Info("Starting server", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
