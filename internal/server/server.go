package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "alumnet/docs" // swagger docs
	"alumnet/internal/config"
	"alumnet/internal/featureflags"
	"alumnet/internal/middleware"
	"alumnet/internal/models"
	"alumnet/internal/notifications"
	"alumnet/internal/repository"
	"alumnet/internal/service"
	"alumnet/internal/tokenstore"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	tokens         tokenstore.Store
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	authService         *service.AuthService
	userService         *service.UserService
	avatarService       *service.AvatarService
	connectionService   *service.ConnectionService
	moderationService   *service.ModerationService
	listingService      *service.ListingService
	notificationService *service.NotificationService
	sparkService        *service.SparkService
	searchService       *service.SearchService
	issueService        *service.IssueService
	chatService         *service.ChatService
	questionService     *service.QuestionService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil: credentials then live in process memory and realtime
// events reach only sockets connected to this instance.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server: config and database are required")
	}

	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	modRepo := repository.NewModerationRepository(db)
	listingRepo := repository.NewListingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	sparkRepo := repository.NewSparkRepository(db)
	searchRepo := repository.NewSearchRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	chatRepo := repository.NewChatRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	var tokens tokenstore.Store
	if redisClient != nil {
		tokens = tokenstore.NewRedisStore(redisClient)
	} else {
		tokens = tokenstore.NewMemoryStore()
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("alumnet-api"),
		userRepo:       userRepo,
		tokens:         tokens,
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	dispatcher := notifications.NewDispatcher(s.hub, s.notifier)
	s.notificationService = service.NewNotificationService(notifRepo, userRepo, dispatcher)
	s.authService = service.NewAuthService(userRepo, tokens, service.AuthSettings{
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL(),
		OTPTTL:     cfg.OTPTTL(),
	})
	s.userService = service.NewUserService(userRepo)
	s.avatarService = service.NewAvatarService(s.userService, cfg)
	s.connectionService = service.NewConnectionService(connRepo, userRepo, s.notificationService, cfg.ConnectionGemReward)
	s.moderationService = service.NewModerationService(modRepo, listingRepo, s.notificationService)
	s.listingService = service.NewListingService(listingRepo)
	s.sparkService = service.NewSparkService(sparkRepo, userRepo)
	s.searchService = service.NewSearchService(searchRepo)
	s.issueService = service.NewIssueService(issueRepo)
	s.chatService = service.NewChatService(chatRepo, connRepo, userRepo, s.notificationService)
	s.questionService = service.NewQuestionService(questionRepo, userRepo, s.notificationService)

	return s, nil
}

// SetClock replaces the time source of every service that reads the clock.
func (s *Server) SetClock(now service.Clock) {
	s.authService.SetClock(now)
	s.connectionService.SetClock(now)
	s.moderationService.SetClock(now)
	s.listingService.SetClock(now)
	s.sparkService.SetClock(now)
	s.issueService.SetClock(now)
	s.chatService.SetClock(now)
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	maxUpload := s.config.AvatarMaxUploadMB
	if maxUpload <= 0 {
		maxUpload = service.DefaultAvatarMaxUploadMB
	}

	app := fiber.New(fiber.Config{
		AppName:   "Alumnet API",
		BodyLimit: (maxUpload + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// avatars are embedded by the frontend origin
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	auth := s.AuthRequired()
	optional := s.OptionalAuth()
	admin := s.AdminRequired()

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	uploadDir := s.config.UploadDir
	if uploadDir == "" {
		uploadDir = service.DefaultUploadDir
	}
	app.Static(service.AvatarURLPrefix, uploadDir, fiber.Static{Browse: false, MaxAge: 3600})

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Alumnet Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", auth, s.Logout)
	authGroup.Post("/forgot-password", middleware.RateLimit(s.redis, 3, 10*time.Minute, "forgot_password"), s.ForgotPassword)
	authGroup.Post("/verify-otp", middleware.RateLimit(s.redis, 10, 10*time.Minute, "verify_otp"), s.VerifyOTP)
	authGroup.Post("/reset-password", s.ResetPassword)

	// Users. Specific /me and /:username/<resource> routes come before /:username.
	api.Get("/users/me", auth, s.GetMyProfile)
	api.Put("/users/me", auth, s.UpdateMyProfile)
	api.Post("/users/me/avatar", auth, s.UploadAvatar)
	api.Get("/users/:username/connections", auth, s.ListConnections)
	api.Get("/users/:username/suggestions", auth, s.FeatureRequired(featureflags.FlagSuggestions), s.ListSuggestions)
	api.Get("/users/:username/questions", auth, s.FeatureRequired(featureflags.FlagQuestions), s.ListUserQuestions)
	api.Get("/users/:username", s.GetUserProfile)

	api.Get("/leaderboard", s.GetLeaderboard)
	api.Get("/alumni/top-liked", s.GetTopLikedAlumni)
	api.Get("/alumni/:id", auth, s.GetAlumnus)
	api.Post("/alumni/:id/like", auth, s.LikeAlumnus)

	// Connections
	conns := api.Group("/connections", auth)
	conns.Post("/request/:username", middleware.RateLimit(s.redis, 20, 5*time.Minute, "connection_request"), s.SendConnectionRequest)
	conns.Get("/requests/pending", s.ListPendingRequests)
	conns.Get("/requests/sent", s.ListSentRequests)
	conns.Post("/requests/accept/:requesterId", s.AcceptConnectionRequest)
	conns.Post("/requests/ignore/:requesterId", s.IgnoreConnectionRequest)
	conns.Get("/status/:username", s.GetConnectionStatus)
	conns.Delete("/:username", s.RemoveConnection)

	// Listings and submissions, one set of routes per item type.
	for _, t := range models.ItemTypes {
		path := "/" + t.Plural()
		api.Get(path, s.ListItems(t))
		api.Get(path+"/:id", s.GetItem(t))
		api.Post(path, auth, middleware.RateLimit(s.redis, 5, 10*time.Minute, "submission"), s.SubmitItem(t))
	}
	api.Get("/feed/events", s.GetFeed)
	api.Get("/submissions/me", auth, s.ListMySubmissions)

	// Notifications
	notifs := api.Group("/notifications", auth)
	notifs.Get("/", s.ListNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/mark-read", s.MarkNotificationsRead)

	// Daily Spark
	spark := api.Group("/daily-spark")
	spark.Get("/today", s.GetTodaySpark)
	spark.Get("/today/answers", s.GetTodayAnswers)
	spark.Get("/top-liked", s.GetTopSparkQuestions)
	spark.Post("/questions", auth, s.PostSparkQuestion)
	spark.Post("/submit", auth, s.SubmitSparkAnswer)
	spark.Post("/answers/:id/upvote", auth, s.VoteSparkAnswer(true))
	spark.Post("/answers/:id/downvote", auth, s.VoteSparkAnswer(false))

	// Expert Q&A
	qa := s.FeatureRequired(featureflags.FlagQuestions)
	api.Get("/questions/popular", qa, s.GetPopularQuestions)
	api.Post("/questions", auth, qa, middleware.RateLimit(s.redis, 10, 10*time.Minute, "ask_question"), s.AskQuestion)
	api.Post("/questions/:id/like", auth, qa, s.LikeQuestion)
	api.Post("/questions/:id/answers", auth, qa, s.AnswerQuestion)

	// Search
	api.Get("/search/history", auth, s.GetSearchHistory)
	api.Get("/search", optional, middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.Search)

	// Help
	api.Post("/help/submit-issue", optional, middleware.RateLimit(s.redis, 5, 10*time.Minute, "submit_issue"), s.SubmitIssue)

	// Chat
	chat := s.FeatureRequired(featureflags.FlagChat)
	api.Get("/contacts", auth, chat, s.GetContacts)
	api.Get("/chat/:username/messages", auth, chat, s.GetChatMessages)
	api.Post("/chat/:username/messages", auth, chat, middleware.RateLimit(s.redis, 30, time.Minute, "send_chat"), s.SendChatMessage)

	// Realtime notifications
	api.Get("/ws", auth, s.WebsocketHandler())

	// Admin
	adminGroup := api.Group("/admin", auth, admin)
	adminGroup.Get("/feature-flags", s.GetFeatureFlags)
	adminGroup.Get("/unverified-items", s.ListUnverifiedItems)
	adminGroup.Post("/unverified-items/:id/approve", s.ApproveItem)
	adminGroup.Post("/unverified-items/:id/reject", s.RejectItem)
	for _, t := range models.ItemTypes {
		adminGroup.Post("/"+t.Plural(), s.CreateItemDirect(t))
	}
	adminGroup.Get("/users", s.AdminListUsers)
	adminGroup.Put("/users/:id/status", s.AdminSetUserStatus)
	adminGroup.Put("/users/:id/role", s.AdminSetUserRole)
	adminGroup.Put("/users/:id/activity", s.AdminSetUserActivity)
	adminGroup.Get("/issues", s.AdminListIssues)
	adminGroup.Put("/issues/:id/status", s.AdminUpdateIssueStatus)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: when it
// is not configured the instance still serves, so it reports "disabled".
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, wires realtime fan-in and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.NewApp()

	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	if ms, ok := s.tokens.(*tokenstore.MemoryStore); ok {
		go ms.RunSweeper(s.shutdownCtx, time.Minute)
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s shutdown: %w", s.hub.Name(), err))
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close sql DB: %w", cerr))
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
