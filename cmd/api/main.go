package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/finora/finora-backend/internal/classifier"
	"github.com/dafibh/finora/finora-backend/internal/config"
	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/handler"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/repository/cache"
	"github.com/dafibh/finora/finora-backend/internal/repository/postgres"
	"github.com/dafibh/finora/finora-backend/internal/repository/storage"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// @title Finora API
// @version 1.0
// @description Ledger derivation engine for personal finances
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Connect to database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load timezone")
	}
	clock := domain.SystemClock{Location: location}

	catalog, err := cfg.Catalog.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build category catalog")
	}

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		log.Warn().Err(err).Str("locale", cfg.Locale).Msg("Invalid locale, falling back to pt-BR")
		locale = language.BrazilianPortuguese
	}

	importRules, err := service.ParseCategoryRules(cfg.ImportCategoryRules)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse import category rules")
	}

	// Optional external services
	var attachmentStore storage.AttachmentStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3AttachmentStore(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create attachment store")
		}
		attachmentStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Attachment storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, attachments disabled")
	}

	var categoryClassifier service.CategoryClassifier
	if cfg.Gemini.APIKey != "" {
		geminiClassifier, err := classifier.New(ctx, classifier.Config{
			APIKey:           cfg.Gemini.APIKey,
			Model:            cfg.Gemini.Model,
			Timeout:          cfg.Gemini.Timeout,
			FailureThreshold: 5,
			CooldownPeriod:   time.Minute,
		}, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create category classifier")
		}
		categoryClassifier = geminiClassifier
		log.Info().Str("model", cfg.Gemini.Model).Msg("Category classifier enabled")
	}

	var suggestionCache service.SuggestionCache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewSuggestionCache(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to suggestion cache")
		}
		defer redisCache.Close()
		suggestionCache = redisCache
	}

	// Initialize repositories
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	goalRepo := postgres.NewGoalRepository(pool)
	debtRepo := postgres.NewDebtRepository(pool)
	closureRepo := postgres.NewClosureRepository(pool)
	flowRepo := postgres.NewFlowViewRepository(pool)

	// Initialize services
	authService := service.NewAuthService(workspaceRepo)
	closureService := service.NewClosureService(closureRepo)
	transactionService := service.NewTransactionService(transactionRepo, cardRepo, closureService)
	cardService := service.NewCardService(cardRepo)
	invoiceService := service.NewInvoiceService(transactionRepo, cardRepo, closureService, clock)
	budgetService := service.NewBudgetService(budgetRepo, transactionRepo, clock)
	goalService := service.NewGoalService(goalRepo, transactionService, clock)
	debtService := service.NewDebtService(debtRepo, transactionService, clock)
	balanceService := service.NewBalanceService(transactionRepo, clock)
	reportService := service.NewReportService(flowRepo)
	notificationService := service.NewNotificationService(transactionRepo, budgetRepo, clock, locale)
	recurrenceService := service.NewRecurrenceService(transactionRepo, closureService, clock, log.Logger, cfg.Automation.HorizonMonths)
	automationService := service.NewAutomationService(
		transactionRepo, goalRepo, budgetRepo,
		goalService, recurrenceService, notificationService,
		clock, log.Logger,
	)
	importService := service.NewImportService(transactionService, importRules)
	categoryService := service.NewCategoryService(catalog, categoryClassifier, suggestionCache)
	attachmentService := service.NewAttachmentService(attachmentStore, transactionRepo, closureService)

	// Real-time updates
	hub := websocket.NewHub()
	transactionService.SetEventPublisher(hub)
	invoiceService.SetEventPublisher(hub)
	goalService.SetEventPublisher(hub)
	debtService.SetEventPublisher(hub)
	closureService.SetEventPublisher(hub)
	automationService.SetEventPublisher(hub)
	attachmentService.SetEventPublisher(hub)

	// Create workspace provider adapter for auth middleware
	workspaceProvider := &workspaceProviderAdapter{authService: authService}

	// One Auth0 validator serves both bearer auth and /ws tokens
	tokenValidator, err := middleware.NewAuth0Validator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Auth0 validator")
	}
	authMiddleware := middleware.NewAuthMiddlewareWithValidator(tokenValidator, workspaceProvider)
	wsTokens := websocket.NewTokenResolver(tokenValidator, workspaceProvider)

	suggestLimiter := middleware.NewRateLimiterWithConfig(cfg.Automation.SuggestPerMin, cfg.Automation.SuggestBurst)
	defer suggestLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Transaction:  handler.NewTransactionHandler(transactionService, importService, attachmentService, catalog),
		Card:         handler.NewCardHandler(cardService, invoiceService, catalog),
		Budget:       handler.NewBudgetHandler(budgetService, catalog),
		Goal:         handler.NewGoalHandler(goalService, catalog),
		Debt:         handler.NewDebtHandler(debtService, catalog),
		Closure:      handler.NewClosureHandler(closureService),
		Balance:      handler.NewBalanceHandler(balanceService),
		Report:       handler.NewReportHandler(reportService),
		Notification: handler.NewNotificationHandler(notificationService),
		Category:     handler.NewCategoryHandler(categoryService),
		Automation:   handler.NewAutomationHandler(automationService),
		WebSocket:    handler.NewWebSocketHandler(hub, wsTokens, cfg.CORSOrigins),
		Docs:         handler.NewDocsHandler(cfg.PublicURL),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, suggestLimiter, handlers)

	// Background automation
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	var automationWorker *service.AutomationWorker
	if cfg.Automation.Enabled {
		automationWorker = service.NewAutomationWorker(automationService, workspaceRepo, log.Logger, service.AutomationWorkerConfig{
			Interval: cfg.Automation.Interval,
		})
		automationWorker.Start(workerCtx)
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if automationWorker != nil {
		automationWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	hub.Shutdown()

	log.Info().Msg("Server exited")
}

// workspaceProviderAdapter adapts AuthService to middleware.WorkspaceProvider
// and websocket.WorkspaceLookup
type workspaceProviderAdapter struct {
	authService *service.AuthService
}

// GetWorkspaceByAuth0ID implements middleware.WorkspaceProvider
func (a *workspaceProviderAdapter) GetWorkspaceByAuth0ID(ctx context.Context, auth0ID string) (int32, error) {
	workspace, err := a.authService.GetWorkspaceByAuth0ID(ctx, auth0ID)
	if err != nil {
		return 0, err
	}
	return workspace.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
