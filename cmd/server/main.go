package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campushire/internal/auth"
	"campushire/internal/handler"
	"campushire/internal/mail"
	"campushire/internal/middleware"
	"campushire/internal/model"
	"campushire/internal/principal"
	"campushire/internal/service"
	"campushire/internal/store"
	"campushire/pkg/config"
	"campushire/pkg/database"
	"campushire/pkg/logger"
	"campushire/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("campushire")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting job portal service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.Open(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db,
		&model.User{},
		&model.College{},
		&model.Admin{},
		&model.Student{},
		&model.AdminApplication{},
		&model.Job{},
		&model.JobApplication{},
		&model.RefreshToken{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	st := store.NewGorm(db)

	// Wire up shared infrastructure
	jwtUtil := auth.NewJWTUtil(&cfg.JWT)
	hasher := auth.NewHasher(cfg.App.BcryptCost)
	mailer := mail.NewSMTP(&cfg.SMTP, cfg.App.FrontendURL)
	resolver := principal.NewResolver(st)

	// Domain services
	authService := service.NewAuth(st, jwtUtil, hasher, mailer, cfg.OneTime, log)
	appService := service.NewAdminApplications(st, hasher, mailer, cfg.OneTime, log)
	adminService := service.NewAdmins(st, hasher, mailer, cfg.OneTime, log)
	setupService := service.NewSetup(st, hasher, log)
	jobService := service.NewJobs(st, log)
	studentService := service.NewStudents(st, log)
	collegeService := service.NewColleges(st, log)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	appHandler := handler.NewAdminApplicationHandler(appService)
	adminHandler := handler.NewAdminHandler(adminService, setupService)
	jobHandler := handler.NewJobHandler(jobService)
	studentHandler := handler.NewStudentHandler(studentService)
	collegeHandler := handler.NewCollegeHandler(collegeService)
	healthHandler := handler.NewHealthHandler(st)

	authenticator := middleware.NewAuthenticator(jwtUtil, resolver)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestID)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication and onboarding
	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/verify-email", authHandler.VerifyEmail)
	authGroup.POST("/resend-verification", authHandler.ResendVerification)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.POST("/reset-password", authHandler.ResetPassword)
	authGroup.GET("/me", authHandler.Me, authenticator.Authenticate)

	// Public college directory and admin applications
	e.GET("/api/colleges", collegeHandler.ListActive)
	e.GET("/api/colleges/:id", collegeHandler.Get)
	e.POST("/api/admin-applications", appHandler.Apply)
	e.POST("/api/setup", adminHandler.Setup)

	// Authenticated API
	api := e.Group("/api", authenticator.Authenticate)

	// Super-admin surface
	api.GET("/admin-applications", appHandler.List)
	api.GET("/admin-applications/:id", appHandler.Get)
	api.POST("/admin-applications/:id/review", appHandler.Review)
	api.POST("/admins", adminHandler.CreateAdmin)
	api.GET("/admins", adminHandler.ListAdmins)
	api.GET("/colleges-all", collegeHandler.ListAll)

	// Tenant surface
	api.PATCH("/colleges/:id", collegeHandler.Update)
	api.POST("/jobs", jobHandler.Create)
	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/:id", jobHandler.Get)
	api.PATCH("/jobs/:id", jobHandler.Update)
	api.DELETE("/jobs/:id", jobHandler.Delete)
	api.POST("/jobs/:id/apply", jobHandler.Apply)
	api.GET("/jobs/:id/applications", jobHandler.ListApplications)
	api.PATCH("/jobs/:id/applications/:applicationId", jobHandler.UpdateApplicationStatus)
	api.GET("/applications/me", jobHandler.MyApplications)
	api.GET("/students", studentHandler.List)
	api.GET("/students/:id", studentHandler.Get)
	api.POST("/students/:id/assign", studentHandler.Assign)

	// Liveness probe: shut down when the database stays unreachable so the
	// orchestrator restarts the process.
	probeCtx, stopProbe := context.WithCancel(context.Background())
	defer stopProbe()
	go probeDatabase(probeCtx, st, cfg.App.HealthProbeInterval, log, func() {
		shutdown(e, log)
		os.Exit(1)
	})

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")
	stopProbe()
	shutdown(e, log)
}

// probeDatabase pings the store on an interval and calls onDead after three
// consecutive failures.
func probeDatabase(ctx context.Context, st store.Store, interval time.Duration, log *zap.Logger, onDead func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := st.Ping(pingCtx)
			cancel()
			if err != nil {
				failures++
				log.Warn("Database probe failed",
					zap.Int("consecutive_failures", failures),
					zap.Error(err))
				if failures >= 3 {
					log.Error("Database unreachable, shutting down")
					onDead()
					return
				}
				continue
			}
			failures = 0
		}
	}
}

func shutdown(e *echo.Echo, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
}
