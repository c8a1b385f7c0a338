package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/smbsuite/platform/docs"
	"github.com/smbsuite/platform/internal/api/handler"
	"github.com/smbsuite/platform/internal/api/middleware"
	"github.com/smbsuite/platform/internal/core/service"
	"github.com/smbsuite/platform/internal/infrastructure/config"
	mongodb "github.com/smbsuite/platform/internal/infrastructure/db/mongo"
	redisdb "github.com/smbsuite/platform/internal/infrastructure/db/redis"
	"github.com/smbsuite/platform/internal/infrastructure/email"
	"github.com/smbsuite/platform/internal/infrastructure/http/handlers"
	"github.com/smbsuite/platform/internal/token"
)

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)
	userRepo := mongodb.NewUserRepository(db)
	companyRepo := mongodb.NewCompanyRepository(db)
	employeeRepo := mongodb.NewEmployeeRepository(db)
	auditSink := mongodb.NewAuditRepository(db)
	mailer := email.NewLogMailer(log)
	limiter := redisdb.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)

	authService := service.NewAuthService(userRepo, companyRepo, codec, auditSink, mailer, limiter, service.TokenTTLs{
		Access:  cfg.AccessTTL,
		Refresh: cfg.RefreshTTL,
		Reset:   cfg.ResetTTL,
	}, log)
	resolver := service.NewResolver(userRepo, companyRepo, codec, auditSink, log)

	authHandler := handler.NewAuthHandler(authService)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo, auditSink, log)

	// --- Global middleware ---
	// Tenant context runs on every request, before authentication.
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("smbsuite"))
	e.Use(middleware.TenantContext(codec, auditSink, log))

	// --- Public routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/refresh", authHandler.Refresh)
	e.POST("/api/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/api/auth/reset-password", authHandler.ResetPassword)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/docs/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Protected routes ---
	authn := middleware.Authenticate(resolver)

	e.GET("/api/auth/me", authHandler.Me, authn)

	employees := e.Group("/api/employees", authn, middleware.RequireEmployee())
	employees.GET("", employeeHandler.List)
	employees.GET("/:id", employeeHandler.Get)

	return e
}
