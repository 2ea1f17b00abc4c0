package http

import (
	nethttp "net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/jhoicas/accounts-api/internal/application/auth"
	"github.com/jhoicas/accounts-api/internal/application/usecase"
	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
	"github.com/jhoicas/accounts-api/internal/infrastructure/metrics"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *usecase.UserUseCase
	Tokens    TokenVerifier
	Validator *validation.Validator

	Limiter  RateLimiter // nil desactiva el rate limiting
	Security SecurityConfig
	Cookie   CookieConfig

	RequestTimeout time.Duration
	SwaggerFile    string // vacío o inexistente: sin /docs

	Metrics        *metrics.Metrics
	MetricsHandler nethttp.Handler // nil: sin /metrics
	Log            *logger.Logger
	StartedAt      time.Time
}

// NewApp crea la app Fiber con el manejador de errores del API y registra las rutas.
func NewApp(name string, deps RouterDeps) *fiber.App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: ErrorHandler(deps.Log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	Router(app, deps)
	return app
}

// Router registra middleware y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestLogger(log, deps.Metrics))
	app.Use(recover.New())

	// Probes y métricas quedan fuera del rate limiting.
	app.Get("/health", Health(deps.StartedAt))
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			// Swagger UI: http://localhost:<port>/docs
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "Accounts API",
			}))
		} else {
			log.Warn().Str("file", deps.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Use(RequestTimeout(deps.RequestTimeout))
	app.Use(OptionalAuth(deps.Tokens))
	app.Use(SecurityMiddleware(deps.Limiter, deps.Security, log, deps.Metrics))

	api := app.Group("/api")
	api.Get("/", Info)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Validator, deps.Cookie, log, deps.Metrics)
	authGroup.Post("/sign-up", authHandler.SignUp)
	authGroup.Post("/sign-in", authHandler.SignIn)
	authGroup.Post("/sign-out", authHandler.SignOut)

	// Users (requieren cookie de sesión)
	users := api.Group("/users", AuthMiddleware(deps.Tokens, log))
	userHandler := NewUserHandler(deps.UserUC, deps.Validator, log)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", RequireRole(entity.RoleAdmin, log), userHandler.Delete)
}
