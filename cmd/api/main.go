package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/accounts-api/internal/application/auth"
	"github.com/jhoicas/accounts-api/internal/application/usecase"
	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
	"github.com/jhoicas/accounts-api/internal/infrastructure/metrics"
	"github.com/jhoicas/accounts-api/internal/infrastructure/postgres"
	"github.com/jhoicas/accounts-api/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/accounts-api/internal/interfaces/http"
	"github.com/jhoicas/accounts-api/pkg/config"
	"github.com/jhoicas/accounts-api/pkg/jwt"
	"github.com/jhoicas/accounts-api/pkg/logger"
	"github.com/jhoicas/accounts-api/pkg/password"
)

func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		if err := migrate(cfg.DB); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("esquema al día")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Sin Redis el API sigue funcionando, solo sin rate limiting.
	var limiter httpRouter.RateLimiter
	if cfg.RateLimit.Enabled {
		rdb, err := ratelimit.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, rate limiting deshabilitado")
		} else {
			defer rdb.Close()
			limiter = ratelimit.NewLimiter(rdb, cfg.RateLimit.WindowDuration())
		}
	}

	registry := metrics.NewRegistry()
	appMetrics := metrics.NewMetrics(registry)

	userRepo := postgres.NewUserRepository(pool)
	tokens := jwt.NewService(jwt.Config{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL(),
		Issuer: cfg.JWT.Issuer,
	})
	hasher := password.NewHasher(cfg.Security.BcryptCost)

	authUC := auth.NewAuthUseCase(userRepo, hasher, tokens, log)
	userUC := usecase.NewUserUseCase(userRepo, log)

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    userUC,
		Tokens:    tokens,
		Validator: validation.New(),
		Limiter:   limiter,
		Security: httpRouter.SecurityConfig{
			Limits: map[entity.Role]int{
				entity.RoleAdmin: cfg.RateLimit.Admin,
				entity.RoleUser:  cfg.RateLimit.User,
				entity.RoleGuest: cfg.RateLimit.Guest,
			},
			BotBlocklist: cfg.Security.BotBlocklist,
		},
		Cookie: httpRouter.CookieConfig{
			Secure: cfg.HTTP.CookieSecure,
			TTL:    tokens.TTL(),
		},
		RequestTimeout: cfg.HTTP.Timeout(),
		SwaggerFile:    cfg.HTTP.SwaggerFile,
		Metrics:        appMetrics,
		MetricsHandler: metrics.Handler(registry),
		Log:            log,
		StartedAt:      startedAt,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func migrate(cfg config.DBConfig) error {
	m, err := postgres.NewMigrator(cfg.ConnectionString())
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
