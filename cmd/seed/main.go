// seed crea (o promueve) la cuenta admin inicial a partir de SEED_ADMIN_NAME,
// SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD. Aplica las migraciones pendientes antes.
//
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/accounts-api/internal/application/auth"
	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/infrastructure/postgres"
	"github.com/jhoicas/accounts-api/pkg/config"
	"github.com/jhoicas/accounts-api/pkg/jwt"
	"github.com/jhoicas/accounts-api/pkg/logger"
	"github.com/jhoicas/accounts-api/pkg/password"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	// Mismas reglas que el registro por HTTP.
	in, err := validation.New().SignUpRequest(dto.SignUpRequest{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Role:     "admin",
	})
	if err != nil {
		return fmt.Errorf("SEED_ADMIN_*: %w", err)
	}

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString())
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	uc := auth.NewAuthUseCase(
		postgres.NewUserRepository(pool),
		password.NewHasher(cfg.Security.BcryptCost),
		jwt.NewService(jwt.Config{Secret: cfg.JWT.Secret, TTL: cfg.JWT.TTL(), Issuer: cfg.JWT.Issuer}),
		log,
	)
	res, err := uc.EnsureAdmin(ctx, in)
	if err != nil {
		return err
	}
	log.Info().Str("email", in.Email).Str("result", string(res)).Msg("admin inicial")
	return nil
}
