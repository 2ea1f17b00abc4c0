package http

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
	"github.com/jhoicas/accounts-api/internal/infrastructure/metrics"
	"github.com/jhoicas/accounts-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// RateLimiter decide si una petición entra en la ventana (lo implementa *ratelimit.Limiter).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int) (ratelimit.Decision, error)
}

// SecurityConfig límites por rol y User-Agents bloqueados.
type SecurityConfig struct {
	Limits       map[entity.Role]int
	BotBlocklist []string
}

// SecurityMiddleware bloquea bots conocidos y aplica el límite del rol del llamante
// (guest si no hay sesión). Con limiter nil solo se aplica el bloqueo de bots.
// Si Redis falla la petición pasa y se registra el error.
func SecurityMiddleware(limiter RateLimiter, cfg SecurityConfig, log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	blocklist := make([]string, 0, len(cfg.BotBlocklist))
	for _, b := range cfg.BotBlocklist {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			blocklist = append(blocklist, b)
		}
	}

	return func(c *fiber.Ctx) error {
		ua := c.Get(fiber.HeaderUserAgent)
		if isBot(ua, blocklist) {
			m.BotBlocked()
			log.Warn().Str("ip", c.IP()).Str("user_agent", ua).Str("path", c.Path()).Msg("petición de bot bloqueada")
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "BOT_BLOCKED", Error: msgBotForbidden})
		}
		if limiter == nil {
			return c.Next()
		}

		role := entity.RoleGuest
		identity := c.IP()
		if subject, ok := GetSubject(c); ok {
			role = subject.Role
			identity = strconv.FormatInt(subject.UserID, 10)
		}

		decision, err := limiter.Allow(c.UserContext(), ratelimit.Key(string(role), identity), cfg.Limits[role])
		if err != nil {
			log.Error().Err(err).Str("role", string(role)).Str("path", c.Path()).Msg("rate limiter no disponible, se deja pasar")
			return c.Next()
		}
		if decision.Limit > 0 {
			c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}
		// 429 y no 403: el cliente puede reintentar tras Retry-After.
		if !decision.Allowed {
			m.RateLimited(string(role))
			log.Warn().
				Str("ip", c.IP()).
				Str("user_agent", ua).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Str("role", string(role)).
				Msg("rate limit excedido")
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:  "RATE_LIMITED",
				Error: cases.Title(language.English).String(string(role)) + " rate limit exceeded",
			})
		}
		return c.Next()
	}
}

func isBot(userAgent string, blocklist []string) bool {
	if userAgent == "" || len(blocklist) == 0 {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, b := range blocklist {
		if strings.Contains(ua, b) {
			return true
		}
	}
	return false
}
