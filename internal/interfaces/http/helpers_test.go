package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/accounts-api/internal/application/auth"
	"github.com/jhoicas/accounts-api/internal/application/usecase"
	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/domain/repository/repositorytest"
	apphttp "github.com/jhoicas/accounts-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/accounts-api/pkg/jwt"
	"github.com/jhoicas/accounts-api/pkg/logger"
	"github.com/jhoicas/accounts-api/pkg/password"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "accounts-api-test"
)

type testEnv struct {
	app    *fiber.App
	repo   *repositorytest.InMemoryUserRepository
	tokens *pkgjwt.Service
}

// newEnv arma la app completa sobre el repositorio en memoria. opts ajusta las dependencias.
func newEnv(t *testing.T, opts ...func(*apphttp.RouterDeps)) *testEnv {
	t.Helper()
	repo := repositorytest.NewInMemoryUserRepository()
	tokens := pkgjwt.NewService(pkgjwt.Config{Secret: testJWTSecret, TTL: time.Hour, Issuer: testIssuer})
	log := logger.Nop()

	deps := apphttp.RouterDeps{
		AuthUC:         auth.NewAuthUseCase(repo, password.NewHasher(bcrypt.MinCost), tokens, log),
		UserUC:         usecase.NewUserUseCase(repo, log),
		Tokens:         tokens,
		Validator:      validation.New(),
		Cookie:         apphttp.CookieConfig{Secure: true, TTL: tokens.TTL()},
		RequestTimeout: 5 * time.Second,
		Log:            log,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testEnv{app: apphttp.NewApp("accounts-api-test", deps), repo: repo, tokens: tokens}
}

// do lanza la petición; body puede ser nil, string o cualquier valor serializable a JSON.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: apphttp.CookieName, Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// signUp registra un usuario y devuelve el token de la cookie.
func (e *testEnv) signUp(t *testing.T, name, email, role string) string {
	t.Helper()
	body := map[string]string{"name": name, "email": email, "password": "secret1"}
	if role != "" {
		body["role"] = role
	}
	resp := e.do(t, http.MethodPost, "/api/auth/sign-up", body, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	c := sessionCookie(resp)
	require.NotNil(t, c, "sign-up debe fijar la cookie de sesión")
	return c.Value
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == apphttp.CookieName {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
