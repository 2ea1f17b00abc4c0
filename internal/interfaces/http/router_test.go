package http_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
	"github.com/jhoicas/accounts-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/accounts-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/accounts-api/pkg/jwt"
)

func TestHealth(t *testing.T) {
	env := newEnv(t, func(d *apphttp.RouterDeps) { d.StartedAt = time.Now().Add(-time.Minute) })

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[apphttp.HealthResponse](t, resp)
	assert.Equal(t, "OK", body.Status)
	assert.False(t, body.Timestamp.IsZero())
	assert.GreaterOrEqual(t, body.Uptime, 60.0)
}

func TestAPIInfo(t *testing.T) {
	resp := newEnv(t).do(t, http.MethodGet, "/api", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Accounts API is running!")
}

func TestRutaInexistente(t *testing.T) {
	resp := newEnv(t).do(t, http.MethodGet, "/nope", nil, "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestSignUp_CreaYFijaCookie(t *testing.T) {
	env := newEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/sign-up",
		map[string]string{"name": " Ann ", "email": "A@X.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw := readBody(t, resp)
	assert.NotContains(t, raw, "secret1")
	assert.NotContains(t, raw, "$2a$")
	assert.JSONEq(t, `{"message":"User signed up successfully","user":{"name":"Ann","email":"a@x.com","role":"user"}}`, raw)

	c := sessionCookie(resp)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), c.MaxAge)

	id, err := env.tokens.Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, pkgjwt.Identity{ID: 1, Email: "a@x.com", Role: "user"}, id)

	stored, err := env.repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", stored.Name)
}

func TestSignUp_EmailDuplicado(t *testing.T) {
	env := newEnv(t)
	env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodPost, "/api/auth/sign-up",
		map[string]string{"name": "Other", "email": " A@X.COM", "password": "secret2"}, "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, dto.ErrorResponse{Code: "EMAIL_EXISTS", Error: "User with email exists"}, decode[dto.ErrorResponse](t, resp))
	assert.Equal(t, 1, env.repo.Count())
	assert.Nil(t, sessionCookie(resp))
}

func TestSignUp_Validacion(t *testing.T) {
	env := newEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/sign-up",
		map[string]string{"name": "A", "email": "not-an-email", "password": "123", "role": "root"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "Invalid signup data", body.Error)
	fields := map[string]bool{}
	for _, d := range body.Details {
		fields[d.Field] = true
	}
	assert.Equal(t, map[string]bool{"name": true, "email": true, "password": true, "role": true}, fields)
	assert.Zero(t, env.repo.Count())
}

func TestSignUp_CuerpoMalformado(t *testing.T) {
	resp := newEnv(t).do(t, http.MethodPost, "/api/auth/sign-up", `{"name":`, "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid signup data", decode[dto.ErrorResponse](t, resp).Error)
}

func TestSignIn(t *testing.T) {
	env := newEnv(t)
	env.signUp(t, "Root", "root@x.com", "admin")

	resp := env.do(t, http.MethodPost, "/api/auth/sign-in",
		map[string]string{"email": "ROOT@x.com ", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.AuthResponse](t, resp)
	assert.Equal(t, "User signed in successfully", body.Message)
	assert.Equal(t, dto.AuthUser{Name: "Root", Email: "root@x.com", Role: "admin"}, body.User)

	c := sessionCookie(resp)
	require.NotNil(t, c)
	id, err := env.tokens.Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, pkgjwt.Identity{ID: 1, Email: "root@x.com", Role: "admin"}, id)
}

func TestSignIn_FallosIndistinguibles(t *testing.T) {
	env := newEnv(t)
	env.signUp(t, "Ann", "a@x.com", "")

	wrongPass := env.do(t, http.MethodPost, "/api/auth/sign-in",
		map[string]string{"email": "a@x.com", "password": "wrong-pass"}, "")
	noUser := env.do(t, http.MethodPost, "/api/auth/sign-in",
		map[string]string{"email": "ghost@x.com", "password": "secret1"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	assert.Equal(t, wrongPass.StatusCode, noUser.StatusCode)
	assert.Equal(t, readBody(t, wrongPass), readBody(t, noUser))
	assert.Nil(t, sessionCookie(wrongPass))
}

func TestSignIn_Validacion(t *testing.T) {
	resp := newEnv(t).do(t, http.MethodPost, "/api/auth/sign-in", map[string]string{"email": "a@x.com"}, "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "Invalid signin data", body.Error)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "password", body.Details[0].Field)
}

func TestSignOut_LimpiaCookie(t *testing.T) {
	env := newEnv(t)
	token := env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodPost, "/api/auth/sign-out", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User signed out successfully", decode[dto.MessageResponse](t, resp).Message)

	c := sessionCookie(resp)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.True(t, c.Expires.Before(time.Now()), "la cookie debe quedar expirada")
}

func TestUsers_RequiereSesion(t *testing.T) {
	env := newEnv(t)

	resp := env.do(t, http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access token required", decode[dto.ErrorResponse](t, resp).Error)

	resp = env.do(t, http.MethodGet, "/api/users", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", decode[dto.ErrorResponse](t, resp).Error)
}

func TestUsers_List(t *testing.T) {
	env := newEnv(t)
	env.signUp(t, "Root", "root@x.com", "admin")
	token := env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodGet, "/api/users", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw := readBody(t, resp)
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "$2a$")
	assert.Contains(t, raw, `"message":"Users fetched successfully"`)
	assert.Contains(t, raw, `"email":"root@x.com"`)
	assert.Contains(t, raw, `"createdAt"`)
}

func TestUsers_GetByID(t *testing.T) {
	env := newEnv(t)
	env.signUp(t, "Root", "root@x.com", "admin")
	token := env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodGet, "/api/users/1", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode, "cualquier autenticado puede leer")
	body := decode[dto.UserDataResponse](t, resp)
	assert.Equal(t, "User fetched successfully", body.Message)
	assert.Equal(t, "Root", body.Data.Name)

	resp = env.do(t, http.MethodGet, "/api/users/99", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", decode[dto.ErrorResponse](t, resp).Error)

	for _, bad := range []string{"abc", "0", "-3", "1.5"} {
		resp = env.do(t, http.MethodGet, "/api/users/"+bad, nil, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "id %q", bad)
		assert.Equal(t, "Invalid user ID", decode[dto.ErrorResponse](t, resp).Error)
	}
}

func TestUsers_UpdatePropio(t *testing.T) {
	env := newEnv(t)
	token := env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodPut, "/api/users/1", map[string]string{"name": "Annie", "email": " ANNIE@x.com"}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.UserDataResponse](t, resp)
	assert.Equal(t, "User updated successfully", body.Message)
	assert.Equal(t, "Annie", body.Data.Name)
	assert.Equal(t, "annie@x.com", body.Data.Email)
}

func TestUsers_UpdatePayloadVacio(t *testing.T) {
	env := newEnv(t)
	token := env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodPut, "/api/users/1", map[string]string{}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ann", decode[dto.UserDataResponse](t, resp).Data.Name)
}

func TestUsers_UpdateReglas(t *testing.T) {
	env := newEnv(t)
	adminTok := env.signUp(t, "Root", "root@x.com", "admin")
	annTok := env.signUp(t, "Ann", "a@x.com", "")
	env.signUp(t, "Bob", "bob@x.com", "")

	tests := []struct {
		name     string
		path     string
		body     any
		token    string
		status   int
		errorMsg string
	}{
		{"rol propio aunque coincida", "/api/users/2", map[string]string{"role": "user"}, annTok, http.StatusForbidden, "Forbidden: Only admins can change user roles"},
		{"escalada a admin", "/api/users/2", map[string]string{"role": "admin"}, annTok, http.StatusForbidden, "Forbidden: Only admins can change user roles"},
		{"registro ajeno", "/api/users/3", map[string]string{"name": "Hacked"}, annTok, http.StatusForbidden, "Forbidden: You can only modify your own account"},
		{"inexistente", "/api/users/99", map[string]string{"name": "Ghost"}, adminTok, http.StatusNotFound, "User not found"},
		{"email tomado", "/api/users/2", map[string]string{"email": "bob@x.com"}, annTok, http.StatusConflict, "User with email exists"},
		{"rol desconocido", "/api/users/2", map[string]string{"role": "root"}, adminTok, http.StatusBadRequest, "Invalid update data"},
		{"nombre corto", "/api/users/2", map[string]string{"name": "A"}, annTok, http.StatusBadRequest, "Invalid update data"},
		{"id inválido", "/api/users/x", map[string]string{"name": "Ann"}, annTok, http.StatusBadRequest, "Invalid user ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPut, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.errorMsg, decode[dto.ErrorResponse](t, resp).Error)
		})
	}

	bob, err := env.repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Bob", bob.Name)
	ann, err := env.repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, ann.Role)
}

func TestUsers_AdminPromueve(t *testing.T) {
	env := newEnv(t)
	adminTok := env.signUp(t, "Root", "root@x.com", "admin")
	env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodPut, "/api/users/2", map[string]string{"role": "admin"}, adminTok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", decode[dto.UserDataResponse](t, resp).Data.Role)
}

func TestUsers_Delete(t *testing.T) {
	env := newEnv(t)
	adminTok := env.signUp(t, "Root", "root@x.com", "admin")
	annTok := env.signUp(t, "Ann", "a@x.com", "")
	env.signUp(t, "Bob", "bob@x.com", "")

	resp := env.do(t, http.MethodDelete, "/api/users/2", nil, annTok)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "un user no borra ni su propia cuenta")
	assert.Equal(t, "Forbidden: Insufficient permissions", decode[dto.ErrorResponse](t, resp).Error)

	resp = env.do(t, http.MethodDelete, "/api/users/3", nil, adminTok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User deleted successfully", decode[dto.MessageResponse](t, resp).Message)
	assert.Equal(t, 2, env.repo.Count())

	resp = env.do(t, http.MethodDelete, "/api/users/3", nil, adminTok)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/users/abc", nil, adminTok)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/users/2", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	env := newEnv(t, func(d *apphttp.RouterDeps) {
		d.Metrics = m
		d.MetricsHandler = metrics.Handler(reg)
	})
	env.signUp(t, "Ann", "a@x.com", "")

	resp := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw := readBody(t, resp)
	assert.Contains(t, raw, `accounts_auth_events_total{event="signup",outcome="ok"} 1`)
	assert.True(t, strings.Contains(raw, `route="/api/auth/sign-up"`), "la ruta se etiqueta con el patrón")
}
