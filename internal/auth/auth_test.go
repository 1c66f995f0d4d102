package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/auth"
	"github.com/straye-as/crm-reports/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(sub uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   sub.String(),
		"email": "ana@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{
			"full_name": "Ana Torres",
		},
		"app_metadata": map[string]interface{}{
			"roles": []interface{}{"ROL_ADMIN", "ROL_VENDEDOR"},
		},
	}
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	sub := uuid.New()
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret})

	user, err := v.ValidateToken(signToken(t, testSecret, validClaims(sub)))
	require.NoError(t, err)
	assert.Equal(t, sub, user.UserID)
	assert.Equal(t, "Ana Torres", user.DisplayName)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, []string{"ROL_ADMIN", "ROL_VENDEDOR"}, user.Roles)
	assert.True(t, user.IsAdmin([]string{"admin", "ROL_ADMIN"}))
}

func TestJWTValidator_Rejects(t *testing.T) {
	sub := uuid.New()
	v := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret, Issuer: "crm"})

	expired := validClaims(sub)
	expired["iss"] = "crm"
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	wrongIssuer := validClaims(sub)
	wrongIssuer["iss"] = "elsewhere"

	noExp := validClaims(sub)
	noExp["iss"] = "crm"
	delete(noExp, "exp")

	good := validClaims(sub)
	good["iss"] = "crm"

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: signToken(t, testSecret, expired), wantErr: auth.ErrExpiredToken},
		{name: "wrong issuer", token: signToken(t, testSecret, wrongIssuer), wantErr: auth.ErrInvalidToken},
		{name: "missing exp", token: signToken(t, testSecret, noExp), wantErr: auth.ErrInvalidToken},
		{name: "wrong secret", token: signToken(t, "other", good), wantErr: auth.ErrInvalidToken},
		{name: "garbage", token: "not-a-token", wantErr: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractRoles(t *testing.T) {
	roles := auth.ExtractRoles(jwt.MapClaims{
		"app_metadata": map[string]interface{}{"role": "ROL_VENDEDOR", "roles": []interface{}{"ROL_VENDEDOR"}},
		"roles":        []interface{}{"admin"},
	})
	assert.Equal(t, []string{"ROL_VENDEDOR", "admin"}, roles)
}

func TestIsAdmin(t *testing.T) {
	admins := []string{"admin", "ROL_ADMIN"}

	assert.False(t, auth.IsAdmin(context.Background(), admins))

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{Roles: []string{"ROL_VENDEDOR"}})
	assert.False(t, auth.IsAdmin(ctx, admins))

	ctx = auth.WithUserContext(context.Background(), &auth.UserContext{Roles: []string{"rol_admin"}})
	assert.True(t, auth.IsAdmin(ctx, admins))

	assert.True(t, auth.IsAdmin(auth.SystemContext(context.Background(), "admin"), admins))
}

func TestMiddleware_Authenticate(t *testing.T) {
	cfg := &config.Config{
		Auth:   config.AuthConfig{JWTSecret: testSecret, AdminRoles: []string{"admin"}},
		ApiKey: config.ApiKeyConfig{Value: "key-123"},
	}
	m := auth.NewMiddleware(cfg, zap.NewNop())

	var seen *auth.UserContext
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantAdmin  bool
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "bad scheme", headers: map[string]string{"Authorization": "Basic abc"}, wantStatus: http.StatusUnauthorized},
		{name: "bad api key", headers: map[string]string{"x-api-key": "nope"}, wantStatus: http.StatusUnauthorized},
		{name: "api key", headers: map[string]string{"x-api-key": "key-123"}, wantStatus: http.StatusOK, wantAdmin: true},
		{
			name:       "bearer",
			headers:    map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, validClaims(uuid.New()))},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, tt.wantAdmin, seen.IsAdmin([]string{"admin"}))
			}
		})
	}
}
