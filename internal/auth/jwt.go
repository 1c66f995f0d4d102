package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTValidator validates HS256 session tokens issued by the CRM's auth backend
type JWTValidator struct {
	config *config.AuthConfig
	parser *jwt.Parser
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &JWTValidator{config: cfg, parser: jwt.NewParser(opts...)}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if v.config.JWTSecret == "" {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	parsedToken, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.config.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	userCtx := &UserContext{
		Email: extractString(claims, "email"),
		Roles: ExtractRoles(claims),
	}
	userCtx.DisplayName = extractNested(claims, "user_metadata", "full_name")
	if userCtx.DisplayName == "" {
		userCtx.DisplayName = extractString(claims, "name", "email")
	}

	sub, _ := claims.GetSubject()
	if uid, err := uuid.Parse(sub); err == nil {
		userCtx.UserID = uid
	} else if userCtx.Email != "" {
		userCtx.UserID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(userCtx.Email))
	}
	if userCtx.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return userCtx, nil
}

// ExtractRoles collects roles from app_metadata.roles, app_metadata.role and
// a top-level roles claim
func ExtractRoles(claims jwt.MapClaims) []string {
	var roles []string
	seen := make(map[string]bool)
	add := func(r string) {
		if r != "" && !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}

	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		for _, r := range toStrings(meta["roles"]) {
			add(r)
		}
		if r, ok := meta["role"].(string); ok {
			add(r)
		}
	}
	for _, r := range toStrings(claims["roles"]) {
		add(r)
	}
	return roles
}

func toStrings(v interface{}) []string {
	switch vals := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vals
	case string:
		return []string{vals}
	}
	return nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

func extractNested(claims jwt.MapClaims, parent, key string) string {
	meta, ok := claims[parent].(map[string]interface{})
	if !ok {
		return ""
	}
	val, _ := meta[key].(string)
	return val
}
