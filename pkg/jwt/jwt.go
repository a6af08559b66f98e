package jwt

import (
	"errors"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"costedge/backend/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Roles carried in the role claim.
const (
	RoleAdmin     = "ADMIN"
	RoleManager   = "MANAGER"
	RoleDataEntry = "DATAENTRY"
	RoleViewer    = "VIEWER"
)

// Claims bearer token claims. Tokens are issued by the identity service.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwtv5.RegisteredClaims
}

// Manager verifies HS256 bearer tokens.
type Manager struct {
	secret []byte
	issuer string
}

// NewManager returns nil when auth is disabled.
func NewManager(cfg *config.AuthConfig) *Manager {
	if !cfg.Enabled() {
		return nil
	}
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}
}

// ParseToken parses and verifies a token.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	opts := []jwtv5.ParserOption{jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(m.issuer))
	}

	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
