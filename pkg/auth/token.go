package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/vineinventory-viewer/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ErrInvalidViewerToken is the single failure callers see for any bad token.
var ErrInvalidViewerToken = errors.New("invalid viewer token")

// MintViewerToken issues a signed viewer token for identity using the configured TTL.
func MintViewerToken(cfg config.JWTConfig, now time.Time, identity ViewerIdentity) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if identity.TelegramID <= 0 {
		return "", fmt.Errorf("telegram id must be positive")
	}
	business := strings.TrimSpace(identity.BusinessName)
	if business == "" {
		return "", fmt.Errorf("business name is required")
	}

	registered := jwt.RegisteredClaims{
		Issuer:   cfg.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if cfg.ExpirationMinutes > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute))
	}

	claims := ViewerTokenClaims{
		TelegramID:       identity.TelegramID,
		BusinessName:     business,
		RegisteredClaims: registered,
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseViewerToken validates the token and returns its claims. Every failure
// wraps ErrInvalidViewerToken; the cause is kept for logging only.
func ParseViewerToken(cfg config.JWTConfig, tokenString string) (*ViewerTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: jwt secret is not configured", ErrInvalidViewerToken)
	}
	raw := strings.TrimSpace(tokenString)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidViewerToken)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &ViewerTokenClaims{}
	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidViewerToken, err)
	}

	claims.BusinessName = strings.TrimSpace(claims.BusinessName)
	if claims.TelegramID <= 0 || claims.BusinessName == "" {
		return nil, fmt.Errorf("%w: missing telegram_id or business_name", ErrInvalidViewerToken)
	}
	return claims, nil
}

// Validator binds the JWT settings so handlers only deal with raw tokens.
type Validator struct {
	cfg config.JWTConfig
}

func NewValidator(cfg config.JWTConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate returns the identity carried by a valid token.
func (v *Validator) Validate(token string) (ViewerIdentity, error) {
	claims, err := ParseViewerToken(v.cfg, token)
	if err != nil {
		return ViewerIdentity{}, err
	}
	return claims.Identity(), nil
}
