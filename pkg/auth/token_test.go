package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/vineinventory-viewer/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

func TestMintAndParseViewerToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "gioia-bot",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()

	token, err := MintViewerToken(cfg, now, ViewerIdentity{TelegramID: 123456789, BusinessName: " Enoteca Rossi "})
	if err != nil {
		t.Fatalf("mint viewer token: %v", err)
	}

	claims, err := ParseViewerToken(cfg, token)
	if err != nil {
		t.Fatalf("parse viewer token: %v", err)
	}
	if claims.TelegramID != 123456789 {
		t.Fatalf("expected telegram_id 123456789, got %d", claims.TelegramID)
	}
	if claims.BusinessName != "Enoteca Rossi" {
		t.Fatalf("expected trimmed business name, got %q", claims.BusinessName)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseViewerTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", ExpirationMinutes: 10}
	token, err := MintViewerToken(cfg, time.Now(), ViewerIdentity{TelegramID: 1, BusinessName: "Bar"})
	if err != nil {
		t.Fatalf("mint viewer token: %v", err)
	}

	_, err = ParseViewerToken(config.JWTConfig{Secret: "other"}, token)
	if !errors.Is(err, ErrInvalidViewerToken) {
		t.Fatalf("expected ErrInvalidViewerToken, got %v", err)
	}
}

func TestParseViewerTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", ExpirationMinutes: 15}
	token, err := MintViewerToken(cfg, time.Now().Add(-time.Hour), ViewerIdentity{TelegramID: 1, BusinessName: "Bar"})
	if err != nil {
		t.Fatalf("mint viewer token: %v", err)
	}

	_, err = ParseViewerToken(cfg, token)
	if !errors.Is(err, ErrInvalidViewerToken) {
		t.Fatalf("expected ErrInvalidViewerToken, got %v", err)
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected cause to mention expiry, got %v", err)
	}
}

func TestParseViewerTokenMissingClaims(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret"}
	cases := map[string]jwt.MapClaims{
		"missing business": {"telegram_id": 42},
		"missing telegram": {"business_name": "Bar"},
		"blank business":   {"telegram_id": 42, "business_name": "   "},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := ParseViewerToken(cfg, token); !errors.Is(err, ErrInvalidViewerToken) {
				t.Fatalf("expected ErrInvalidViewerToken, got %v", err)
			}
		})
	}
}

func TestParseViewerTokenRejectsOtherAlgorithms(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret"}
	claims := jwt.MapClaims{"telegram_id": 42, "business_name": "Bar"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseViewerToken(cfg, token); !errors.Is(err, ErrInvalidViewerToken) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}
}

func TestParseViewerTokenWithoutExpiry(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret"}
	token, err := MintViewerToken(cfg, time.Now(), ViewerIdentity{TelegramID: 7, BusinessName: "Bar"})
	if err != nil {
		t.Fatalf("mint viewer token: %v", err)
	}
	identity, err := NewValidator(cfg).Validate(token)
	if err != nil {
		t.Fatalf("expected token without exp to validate, got %v", err)
	}
	if identity.TelegramID != 7 || identity.BusinessName != "Bar" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestValidatorRejectsGarbage(t *testing.T) {
	v := NewValidator(config.JWTConfig{Secret: "secret"})
	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := v.Validate(raw); !errors.Is(err, ErrInvalidViewerToken) {
			t.Fatalf("expected %q to be rejected, got %v", raw, err)
		}
	}
}

func TestMintViewerTokenRequiresIdentity(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret"}
	if _, err := MintViewerToken(cfg, time.Now(), ViewerIdentity{BusinessName: "Bar"}); err == nil {
		t.Fatal("expected missing telegram id to fail")
	}
	if _, err := MintViewerToken(cfg, time.Now(), ViewerIdentity{TelegramID: 1}); err == nil {
		t.Fatal("expected missing business name to fail")
	}
}
