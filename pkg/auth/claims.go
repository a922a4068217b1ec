package auth

import "github.com/golang-jwt/jwt/v5"

// ViewerIdentity is the identity a viewer token grants access to.
type ViewerIdentity struct {
	TelegramID   int64
	BusinessName string
}

// ViewerTokenClaims is the JWT body the bot signs when it hands out a viewer link.
type ViewerTokenClaims struct {
	TelegramID   int64  `json:"telegram_id"`
	BusinessName string `json:"business_name"`
	jwt.RegisteredClaims
}

// Identity returns the identity carried by the claims.
func (c *ViewerTokenClaims) Identity() ViewerIdentity {
	return ViewerIdentity{TelegramID: c.TelegramID, BusinessName: c.BusinessName}
}
