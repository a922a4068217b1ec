package middleware

import (
	"net/http"

	"github.com/angelmondragon/vineinventory-viewer/api/responses"
	"github.com/angelmondragon/vineinventory-viewer/api/validators"
	"github.com/angelmondragon/vineinventory-viewer/pkg/auth"
	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
)

// TokenValidator checks a viewer token and returns its identity.
type TokenValidator interface {
	Validate(raw string) (auth.ViewerIdentity, error)
}

// ViewerAuth validates the viewer token from the query string or bearer
// header and seeds the request context with its identity.
func ViewerAuth(validator TokenValidator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := validators.ViewerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing token"))
				return
			}

			identity, err := validator.Validate(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token rejected"))
				return
			}

			ctx := WithViewerIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithTelegramID(ctx, identity.TelegramID)
				ctx = logg.WithField(ctx, "business_name", identity.BusinessName)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
