package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
)

// RequireQuery returns the query parameter exactly as sent. Whitespace-only
// values count as missing.
func RequireQuery(r *http.Request, key string, maxLen int) (string, error) {
	value := r.URL.Query().Get(key)
	if strings.TrimSpace(value) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, key+" is required").WithDetails(map[string]any{"field": key})
	}
	if maxLen > 0 && len(value) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, key+" is too long").WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return value, nil
}
