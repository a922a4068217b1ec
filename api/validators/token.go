package validators

import (
	"net/http"
	"strings"
)

const tokenQueryParam = "token"

// ViewerToken returns the token from the query string, falling back to an
// Authorization bearer header.
func ViewerToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get(tokenQueryParam)); token != "" {
		return token
	}
	return BearerToken(r.Header.Get("Authorization"))
}

func BearerToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return ""
}
