package middleware

import (
	"context"

	"github.com/angelmondragon/vineinventory-viewer/pkg/auth"
)

type contextKey string

const ctxViewerIdentity contextKey = "viewer_identity"

// ViewerIdentityFromContext returns the identity stored by ViewerAuth.
func ViewerIdentityFromContext(ctx context.Context) (auth.ViewerIdentity, bool) {
	if ctx == nil {
		return auth.ViewerIdentity{}, false
	}
	identity, ok := ctx.Value(ctxViewerIdentity).(auth.ViewerIdentity)
	return identity, ok
}

// WithViewerIdentity injects the viewer identity into the context.
func WithViewerIdentity(ctx context.Context, identity auth.ViewerIdentity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxViewerIdentity, identity)
}
