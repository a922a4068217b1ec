package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/vineinventory-viewer/api/responses"
	"github.com/angelmondragon/vineinventory-viewer/internal/viewer"
	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
)

const (
	indexCacheControl = "no-cache"
	pageCacheControl  = "private, no-store"
)

// ViewerIndex serves the cached page when view_id is present and the
// configured index page otherwise.
func ViewerIndex(svc viewer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if viewID := strings.TrimSpace(r.URL.Query().Get("view_id")); viewID != "" {
			writeCachedPage(w, r, svc, logg, viewID)
			return
		}

		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "viewer service unavailable"))
			return
		}
		html, err := svc.Index(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteHTML(w, http.StatusOK, html, indexCacheControl)
	}
}

func ViewerPage(svc viewer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCachedPage(w, r, svc, logg, chi.URLParam(r, "viewID"))
	}
}

func writeCachedPage(w http.ResponseWriter, r *http.Request, svc viewer.Service, logg *logger.Logger, viewID string) {
	ctx := r.Context()
	if svc == nil {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "viewer service unavailable"))
		return
	}
	if logg != nil {
		ctx = logg.WithViewID(ctx, viewID)
	}
	html, err := svc.Page(ctx, viewID)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteHTML(w, http.StatusOK, html, pageCacheControl)
}
