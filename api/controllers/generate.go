package controllers

import (
	"net/http"

	"github.com/angelmondragon/vineinventory-viewer/api/responses"
	"github.com/angelmondragon/vineinventory-viewer/api/validators"
	"github.com/angelmondragon/vineinventory-viewer/internal/viewer"
	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
)

// GenerateView builds and caches a viewer page, then returns its link.
func GenerateView(svc viewer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "viewer service unavailable"))
			return
		}

		var input viewer.GenerateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Generate(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
