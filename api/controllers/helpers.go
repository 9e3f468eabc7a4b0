package controllers

import (
	"context"
	"net/http"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/middleware"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/responses"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

// callerEmail writes the error response itself and reports false when the
// request carries no usable identity.
func callerEmail(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	email, err := middleware.RequestEmail(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return "", false
	}
	return email, true
}

func serviceUnavailable(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, name string) {
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
