package middleware

import (
	"context"
	"net/http"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/responses"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

type userResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

// RequireAdmin resolves the caller's account and rejects anyone whose stored
// role is not admin. The role is read from the database, not the token.
func RequireAdmin(users userResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			email, err := RequestEmail(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity required"))
				return
			}
			user, err := users.Resolve(ctx, email)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					err = pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if user.Role != enums.UserRoleAdmin {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required"))
				return
			}

			ctx = WithRole(WithUserID(WithEmail(ctx, user.Email), user.ID.String()), string(user.Role))
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
