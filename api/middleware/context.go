package middleware

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

type contextKey string

const (
	ctxEmail  contextKey = "email"
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// EmailFromContext returns the email carried by a verified access token.
func EmailFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxEmail) }

func UserIDFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxUserID) }

func RoleFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxRole) }

func WithEmail(ctx context.Context, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxEmail, email)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// RequestEmail resolves the caller: the email query parameter, or the email
// of a verified bearer token. When both are present they must match.
func RequestEmail(r *http.Request) (string, error) {
	query := strings.TrimSpace(r.URL.Query().Get("email"))
	token := EmailFromContext(r.Context())
	switch {
	case query == "" && token == "":
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	case token == "":
		return query, nil
	case query != "" && !strings.EqualFold(query, token):
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "email does not match the authenticated user")
	}
	return token, nil
}
