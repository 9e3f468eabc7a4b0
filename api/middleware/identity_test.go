package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/auth"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "petco-test", ExpirationMinutes: 60}

func mintToken(t *testing.T, email string, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  email,
		Role:   role,
	})
	require.NoError(t, err)
	return token
}

func TestIdentityWithoutHeaderPassesThrough(t *testing.T) {
	var seen string
	handler := Identity(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart?email=a@b.com", nil))

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, seen)
}

func TestIdentitySeedsClaims(t *testing.T) {
	var email, role string
	handler := Identity(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email = EmailFromContext(r.Context())
		role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "a@b.com", enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "a@b.com", email)
	assert.Equal(t, string(enums.UserRoleCustomer), role)
}

func TestIdentityRejectsInvalidToken(t *testing.T) {
	handler := Identity(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequestEmail(t *testing.T) {
	t.Run("query only", func(t *testing.T) {
		email, err := RequestEmail(httptest.NewRequest(http.MethodGet, "/?email=%20a@b.com%20", nil))
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", email)
	})
	t.Run("token only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithEmail(req.Context(), "t@b.com"))
		email, err := RequestEmail(req)
		require.NoError(t, err)
		assert.Equal(t, "t@b.com", email)
	})
	t.Run("mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?email=other@b.com", nil)
		req = req.WithContext(WithEmail(req.Context(), "t@b.com"))
		_, err := RequestEmail(req)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	})
	t.Run("missing", func(t *testing.T) {
		_, err := RequestEmail(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}

type stubResolver map[string]*models.User

func (s stubResolver) Resolve(_ context.Context, email string) (*models.User, error) {
	if u, ok := s[email]; ok {
		return u, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func TestRequireAdmin(t *testing.T) {
	users := stubResolver{
		"admin@b.com": {ID: uuid.New(), Email: "admin@b.com", Role: enums.UserRoleAdmin},
		"cust@b.com":  {ID: uuid.New(), Email: "cust@b.com", Role: enums.UserRoleCustomer},
	}
	handler := RequireAdmin(users, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, string(enums.UserRoleAdmin), RoleFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		url  string
		want int
	}{
		{"admin", "/api/admin/users?email=admin@b.com", http.StatusNoContent},
		{"customer", "/api/admin/users?email=cust@b.com", http.StatusForbidden},
		{"unknown", "/api/admin/users?email=ghost@b.com", http.StatusForbidden},
		{"anonymous", "/api/admin/users", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tc.url, nil))
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}
