package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/auth"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "petco",
	ExpirationMinutes: 30,
}

func TestServiceLoginIssuesToken(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(t, "asha@example.com", "walkies-123", true)

	svc := buildTestService(t, repo)
	resp, err := svc.Login(context.Background(), LoginRequest{Email: " ASHA@example.com", Password: "walkies-123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.Token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected profile in response")
	}
	if resp.ExpiresAt.IsZero() {
		t.Fatalf("expected expiry to be set")
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(t, "asha@example.com", "walkies-123", true)
	repo.add(t, "gone@example.com", "walkies-123", false)
	svc := buildTestService(t, repo)

	cases := []LoginRequest{
		{Email: "asha@example.com", Password: "wrong-pass"},
		{Email: "nobody@example.com", Password: "walkies-123"},
		{Email: "gone@example.com", Password: "walkies-123"},
		{Email: "", Password: "walkies-123"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("login %q: expected unauthorized, got %v", req.Email, err)
		}
	}
}

func TestServiceRegister(t *testing.T) {
	repo := newStubUserRepo()
	svc := buildTestService(t, repo)

	phone := "098765 43210"
	profile, err := svc.Register(context.Background(), RegisterRequest{
		Name:     " Ravi ",
		Email:    "Ravi@Example.com",
		Password: "treats-4-all",
		Phone:    &phone,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if profile.Email != "ravi@example.com" || profile.Name != "Ravi" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", profile.Role)
	}
	if profile.Phone == nil || *profile.Phone != "9876543210" {
		t.Fatalf("expected normalized phone, got %v", profile.Phone)
	}

	stored := repo.data["ravi@example.com"]
	if stored == nil || stored.PasswordHash == "treats-4-all" {
		t.Fatalf("expected hashed password to be stored")
	}
	ok, err := security.VerifyPassword("treats-4-all", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "treats-4-all"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestServiceRegisterValidation(t *testing.T) {
	svc := buildTestService(t, newStubUserRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "short"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.Register(context.Background(), RegisterRequest{Name: " ", Email: "ravi@example.com", Password: "long-enough"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestServiceChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(t, "asha@example.com", "walkies-123", true)
	svc := buildTestService(t, repo)

	err := svc.ChangePassword(context.Background(), "asha@example.com", ChangePasswordRequest{
		CurrentPassword: "nope-nope",
		NewPassword:     "new-secret-1",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for wrong current password, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), "asha@example.com", ChangePasswordRequest{
		CurrentPassword: "walkies-123",
		NewPassword:     "new-secret-1",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	stored := repo.data["asha@example.com"]
	if stored.LastPasswordChange == nil {
		t.Fatalf("expected last password change to be stamped")
	}
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "new-secret-1"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestServiceLoginUpgradesCheapHash(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(t, "asha@example.com", "walkies-123", true)
	before := repo.data["asha@example.com"].PasswordHash

	stronger := config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 2, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: testJWT, PasswordConfig: stronger})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "walkies-123"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	after := repo.data["asha@example.com"].PasswordHash
	if after == before {
		t.Fatalf("expected hash to be upgraded")
	}
	if security.NeedsRehash(after, stronger) {
		t.Fatalf("upgraded hash still below configured cost: %s", after)
	}
	if _, err := svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "walkies-123"}); err != nil {
		t.Fatalf("login after upgrade: %v", err)
	}
}

func TestServiceRegisterRejectsEmailAsPassword(t *testing.T) {
	svc := buildTestService(t, newStubUserRepo())
	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "Ravi@Example.com"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func buildTestService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

type stubUserRepo struct {
	data map[string]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{data: map[string]*models.User{}}
}

func (s *stubUserRepo) add(t *testing.T, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test",
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		IsActive:     active,
	}
	s.data[email] = user
	return user
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := s.data[email]
	return ok, nil
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.data[user.Email] = user
	return nil
}

func (s *stubUserRepo) Save(_ context.Context, user *models.User) error {
	s.data[user.Email] = user
	return nil
}
