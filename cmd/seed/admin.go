package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/security"
)

var adminFlags struct {
	email    string
	name     string
	password string
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create an admin account or promote an existing user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, closeFn, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		created, err := ensureAdmin(ctx, users.NewRepository(e.db.DB()), e.cfg.Password,
			adminFlags.email, adminFlags.name, adminFlags.password)
		if err != nil {
			return err
		}
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"email":   strings.ToLower(strings.TrimSpace(adminFlags.email)),
			"created": created,
		})
		e.logg.Info(logCtx, "seed.admin")
		return nil
	},
}

func init() {
	adminCmd.Flags().StringVar(&adminFlags.email, "email", "", "admin email address")
	adminCmd.Flags().StringVar(&adminFlags.name, "name", "Pet Co Admin", "display name")
	adminCmd.Flags().StringVar(&adminFlags.password, "password", "", "password for a new account")
	_ = adminCmd.MarkFlagRequired("email")
}

type adminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
}

// ensureAdmin reports whether a new account was created. Existing accounts
// keep their password and only gain the admin role.
func ensureAdmin(ctx context.Context, store adminStore, pw config.PasswordConfig, email, name, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, errors.New("email is required")
	}

	existing, err := store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == enums.UserRoleAdmin {
			return false, nil
		}
		existing.Role = enums.UserRoleAdmin
		if err := store.Save(ctx, existing); err != nil {
			return false, fmt.Errorf("promote %s: %w", email, err)
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("lookup %s: %w", email, err)
	}

	if password == "" {
		return false, errors.New("password is required for a new admin")
	}
	hash, err := security.HashPassword(password, pw)
	if err != nil {
		return false, err
	}
	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := store.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create %s: %w", email, err)
	}
	return true, nil
}
