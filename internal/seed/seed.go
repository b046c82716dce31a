package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

// Options selects the default data created at startup
type Options struct {
	Catalog       bool
	AdminEmail    string
	AdminPassword string // empty generates a temporary password
}

// Result reports what CreateDefaultData did
type Result struct {
	Attributes   []string
	AdminCreated bool
	TempPassword string
}

// CreateDefaultData seeds the attribute catalog and the first admin account if they don't exist.
// Errors are collected so one failing step doesn't stop the others.
func CreateDefaultData(ctx context.Context, svc *services.Services, opts Options, lgr zerolog.Logger) (*Result, error) {
	result := &Result{}
	var finalErr error

	if opts.Catalog {
		lgr.Info().Msg("Checking/Creating attribute catalog...")
		seeded, err := svc.Registry.SeedCatalog(ctx, services.AttributeCatalog())
		if err != nil {
			lgr.Error().Err(err).Msg("Error seeding attribute catalog")
			finalErr = errors.Join(finalErr, err)
		}
		result.Attributes = seeded
	}

	if email := strings.TrimSpace(opts.AdminEmail); email != "" {
		created, err := ensureAdmin(ctx, svc.Accounts, email, opts.AdminPassword)
		switch {
		case err != nil:
			lgr.Error().Err(err).Str("email", email).Msg("Error creating default admin account")
			finalErr = errors.Join(finalErr, err)
		case created != nil:
			result.AdminCreated = true
			if created.TempPassword != nil {
				result.TempPassword = *created.TempPassword
			}
			lgr.Info().Str("email", created.Email).Bool("tempPassword", created.MustChangePassword).Msg("Default admin account created")
		default:
			lgr.Debug().Str("email", email).Msg("Default admin account already exists")
		}
	}

	return result, finalErr
}

// ensureAdmin returns the created account, or nil when the email is already taken
func ensureAdmin(ctx context.Context, accounts *services.AccountService, email, password string) (*models.Account, error) {
	account, err := accounts.Create(ctx, services.CreateAccountInput{
		Email:    email,
		Role:     models.RoleAdmin,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrEmailAlreadyInUse) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}
