package auth

import (
	"context"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// AuthorizationService decides what an authenticated actor may read or change
type AuthorizationService struct {
	accounts  repositories.AccountRepository
	relations *services.RelationService
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(accounts repositories.AccountRepository, relations *services.RelationService) *AuthorizationService {
	return &AuthorizationService{
		accounts:  accounts,
		relations: relations,
	}
}

// ValidateAccountAccess allows admins on any account and everyone else on their own
func (s *AuthorizationService) ValidateAccountAccess(ctx context.Context, actor auth.Actor, accountID string) error {
	if actor.AccountID == accountID {
		return nil
	}
	if !actor.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	_, err := s.accounts.GetByID(ctx, accountID)
	return err
}

// ValidateEntityRead allows staff to read any entity, an account to read its own
// profile, and a parent to read the students it is PARENT_OF
func (s *AuthorizationService) ValidateEntityRead(ctx context.Context, actor auth.Actor, entityID string) error {
	if actor.IsStaff() {
		return nil
	}

	ownID, err := s.profileEntityID(ctx, actor)
	if err != nil {
		return err
	}
	if ownID == "" {
		return apperrors.ErrPermissionDenied
	}
	if ownID == entityID {
		return nil
	}

	if actor.Role == models.RoleParent {
		_, found, err := s.relations.FindActive(ctx, ownID, entityID, models.RelationParentOf)
		if err != nil {
			logger.Error().Err(err).Str("accountID", actor.AccountID).Str("entityID", entityID).Msg("Error checking parent relation")
			return err
		}
		if found {
			return nil
		}
	}

	return apperrors.ErrPermissionDenied
}

// profileEntityID reads the account's stored binding. The token's entity claim
// goes stale once the account is rebound, so it is never trusted here.
func (s *AuthorizationService) profileEntityID(ctx context.Context, actor auth.Actor) (string, error) {
	account, err := s.accounts.GetByID(ctx, actor.AccountID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.ErrUnauthorized
		}
		return "", err
	}
	if account.EntityID == nil {
		return "", nil
	}
	return *account.EntityID, nil
}
