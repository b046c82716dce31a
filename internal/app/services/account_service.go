package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

var validate = validator.New()

// CreateAccountInput describes a new login account
type CreateAccountInput struct {
	Email    string
	Role     models.Role
	Password string  // empty generates a temporary password
	EntityID *string // optional existing profile
}

// LoginResult is a successful authentication
type LoginResult struct {
	AccessToken string
	ExpiresIn   int64
	Account     *models.Account
}

// AccountService manages login accounts and their binding to profile entities
type AccountService struct {
	accounts   repositories.AccountRepository
	entities   *EntityService
	jwtService *auth.JWTService
	log        zerolog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts repositories.AccountRepository, entities *EntityService, jwtService *auth.JWTService) *AccountService {
	return &AccountService{
		accounts:   accounts,
		entities:   entities,
		jwtService: jwtService,
		log:        logger.Component("account_service"),
	}
}

// Create creates an account. Without a password a temporary one is generated,
// returned once, and the account must change it.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return nil, apperrors.NewFieldValidationError("email", "a valid email is required")
	}
	if !in.Role.Valid() {
		return nil, apperrors.NewFieldValidationError("role", fmt.Sprintf("invalid role %q", in.Role))
	}
	if in.EntityID != nil {
		if _, err := s.entities.Get(ctx, *in.EntityID); err != nil {
			return nil, err
		}
	}

	password := in.Password
	var tempPassword *string
	if password == "" {
		generated, err := auth.GenerateTempPassword()
		if err != nil {
			return nil, apperrors.NewInfrastructureError(err, "failed to generate password")
		}
		password = generated
		tempPassword = &generated
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInfrastructureError(err, "failed to hash password")
	}

	now := helpers.NowUTC()
	account := &models.Account{
		ID:                 uuid.NewString(),
		Email:              email,
		Password:           hashed,
		Role:               in.Role,
		IsActive:           true,
		MustChangePassword: tempPassword != nil,
		TempPassword:       tempPassword,
		EntityID:           in.EntityID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info().Str("accountID", account.ID).Str("role", string(account.Role)).Msg("Account created")
	return account, nil
}

// Get returns an account by id
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// Login checks credentials and issues an access token
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(account.Password, password) {
		s.log.Warn().Str("accountID", account.ID).Msg("Login failed: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(account)
	if err != nil {
		return nil, apperrors.NewInfrastructureError(err, "failed to issue token")
	}

	now := helpers.NowUTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}
	account.LastLogin = &now

	return &LoginResult{AccessToken: token, ExpiresIn: expiresIn, Account: account}, nil
}

// BindAccountToEntity points an account at an existing entity
func (s *AccountService) BindAccountToEntity(ctx context.Context, accountID, entityID string) (*models.Account, error) {
	if _, err := s.entities.Get(ctx, entityID); err != nil {
		return nil, err
	}
	if err := s.accounts.SetEntity(ctx, accountID, entityID); err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, accountID)
}

// FindOrCreateEntityForAccount returns the account's entity, creating and binding
// one of entityType on first use. An empty entityType uses the role's profile type.
// Concurrent first calls converge on one entity: the loser of the conditional bind
// deletes the entity it created.
func (s *AccountService) FindOrCreateEntityForAccount(ctx context.Context, accountID string, entityType models.EntityType) (*models.Entity, bool, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, false, err
	}
	if account.EntityID != nil {
		entity, err := s.entities.Get(ctx, *account.EntityID)
		return entity, false, err
	}

	if entityType == "" {
		entityType = account.Role.EntityType()
	}
	var name *string
	if entityType.RequiresName() {
		name = &account.Email
	}

	entity, err := s.entities.Create(ctx, entityType, name, nil)
	if err != nil {
		return nil, false, err
	}

	bound, err := s.accounts.BindEntityIfUnset(ctx, accountID, entity.ID)
	if err != nil {
		return nil, false, err
	}
	if bound {
		s.log.Info().Str("accountID", accountID).Str("entityID", entity.ID).Msg("Profile entity created for account")
		return entity, true, nil
	}

	// Another caller bound first; drop ours and use theirs
	if err := s.entities.Delete(ctx, entity.ID); err != nil {
		s.log.Warn().Err(err).Str("entityID", entity.ID).Msg("Failed to remove orphaned profile entity")
	}
	account, err = s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, false, err
	}
	if account.EntityID == nil {
		return nil, false, apperrors.NewConflictError("account binding changed concurrently, retry")
	}
	existing, err := s.entities.Get(ctx, *account.EntityID)
	return existing, false, err
}
