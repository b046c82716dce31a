package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/unicampus/internal/app/auth"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
)

// AccountController manages login accounts and their profile entities
type AccountController struct {
	accountService *services.AccountService
	eavService     *services.EAVService
	authzService   *appauth.AuthorizationService
	logger         zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(
	accountService *services.AccountService,
	eavService *services.EAVService,
	authzService *appauth.AuthorizationService,
	logger zerolog.Logger,
) *AccountController {
	return &AccountController{
		accountService: accountService,
		eavService:     eavService,
		authzService:   authzService,
		logger:         logger,
	}
}

// authorize aborts the request unless the caller may act on the account in the path
func (c *AccountController) authorize(ctx *gin.Context) (string, bool) {
	accountID := ctx.Param("id")
	actor, _ := middleware.CurrentActor(ctx)
	if err := c.authzService.ValidateAccountAccess(ctx.Request.Context(), actor, accountID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return "", false
	}
	return accountID, true
}

// CreateAccount creates an account; a generated temporary password is returned once
func (c *AccountController) CreateAccount(ctx *gin.Context) {
	var req dto.CreateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	account, err := c.accountService.Create(ctx.Request.Context(), services.CreateAccountInput{
		Email:    req.Email,
		Role:     models.Role(req.Role),
		Password: req.Password,
		EntityID: req.EntityID,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.NewAccountResponse(account)
	resp.TempPassword = account.TempPassword
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(resp))
}

// GetAccountByID returns an account
func (c *AccountController) GetAccountByID(ctx *gin.Context) {
	accountID, ok := c.authorize(ctx)
	if !ok {
		return
	}

	account, err := c.accountService.Get(ctx.Request.Context(), accountID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAccountResponse(account)))
}

// BindEntity points an account at an existing entity
func (c *AccountController) BindEntity(ctx *gin.Context) {
	var req dto.BindEntityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	account, err := c.accountService.BindAccountToEntity(ctx.Request.Context(), ctx.Param("id"), req.EntityID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("accountID", account.ID).Str("entityID", req.EntityID).Msg("Account bound to entity")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewAccountResponse(account)))
}

// GetProfile projects the account's profile entity, creating it on first access
func (c *AccountController) GetProfile(ctx *gin.Context) {
	accountID, ok := c.authorize(ctx)
	if !ok {
		return
	}

	specs, err := parseInclude(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	profile, err := c.eavService.ReadProfileByAccount(ctx.Request.Context(), accountID, specs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// UpdateProfile writes attributes to the account's profile entity
func (c *AccountController) UpdateProfile(ctx *gin.Context) {
	accountID, ok := c.authorize(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	profile, err := c.eavService.UpdateProfileByAccount(ctx.Request.Context(), accountID, services.WriteRequest{
		Type:        models.EntityType(req.Type),
		Name:        req.Name,
		Description: req.Description,
		Attributes:  req.Attributes,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}
