// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	accountService *services.AccountService
	logger         zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(accountService *services.AccountService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		accountService: accountService,
		logger:         logger,
	}
}

// Login authenticates an account and returns an access token
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.accountService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("accountID", result.Account.ID).Msg("Account logged in")

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: result.AccessToken,
			TokenType:   "Bearer",
			ExpiresIn:   result.ExpiresIn,
		},
		Account: dto.NewAccountResponse(result.Account),
	}))
}
