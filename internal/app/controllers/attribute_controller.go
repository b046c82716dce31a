package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
)

// AttributeController exposes the attribute registry
type AttributeController struct {
	registry *services.AttributeRegistry
}

// NewAttributeController creates a new AttributeController
func NewAttributeController(registry *services.AttributeRegistry) *AttributeController {
	return &AttributeController{
		registry: registry,
	}
}

// GetAllAttributes lists attributes, optionally for one entity type or category
func (c *AttributeController) GetAllAttributes(ctx *gin.Context) {
	filter := repositories.AttributeFilter{
		EntityType: models.EntityType(strings.TrimSpace(ctx.Query("entityType"))),
		Category:   models.Category(strings.TrimSpace(ctx.Query("category"))),
	}

	attributes, err := c.registry.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(attributes))
}

// UpsertAttribute creates or redefines an attribute by name
func (c *AttributeController) UpsertAttribute(ctx *gin.Context) {
	var def models.AttributeDefinition
	if err := ctx.ShouldBindJSON(&def); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	attribute, err := c.registry.ResolveOrCreate(ctx.Request.Context(), def)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(attribute))
}

// SeedCatalog upserts the built-in attribute catalog
func (c *AttributeController) SeedCatalog(ctx *gin.Context) {
	seeded, err := c.registry.SeedCatalog(ctx.Request.Context(), services.AttributeCatalog())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SeedCatalogResponse{
		Seeded: seeded,
		Count:  len(seeded),
	}))
}
