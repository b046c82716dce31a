package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/unicampus/internal/app/auth"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// attributeFilterPrefix marks query parameters that filter on attribute values, e.g. attr.major=Physics
const attributeFilterPrefix = "attr."

// EntityController handles entity reads and writes through the EAV service
type EntityController struct {
	eavService    *services.EAVService
	entityService *services.EntityService
	authzService  *appauth.AuthorizationService
}

// NewEntityController creates a new EntityController
func NewEntityController(eavService *services.EAVService, entityService *services.EntityService, authzService *appauth.AuthorizationService) *EntityController {
	return &EntityController{
		eavService:    eavService,
		entityService: entityService,
		authzService:  authzService,
	}
}

func relationInputs(in []dto.RelationInputRequest) []services.RelationInput {
	out := make([]services.RelationInput, 0, len(in))
	for _, r := range in {
		out = append(out, services.RelationInput{
			ToID:         r.ToID,
			RelationType: models.RelationType(r.RelationType),
			Metadata:     r.Metadata,
		})
	}
	return out
}

// parseInclude reads the include query parameter into relation specs
func parseInclude(ctx *gin.Context) ([]services.RelationSpec, error) {
	return services.ParseRelationSpecs(ctx.Query("include"))
}

// CreateEntity creates an entity with its attributes and relations
func (c *EntityController) CreateEntity(ctx *gin.Context) {
	var req dto.CreateEntityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.eavService.Write(ctx.Request.Context(), services.WriteRequest{
		Type:        models.EntityType(req.Type),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Attributes:  req.Attributes,
		Relations:   relationInputs(req.Relations),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	projection, err := c.eavService.Read(ctx.Request.Context(), result.EntityID, nil)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(
		dto.NewEntityWriteResponse(result.EntityID, result.Created, result.Written, result.Relations, projection),
	))
}

// GetEntities lists the entities of one type, paged, with optional filters and relations
func (c *EntityController) GetEntities(ctx *gin.Context) {
	entityType := strings.TrimSpace(ctx.Query("type"))
	if entityType == "" {
		middleware.HandleAPIError(ctx, apperrors.NewFieldValidationError("type", "type query parameter is required"))
		return
	}

	specs, err := parseInclude(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page := helpers.ParsePaginationParams(ctx)
	filter := repositories.EntityFilter{
		Type:         models.EntityType(entityType),
		NameContains: strings.TrimSpace(ctx.Query("q")),
		Limit:        page.Size,
		Offset:       page.Offset(),
	}

	if active := ctx.Query("active"); active != "" {
		isActive, err := strconv.ParseBool(active)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewFieldValidationError("active", "active must be true or false"))
			return
		}
		filter.IsActive = &isActive
	}

	for key, values := range ctx.Request.URL.Query() {
		if !strings.HasPrefix(key, attributeFilterPrefix) || len(values) == 0 {
			continue
		}
		if filter.Attributes == nil {
			filter.Attributes = map[string]string{}
		}
		filter.Attributes[strings.TrimPrefix(key, attributeFilterPrefix)] = values[0]
	}

	items, total, err := c.eavService.Query(ctx.Request.Context(), services.EntityQuery{Filter: filter, Relations: specs})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(items, helpers.NewPaginationInfo(total, page)))
}

// GetEntityByID projects one entity and the relations named by include
func (c *EntityController) GetEntityByID(ctx *gin.Context) {
	id := ctx.Param("id")
	actor, _ := middleware.CurrentActor(ctx)
	if err := c.authzService.ValidateEntityRead(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	specs, err := parseInclude(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	projection, err := c.eavService.Read(ctx.Request.Context(), id, specs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(projection))
}

// UpdateEntity changes core fields, writes attributes and associates relations
func (c *EntityController) UpdateEntity(ctx *gin.Context) {
	var req dto.UpdateEntityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.eavService.Write(ctx.Request.Context(), services.WriteRequest{
		ID:          ctx.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Attributes:  req.Attributes,
		Relations:   relationInputs(req.Relations),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	projection, err := c.eavService.Read(ctx.Request.Context(), result.EntityID, nil)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(
		dto.NewEntityWriteResponse(result.EntityID, result.Created, result.Written, result.Relations, projection),
	))
}

// DeleteEntity removes an entity together with its values and relations
func (c *EntityController) DeleteEntity(ctx *gin.Context) {
	if err := c.entityService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Entity deleted"}))
}
