package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/unicampus/internal/app/auth"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

// RelatedEntityResponse is one traversal hop: the relation and the entity on its far side
type RelatedEntityResponse struct {
	Relation dto.RelationResponse `json:"relation"`
	Entity   services.Projection  `json:"entity"`
}

// RelationController handles relation lifecycle and traversal
type RelationController struct {
	relationService *services.RelationService
	projector       *services.Projector
	authzService    *appauth.AuthorizationService
}

// NewRelationController creates a new RelationController
func NewRelationController(relationService *services.RelationService, projector *services.Projector, authzService *appauth.AuthorizationService) *RelationController {
	return &RelationController{
		relationService: relationService,
		projector:       projector,
		authzService:    authzService,
	}
}

// CreateRelation associates two entities; an existing relation for the same triple is reactivated
func (c *RelationController) CreateRelation(ctx *gin.Context) {
	var req dto.CreateRelationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	rel, created, err := c.relationService.Associate(ctx.Request.Context(), models.RelationCandidate{
		FromEntityID: req.FromID,
		ToEntityID:   req.ToID,
		RelationType: models.RelationType(req.RelationType),
		Metadata:     req.Metadata,
		StartDate:    req.StartDate,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.NewAPIResponse(dto.NewRelationResponse(rel)))
}

// GetRelationByID returns one relation
func (c *RelationController) GetRelationByID(ctx *gin.Context) {
	rel, err := c.relationService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRelationResponse(rel)))
}

// UpdateRelationMetadata shallow-merges the body into the relation's metadata
func (c *RelationController) UpdateRelationMetadata(ctx *gin.Context) {
	var req dto.UpdateMetadataRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	rel, err := c.relationService.UpdateMetadata(ctx.Request.Context(), ctx.Param("id"), req.Metadata)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRelationResponse(rel)))
}

// DeactivateRelation ends a relation and keeps it as history
func (c *RelationController) DeactivateRelation(ctx *gin.Context) {
	rel, err := c.relationService.Deactivate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewRelationResponse(rel)))
}

// DeleteRelation removes a relation row
func (c *RelationController) DeleteRelation(ctx *gin.Context) {
	if err := c.relationService.Remove(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Relation deleted"}))
}

// GetEntityRelations walks the relations of an entity in one direction
func (c *RelationController) GetEntityRelations(ctx *gin.Context) {
	id := ctx.Param("id")
	actor, _ := middleware.CurrentActor(ctx)
	if err := c.authzService.ValidateEntityRead(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	direction := models.Direction(ctx.DefaultQuery("direction", string(models.DirectionOut)))
	if !direction.Valid() {
		middleware.HandleAPIError(ctx, apperrors.NewFieldValidationError("direction", "direction must be out or in"))
		return
	}

	activeOnly := true
	if v := ctx.Query("activeOnly"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewFieldValidationError("activeOnly", "activeOnly must be true or false"))
			return
		}
		activeOnly = parsed
	}

	relationType := models.RelationType(ctx.Query("relationType"))

	var (
		related []*models.RelatedEntity
		err     error
	)
	if direction == models.DirectionIn {
		related, err = c.relationService.RelationsTo(ctx.Request.Context(), id, relationType, activeOnly)
	} else {
		related, err = c.relationService.RelationsFrom(ctx.Request.Context(), id, relationType, activeOnly)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]RelatedEntityResponse, 0, len(related))
	for _, r := range related {
		items = append(items, RelatedEntityResponse{
			Relation: dto.NewRelationResponse(r.Relation),
			Entity:   c.projector.Project(r.Entity),
		})
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(items))
}
