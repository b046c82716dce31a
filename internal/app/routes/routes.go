package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/controllers"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/middleware"
)

// Controllers groups every controller the router mounts
type Controllers struct {
	Auth      *controllers.AuthController
	Attribute *controllers.AttributeController
	Entity    *controllers.EntityController
	Relation  *controllers.RelationController
	Account   *controllers.AccountController
	Health    *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", c.Health.Health)
	router.GET("/ping", c.Health.Ping)

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", c.Health.Health)
	v1.GET("/ping", c.Health.Ping)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	staffOnly := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleStaff)
	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	attributes := authenticated.Group("/attributes")
	{
		attributes.GET("", c.Attribute.GetAllAttributes)
		attributes.POST("", adminOnly, c.Attribute.UpsertAttribute)
		attributes.POST("/seed", adminOnly, c.Attribute.SeedCatalog)
	}

	entities := authenticated.Group("/entities")
	{
		// Reads of a single entity are checked per entity by the authorization service
		entities.GET("/:id", c.Entity.GetEntityByID)
		entities.GET("/:id/relations", c.Relation.GetEntityRelations)

		entities.GET("", staffOnly, c.Entity.GetEntities)
		entities.POST("", staffOnly, c.Entity.CreateEntity)
		entities.PATCH("/:id", staffOnly, c.Entity.UpdateEntity)
		entities.DELETE("/:id", staffOnly, c.Entity.DeleteEntity)
	}

	relations := authenticated.Group("/relations")
	relations.Use(staffOnly)
	{
		relations.POST("", c.Relation.CreateRelation)
		relations.GET("/:id", c.Relation.GetRelationByID)
		relations.PATCH("/:id/metadata", c.Relation.UpdateRelationMetadata)
		relations.POST("/:id/deactivate", c.Relation.DeactivateRelation)
		relations.DELETE("/:id", c.Relation.DeleteRelation)
	}

	accounts := authenticated.Group("/accounts")
	{
		accounts.POST("", adminOnly, c.Account.CreateAccount)
		accounts.POST("/:id/bind", adminOnly, c.Account.BindEntity)

		// Self or admin, checked in the controller
		accounts.GET("/:id", c.Account.GetAccountByID)
		accounts.GET("/:id/profile", c.Account.GetProfile)
		accounts.PATCH("/:id/profile", c.Account.UpdateProfile)
	}
}
