package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/unicampus/internal/app/auth"
	appControllers "github.com/yigit/unicampus/internal/app/controllers"
	appMigrations "github.com/yigit/unicampus/internal/app/migrations"
	appRepos "github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/repositories/inmem"
	appRoutes "github.com/yigit/unicampus/internal/app/routes"
	appServices "github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/config"
	"github.com/yigit/unicampus/internal/db"
	appMiddleware "github.com/yigit/unicampus/internal/middleware"
	pkgAuth "github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
	"github.com/yigit/unicampus/internal/pkg/validation"
	"github.com/yigit/unicampus/internal/seed"
)

// DefaultConfigPath is where the server looks for its YAML configuration
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config         *config.Config
	Database       *db.PostgresDB // nil with the memory driver
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Services       *appServices.Services
	AuthzService   *appAuth.AuthorizationService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// Close releases the database pool, if any
func (d *Dependencies) Close() {
	if d.Database != nil {
		d.Database.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: cfg.PrettyLogs(),
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if _, err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// RunMigrations applies the configured migrations directory, or the embedded schema when none is set
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) ([]string, error) {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	var (
		applied []string
		err     error
	)
	if dir := cfg.Storage.MigrationsDir; dir != "" {
		applied, err = migrator.MigrateFromDirectory(ctx, dir)
	} else {
		applied, err = migrator.Migrate(ctx, appMigrations.Embedded())
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return applied, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Strs("applied", applied).Msg("Database migrations successfully applied.")
	return applied, nil
}

// SetupStorage returns the repositories for the configured storage driver
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *db.PostgresDB, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return inmem.NewRepositories(inmem.NewDB()), nil, nil
	}

	database, err := SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	return appRepos.NewRepositories(database), database, nil
}

// NewJWTService builds the token service from config
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes services, middleware and controllers over a set of repositories.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, database *db.PostgresDB, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Config:   cfg,
		Database: database,
		Repos:    repos,
		Logger:   lgr,
	}

	deps.JWTService = NewJWTService(cfg)
	deps.Services = appServices.NewServices(repos, deps.JWTService)
	deps.AuthzService = appAuth.NewAuthorizationService(repos.Accounts, deps.Services.Relations)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	// A nil *PostgresDB must not become a non-nil Pinger
	var store appControllers.Pinger
	if database != nil {
		store = database
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.Accounts, lgr),
		Attribute: appControllers.NewAttributeController(deps.Services.Registry),
		Entity:    appControllers.NewEntityController(deps.Services.EAV, deps.Services.Entities, deps.AuthzService),
		Relation:  appControllers.NewRelationController(deps.Services.Relations, deps.Services.Projector, deps.AuthzService),
		Account:   appControllers.NewAccountController(deps.Services.Accounts, deps.Services.EAV, deps.AuthzService, lgr),
		Health:    appControllers.NewHealthController(store, cfg.Storage.Driver),
	}

	return deps
}

// SeedDefaults creates the catalog and the default admin account configured for startup
func SeedDefaults(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	result, err := seed.CreateDefaultData(ctx, deps.Services, seed.Options{
		Catalog:       cfg.Seed.Catalog,
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
	}, deps.Logger)
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
	if result != nil && result.TempPassword != "" {
		deps.Logger.Warn().Str("email", cfg.Seed.AdminEmail).Str("tempPassword", result.TempPassword).
			Msg("Default admin created with a temporary password; change it after first login")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			lgr.Error().Err(err).Msg("Failed to register validation rules")
		}
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}
