// Package cli implements unicampus-admin, the operator command line for the storage layer
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/bootstrap"
	"github.com/yigit/unicampus/internal/config"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// env is what a command needs once config and storage are up
type env struct {
	cfg      *config.Config
	repos    *repositories.Repositories
	database *db.PostgresDB
	services *services.Services
}

func (e *env) close() {
	if e.database != nil {
		e.database.Close()
	}
}

// openEnv loads config, connects storage (migrating it) and wires the services
func openEnv(ctx context.Context, configPath string) (*env, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, err
	}
	repos, database, err := bootstrap.SetupStorage(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		repos:    repos,
		database: database,
		services: services.NewServices(repos, bootstrap.NewJWTService(cfg)),
	}, nil
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "unicampus-admin",
		Short: "Administer the unicampus entity store",
		Long: `unicampus-admin runs schema migrations, seeds the attribute catalog and manages accounts.

Examples:

  unicampus-admin migrate
  unicampus-admin seed-catalog
  unicampus-admin create-account --email dean@uni.edu --role STAFF
  unicampus-admin attributes --entity-type STUDENT
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML config file")

	open := func(cmd *cobra.Command) (*env, error) {
		return openEnv(cmd.Context(), configPath)
	}

	root.AddCommand(
		newMigrateCmd(&configPath),
		newSeedCatalogCmd(open),
		newCreateAccountCmd(open),
		newAttributesCmd(open),
	)
	return root
}

// Execute runs the CLI
func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}

func init() {
	// Commands print their own output; keep library logs to warnings and up
	logger.Configure(logger.Config{Level: logger.WarnLevel, Pretty: true, Output: os.Stderr})
}
