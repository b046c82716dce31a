package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/bootstrap"
	"github.com/yigit/unicampus/internal/config"
	"github.com/yigit/unicampus/internal/db"
)

type opener func(cmd *cobra.Command) (*env, error)

func newMigrateCmd(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Storage.Driver == config.StorageDriverMemory {
				color.New(color.FgYellow).Fprintln(out, "memory storage has no schema to migrate")
				return nil
			}
			if dir != "" {
				cfg.Storage.MigrationsDir = dir
			}

			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := bootstrap.RunMigrations(cmd.Context(), cfg, database, lgr)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			green := color.New(color.FgGreen, color.Bold)
			for _, version := range applied {
				green.Fprint(out, "applied ")
				fmt.Fprintln(out, version)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (defaults to the embedded schema)")
	return cmd
}

func newSeedCatalogCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-catalog",
		Short: "Create or refresh the built-in attribute catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			seeded, err := e.services.Registry.SeedCatalog(cmd.Context(), services.AttributeCatalog())
			out := cmd.OutOrStdout()
			color.New(color.FgGreen, color.Bold).Fprintf(out, "seeded %d attributes\n", len(seeded))
			return err
		},
	}
}

func newCreateAccountCmd(open opener) *cobra.Command {
	var (
		email    string
		role     string
		password string
		entityID string
	)

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create a login account",
		Long: `Create a login account. Without --password a temporary password is generated and printed once.

Examples:
  unicampus-admin create-account --email admin@uni.edu --role ADMIN
  unicampus-admin create-account --email parent@uni.edu --role PARENT --entity-id 9a4f7c52-...
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			in := services.CreateAccountInput{
				Email:    email,
				Role:     models.Role(strings.ToUpper(role)),
				Password: password,
			}
			if entityID != "" {
				in.EntityID = &entityID
			}

			account, err := e.services.Accounts.Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen, color.Bold).Fprint(out, "created ")
			fmt.Fprintf(out, "%s %s (%s)\n", account.Role, account.Email, account.ID)
			if account.TempPassword != nil {
				color.New(color.FgYellow).Fprint(out, "temporary password: ")
				fmt.Fprintln(out, *account.TempPassword)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStaff), "ADMIN, STAFF, STUDENT or PARENT")
	cmd.Flags().StringVar(&password, "password", "", "initial password (generated when empty)")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "bind the account to an existing entity")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAttributesCmd(open opener) *cobra.Command {
	var entityType string

	cmd := &cobra.Command{
		Use:   "attributes",
		Short: "List registered attributes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			attrs, err := e.services.Registry.List(cmd.Context(), repositories.AttributeFilter{
				EntityType: models.EntityType(strings.ToUpper(entityType)),
			})
			if err != nil {
				return err
			}
			sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })

			out := cmd.OutOrStdout()
			if len(attrs) == 0 {
				fmt.Fprintln(out, "no attributes registered")
				return nil
			}

			bold := color.New(color.Bold)
			cyan := color.New(color.FgCyan)
			bold.Fprintf(out, "%-24s %-10s %-12s %s\n", "NAME", "TYPE", "CATEGORY", "ENTITY TYPES")
			for _, a := range attrs {
				types := make([]string, 0, len(a.EntityTypes))
				for _, t := range a.EntityTypes {
					types = append(types, string(t))
				}
				cyan.Fprintf(out, "%-24s ", a.Name)
				fmt.Fprintf(out, "%-10s %-12s %s\n", a.DataType, a.Category, strings.Join(types, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&entityType, "entity-type", "", "only attributes applicable to this entity type")
	return cmd
}
