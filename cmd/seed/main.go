package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yamdb/backend/internal/config"
	"github.com/yamdb/backend/internal/database"
	"github.com/yamdb/backend/internal/seed"
	"github.com/yamdb/backend/pkg/logger"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Database maintenance for the YaMDb backend",
	Long: `Runs schema migrations, creates the first superuser and imports
content fixtures from YAML files.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := connect()
		return err
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create a superuser (ADMIN_USERNAME / ADMIN_EMAIL by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		db, err := connect()
		if err != nil {
			return err
		}

		user, created, err := seed.NewSeeder(db).EnsureSuperuser(cmd.Context(), username, email)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Superuser %s <%s> created\n", user.Username, user.Email)
		} else {
			fmt.Printf("User %s already exists\n", user.Username)
		}
		return nil
	},
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures FILE",
	Short: "Import categories, genres and titles from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		fixtures, err := seed.LoadFixtures(file)
		if err != nil {
			return err
		}

		db, err := connect()
		if err != nil {
			return err
		}

		sum, err := seed.NewSeeder(db).Apply(cmd.Context(), fixtures)
		if err != nil {
			return err
		}
		fmt.Printf("Fixtures imported: %d created, %d already present\n", sum.Created, sum.Skipped)
		return nil
	},
}

func init() {
	adminCmd.Flags().String("username", os.Getenv("ADMIN_USERNAME"), "superuser username")
	adminCmd.Flags().String("email", os.Getenv("ADMIN_EMAIL"), "superuser email")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(fixturesCmd)
}

// connect opens and migrates the configured database.
func connect() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(!cfg.IsProduction()); err != nil {
		return nil, err
	}
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func main() {
	defer logger.Sync()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
