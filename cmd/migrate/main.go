package main

import (
	"fmt"
	"forgotpassword/internal/config"
	"forgotpassword/internal/db"
	"os"

	"github.com/spf13/cobra"
)

var (
	migrationsPath string
	databaseURL    string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations for the password reset credential store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMigrations()
		if err != nil {
			return err
		}
		if migrationsPath == "" {
			migrationsPath = cfg.MigrationsPath
		}
		if databaseURL == "" {
			databaseURL = cfg.PostgresqlURL
		}
		if databaseURL == "" {
			return fmt.Errorf("database URL must be set with --database or POSTGRESQL_URL")
		}
		return nil
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.MigrateUp(migrationsPath, databaseURL); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Apply all down migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.MigrateDown(migrationsPath, databaseURL); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "directory with migration files")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database", "", "PostgreSQL connection URL")
	rootCmd.AddCommand(upCmd, downCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
