package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and seed the default admin",
	Long: `Connecting with DB_DRIVER=postgres runs the migrations. The configured
ADMIN_EMAIL account is created when no admin exists yet.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	container, err := openContainer(nil)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	if err := container.AuthService.EnsureDefaultAdmin(context.Background()); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	fmt.Printf("Schema is up to date (driver: %s)\n", container.Config.Database.Driver)
	return nil
}
