package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Add an admin account",
	Args:  cobra.NoArgs,
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().String("email", "", "Admin email (required)")
	createAdminCmd.Flags().String("password", "", "Admin password, at least 6 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	email := mustGetString(cmd, "email")
	password := mustGetString(cmd, "password")

	container, err := openContainer(nil)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	admin, err := container.AuthService.CreateAdmin(context.Background(), email, password)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Printf("Created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}
