/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/workspace-admin/apiserver/config"
	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/db"
	"github.com/workspace-admin/apiserver/internal/services"
	"github.com/workspace-admin/apiserver/internal/store"
	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

var createAdminEmail string

// createAdminCmd represents the create-admin command
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `Creates a user with the admin role so the panel can be signed in to
for the first time. Usage:

	wsadmin create-admin --email admin@example.com
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		password, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).newPassword()
		if err != nil {
			return err
		}

		dbConn, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		userService := services.NewUserService(store.NewUserRepository(dbConn), auth.NewBcryptHasher())
		user, err := userService.Create(cmd.Context(), createAdminEmail, password, types.RoleAdmin)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		logger.Info("admin created", zap.String("id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&createAdminEmail, "email", "", "email of the new admin")
	_ = createAdminCmd.MarkFlagRequired("email")
}
