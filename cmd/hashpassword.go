/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/workspace-admin/apiserver/internal/auth"
)

// hashPasswordCmd represents the hash-password command
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for a password",
	Long: `Reads a password (twice, without echo on a terminal) and prints the
bcrypt hash the server stores for it. Usage:

	wsadmin hash-password
	echo -e "secret\nsecret" | wsadmin hash-password
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).newPassword()
		if err != nil {
			return err
		}

		hashed, err := auth.NewBcryptHasher().Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hashed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
