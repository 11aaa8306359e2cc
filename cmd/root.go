/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/workspace-admin/apiserver/config"
	"github.com/workspace-admin/apiserver/internal/logging"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wsadmin",
	Short: "Workspace admin panel backend",
	Long: `wsadmin serves the admin panel API and pages, and ships the
maintenance commands that go with it: migrations, admin seeding and
event inspection.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger from cfg.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Env, cfg.LogLevel)
}
