/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/workspace-admin/apiserver/config"
	"github.com/workspace-admin/apiserver/internal/mq"
	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect workspace events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log workspace.created events as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer queue.Close()

		logger.Info("tailing events", zap.String("channel", types.WorkspaceEventCreated), zap.String("backend", cfg.MQ.Backend))
		err = queue.Subscribe(ctx, types.WorkspaceEventCreated, logWorkspaceEvent(logger))
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}

// logWorkspaceEvent logs each event. Undecodable messages are logged and
// acknowledged so they are not redelivered forever.
func logWorkspaceEvent(logger *zap.Logger) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		var event types.WorkspaceEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("undecodable event", zap.String("message_id", msg.ID), zap.Error(err))
			return nil
		}
		logger.Info("workspace event",
			zap.String("message_id", msg.ID),
			zap.String("type", event.Type),
			zap.String("workspace_id", event.Workspace.ID),
			zap.String("name", event.Workspace.Name),
			zap.String("created_by", event.Workspace.CreatedBy),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
